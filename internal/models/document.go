// Package models defines the vault document types shared across packages.
package models

import "time"

// DocumentMeta is the lightweight listing entry for a vault file.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary describes an indexed document and its annotation schema.
type DocumentSummary struct {
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Enabled     bool      `json:"enabled"`
	Annotations []string  `json:"annotations"`
	Skipped     int       `json:"skipped"`
	UpdatedAt   time.Time `json:"updated_at"`
}

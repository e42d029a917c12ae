// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/annotator/internal/models"

// Provider is the interface for vault document operations. Paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.DocumentMeta, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the document at path.
	Write(path string, content []byte) error
}

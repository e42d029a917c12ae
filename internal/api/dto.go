package api

import (
	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/completion"
	"github.com/starford/annotator/internal/models"
)

// SettingsRequest is the request body for updating settings.
type SettingsRequest = annotation.Settings

// DocumentListResponse wraps indexed documents.
type DocumentListResponse struct {
	Documents []models.DocumentSummary `json:"documents" validate:"required"`
	Total     int                      `json:"total" example:"3" validate:"required"`
}

// SchemaResponse is the annotation schema of one document.
type SchemaResponse struct {
	Path string `json:"path" example:"projects/groceries.md" validate:"required"`
	annotation.Schema
}

// CandidateListResponse wraps rendered candidates.
type CandidateListResponse struct {
	Candidates []annotation.Candidate `json:"candidates" validate:"required"`
}

// CompleteRequest is the request body for a stateless completion.
type CompleteRequest = completion.CompleteRequest

// CompleteResponse is the result of a stateless completion.
type CompleteResponse = completion.CompleteResult

// ApplyRequest is the request body for inserting a candidate into a document.
type ApplyRequest = completion.ApplyRequest

// ApplyResponse describes the document after an insertion.
type ApplyResponse = completion.ApplyResult

// OpenSessionRequest is the request body for opening a session.
type OpenSessionRequest struct {
	Path string `json:"path" example:"projects/groceries.md"`
}

// SessionListResponse wraps open sessions.
type SessionListResponse struct {
	Sessions []completion.SessionInfo `json:"sessions" validate:"required"`
}

// KeystrokeRequest is the request body for a session keystroke.
type KeystrokeRequest = completion.KeystrokeRequest

// SelectRequest picks a candidate from the last keystroke.
type SelectRequest struct {
	Index int `json:"index" example:"0"`
}

// Package document describes documents and folders (knowledge bases) as the
// backend exposes them. The gateway never stores these; it proxies them.
package document

import "time"

// Status is the ingestion status of a document on the backend.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Document is one uploaded file (or ingested video) in a folder.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FolderName string    `json:"folder_name"`
	FileKey    string    `json:"file_key"`
	FileURL    string    `json:"file_url,omitempty"` // presigned, time-limited
	FileType   string    `json:"file_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	Status     Status    `json:"status"`
	YouTubeURL string    `json:"youtube_url,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Folder is a named knowledge base grouping documents.
type Folder struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count,omitempty"`
}

// ListFilter narrows a document listing.
type ListFilter struct {
	FolderName string
	Limit      int
	Skip       int
}

// Model is one selectable chat model from the backend catalog.
type Model struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

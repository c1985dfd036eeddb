package service

import (
	"context"
	"fmt"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/document"
)

// DocumentService fronts the backend's knowledge-base management API:
// documents, folders, YouTube ingestion, and the model catalog.
type DocumentService struct {
	client *soldieriq.Client
	tokens soldieriq.TokenProvider
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(client *soldieriq.Client, tokens soldieriq.TokenProvider) *DocumentService {
	return &DocumentService{client: client, tokens: tokens}
}

func (s *DocumentService) token(ctx context.Context) (string, error) {
	if s.tokens == nil {
		return "", nil
	}
	return s.tokens.Token(ctx)
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter document.ListFilter) ([]document.Document, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListDocuments(ctx, token, filter)
}

// Get returns one document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*document.Document, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetDocument(ctx, token, id)
}

// Delete removes a document from the knowledge base.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.DeleteDocument(ctx, token, id)
}

// Upload sends files to the backend for ingestion into folderName.
func (s *DocumentService) Upload(ctx context.Context, folderName string, files []soldieriq.UploadFile) ([]document.Document, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: no files given")
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.UploadDocuments(ctx, token, folderName, files)
}

// IngestYouTube submits a YouTube URL for transcription and indexing.
func (s *DocumentService) IngestYouTube(ctx context.Context, youtubeURL, folderName string) (*document.Document, error) {
	if youtubeURL == "" {
		return nil, fmt.Errorf("ingest youtube: empty url")
	}
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.IngestYouTube(ctx, token, youtubeURL, folderName)
}

// ListFolders returns the knowledge-base folder names.
func (s *DocumentService) ListFolders(ctx context.Context) ([]string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListFolders(ctx, token)
}

// RenameFolder renames a folder across all documents in it.
func (s *DocumentService) RenameFolder(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" {
		return fmt.Errorf("rename folder: empty name")
	}
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.RenameFolder(ctx, token, oldName, newName)
}

// DeleteFolder removes a folder and its documents.
func (s *DocumentService) DeleteFolder(ctx context.Context, name string) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.DeleteFolder(ctx, token, name)
}

// ListModels returns the chat model catalog.
func (s *DocumentService) ListModels(ctx context.Context) ([]document.Model, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListModels(ctx, token)
}

// GetTAKConfig returns the stored TAK server configuration.
func (s *DocumentService) GetTAKConfig(ctx context.Context) (*soldieriq.TAKConfig, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetTAKConfig(ctx, token)
}

// SetTAKConfig stores a TAK server configuration.
func (s *DocumentService) SetTAKConfig(ctx context.Context, cfg soldieriq.TAKConfig) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.SetTAKConfig(ctx, token, cfg)
}

// DeleteTAKConfig removes the stored TAK server configuration.
func (s *DocumentService) DeleteTAKConfig(ctx context.Context) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.DeleteTAKConfig(ctx, token)
}

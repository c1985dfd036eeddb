package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/document"
)

func TestDocumentListAndModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/upload/documents":
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("missing auth header, got %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": []map[string]any{
					{"id": "d1", "filename": "fm-3-21.pdf", "folder_name": "manuals", "status": "completed"},
				},
				"count": 1,
			})
		case "/api/models":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]any{
					{"id": "gpt-4o", "name": "GPT-4o", "default": true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := NewDocumentService(soldieriq.NewClient(srv.URL), soldieriq.StaticToken("tok"))

	docs, err := svc.List(context.Background(), document.ListFilter{FolderName: "manuals"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "fm-3-21.pdf" {
		t.Fatalf("unexpected documents: %+v", docs)
	}

	models, err := svc.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || !models[0].Default {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestDocumentUploadRequiresFiles(t *testing.T) {
	svc := NewDocumentService(soldieriq.NewClient("http://unused"), nil)
	if _, err := svc.Upload(context.Background(), "manuals", nil); err == nil {
		t.Fatal("expected error for empty upload")
	}
}

func TestDocumentIngestYouTubeRequiresURL(t *testing.T) {
	svc := NewDocumentService(soldieriq.NewClient("http://unused"), nil)
	if _, err := svc.IngestYouTube(context.Background(), "", "clips"); err == nil {
		t.Fatal("expected error for empty url")
	}
}

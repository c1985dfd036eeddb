package http

import (
	"net/http"
	"strconv"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/document"
)

// ListDocuments returns knowledge-base documents, optionally filtered by
// folder_name, limit, and skip query parameters.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := document.ListFilter{
		FolderName: r.URL.Query().Get("folder_name"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Skip = n
		}
	}

	docs, err := h.Documents.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "documents unavailable")
		return
	}
	if docs == nil {
		docs = []document.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument returns one document by ID.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Documents.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document from the knowledge base.
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocuments forwards a multipart upload to the backend for ingestion.
func (h *Handlers) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	folderName := r.FormValue("folder_name")
	if err := sanitizeName(folderName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var files []soldieriq.UploadFile
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, soldieriq.UploadFile{Name: fh.Filename, Content: f})
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files given")
		return
	}

	docs, err := h.Documents.Upload(r.Context(), folderName, files)
	if err != nil {
		writeDomainError(w, err, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, docs)
}

type youtubeRequest struct {
	URL        string `json:"url"`
	FolderName string `json:"folder_name"`
}

// IngestYouTube submits a YouTube URL for transcription and indexing.
func (h *Handlers) IngestYouTube(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[youtubeRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.URL, "url") {
		return
	}
	if err := sanitizeName(req.FolderName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.Documents.IngestYouTube(r.Context(), req.URL, req.FolderName)
	if err != nil {
		writeDomainError(w, err, "youtube ingestion failed")
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// ListFolders returns the knowledge-base folder names.
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.Documents.ListFolders(r.Context())
	if err != nil {
		writeDomainError(w, err, "folders unavailable")
		return
	}
	if folders == nil {
		folders = []string{}
	}
	writeJSON(w, http.StatusOK, folders)
}

type renameFolderRequest struct {
	NewName string `json:"new_name"`
}

// RenameFolder renames a knowledge-base folder.
func (h *Handlers) RenameFolder(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[renameFolderRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if err := sanitizeName(req.NewName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Documents.RenameFolder(r.Context(), urlParam(r, "name"), req.NewName); err != nil {
		writeDomainError(w, err, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// DeleteFolder removes a folder and its documents.
func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.DeleteFolder(r.Context(), urlParam(r, "name")); err != nil {
		writeDomainError(w, err, "folder not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListModels returns the chat model catalog.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.Documents.ListModels(r.Context())
	if err != nil {
		writeDomainError(w, err, "models unavailable")
		return
	}
	if models == nil {
		models = []document.Model{}
	}
	writeJSON(w, http.StatusOK, models)
}

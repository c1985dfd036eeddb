package http

import (
	"net/http"
)

// ResolveAsset returns the presigned URL for one storage key, given as the
// file_key query parameter. Results are cached; concurrent requests for the
// same key collapse into one backend call.
func (h *Handlers) ResolveAsset(w http.ResponseWriter, r *http.Request) {
	fileKey := r.URL.Query().Get("file_key")
	if !requireField(w, fileKey, "file_key") {
		return
	}

	u, err := h.Assets.Resolve(r.Context(), h.Auth, fileKey)
	if err != nil {
		writeDomainError(w, err, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

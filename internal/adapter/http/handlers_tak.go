package http

import (
	"net/http"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
)

// GetTAKConfig returns the stored TAK server configuration. The backend
// omits the password field in reads.
func (h *Handlers) GetTAKConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Documents.GetTAKConfig(r.Context())
	if err != nil {
		writeDomainError(w, err, "tak config not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SetTAKConfig stores a TAK server configuration.
func (h *Handlers) SetTAKConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := readJSON[soldieriq.TAKConfig](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, cfg.Host, "tak_host") {
		return
	}

	if err := h.Documents.SetTAKConfig(r.Context(), cfg); err != nil {
		writeDomainError(w, err, "tak config rejected")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DeleteTAKConfig removes the stored TAK server configuration.
func (h *Handlers) DeleteTAKConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.DeleteTAKConfig(r.Context()); err != nil {
		writeDomainError(w, err, "tak config not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

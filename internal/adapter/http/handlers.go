package http

import (
	"net/http"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/ws"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB
const maxUploadSize = 100 << 20    // 100 MB across all files

// Handlers bundles the services exposed over HTTP.
type Handlers struct {
	Chat      *service.ChatService
	Auth      *service.AuthService
	History   *service.HistoryService
	Documents *service.DocumentService
	Assets    *service.AssetLinkService
	Hub       *ws.Hub
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package http

import (
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the gateway against the backend with the given
// credentials. The gateway holds the resulting token pair; browsers never
// see backend tokens.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[loginRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Username, "username") {
		return
	}
	if !requireField(w, req.Password, "password") {
		return
	}

	info, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Me returns the profile of the authenticated backend user.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	info, err := h.Auth.Me(r.Context())
	if err != nil {
		writeDomainError(w, err, "profile unavailable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RefreshToken forces a refresh of the gateway's backend credential.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Refresh(r.Context()); err != nil {
		writeDomainError(w, err, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// Logout revokes the gateway's backend credential.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		writeDomainError(w, err, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

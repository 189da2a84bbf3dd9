package handler

import (
	"net/http"
)

// Login redirects the browser to Google's consent screen
// @Summary Start the OAuth login flow
// @Description Redirect to Google's consent screen with a signed state parameter
// @Tags auth
// @Success 302 {string} string "Redirect to Google"
// @Failure 500 {object} map[string]interface{} "OAuth not configured"
// @Router /login [get]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil || h.OAuth.ClientID == "" {
		http.Error(w, "OAuth is not configured", http.StatusInternalServerError)
		return
	}
	loginURL, err := h.OAuth.LoginURL()
	if err != nil {
		http.Error(w, "Failed to build login URL", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, loginURL, http.StatusFound)
}

// AuthCallback completes the OAuth login flow
// @Summary OAuth callback
// @Description Verify the signed state, exchange the authorization code for a token, persist it and send the browser back to the frontend
// @Tags auth
// @Success 302 {string} string "Redirect to the frontend"
// @Failure 400 {object} map[string]interface{} "Invalid state or missing code"
// @Failure 502 {object} map[string]interface{} "Token exchange failed"
// @Router /auth/callback [get]
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil || h.OAuth.ClientID == "" {
		http.Error(w, "OAuth is not configured", http.StatusInternalServerError)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Error(w, "state and code are required", http.StatusBadRequest)
		return
	}
	if err := h.OAuth.VerifyState(state); err != nil {
		http.Error(w, "Invalid or expired state", http.StatusBadRequest)
		return
	}

	tok, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		h.Log.Printf("oauth: exchange failed: %v", err)
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}
	if err := h.OAuth.SaveToken(tok); err != nil {
		h.Log.Printf("oauth: save token: %v", err)
	}

	http.Redirect(w, r, h.Config.Server.FrontendOrigin, http.StatusFound)
}

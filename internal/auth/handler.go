package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixrepo/service/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	APIKey string `json:"apiKey"`
}

type loginData struct {
	Token string `json:"token" example:"eyJhbGci..."`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange the admin API key for a short-lived JWT bearer token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"API key"
//	@Success		200		{object}	response.Envelope{data=loginData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.APIKey)
	if err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			response.Unauthorized(w, "invalid API key")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, loginData{Token: token})
}

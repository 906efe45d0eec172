package profile

import (
	"encoding/json"
	"net/http"

	"github.com/photoshare/service/internal/middleware"
	"github.com/photoshare/service/internal/response"
)

// Handler holds HTTP handlers for profile endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new profile Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetMe godoc
//
//	@Summary		Get own profile
//	@Description	Returns the caller's profile, creating a default one on first access.
//	@Tags			profiles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Profile}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/profiles/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, _, err := h.svc.GetOrCreate(r.Context(), identity)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, p)
}

// UpdateMe godoc
//
//	@Summary		Update own profile
//	@Description	Writes only the supplied fields on the caller's profile.
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		Fields	true	"Fields to update"
//	@Success		200	{object}	response.Envelope{data=Profile}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/profiles/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var fields Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), identity, fields)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, p)
}

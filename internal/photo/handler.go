package photo

import (
	"net/http"
	"strconv"

	"github.com/photoshare/service/internal/middleware"
	"github.com/photoshare/service/internal/response"
)

// Handler holds HTTP handlers for photo endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload godoc
//
//	@Summary		Upload a photo
//	@Description	Commits an image upload: stores the blob and its metadata atomically.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file	true	"Image file (max 10MB)"
//	@Param			title		formData	string	true	"Title (max 100 characters)"
//	@Param			description	formData	string	false	"Description (max 500 characters)"
//	@Success		201	{object}	response.Envelope{data=Photo}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		413	{object}	response.Envelope
//	@Failure		415	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.Identity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	// One extra MiB of headroom for the multipart framing; the blob itself
	// is capped by the validation gate.
	r.Body = http.MaxBytesReader(w, r.Body, MaxBlobBytes+1024*1024)
	if err := r.ParseMultipartForm(MaxBlobBytes); err != nil {
		response.Error(w, http.StatusRequestEntityTooLarge, "file size must be at most 10MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}

	p, err := h.svc.Commit(r.Context(), ownerID, Blob{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, r.FormValue("title"), description)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, p)
}

// Feed godoc
//
//	@Summary		List photos
//	@Description	Returns one page of the global feed, or of a single owner's gallery when owner is set.
//	@Tags			photos
//	@Produce		json
//	@Param			page	query	int		false	"Page number (1-based)"	default(1)
//	@Param			limit	query	int		false	"Page size"				default(20)
//	@Param			owner	query	string	false	"Filter by owner identity"
//	@Success		200	{object}	response.Envelope{data=Page}
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var ownerID *string
	if o := r.URL.Query().Get("owner"); o != "" {
		ownerID = &o
	}

	result, err := h.svc.FetchPage(r.Context(), ownerID, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, result)
}

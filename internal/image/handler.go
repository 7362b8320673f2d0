package image

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixrepo/service/internal/imagehost"
	"github.com/pixrepo/service/internal/response"
)

// maxUploadSize caps uploads at 10 MiB; the contents API rejects larger blobs anyway.
const maxUploadSize = 10 << 20

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type testHostRequest struct {
	PersonalAccessToken string `json:"personal_access_token"`
	UserName            string `json:"user_name"`
	RepositoryName      string `json:"repository_name"`
}

type testHostData struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Uploads an image file to the configured GitHub repository and returns its public URL.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	response.Envelope{data=Image}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Router			/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing or oversized file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read uploaded file")
		return
	}

	img, err := h.svc.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile):
			response.BadRequest(w, "uploaded file is empty")
		case errors.Is(err, ErrHostNotReady):
			response.Error(w, http.StatusServiceUnavailable, "image host is not configured")
		case errors.Is(err, imagehost.ErrAlreadyExists), errors.Is(err, ErrDuplicatePath):
			response.Conflict(w, "a file already exists at the target path")
		default:
			response.Error(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	response.Created(w, img)
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns all hosted images, newest first.
//	@Tags			images
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Image}
//	@Failure		500	{object}	response.Envelope
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, images)
}

// Get godoc
//
//	@Summary		Get image
//	@Description	Returns one hosted image by ID.
//	@Tags			images
//	@Produce		json
//	@Param			id	path		string	true	"Image ID"
//	@Success		200	{object}	response.Envelope{data=Image}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/images/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "image not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, img)
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Deletes the image from the GitHub repository and drops its record.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Image ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		switch {
		case h.svc.IsNotFound(err):
			response.NotFound(w, "image not found")
		case errors.Is(err, imagehost.ErrNotReady):
			response.Error(w, http.StatusServiceUnavailable, "image host is not configured")
		default:
			response.Error(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	response.OK(w, map[string]string{"id": id})
}

// TestHost godoc
//
//	@Summary		Test host configuration
//	@Description	Validates a candidate GitHub host configuration against the live API without storing it.
//	@Tags			host
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		testHostRequest	true	"Candidate configuration"
//	@Success		200		{object}	response.Envelope{data=testHostData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/host/test [post]
func (h *Handler) TestHost(w http.ResponseWriter, r *http.Request) {
	var req testHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	ok, msg := h.svc.TestHostConfig(r.Context(), imagehost.Config{
		PersonalAccessToken: req.PersonalAccessToken,
		UserName:            req.UserName,
		RepositoryName:      req.RepositoryName,
	})
	response.OK(w, testHostData{Ok: ok, Message: msg})
}

package photo

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/earlog/service/internal/auth"
	"github.com/earlog/service/internal/response"
	"github.com/earlog/service/internal/user"
)

// maxUploadBytes caps the in-memory portion of a multipart submission.
const maxUploadBytes = 32 << 20

// Handler holds HTTP handlers for photo endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// identity returns the authenticated user when both a user and a live session
// are on the request context. Handlers re-check this even behind the
// middleware so a miswired route cannot leak another user's data.
func identity(r *http.Request) (*user.User, bool) {
	u := auth.CurrentUser(r.Context())
	if u == nil || auth.CurrentSession(r.Context()) == nil {
		return nil, false
	}
	return u, true
}

// Create godoc
//
//	@Summary		Submit a photo
//	@Description	Upload an ear photo with structured metadata. Fields: file (image), age (integer), gender, ear, symptoms (JSON array of strings), other (optional).
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"Image file"
//	@Param			age			formData	integer	true	"Age"
//	@Param			gender		formData	string	true	"Gender"
//	@Param			ear			formData	string	true	"Affected ear"
//	@Param			symptoms	formData	string	true	"JSON array of symptoms"
//	@Param			other		formData	string	false	"Free-text notes"
//	@Success		201	{object}	response.Envelope{data=Photo}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := identity(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	age, err := strconv.Atoi(r.FormValue("age"))
	if err != nil {
		response.BadRequest(w, "valid age is required")
		return
	}

	gender := r.FormValue("gender")
	if gender == "" {
		response.BadRequest(w, "gender is required")
		return
	}

	ear := r.FormValue("ear")
	if ear == "" {
		response.BadRequest(w, "ear is required")
		return
	}

	symptomsRaw := r.FormValue("symptoms")
	if symptomsRaw == "" {
		response.BadRequest(w, "symptoms are required")
		return
	}

	var symptoms []string
	if err := json.Unmarshal([]byte(symptomsRaw), &symptoms); err != nil || len(symptoms) == 0 {
		response.BadRequest(w, "symptoms must be a non-empty JSON array of strings")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.BadRequest(w, "only image files are allowed")
		return
	}

	var other *string
	if v := r.FormValue("other"); v != "" {
		other = &v
	}

	created, err := h.svc.Create(r.Context(), u.ID,
		Upload{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Content:     file,
		},
		Insert{
			Age:      age,
			Gender:   gender,
			Ear:      ear,
			Symptoms: symptoms,
			Other:    other,
		},
	)
	if err != nil {
		log.Printf("photo: create failed: %v", err)
		response.InternalError(w)
		return
	}

	response.Created(w, created)
}

// List godoc
//
//	@Summary		List photos
//	@Description	Returns the caller's photos, newest upload first.
//	@Tags			photos
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Photo}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := identity(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	photos, err := h.svc.List(r.Context(), u.ID)
	if err != nil {
		log.Printf("photo: list failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, photos)
}

// Get godoc
//
//	@Summary		Fetch a photo
//	@Description	Returns one photo owned by the caller. A photo owned by someone else is a 404.
//	@Tags			photos
//	@Produce		json
//	@Param			id	path		integer	true	"Photo ID"
//	@Success		200	{object}	response.Envelope{data=Photo}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := identity(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid photo id")
		return
	}

	p, err := h.svc.Get(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: get failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a photo
//	@Description	Removes the caller's photo record and its stored object.
//	@Tags			photos
//	@Produce		json
//	@Param			id	path		integer	true	"Photo ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := identity(r)
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid photo id")
		return
	}

	if err := h.svc.Delete(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "photo not found")
			return
		}
		log.Printf("photo: delete failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "photo deleted successfully"})
}

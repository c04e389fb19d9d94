package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/entity"
)

// FormField is the multipart field carrying the uploaded file.
const FormField = "media"

const multipartMemory = 32 << 20

// Handler exposes the media gateway over HTTP.
type Handler struct {
	svc      *Service
	logger   *zap.SugaredLogger
	maxBytes int64
}

func NewHandler(svc *Service, logger *zap.SugaredLogger, maxBytes int64) *Handler {
	return &Handler{svc: svc, logger: logger, maxBytes: maxBytes}
}

type uploadResponse struct {
	Message string `json:"message"`
	entity.Uploaded
}

type listResponse struct {
	Message string `json:"message"`
	Listing
}

// DeleteRequest is the body of DELETE /api/delete.
type DeleteRequest struct {
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType"`
}

type deleteResponse struct {
	Message  string `json:"message"`
	PublicID string `json:"publicId"`
}

func (h *Handler) tooLarge() error {
	return apperr.TooLarge("File exceeds the upload size limit.")
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		if r.ContentLength > h.maxBytes {
			apperr.Write(w, h.logger, h.tooLarge())
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			apperr.Write(w, h.logger, h.tooLarge())
			return
		}
		h.logger.Debugw("invalid multipart body", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("No file uploaded."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Validation("No file uploaded."))
		return
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") && !strings.HasPrefix(mime, "video/") {
		apperr.Write(w, h.logger, apperr.Validation("Only image and video files are allowed."))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Upstream("Internal server error during file upload.", err))
		return
	}

	up, err := h.svc.Upload(r.Context(), File{Data: data, Name: header.Filename, MIME: mime})
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, uploadResponse{Message: "File uploaded successfully!", Uploaded: *up})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.List(r.Context(), r.URL.Query().Get("cursor"))
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, listResponse{Message: "Successfully fetched media.", Listing: *listing})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debugw("invalid delete payload", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("Invalid request body."))
		return
	}
	id, err := h.svc.Delete(r.Context(), req.PublicID, req.ResourceType)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, deleteResponse{Message: "File deleted successfully.", PublicID: id})
}

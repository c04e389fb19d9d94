package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/payment"
)

// Handler generates and serves invoices.
type Handler struct {
	gen    *Generator
	gw     payment.Gateway
	logger *zap.SugaredLogger
}

func NewHandler(gen *Generator, gw payment.Gateway, logger *zap.SugaredLogger) *Handler {
	return &Handler{gen: gen, gw: gw, logger: logger}
}

// GenerateRequest is the body of POST /api/generate-invoice.
type GenerateRequest struct {
	SessionID string `json:"session_id"`
}

type generateResponse struct {
	Success    bool   `json:"success"`
	InvoiceURL string `json:"invoiceUrl"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debugw("invalid invoice payload", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("Invalid request body."))
		return
	}
	if req.SessionID == "" {
		apperr.Write(w, h.logger, apperr.Validation("Missing session_id"))
		return
	}
	if !ValidSessionID(req.SessionID) {
		apperr.Write(w, h.logger, apperr.Validation("Invalid session_id"))
		return
	}
	s, err := h.gw.GetSession(r.Context(), req.SessionID)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Upstream("Error generating invoice", err))
		return
	}
	url, err := h.gen.Generate(s)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Upstream("Error generating invoice", err))
		return
	}
	h.logger.Infow("invoice generated", "session", s.ID, "url", url)
	apperr.WriteJSON(w, http.StatusOK, generateResponse{Success: true, InvoiceURL: url})
}

// Files serves previously generated invoices under URLPrefix. Directories
// are never listed.
func (h *Handler) Files() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(filesOnly{http.Dir(h.gen.Dir())}))
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/user/entity"
)

// Handler exposes HTTP endpoints for signup and signin.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SignupRequest request body for signup endpoint.
type SignupRequest struct {
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	AdminCode string `json:"adminCode,omitempty"`
}

// SignupResponse response body containing the new user id.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("Invalid request body."))
		return
	}
	reg, err := h.svc.Register(r.Context(), RegisterInput{
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	h.logger.Infow("user registered", "id", reg.ID, "role", reg.Role)
	apperr.WriteJSON(w, http.StatusCreated, SignupResponse{
		Message: "User registered successfully!",
		UserID:  reg.ID,
		Role:    reg.Role,
	})
}

// SigninRequest signin payload.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse carries the session token and public identity.
type SigninResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    entity.PublicView `json:"user"`
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signin payload", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("Invalid request body."))
		return
	}
	res, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		apperr.Write(w, h.logger, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, SigninResponse{
		Message: "Signed in successfully!",
		Token:   res.Token,
		User:    res.User,
	})
}

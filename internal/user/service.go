package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-media-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-media-go/pkg/utilities"
)

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher hashes with bcrypt; a zero Cost means bcrypt.DefaultCost.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the narrow credential store the service needs.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// msgInvalidCredentials is shared by every sign-in failure so callers cannot
// tell an unknown email from a wrong password.
const msgInvalidCredentials = "Invalid credentials."

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// UserService orchestrates registration and sign-in.
type UserService struct {
	repo      Store
	hasher    PasswordHasher
	tokens    TokenIssuer
	adminCode string
	newID     func() string
	now       func() time.Time
}

// NewUserService wires the service; a nil store falls back to the sqlx repo on db
// and a nil hasher to bcrypt with cost 10.
func NewUserService(db *sqlx.DB, r Store, hasher PasswordHasher, tokens TokenIssuer, adminCode string) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{
		repo:      r,
		hasher:    hasher,
		tokens:    tokens,
		adminCode: adminCode,
		newID:     utilities.NewSnowflakeID,
		now:       time.Now,
	}
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	UserName  string
	Email     string
	Password  string
	Role      string
	AdminCode string
}

// Registered is the outcome of a successful signup.
type Registered struct {
	ID   string
	Role string
}

// SignInResult carries the session token and the public identity.
type SignInResult struct {
	Token string
	User  entity.PublicView
}

// Register creates a client account, or an admin account when the caller
// asks for it and presents the configured admin signup code.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Registered, error) {
	userName := strings.TrimSpace(in.UserName)
	email := normalizeEmail(in.Email)
	if userName == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("Username, Email and password are required.")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes.")
	}

	// admin is granted only against the configured signup code, otherwise the
	// request is downgraded to client
	role := auth.RoleClient
	if in.Role == auth.RoleAdmin && s.adminCodeMatches(in.AdminCode) {
		role = auth.RoleAdmin
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("User with this email already exists.")
	case !errors.Is(err, userrepo.ErrNotFound):
		return nil, apperr.Upstream("Server error during signup.", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Upstream("Server error during signup.", err)
	}
	u := &entity.User{
		ID:           s.newID(),
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrDuplicateEmail):
			return nil, apperr.Conflict("User with this email already exists.")
		case errors.Is(err, userrepo.ErrDuplicateUserName):
			return nil, apperr.Conflict("User with this username already exists.")
		}
		return nil, apperr.Upstream("Server error during signup.", err)
	}
	return &Registered{ID: u.ID, Role: u.Role}, nil
}

// Authenticate verifies credentials and issues a session token.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*SignInResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required.")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Upstream("Server error during signin.", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	view := u.Public()
	token, err := s.tokens.Issue(auth.Identity{ID: view.ID, UserName: view.UserName, Email: view.Email, Role: view.Role})
	if err != nil {
		return nil, apperr.Upstream("Server error during signin.", err)
	}
	return &SignInResult{Token: token, User: view}, nil
}

func (s *UserService) adminCodeMatches(code string) bool {
	if s.adminCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminCode), []byte(code)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

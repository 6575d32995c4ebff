package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stellar/internal/auth"
	"stellar/internal/email"
	"stellar/internal/middleware"
	"stellar/internal/models"
	"stellar/internal/store"
)

const verificationTTL = 24 * time.Hour

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

type AuthHandler struct {
	store  *store.Store
	tokens *auth.Tokens
	mailer email.Sender
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthHandler(st *store.Store, tokens *auth.Tokens, mailer email.Sender, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens, mailer: mailer, logger: logger, now: time.Now}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validPassword requires 8..100 characters with at least one letter and one digit.
func validPassword(p string) bool {
	if len(p) < 8 || len(p) > 100 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return letter && digit
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	switch {
	case !usernamePattern.MatchString(req.Username):
		http.Error(w, "username must be 3-50 letters, digits, _ or -", http.StatusBadRequest)
		return
	case !validEmail(req.Email):
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	case !validPassword(req.Password):
		http.Error(w, "password must be 8-100 characters with a letter and a digit", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetUserByUsername(r.Context(), req.Username); err == nil {
		http.Error(w, "username already exists", http.StatusBadRequest)
		return
	}
	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "email already registered", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	token := uuid.NewString()
	expires := h.now().Add(verificationTTL)
	user := &models.User{
		Username:                 req.Username,
		Email:                    req.Email,
		PasswordHash:             string(hashed),
		IsActive:                 true,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			http.Error(w, "username or email already exists", http.StatusBadRequest)
			return
		}
		h.logger.Error("create user", zap.Error(err))
		http.Error(w, "could not create user", http.StatusInternalServerError)
		return
	}

	// the user can ask for a new mail, so delivery problems do not fail registration
	if err := h.mailer.SendVerification(r.Context(), user.Email, user.Username, token); err != nil {
		h.logger.Warn("send verification email", zap.String("user_id", user.ID), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "registration successful, please check your email to verify your account"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByVerificationToken(r.Context(), body.Token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "invalid verification link", http.StatusBadRequest)
			return
		}
		h.logger.Error("lookup verification token", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	// a repeated click on the same link is not an error
	if user.IsEmailVerified {
		writeJSON(w, http.StatusOK, messageResponse{Message: "email verified, you can now log in"})
		return
	}
	if user.VerificationTokenExpires != nil && user.VerificationTokenExpires.Before(h.now()) {
		http.Error(w, "verification link expired, please request a new one", http.StatusBadRequest)
		return
	}
	if err := h.store.MarkEmailVerified(r.Context(), user.ID); err != nil {
		h.logger.Error("mark email verified", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "email verified, you can now log in"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Email = normalizeEmail(c.Email)
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), c.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error("lookup user", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		http.Error(w, "account disabled", http.StatusForbidden)
		return
	}
	if !user.IsEmailVerified {
		http.Error(w, "email not verified", http.StatusForbidden)
		return
	}
	h.issue(w, user.ID)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	userID, err := h.tokens.Parse(body.RefreshToken, auth.TypeRefresh)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil || !user.IsActive {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	h.issue(w, user.ID)
}

func (h *AuthHandler) issue(w http.ResponseWriter, userID string) {
	pair, err := h.tokens.Issue(userID)
	if err != nil {
		h.logger.Error("issue tokens", zap.Error(err))
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// ResendVerification answers the same way whether or not the address is known.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	generic := messageResponse{Message: "if the email exists and is unverified, a verification email has been sent"}

	user, err := h.store.GetUserByEmail(r.Context(), normalizeEmail(body.Email))
	if err != nil || user.IsEmailVerified {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("lookup user", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, generic)
		return
	}

	token := uuid.NewString()
	if err := h.store.SetVerificationToken(r.Context(), user.ID, token, h.now().Add(verificationTTL)); err != nil {
		h.logger.Error("set verification token", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := h.mailer.SendVerification(r.Context(), user.Email, user.Username, token); err != nil {
		h.logger.Error("send verification email", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "failed to send verification email, please try again later", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, generic)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*user))
}

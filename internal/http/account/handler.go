package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/http/auth"
	"github.com/deallock/deallock/internal/token"
)

type Handler struct {
	svc *account.Service
	jwt *auth.Manager
}

func NewHandler(svc *account.Service, jwt *auth.Manager) *Handler {
	return &Handler{svc: svc, jwt: jwt}
}

// Routes mounts the public onboarding and session endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/send-otp", h.sendOTP)
	r.Post("/verify-otp", h.verifyOTP)
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.RequestOTP(r.Context(), req.Email); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeMessage(w, http.StatusOK, "OTP sent")
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			http.Error(w, "OTP expired", http.StatusBadRequest)
		case errors.Is(err, token.ErrMismatch), errors.Is(err, token.ErrNotFound):
			http.Error(w, "invalid OTP", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeMessage(w, http.StatusOK, "email verified")
}

type signupRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" {
		http.Error(w, "email, username and password are required", http.StatusBadRequest)
		return
	}

	params := account.SignupParams{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			http.Error(w, "invalid date_of_birth", http.StatusBadRequest)
			return
		}

		params.DateOfBirth = &dob
	}

	if _, err := h.svc.Signup(r.Context(), params); err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicate):
			http.Error(w, "account already exists", http.StatusConflict)
		case errors.Is(err, account.ErrNotVerified):
			http.Error(w, "email not verified", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeMessage(w, http.StatusCreated, "account created, check your email to activate it")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrBadCredentials):
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
		case errors.Is(err, account.ErrDisabled):
			http.Error(w, "account not activated", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	signed, err := h.jwt.Issue(account.Actor{ID: a.ID, Role: a.Role})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(loginResponse{Token: signed, Role: string(a.Role)}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	// Always reports success so the endpoint cannot be used to probe for
	// registered emails.
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeMessage(w, http.StatusOK, "if the email exists, a reset link has been sent")
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrAlreadyUsed), errors.Is(err, token.ErrNotFound):
			http.Error(w, "invalid or expired reset link", http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeMessage(w, http.StatusOK, "password updated")
}

// Activate handles the link sent by email. It is mounted outside /api and
// redirects to the login page either way; the token tells the user nothing
// about why activation failed.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	secret := r.URL.Query().Get("token")

	if err := h.svc.Activate(r.Context(), secret); err != nil {
		http.Redirect(w, r, "/login?activated=false", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/login?activated=true", http.StatusFound)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{"message": msg}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

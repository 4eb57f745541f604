package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/deallock/deallock/internal/token"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ListByRole(ctx context.Context, role Role) ([]*Account, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error
}

type TokenStore interface {
	Issue(ctx context.Context, kind token.Kind, email string) (*token.Token, error)
	VerifyOTP(ctx context.Context, email, code string) error
	OTPVerified(ctx context.Context, email string) (bool, error)
	Consume(ctx context.Context, kind token.Kind, secret string) (*token.Token, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type Dispatcher interface {
	Go(name string, fn func(context.Context) error)
}

// Service handles onboarding and credential recovery: the OTP, activation
// and password-reset flows composed over the token store.
type Service struct {
	repo     Repository
	tokens   TokenStore
	mail     EmailSender
	dispatch Dispatcher
	baseURL  string
}

func NewService(repo Repository, tokens TokenStore, mail EmailSender, dispatch Dispatcher, baseURL string) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		dispatch: dispatch,
		baseURL:  baseURL,
	}
}

// RequestOTP issues a fresh OTP and emails it. There is deliberately no
// existing-account check at this stage.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	t, err := s.tokens.Issue(ctx, token.KindOTP, email)
	if err != nil {
		return fmt.Errorf("issuing otp: %w", err)
	}

	s.dispatch.Go("send-otp", func(ctx context.Context) error {
		return s.mail.SendEmail(ctx, email, "Your OTP Code", "Your OTP is: "+t.Secret)
	})

	return nil
}

func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	return s.tokens.VerifyOTP(ctx, email, code)
}

type SignupParams struct {
	FullName    string
	Email       string
	Username    string
	Password    string
	Phone       string
	Address     string
	DateOfBirth *time.Time
	OTP         string
}

// Signup creates a disabled account for a verified email and sends the
// activation link. The verified flag is read from the most recent OTP row;
// its expiry is not re-checked here.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*Account, error) {
	if _, err := s.repo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking existing account: %w", err)
	}

	verified, err := s.tokens.OTPVerified(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("checking otp: %w", err)
	}

	if !verified {
		return nil, ErrNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	a := &Account{
		FullName:     params.FullName,
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: hash,
		Phone:        params.Phone,
		Address:      params.Address,
		DateOfBirth:  params.DateOfBirth,
		Role:         RoleUser,
		Enabled:      false,
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}

		return nil, fmt.Errorf("creating account: %w", err)
	}

	activation, err := s.tokens.Issue(ctx, token.KindActivation, params.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing activation token: %w", err)
	}

	link := s.baseURL + "/activate?token=" + activation.Secret
	s.dispatch.Go("send-activation", func(ctx context.Context) error {
		return s.mail.SendEmail(ctx, params.Email, "Activate your account", "Click: "+link)
	})

	return a, nil
}

// Activate consumes an activation token and enables the matching account.
// Every failure collapses into ErrActivationFailed so the caller cannot
// distinguish missing, expired and reused tokens.
func (s *Service) Activate(ctx context.Context, secret string) error {
	t, err := s.tokens.Consume(ctx, token.KindActivation, secret)
	if err != nil {
		slog.Info("activation rejected", "error", err)
		return ErrActivationFailed
	}

	a, err := s.repo.GetByEmail(ctx, t.Email)
	if err != nil {
		slog.Info("activation rejected", "error", err)
		return ErrActivationFailed
	}

	if err := s.repo.SetEnabled(ctx, a.ID, true); err != nil {
		return fmt.Errorf("enabling account: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a reset token and emails the link. It reports
// success whether or not the email exists, to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return fmt.Errorf("looking up account: %w", err)
	}

	t, err := s.tokens.Issue(ctx, token.KindPasswordReset, email)
	if err != nil {
		return fmt.Errorf("issuing reset token: %w", err)
	}

	link := s.baseURL + "/reset-password?token=" + t.Secret
	s.dispatch.Go("send-password-reset", func(ctx context.Context) error {
		return s.mail.SendEmail(ctx, email, "Reset your password", "Click: "+link)
	})

	return nil
}

// ResetPassword consumes a reset token and rewrites the stored hash.
func (s *Service) ResetPassword(ctx context.Context, secret, newPassword string) error {
	t, err := s.tokens.Consume(ctx, token.KindPasswordReset, secret)
	if err != nil {
		return err
	}

	a, err := s.repo.GetByEmail(ctx, t.Email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, a.ID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}

// Authenticate checks the credentials and that the account has been
// activated. It backs the login endpoint.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	if !a.Enabled {
		return nil, ErrDisabled
	}

	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]*Account, error) {
	return s.repo.ListByRole(ctx, role)
}

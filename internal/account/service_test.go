package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/token"
)

// runDispatched executes the detached function inline so the test can
// assert on the outbound send.
func runDispatched(name string, fn func(context.Context) error) {
	_ = fn(context.Background())
}

func TestService_RequestOTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	tokens := account.NewMockTokenStore(ctrl)
	mail := account.NewMockEmailSender(ctrl)
	dispatch := account.NewMockDispatcher(ctrl)

	tokens.EXPECT().
		Issue(gomock.Any(), token.KindOTP, "user@example.com").
		Return(&token.Token{Secret: "123456"}, nil)
	dispatch.EXPECT().Go("send-otp", gomock.Any()).Do(runDispatched)
	mail.EXPECT().
		SendEmail(gomock.Any(), "user@example.com", "Your OTP Code", "Your OTP is: 123456").
		Return(nil)

	svc := account.NewService(repo, tokens, mail, dispatch, "http://localhost:8080")

	err := svc.RequestOTP(context.Background(), "user@example.com")
	assert.NoError(t, err)
}

func TestService_Signup(t *testing.T) {
	params := account.SignupParams{
		FullName: "Ada Obi",
		Email:    "ada@example.com",
		Username: "ada",
		Password: "s3cret",
		Phone:    "+2348012345678",
	}

	type mocks struct {
		repo     *account.MockRepository
		tokens   *account.MockTokenStore
		mail     *account.MockEmailSender
		dispatch *account.MockDispatcher
	}

	type testCase struct {
		name      string
		setupMock func(m mocks)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), params.Email).
					Return(nil, account.ErrNotFound)
				m.tokens.EXPECT().
					OTPVerified(gomock.Any(), params.Email).
					Return(true, nil)
				m.repo.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *account.Account) error {
						a.ID = uuid.New()
						return nil
					})
				m.tokens.EXPECT().
					Issue(gomock.Any(), token.KindActivation, params.Email).
					Return(&token.Token{Secret: "abc-123"}, nil)
				m.dispatch.EXPECT().Go("send-activation", gomock.Any()).Do(runDispatched)
				m.mail.EXPECT().
					SendEmail(gomock.Any(), params.Email, "Activate your account", "Click: http://localhost:8080/activate?token=abc-123").
					Return(nil)
			},
		},
		{
			name: "DuplicateEmail",
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), params.Email).
					Return(&account.Account{ID: uuid.New()}, nil)
			},
			wantErr: account.ErrDuplicate,
		},
		{
			name: "EmailNotVerified",
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), params.Email).
					Return(nil, account.ErrNotFound)
				m.tokens.EXPECT().
					OTPVerified(gomock.Any(), params.Email).
					Return(false, nil)
			},
			wantErr: account.ErrNotVerified,
		},
		{
			name: "DuplicateRaceOnInsert",
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), params.Email).
					Return(nil, account.ErrNotFound)
				m.tokens.EXPECT().
					OTPVerified(gomock.Any(), params.Email).
					Return(true, nil)
				m.repo.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					Return(account.ErrDuplicate)
			},
			wantErr: account.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{
				repo:     account.NewMockRepository(ctrl),
				tokens:   account.NewMockTokenStore(ctrl),
				mail:     account.NewMockEmailSender(ctrl),
				dispatch: account.NewMockDispatcher(ctrl),
			}
			tt.setupMock(m)

			svc := account.NewService(m.repo, m.tokens, m.mail, m.dispatch, "http://localhost:8080")
			got, err := svc.Signup(context.Background(), params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, account.RoleUser, got.Role)
			assert.False(t, got.Enabled)
			assert.NoError(t, bcrypt.CompareHashAndPassword(got.PasswordHash, []byte(params.Password)))
		})
	}
}

func TestService_Activate(t *testing.T) {
	type mocks struct {
		repo   *account.MockRepository
		tokens *account.MockTokenStore
	}

	type testCase struct {
		name      string
		setupMock func(m mocks)
		wantErr   error
	}

	accountID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m mocks) {
				m.tokens.EXPECT().
					Consume(gomock.Any(), token.KindActivation, "secret").
					Return(&token.Token{Email: "user@example.com"}, nil)
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), "user@example.com").
					Return(&account.Account{ID: accountID}, nil)
				m.repo.EXPECT().
					SetEnabled(gomock.Any(), accountID, true).
					Return(nil)
			},
		},
		{
			// Expired, reused and unknown tokens are indistinguishable
			// from the outside.
			name: "ExpiredToken",
			setupMock: func(m mocks) {
				m.tokens.EXPECT().
					Consume(gomock.Any(), token.KindActivation, "secret").
					Return(nil, token.ErrExpired)
			},
			wantErr: account.ErrActivationFailed,
		},
		{
			name: "ReusedToken",
			setupMock: func(m mocks) {
				m.tokens.EXPECT().
					Consume(gomock.Any(), token.KindActivation, "secret").
					Return(nil, token.ErrAlreadyUsed)
			},
			wantErr: account.ErrActivationFailed,
		},
		{
			name: "NoMatchingAccount",
			setupMock: func(m mocks) {
				m.tokens.EXPECT().
					Consume(gomock.Any(), token.KindActivation, "secret").
					Return(&token.Token{Email: "ghost@example.com"}, nil)
				m.repo.EXPECT().
					GetByEmail(gomock.Any(), "ghost@example.com").
					Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrActivationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{
				repo:   account.NewMockRepository(ctrl),
				tokens: account.NewMockTokenStore(ctrl),
			}
			tt.setupMock(m)

			svc := account.NewService(m.repo, m.tokens, account.NewMockEmailSender(ctrl), account.NewMockDispatcher(ctrl), "")
			err := svc.Activate(context.Background(), "secret")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_RequestPasswordReset(t *testing.T) {
	t.Run("UnknownEmailStillSucceeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := account.NewMockRepository(ctrl)
		tokens := account.NewMockTokenStore(ctrl)

		repo.EXPECT().
			GetByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, account.ErrNotFound)

		svc := account.NewService(repo, tokens, account.NewMockEmailSender(ctrl), account.NewMockDispatcher(ctrl), "")

		err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
		assert.NoError(t, err)
	})

	t.Run("KnownEmailGetsLink", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := account.NewMockRepository(ctrl)
		tokens := account.NewMockTokenStore(ctrl)
		mail := account.NewMockEmailSender(ctrl)
		dispatch := account.NewMockDispatcher(ctrl)

		repo.EXPECT().
			GetByEmail(gomock.Any(), "user@example.com").
			Return(&account.Account{ID: uuid.New()}, nil)
		tokens.EXPECT().
			Issue(gomock.Any(), token.KindPasswordReset, "user@example.com").
			Return(&token.Token{Secret: "reset-1"}, nil)
		dispatch.EXPECT().Go("send-password-reset", gomock.Any()).Do(runDispatched)
		mail.EXPECT().
			SendEmail(gomock.Any(), "user@example.com", "Reset your password", "Click: http://localhost:8080/reset-password?token=reset-1").
			Return(nil)

		svc := account.NewService(repo, tokens, mail, dispatch, "http://localhost:8080")

		err := svc.RequestPasswordReset(context.Background(), "user@example.com")
		assert.NoError(t, err)
	})
}

func TestService_ResetPassword(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := account.NewMockRepository(ctrl)
		tokens := account.NewMockTokenStore(ctrl)

		accountID := uuid.New()

		tokens.EXPECT().
			Consume(gomock.Any(), token.KindPasswordReset, "reset-1").
			Return(&token.Token{Email: "user@example.com"}, nil)
		repo.EXPECT().
			GetByEmail(gomock.Any(), "user@example.com").
			Return(&account.Account{ID: accountID}, nil)
		repo.EXPECT().
			UpdatePassword(gomock.Any(), accountID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, hash []byte) error {
				return bcrypt.CompareHashAndPassword(hash, []byte("new-password"))
			})

		svc := account.NewService(repo, tokens, account.NewMockEmailSender(ctrl), account.NewMockDispatcher(ctrl), "")

		err := svc.ResetPassword(context.Background(), "reset-1", "new-password")
		assert.NoError(t, err)
	})

	t.Run("ReusedToken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := account.NewMockRepository(ctrl)
		tokens := account.NewMockTokenStore(ctrl)

		tokens.EXPECT().
			Consume(gomock.Any(), token.KindPasswordReset, "reset-1").
			Return(nil, token.ErrAlreadyUsed)

		svc := account.NewService(repo, tokens, account.NewMockEmailSender(ctrl), account.NewMockDispatcher(ctrl), "")

		err := svc.ResetPassword(context.Background(), "reset-1", "new-password")
		assert.ErrorIs(t, err, token.ErrAlreadyUsed)
	})
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	type testCase struct {
		name      string
		password  string
		setupMock func(m *account.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			password: "s3cret",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					GetByEmail(gomock.Any(), "user@example.com").
					Return(&account.Account{PasswordHash: hash, Enabled: true}, nil)
			},
		},
		{
			name:     "WrongPassword",
			password: "nope",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					GetByEmail(gomock.Any(), "user@example.com").
					Return(&account.Account{PasswordHash: hash, Enabled: true}, nil)
			},
			wantErr: account.ErrBadCredentials,
		},
		{
			name:     "UnknownEmail",
			password: "s3cret",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					GetByEmail(gomock.Any(), "user@example.com").
					Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrBadCredentials,
		},
		{
			name:     "NotActivated",
			password: "s3cret",
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					GetByEmail(gomock.Any(), "user@example.com").
					Return(&account.Account{PasswordHash: hash, Enabled: false}, nil)
			},
			wantErr: account.ErrDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := account.NewService(repo, account.NewMockTokenStore(ctrl), account.NewMockEmailSender(ctrl), account.NewMockDispatcher(ctrl), "")
			got, err := svc.Authenticate(context.Background(), "user@example.com", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

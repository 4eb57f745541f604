package token_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/deallock/deallock/internal/token"
)

func TestStore_Issue(t *testing.T) {
	type testCase struct {
		name      string
		kind      token.Kind
		setupMock func(m *token.MockRepository)
		check     func(t *testing.T, tok *token.Token)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "OTPSecretIsSixDigits",
			kind: token.KindOTP,
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					CreateToken(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tok *token.Token) error {
						tok.ID = 1
						return nil
					})
			},
			check: func(t *testing.T, tok *token.Token) {
				assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), tok.Secret)
				assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.ExpiresAt, 5*time.Second)
			},
		},
		{
			name: "ActivationSecretIsOpaque",
			kind: token.KindActivation,
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					CreateToken(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			check: func(t *testing.T, tok *token.Token) {
				assert.Len(t, tok.Secret, 36)
				assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)
			},
		},
		{
			name: "RepoError",
			kind: token.KindPasswordReset,
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					CreateToken(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := token.NewMockRepository(ctrl)
			tt.setupMock(repo)

			store := token.NewStore(repo)
			tok, err := store.Issue(context.Background(), tt.kind, "user@example.com")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, "user@example.com", tok.Email)
			tt.check(t, tok)
		})
	}
}

func TestStore_VerifyOTP(t *testing.T) {
	type testCase struct {
		name      string
		code      string
		setupMock func(m *token.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			code: "123456",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{
						ID:        7,
						Secret:    "123456",
						ExpiresAt: time.Now().Add(time.Minute),
					}, nil)
				m.EXPECT().MarkVerified(gomock.Any(), int64(7)).Return(nil)
			},
		},
		{
			name: "Expired",
			code: "123456",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{
						ID:        7,
						Secret:    "123456",
						ExpiresAt: time.Now().Add(-time.Minute),
					}, nil)
			},
			wantErr: token.ErrExpired,
		},
		{
			name: "WrongCode",
			code: "000000",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{
						ID:        7,
						Secret:    "123456",
						ExpiresAt: time.Now().Add(time.Minute),
					}, nil)
			},
			wantErr: token.ErrMismatch,
		},
		{
			name: "NoTokenIssued",
			code: "123456",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(nil, token.ErrNotFound)
			},
			wantErr: token.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := token.NewMockRepository(ctrl)
			tt.setupMock(repo)

			store := token.NewStore(repo)
			err := store.VerifyOTP(context.Background(), "user@example.com", tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestStore_OTPVerified(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *token.MockRepository)
		want      bool
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Verified",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{Verified: true}, nil)
			},
			want: true,
		},
		{
			// An expired but verified row still counts; expiry was
			// checked when the code was presented.
			name: "VerifiedAndExpired",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{
						Verified:  true,
						ExpiresAt: time.Now().Add(-time.Hour),
					}, nil)
			},
			want: true,
		},
		{
			name: "NotVerified",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(&token.Token{Verified: false}, nil)
			},
			want: false,
		},
		{
			name: "NoToken",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(nil, token.ErrNotFound)
			},
			want: false,
		},
		{
			name: "RepoError",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					LatestByEmail(gomock.Any(), token.KindOTP, "user@example.com").
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := token.NewMockRepository(ctrl)
			tt.setupMock(repo)

			store := token.NewStore(repo)
			got, err := store.OTPVerified(context.Background(), "user@example.com")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Consume(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *token.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					GetBySecret(gomock.Any(), token.KindActivation, "secret").
					Return(&token.Token{
						ID:        3,
						Email:     "user@example.com",
						ExpiresAt: time.Now().Add(time.Hour),
					}, nil)
				m.EXPECT().MarkVerified(gomock.Any(), int64(3)).Return(nil)
			},
		},
		{
			name: "SecondUseRejected",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					GetBySecret(gomock.Any(), token.KindActivation, "secret").
					Return(&token.Token{
						ID:        3,
						Verified:  true,
						ExpiresAt: time.Now().Add(time.Hour),
					}, nil)
			},
			wantErr: token.ErrAlreadyUsed,
		},
		{
			name: "Expired",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					GetBySecret(gomock.Any(), token.KindActivation, "secret").
					Return(&token.Token{
						ID:        3,
						ExpiresAt: time.Now().Add(-time.Minute),
					}, nil)
			},
			wantErr: token.ErrExpired,
		},
		{
			name: "UnknownSecret",
			setupMock: func(m *token.MockRepository) {
				m.EXPECT().
					GetBySecret(gomock.Any(), token.KindActivation, "secret").
					Return(nil, token.ErrNotFound)
			},
			wantErr: token.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := token.NewMockRepository(ctrl)
			tt.setupMock(repo)

			store := token.NewStore(repo)
			tok, err := store.Consume(context.Background(), token.KindActivation, "secret")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tok)

				return
			}

			require.NoError(t, err)
			assert.True(t, tok.Verified)
			assert.Equal(t, "user@example.com", tok.Email)
		})
	}
}

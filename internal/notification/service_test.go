package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/notification"
)

func TestService_NotifyUser(t *testing.T) {
	acct := &account.Account{ID: uuid.New()}

	type testCase struct {
		name      string
		acct      *account.Account
		message   string
		setupMock func(m *notification.MockRepository)
	}

	tests := []testCase{
		{
			name:    "Success",
			acct:    acct,
			message: "Deal approved",
			setupMock: func(m *notification.MockRepository) {
				m.EXPECT().
					CreateNotification(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *notification.Notification) error {
						assert.Equal(t, acct.ID, n.AccountID)
						assert.Equal(t, "Deal approved", n.Message)
						return nil
					})
			},
		},
		{
			name:      "NilAccountIsNoop",
			acct:      nil,
			message:   "Deal approved",
			setupMock: func(m *notification.MockRepository) {},
		},
		{
			name:      "BlankMessageIsNoop",
			acct:      acct,
			message:   "   ",
			setupMock: func(m *notification.MockRepository) {},
		},
		{
			name:    "RepoFailureIsSwallowed",
			acct:    acct,
			message: "Deal approved",
			setupMock: func(m *notification.MockRepository) {
				m.EXPECT().
					CreateNotification(gomock.Any(), gomock.Any()).
					Return(errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := notification.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := notification.NewService(repo, notification.NewMockDirectory(ctrl))

			// NotifyUser never returns an error; the assertions live in
			// the mock expectations.
			svc.NotifyUser(context.Background(), tt.acct, tt.message)
		})
	}
}

func TestService_NotifyAdmins(t *testing.T) {
	t.Run("FansOutToCurrentRoster", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notification.NewMockRepository(ctrl)
		dir := notification.NewMockDirectory(ctrl)

		admins := []*account.Account{
			{ID: uuid.New(), Role: account.RoleAdmin},
			{ID: uuid.New(), Role: account.RoleAdmin},
		}

		dir.EXPECT().
			ListByRole(gomock.Any(), account.RoleAdmin).
			Return(admins, nil)
		repo.EXPECT().
			CreateNotification(gomock.Any(), gomock.Any()).
			Return(nil).
			Times(2)

		svc := notification.NewService(repo, dir)
		svc.NotifyAdmins(context.Background(), "New deal created")
	})

	t.Run("RosterLookupFailureIsSwallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := notification.NewMockRepository(ctrl)
		dir := notification.NewMockDirectory(ctrl)

		dir.EXPECT().
			ListByRole(gomock.Any(), account.RoleAdmin).
			Return(nil, errors.New("db down"))

		svc := notification.NewService(repo, dir)
		svc.NotifyAdmins(context.Background(), "New deal created")
	})

	t.Run("BlankMessageIsNoop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := notification.NewService(notification.NewMockRepository(ctrl), notification.NewMockDirectory(ctrl))
		svc.NotifyAdmins(context.Background(), "")
	})
}

func TestService_ListRecent(t *testing.T) {
	accountID := uuid.New()

	type testCase struct {
		name      string
		limit     int
		wantLimit int
	}

	tests := []testCase{
		{name: "ZeroUsesDefault", limit: 0, wantLimit: 6},
		{name: "NegativeUsesDefault", limit: -3, wantLimit: 6},
		{name: "WithinRange", limit: 12, wantLimit: 12},
		{name: "ClampedToMax", limit: 100, wantLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := notification.NewMockRepository(ctrl)
			repo.EXPECT().
				ListByAccount(gomock.Any(), accountID, tt.wantLimit).
				Return([]*notification.Notification{}, nil)

			svc := notification.NewService(repo, notification.NewMockDirectory(ctrl))

			_, err := svc.ListRecent(context.Background(), accountID, tt.limit)
			assert.NoError(t, err)
		})
	}
}

package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/http/auth"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)
	actor := account.Actor{ID: uuid.New(), Role: account.RoleAdmin}

	signed, err := m.Issue(actor)
	require.NoError(t, err)

	got, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, got.ID)
	assert.Equal(t, account.RoleAdmin, got.Role)
	assert.True(t, got.IsAdmin())
}

func TestManager_Parse_RejectsForeignToken(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	signed, err := issuer.Issue(account.Actor{ID: uuid.New(), Role: account.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_Parse_RejectsExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	signed, err := m.Issue(account.Actor{ID: uuid.New(), Role: account.RoleUser})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_Parse_RejectsGarbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

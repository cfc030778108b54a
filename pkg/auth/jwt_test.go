package auth

import (
	"testing"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndParse(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "learnlink")

	token, expiresAt, err := m.Issue(42, entity.RoleProfessor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Principal{ID: 42, Role: entity.RoleProfessor}, p)
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "learnlink")
	token, _, err := m.Issue(1, entity.RoleStudent)
	require.NoError(t, err)

	expired := NewJWTManager("secret", time.Hour, "learnlink")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Issue(1, entity.RoleStudent)
	require.NoError(t, err)

	foreign, _, err := NewJWTManager("secret", time.Hour, "someone-else").Issue(1, entity.RoleStudent)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             entity.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "learnlink"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		mgr   *JWTManager
	}{
		{name: "garbage", token: "not-a-token", mgr: m},
		{name: "wrong secret", token: token, mgr: NewJWTManager("other", time.Hour, "learnlink")},
		{name: "expired", token: oldToken, mgr: m},
		{name: "wrong issuer", token: foreign, mgr: m},
		{name: "unsigned", token: noneToken, mgr: m},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.Parse(tt.token)

			assert.ErrorIs(t, err, entity.ErrInvalidToken)
			assert.ErrorIs(t, err, entity.ErrUnauthenticated)
		})
	}
}

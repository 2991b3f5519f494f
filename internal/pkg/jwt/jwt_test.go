package jwt

import (
	"testing"
	"time"

	"tierraalta/internal/domain"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-secret", "tierraalta", time.Hour)

	token, err := svc.GenerateToken(7, "OPERATOR")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "OPERATOR", claims.Role)
	assert.Equal(t, "7", claims.Subject)

	p := claims.Principal()
	assert.Equal(t, domain.Principal{ID: 7, Role: domain.RoleOperator}, p)
	assert.True(t, p.Role.IsStaff())
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := New("test-secret", "tierraalta", time.Hour)

	other, err := New("other-secret", "tierraalta", time.Hour).GenerateToken(7, "USER")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := New("test-secret", "someone-else", time.Hour).GenerateToken(7, "USER")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := New("test-secret", "tierraalta", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(7, "USER")
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: 7, Role: "ADMIN"})
	unsigned, err := none.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

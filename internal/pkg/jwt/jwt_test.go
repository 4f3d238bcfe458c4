package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-secret", time.Hour)

	token, err := svc.GenerateToken(42, "ARTIST")
	require.NoError(t, err)

	assert.True(t, svc.Validate(token))

	sub, err := svc.SubjectOf(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub)

	role, err := svc.RoleOf(token)
	require.NoError(t, err)
	assert.Equal(t, "ARTIST", role)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, err := New("other-secret", time.Hour).GenerateToken(1, "USER")
	require.NoError(t, err)

	svc := New("test-secret", time.Hour)
	assert.False(t, svc.Validate(token))
	_, err = svc.SubjectOf(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := New("test-secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateToken(7, "USER")
	require.NoError(t, err)

	svc.now = time.Now
	assert.False(t, svc.Validate(token))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := New("test-secret", time.Hour)
	assert.False(t, svc.Validate("abc"))
	assert.False(t, svc.Validate(""))
}

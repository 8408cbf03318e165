package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw12345", 4)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, CompareHashAndPassword(hash, "pw12345"))
	assert.False(t, CompareHashAndPassword(hash, "pw123456"))
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	h1, err := HashPassword("pw12345", 4)
	require.NoError(t, err)
	h2, err := HashPassword("pw12345", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCompareHashAndPasswordRejectsGarbage(t *testing.T) {
	assert.False(t, CompareHashAndPassword("not-a-bcrypt-hash", "pw12345"))
	assert.False(t, CompareHashAndPassword("", "pw12345"))
}

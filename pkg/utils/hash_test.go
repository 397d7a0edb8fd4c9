package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(hash))
	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestIsBcryptHash(t *testing.T) {
	assert.False(t, IsBcryptHash("plain-password"))
	assert.False(t, IsBcryptHash("$2a$short"))
}

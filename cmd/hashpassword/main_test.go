package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hezo-be/webinar-backend/internal/auth"
	"github.com/hezo-be/webinar-backend/pkg/utils"
)

func TestRun_PrintsUsableAdminHash(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("letmein\n"), &out))

	hash := strings.TrimSpace(out.String())
	assert.True(t, utils.IsBcryptHash(hash))
	s := auth.NewSecret(hash)
	assert.True(t, s.Verify("letmein"))
	assert.False(t, s.Verify("letmein\n"))
}

func TestRun_EmptyPassword(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(strings.NewReader("\n"), &out))
	assert.Error(t, run(strings.NewReader(""), &out))
	assert.Zero(t, out.Len())
}

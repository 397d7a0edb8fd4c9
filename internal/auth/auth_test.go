package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hezo-be/webinar-backend/pkg/utils"
)

func TestSecret_Plain(t *testing.T) {
	s := NewSecret("letmein")
	assert.True(t, s.Configured())
	assert.True(t, s.Verify("letmein"))
	assert.False(t, s.Verify("letmein "))
	assert.False(t, s.Verify(""))
}

func TestSecret_Bcrypt(t *testing.T) {
	hash, err := utils.HashPassword("letmein")
	require.NoError(t, err)
	s := NewSecret(hash)
	assert.True(t, s.Verify("letmein"))
	assert.False(t, s.Verify(hash))
}

func TestSecret_Unconfigured(t *testing.T) {
	s := NewSecret("")
	assert.False(t, s.Configured())
	assert.False(t, s.Verify(""))
	assert.False(t, s.Verify("anything"))
}

func TestSessionService(t *testing.T) {
	svc := NewSessionService("signing-key", time.Hour)
	token, expiresAt, err := svc.Generate()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	assert.NoError(t, svc.Validate(token))

	other := NewSessionService("other-key", time.Hour)
	assert.ErrorIs(t, other.Validate(token), ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, svc.Validate(token), ErrInvalidToken)
}

func TestSessionService_RejectsForeignSubject(t *testing.T) {
	svc := NewSessionService("signing-key", time.Hour)
	claims := jwt.RegisteredClaims{Subject: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("signing-key"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Validate(signed), ErrInvalidToken)
}

func TestSessionService_Disabled(t *testing.T) {
	svc := NewSessionService("", time.Hour)
	_, _, err := svc.Generate()
	assert.Error(t, err)
	assert.Error(t, svc.Validate("x"))
}

func TestHandler_CreateSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewSecret("letmein"), NewSessionService("signing-key", time.Hour), zaptest.NewLogger(t))
	r := gin.New()
	r.POST("/session", h.CreateSession)

	do := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := do(`{"password":"letmein"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var got struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Token)

	assert.Equal(t, http.StatusUnauthorized, do(`{"password":"nope"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(`{}`).Code)
}

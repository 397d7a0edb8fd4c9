package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned to public viewers.
const (
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeNotFound           = "NOT_FOUND"
	CodeExpired            = "EXPIRED"
	CodeWebinarUnavailable = "WEBINAR_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Success is returned by delete endpoints.
type Success struct {
	Success bool `json:"success"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Deleted sends 200 {"success": true}.
func Deleted(c *gin.Context) {
	c.JSON(http.StatusOK, Success{Success: true})
}

// Fail sends an error body with the given status and optional code.
func Fail(c *gin.Context, status int, code, err string) {
	c.JSON(status, ErrorBody{Error: err, Code: code})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	Fail(c, http.StatusBadRequest, "", err)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	Fail(c, http.StatusUnauthorized, "", err)
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	Fail(c, http.StatusNotFound, "", err)
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	Fail(c, http.StatusServiceUnavailable, "", err)
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	Fail(c, http.StatusInternalServerError, "", err)
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").Status())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("x").Status())
	assert.Equal(t, http.StatusConflict, Conflict("x").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal(errors.New("boom"), "x").Status())
}

func TestAsThroughWrapping(t *testing.T) {
	base := Unauthorized("code is incorrect").WithCode(CodeOTPIncorrect)
	wrapped := fmt.Errorf("check otp: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeOTPIncorrect, got.Code)
	assert.True(t, IsKind(wrapped, KindUnauthorized))
	assert.True(t, HasCode(wrapped, CodeOTPIncorrect))
	assert.False(t, HasCode(errors.New("plain"), CodeOTPIncorrect))
}

func TestWithCodeDoesNotMutate(t *testing.T) {
	base := Unauthorized("invalid token")
	coded := base.WithCode(CodeJWTExpired)
	assert.Empty(t, base.Code)
	assert.Equal(t, CodeJWTExpired, coded.Code)
}

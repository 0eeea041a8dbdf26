package error

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	appErr := NotFound("branch not found")
	assert.Same(t, appErr, From(appErr))

	wrapped := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, wrapped.HttpCode())
	assert.Equal(t, INTERNAL_ERROR, wrapped.ErrorCode())
	assert.Equal(t, "boom", wrapped.ErrorDesc())
}

func TestErrorAccessors(t *testing.T) {
	appErr := DuplicateCode("code north-01 already exists")

	assert.Equal(t, http.StatusConflict, appErr.HttpCode())
	assert.Equal(t, DUPLICATE_CODE, appErr.ErrorCode())
	assert.Equal(t, "duplicate-code", appErr.Error())
	assert.Equal(t, "code north-01 already exists", appErr.ErrorDesc())
}

func TestHttpCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		code int
	}{
		{ValidateErr("x"), http.StatusBadRequest},
		{InvalidGeometry("x"), http.StatusBadRequest},
		{UnsupportedFormat("x"), http.StatusBadRequest},
		{CircularReference("x"), http.StatusBadRequest},
		{TokenExpired("x"), http.StatusUnauthorized},
		{InvalidToken("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{ParentNotFound("x"), http.StatusNotFound},
		{DependencyHeld("x"), http.StatusConflict},
		{DatabaseError("x"), http.StatusInternalServerError},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.HttpCode(), tc.err.Error())
	}
}

func TestOptionalErrorCode(t *testing.T) {
	assert.Equal(t, NOT_FOUND, NotFound("x").ErrorCode())
	assert.Equal(t, PARENT_NOT_FOUND, NotFound("x", PARENT_NOT_FOUND).ErrorCode())
}

func TestMapHttpStatusToError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, MapHttpStatusToError(http.StatusConflict, "x").HttpCode())
	// 未列舉的狀態碼折算為 500
	assert.Equal(t, http.StatusInternalServerError, MapHttpStatusToError(http.StatusTeapot, "x").HttpCode())
}

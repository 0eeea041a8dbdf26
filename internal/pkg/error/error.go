package error

import "net/http"

type Error struct {
	httpCode  int
	errorCode int
	errorMsg  string
	errorDesc string
}

func New(httpCode, errorCode int, errorMsg string, errorDesc string) *Error {
	return &Error{
		httpCode:  httpCode,
		errorCode: errorCode,
		errorMsg:  errorMsg,
		errorDesc: errorDesc,
	}
}

func From(err error) *Error {
	if appErr, ok := err.(*Error); ok {
		return appErr
	}
	return InternalServer(err.Error())
}

// ✅ 用戶端錯誤 (400 系列)
func ValidateErr(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_BODY, "bad-request/body", errorDesc)
}

func ValidatePathParamsErr(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_PARAMS, "bad-request/params", errorDesc)
}

func BadRequest(errorDesc string, errorCode ...int) *Error {
	errCode := BAD_REQUEST_BODY
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusBadRequest, errCode, "bad-request", errorDesc)
}

func BadRequestParams(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_PARAMS, "bad-request-params", errorDesc)
}

func BadRequestHeaders(errorDesc string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_HEADERS, "bad-request-headers", errorDesc)
}

// 階層完整性錯誤
func CircularReference(errorDesc string) *Error {
	return New(http.StatusBadRequest, CIRCULAR_REFERENCE, "circular-reference", errorDesc)
}

func InvalidParent(errorDesc string) *Error {
	return New(http.StatusBadRequest, INVALID_PARENT, "invalid-parent", errorDesc)
}

// 地理資料錯誤
func InvalidGeometry(errorDesc string) *Error {
	return New(http.StatusBadRequest, INVALID_GEOMETRY, "invalid-geometry", errorDesc)
}

func UnsupportedFormat(errorDesc string) *Error {
	return New(http.StatusBadRequest, UNSUPPORTED_FORMAT, "unsupported-format", errorDesc)
}

// ✅ 權限錯誤 (401, 403)
func Unauthorized(errorDesc string, errorCode ...int) *Error {
	errCode := UNAUTHORIZED
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusUnauthorized, errCode, "unauthorized", errorDesc)
}

func TokenExpired(errorDesc string) *Error {
	return New(http.StatusUnauthorized, TOKEN_EXPIRED, "token-expired", errorDesc)
}

func InvalidToken(errorDesc string) *Error {
	return New(http.StatusUnauthorized, INVALID_TOKEN, "invalid-token", errorDesc)
}

func Forbidden(errorDesc string, errorCode ...int) *Error {
	errCode := FORBIDDEN
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusForbidden, errCode, "forbidden", errorDesc)
}

// ✅ 資源找不到 (404)
func NotFound(errorDesc string, errorCode ...int) *Error {
	errCode := NOT_FOUND
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusNotFound, errCode, "not-found", errorDesc)
}

func ParentNotFound(errorDesc string) *Error {
	return New(http.StatusNotFound, PARENT_NOT_FOUND, "parent-not-found", errorDesc)
}

// ✅ 資源衝突 (409)
func Conflict(errorDesc string, errorCode ...int) *Error {
	errCode := CONFLICT
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusConflict, errCode, "conflict", errorDesc)
}

func DuplicateCode(errorDesc string) *Error {
	return New(http.StatusConflict, DUPLICATE_CODE, "duplicate-code", errorDesc)
}

func DependencyHeld(errorDesc string) *Error {
	return New(http.StatusConflict, DEPENDENCY_HELD, "dependency-held", errorDesc)
}

// ✅ 伺服器內部錯誤 (500 系列)
func InternalServer(errorDesc string) *Error {
	return New(http.StatusInternalServerError, INTERNAL_ERROR, "internal-server-error", errorDesc)
}

func DatabaseError(errorDesc string) *Error {
	return New(http.StatusInternalServerError, DATABASE_ERROR, "database-error", errorDesc)
}

func ServiceUnavailable(errorDesc string) *Error {
	return New(http.StatusServiceUnavailable, SERVICE_UNAVAILABLE, "service-unavailable", errorDesc)
}

func (e *Error) HttpCode() int {
	return e.httpCode
}

func (e *Error) ErrorCode() int {
	return e.errorCode
}

func (e *Error) ErrorDesc() string {
	return e.errorDesc
}

func (e *Error) Error() string {
	return e.errorMsg
}

func MapHttpStatusToError(status int, desc string) *Error {
	switch status {
	case http.StatusBadRequest:
		return BadRequest(desc)
	case http.StatusUnauthorized:
		return Unauthorized(desc)
	case http.StatusForbidden:
		return Forbidden(desc)
	case http.StatusNotFound:
		return NotFound(desc)
	case http.StatusConflict:
		return Conflict(desc)
	case http.StatusInternalServerError:
		return InternalServer(desc)
	case http.StatusServiceUnavailable:
		return ServiceUnavailable(desc)
	default:
		return InternalServer(desc)
	}
}

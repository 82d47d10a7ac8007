package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeInvalidUserID      = "INVALID_USER_ID"

	CodeUnauthorized   = "UNAUTHORIZED"
	CodeMissingSession = "MISSING_SESSION"
	CodeForbiddenUser  = "FORBIDDEN_USER"

	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTokenNotFound      = "TOKEN_NOT_FOUND"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"

	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeCooldownActive  = "COOLDOWN_ACTIVE"

	CodeInternalError = "INTERNAL_ERROR"
)

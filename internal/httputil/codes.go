package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeCooldownActive     = "COOLDOWN_ACTIVE"

	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidGoogleToken = "INVALID_GOOGLE_TOKEN"
	CodeGoogleDisabled     = "GOOGLE_SIGNIN_DISABLED"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"

	CodeMissingAuth       = "MISSING_AUTH"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeUserNotFound      = "USER_NOT_FOUND"

	CodeMovieNotFound = "MOVIE_NOT_FOUND"
	CodeForbidden     = "FORBIDDEN"
	CodeInvalidImage  = "INVALID_IMAGE"
	CodeImageTooLarge = "IMAGE_TOO_LARGE"
	CodeInvalidID     = "INVALID_ID"
	CodeNotFound      = "NOT_FOUND"
)

package dto

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidation           = "ValidationError"
	CodeDuplicateAccount     = "DuplicateAccount"
	CodeInvalidOrExpiredCode = "InvalidOrExpiredCode"
	CodeNoSuchAccount        = "NoSuchAccount"
	CodeEmailNotVerified     = "EmailNotVerified"
	CodeInvalidCredentials   = "InvalidCredentials"
	CodeMissingToken         = "MissingToken"
	CodeInvalidToken         = "InvalidToken"
	CodeForbidden            = "Forbidden"
	CodeNotFound             = "NotFound"
	CodeConflict             = "Conflict"
	CodeNotificationFailure  = "NotificationFailure"
	CodeRateLimited          = "RateLimited"
	CodeServerError          = "ServerError"
)

type ErrorResponse struct {
	Error bool   `json:"error"`
	Code  string `json:"code"`
	Msg   string `json:"msg"`
}

func NewError(code, msg string) ErrorResponse {
	return ErrorResponse{Error: true, Code: code, Msg: msg}
}

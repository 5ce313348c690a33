package qc

import "net/http"

// Machine codes for the QC failure taxonomy. Each maps to exactly one
// HTTP status on the wire.
const (
	CodeMissingGoodsURL      = "missing_goods_url"
	CodeInvalidGoodsURL      = "invalid_goods_url"
	CodeInvalidToken         = "invalid_token"
	CodeNoImagesFound        = "no_images_found"
	CodeAPIError             = "api_error"
	CodeUnexpectedStatus     = "unexpected_status"
	CodeInvalidDataStructure = "invalid_data_structure"
	CodeInternalServerError  = "internal_server_error"
)

// Error carries the human message, the machine code, and the HTTP status
// the API layer should answer with. Nothing is silently swallowed past
// the retrieval boundary.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func errMissingGoodsURL() *Error {
	return &Error{Code: CodeMissingGoodsURL, Message: "Goods URL is required", Status: http.StatusBadRequest}
}

func errInvalidGoodsURL() *Error {
	return &Error{Code: CodeInvalidGoodsURL, Message: "Invalid goods URL", Status: http.StatusBadRequest}
}

func errInvalidToken(message string) *Error {
	return &Error{Code: CodeInvalidToken, Message: message, Status: http.StatusBadRequest}
}

func errNoImagesFound() *Error {
	return &Error{Code: CodeNoImagesFound, Message: "No QC images found", Status: http.StatusNotFound}
}

func errAPIError(message string, status int) *Error {
	if message == "" {
		message = "API Error"
	}
	return &Error{Code: CodeAPIError, Message: message, Status: status}
}

func errUnexpectedStatus() *Error {
	return &Error{Code: CodeUnexpectedStatus, Message: "API returned unexpected response status", Status: http.StatusInternalServerError}
}

func errInvalidDataStructure() *Error {
	return &Error{Code: CodeInvalidDataStructure, Message: "API returned invalid data structure", Status: http.StatusInternalServerError}
}

func errInternal(message string) *Error {
	return &Error{Code: CodeInternalServerError, Message: "Internal server error: " + message, Status: http.StatusInternalServerError}
}

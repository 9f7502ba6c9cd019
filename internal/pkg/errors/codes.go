package errors

import "net/http"

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1003
	ErrServiceUnavail = 1004

	// Bedrock knowledge base errors (2000-2999)
	ErrBedrockUnavailable = 2000
	ErrKBNotConfigured    = 2001
	ErrKBNotFound         = 2002
	ErrKBListFailed       = 2003
	ErrKBInfoFailed       = 2004
	ErrSearchFailed       = 2005
	ErrSummarizeFailed    = 2006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail: {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Bedrock knowledge base errors
	ErrBedrockUnavailable: {ErrBedrockUnavailable, http.StatusServiceUnavailable, "Bedrock client not available"},
	ErrKBNotConfigured:    {ErrKBNotConfigured, http.StatusBadRequest, "Knowledge base ID not configured"},
	ErrKBNotFound:         {ErrKBNotFound, http.StatusNotFound, "Knowledge base not found"},
	ErrKBListFailed:       {ErrKBListFailed, http.StatusInternalServerError, "Failed to list knowledge bases"},
	ErrKBInfoFailed:       {ErrKBInfoFailed, http.StatusInternalServerError, "Failed to get knowledge base info"},
	ErrSearchFailed:       {ErrSearchFailed, http.StatusInternalServerError, "Search failed"},
	ErrSummarizeFailed:    {ErrSummarizeFailed, http.StatusInternalServerError, "Summarization failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

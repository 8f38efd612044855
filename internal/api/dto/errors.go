package dto

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Projects that made a weight override invalid, keyed by problem
	// ("missing", "unexpected", "negative").
	Projects map[string][]string `json:"projects,omitempty"`
}

const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
)

// NotFoundError reports an unknown service ID.
func NotFoundError(message string) APIError {
	return APIError{Code: ErrCodeNotFound, Message: message}
}

// BadRequestError reports a malformed request.
func BadRequestError(message string) APIError {
	return APIError{Code: ErrCodeBadRequest, Message: message}
}

// InternalError hides the cause of a failure from the client.
func InternalError() APIError {
	return APIError{Code: ErrCodeInternalError, Message: "an internal error occurred"}
}

// ValidationError reports rejected feedback or weights. Empty project lists
// are dropped.
func ValidationError(message string, missing, unexpected, negative []string) APIError {
	e := APIError{Code: ErrCodeValidation, Message: message}
	for key, ids := range map[string][]string{
		"missing":    missing,
		"unexpected": unexpected,
		"negative":   negative,
	} {
		if len(ids) == 0 {
			continue
		}
		if e.Projects == nil {
			e.Projects = make(map[string][]string, 3)
		}
		e.Projects[key] = ids
	}
	return e
}

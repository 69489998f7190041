package service

// RequestError is an expected business-rule failure carrying the HTTP status
// the handler should answer with. Anything else bubbling out of a service is
// treated as a server error.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(message string) *RequestError {
	return &RequestError{Status: 400, Message: message}
}

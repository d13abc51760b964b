package dto

// ===== Common responses =====

type APIError struct {
	Error string `json:"error"`
}

// Envelope is the success body written by utils.ResponseSuccess.
type Envelope[T any] struct {
	Data T `json:"data"`
}

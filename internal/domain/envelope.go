package domain

// Envelope is the uniform response wrapper returned by every API endpoint:
// a success flag, a human-readable message, and the payload (null on error
// and on delete).
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

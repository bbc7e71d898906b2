package vbus

import (
	"errors"
	"fmt"
)

var (
	// ErrBusUnavailable means the virtual bus could not be acquired at all:
	// no server listening, handshake rejected, or attach refused. Fatal at
	// startup.
	ErrBusUnavailable = errors.New("virtual bus unavailable")

	// ErrBusGone means an established bus connection died mid-stream.
	// Not fatal; callers reconnect with backoff.
	ErrBusGone = errors.New("virtual bus disconnected")

	// ErrSubmitRejected means the bus refused a single otherwise-valid
	// report. Transient: count it and continue with the next cycle.
	ErrSubmitRejected = errors.New("report submission rejected")
)

// ApiError is the bus server's problem+json error reply (RFC 7807 shape).
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e *ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// AttachReply is the bus server's response to a successful attach request.
type AttachReply struct {
	BusID uint32 `json:"busId"`
	DevID string `json:"devId"`
	Vid   string `json:"vid"`
	Pid   string `json:"pid"`
	Type  string `json:"type"`
}

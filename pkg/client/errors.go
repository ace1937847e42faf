package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sternrassler/canvaspal/pkg/ratelimit"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (bad token, unknown course, ...).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents Canvas throttling (429, or 403 with an
	// exhausted X-Rate-Limit-Remaining bucket).
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ErrUnexpectedStatus is wrapped by APIError for any non-200 page response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// maxErrorBody bounds how much of an error response body ends up in a message.
const maxErrorBody = 512

// APIError represents a failed Canvas request with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Canvas %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("Canvas %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyResponse categorizes a non-success response.
// Returns "" for 2xx and 3xx responses.
func ClassifyResponse(resp *http.Response) ErrorClass {
	if resp == nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode == http.StatusForbidden && quotaExhausted(resp.Header):
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

func quotaExhausted(h http.Header) bool {
	remain, err := strconv.ParseFloat(strings.TrimSpace(h.Get(ratelimit.HeaderRemaining)), 64)
	return err == nil && remain <= 0
}

// NewStatusError builds an APIError from a response that was not 200 OK.
// It drains and closes the response body.
func NewStatusError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}

	var u string
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.String()
	}

	class := ClassifyResponse(resp)
	if class == "" {
		class = ErrorClassClient
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: class,
		Message:    msg,
		URL:        u,
		Err:        ErrUnexpectedStatus,
	}
}

package elia

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/elia-parkbot/internal/retry"
)

// Kind classifies an API failure so callers can decide whether retrying
// makes sense.
type Kind string

const (
	// KindAuth means the bearer token was rejected.
	KindAuth Kind = "auth"
	// KindPolicy means the backend refused the request as a rule, for
	// example booking outside the allowed lead window. Retrying cannot
	// change the answer.
	KindPolicy Kind = "policy"
	// KindNotFound means the floor or space does not exist.
	KindNotFound Kind = "not_found"
	// KindTransient covers rate limits and server-side trouble.
	KindTransient Kind = "transient"
	// KindUnknown is everything else.
	KindUnknown Kind = "unknown"
)

// APIError is a failed GraphQL call with enough context to classify it.
type APIError struct {
	Kind      Kind
	Status    int
	Operation string
	Message   string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("elia %s: http %d: %s", e.Operation, e.Status, e.Message)
	}
	return fmt.Sprintf("elia %s: %s", e.Operation, e.Message)
}

// RetryCategory maps the failure onto the retry taxonomy. Policy refusals
// cannot be fixed by retrying, so they land in the scheduling category.
func (e *APIError) RetryCategory() retry.Category {
	switch e.Kind {
	case KindPolicy:
		return retry.CategoryScheduling
	case KindAuth:
		return retry.CategoryAuth
	case KindTransient:
		return retry.CategoryNetwork
	case KindNotFound:
		return retry.CategoryScheduling
	default:
		return retry.CategoryBooking
	}
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == k
}

func classifyStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 429 || status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// classifyMessage maps GraphQL-level error strings. The backend responds
// 200 even on refusals, so the message text is all there is to go on.
func classifyMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "unauthenticated"), strings.Contains(m, "unauthorized"),
		strings.Contains(m, "token"):
		return KindAuth
	case strings.Contains(m, "not allowed"), strings.Contains(m, "advance"),
		strings.Contains(m, "window"), strings.Contains(m, "policy"):
		return KindPolicy
	case strings.Contains(m, "not found"):
		return KindNotFound
	default:
		return KindUnknown
	}
}

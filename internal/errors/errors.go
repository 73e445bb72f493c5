package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrConfigNotFound      = errors.New("configuration file not found")
	ErrEmptyURL            = errors.New("empty URL")
	ErrInvalidURL          = errors.New("invalid URL format")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrFileTooLarge        = errors.New("file size exceeds limit")
	ErrBusy                = errors.New("submission already in progress")
	ErrEntryNotFound       = errors.New("history entry not found")
)

// Kind classifies a submission failure.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindNetwork
	KindNotFound
	KindRestricted
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindRestricted:
		return "restricted"
	case KindLocal:
		return "local"
	default:
		return "server"
	}
}

// DefaultServerMessage is used when a failed response carries no message.
const DefaultServerMessage = "Download failed"

// Error is a classified failure. Message is what the backend (or the local
// step) reported; Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation wraps a user-correctable input error.
func Validation(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// Local wraps a failure of a local step (temp file, bucket write).
func Local(err error) *Error {
	return &Error{Kind: KindLocal, Message: err.Error(), Err: err}
}

// KindOf returns the kind carried by err, or KindServer for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// FromTransport classifies an error returned by the HTTP round trip itself.
// Anything that prevented a response from arriving is a network failure.
func FromTransport(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// FromResponse classifies a non-success response. A structured code wins,
// then the status, then the coarse message heuristic.
func FromResponse(status int, code, message string) *Error {
	e := &Error{Kind: KindServer, Status: status, Message: message}

	if k, ok := kindFromCode(code); ok {
		e.Kind = k
		return e
	}

	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
		return e
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindRestricted
		return e
	}

	e.Kind = kindFromMessage(message)
	return e
}

func kindFromCode(code string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "not_found", "unavailable":
		return KindNotFound, true
	case "restricted", "private", "forbidden":
		return KindRestricted, true
	case "network", "unreachable":
		return KindNetwork, true
	default:
		return KindServer, false
	}
}

// kindFromMessage checks substrings in a fixed order; the first match wins.
func kindFromMessage(message string) Kind {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "fetch"):
		return KindNetwork
	case strings.Contains(m, "not found"):
		return KindNotFound
	case strings.Contains(m, "private"):
		return KindRestricted
	default:
		return KindServer
	}
}

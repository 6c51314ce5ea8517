package fetch

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNetwork Kind = iota
	KindHTTPStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *FetchError.
var (
	ErrNetwork    = errors.New("network error")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrDecode     = errors.New("malformed response")
)

// ErrSuperseded is returned by Refresh when a newer refresh or Close
// revoked the result before it could be applied.
var ErrSuperseded = errors.New("fetch superseded")

// ErrClosed is returned by Refresh after Close.
var ErrClosed = errors.New("tracker closed")

// FetchError describes why a source could not produce a notice list.
type FetchError struct {
	Kind   Kind
	Code   int
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	prefix := e.Source
	if prefix == "" {
		prefix = "fetch"
	}
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s: HTTP error: %d", prefix, e.Code)
	case KindDecode:
		return fmt.Sprintf("%s: decoding response: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: fetching notices: %v", prefix, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrHTTPStatus:
		return e.Kind == KindHTTPStatus
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

func networkError(source string, err error) error {
	return &FetchError{Kind: KindNetwork, Source: source, Err: err}
}

func statusError(source string, code int) error {
	return &FetchError{Kind: KindHTTPStatus, Code: code, Source: source}
}

func decodeError(source string, err error) error {
	return &FetchError{Kind: KindDecode, Source: source, Err: err}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind == KindHTTPStatus {
		return fe.Code
	}
	return 0
}

package cms

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind categorises a CMS failure.
type Kind int

const (
	// KindUnknown is an unrecognised failure passed through unchanged.
	KindUnknown Kind = iota
	KindNotFound
	KindServer
	KindUnavailable
	KindStatus
	KindConnect
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindUnavailable:
		return "unavailable"
	case KindStatus:
		return "status"
	case KindConnect:
		return "connect"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// User-facing messages for each failure kind.
const (
	MsgNotFound    = "Content not found"
	MsgServer      = "Something went wrong. Please try again later."
	MsgUnavailable = "Service temporarily unavailable. Please try again later."
	MsgConnect     = "Unable to connect. Please check your internet connection."
	MsgDecode      = "Received an unexpected response from the content service."
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrServer      = &Error{Kind: KindServer}
	ErrUnavailable = &Error{Kind: KindUnavailable}
	ErrStatus      = &Error{Kind: KindStatus}
	ErrConnect     = &Error{Kind: KindConnect}
	ErrDecode      = &Error{Kind: KindDecode}
)

// Error is the single error type returned by the CMS client.
// Message is safe to show to visitors; Err holds the underlying cause.
type Error struct {
	Kind    Kind
	Status  int
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindUnknown {
		return fmt.Sprintf("cms %s: %s: %v", e.Path, e.Message, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("cms %s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so callers can write
// errors.Is(err, cms.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Message returns the user-facing message for err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// statusError maps a non-2xx response code to an *Error.
func statusError(path string, code int) *Error {
	e := &Error{Path: path, Status: code}
	switch code {
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, MsgNotFound
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, MsgServer
	case http.StatusServiceUnavailable:
		e.Kind, e.Message = KindUnavailable, MsgUnavailable
	default:
		e.Kind, e.Message = KindStatus, fmt.Sprintf("API error: %d", code)
	}
	return e
}

func decodeError(path string, err error) *Error {
	return &Error{Kind: KindDecode, Path: path, Message: MsgDecode, Err: err}
}

// transportError classifies an error returned by http.Client.Do. Network
// failures become KindConnect; anything else is wrapped as KindUnknown with
// its own text so it reaches the caller unchanged.
func transportError(path string, err error) *Error {
	var (
		urlErr *url.Error
		netErr net.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnknown, Path: path, Message: err.Error(), Err: err}
	case errors.As(err, &opErr), errors.As(err, &dnsErr), errors.As(err, &netErr):
		return &Error{Kind: KindConnect, Path: path, Message: MsgConnect, Err: err}
	case errors.As(err, &urlErr):
		// EOF and friends from a dropped connection surface as bare *url.Error.
		return &Error{Kind: KindConnect, Path: path, Message: MsgConnect, Err: err}
	default:
		return &Error{Kind: KindUnknown, Path: path, Message: err.Error(), Err: err}
	}
}

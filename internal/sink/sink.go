package sink

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/bara-directory/seeder/internal/entity"
)

// Sink writes one record at a time to a destination.
type Sink[T any] interface {
	Name() string
	Write(ctx context.Context, record T) error
}

// Mode selects plain insert or idempotent upsert.
type Mode string

const (
	ModeInsert Mode = "insert"
	ModeUpsert Mode = "upsert"
)

// ParseMode maps a flag value to a Mode.
func ParseMode(upsert bool) Mode {
	if upsert {
		return ModeUpsert
	}
	return ModeInsert
}

// Func adapts a function to Sink.
type Func[T any] struct {
	Label string
	Fn    func(ctx context.Context, record T) error
}

func (f Func[T]) Name() string { return f.Label }

func (f Func[T]) Write(ctx context.Context, record T) error { return f.Fn(ctx, record) }

// Temporary is implemented by errors that are worth retrying.
type Temporary interface {
	Temporary() bool
}

// IsTransient reports whether err is a network failure or a destination error
// flagged as temporary. Context cancellation is never transient.
//
// Network errors are checked first: *url.Error and *net.OpError carry their
// own Temporary method, which reports false for refused connections.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if isNetworkFailure(err) {
		return true
	}
	var tmp Temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

func isNetworkFailure(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// BusinessWriter persists resolved business rows.
type BusinessWriter interface {
	WriteBusiness(ctx context.Context, row entity.BusinessRow) error
}

// EventWriter persists resolved event rows.
type EventWriter interface {
	WriteEvent(ctx context.Context, row entity.EventRow) error
}

// Businesses wraps w as a named business row sink.
func Businesses(name string, w BusinessWriter) Sink[entity.BusinessRow] {
	return Func[entity.BusinessRow]{Label: name, Fn: w.WriteBusiness}
}

// Events wraps w as a named event row sink.
func Events(name string, w EventWriter) Sink[entity.EventRow] {
	return Func[entity.EventRow]{Label: name, Fn: w.WriteEvent}
}

package catalog

import (
	"errors"
	"fmt"
)

var ErrEmptyQuery = errors.New("search query is empty")

// Kind classifies a TransportError.
type Kind int

const (
	KindUnreachable Kind = iota + 1
	KindStatus
	KindDecode
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// TransportError is the only failure the collaborator client reports for a
// request that was actually attempted.
type TransportError struct {
	Op         string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a TransportError of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == kind
}

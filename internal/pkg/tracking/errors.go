package tracking

import (
	"errors"
	"fmt"
)

// Kind classifies why a link was rejected.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindWrongHost
	KindWrongPath
	KindIncompleteLink
	KindNonNumericField
	KindInvalidBetInput
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindWrongHost:
		return "wrong_host"
	case KindWrongPath:
		return "wrong_path"
	case KindIncompleteLink:
		return "incomplete_link"
	case KindNonNumericField:
		return "non_numeric_field"
	case KindInvalidBetInput:
		return "invalid_bet_input"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *ParseError matches the sentinel of its Kind.
var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrWrongHost       = errors.New("wrong host")
	ErrWrongPath       = errors.New("wrong path")
	ErrIncompleteLink  = errors.New("incomplete link")
	ErrNonNumericField = errors.New("non-numeric field")
	ErrInvalidBetInput = errors.New("invalid bet input")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindWrongHost:
		return ErrWrongHost
	case KindWrongPath:
		return ErrWrongPath
	case KindIncompleteLink:
		return ErrIncompleteLink
	case KindNonNumericField:
		return ErrNonNumericField
	case KindInvalidBetInput:
		return ErrInvalidBetInput
	default:
		return nil
	}
}

// ParseError is returned by ParseAffiliate and ParseBet.
type ParseError struct {
	Kind  Kind
	Field string // set for KindNonNumericField
	Err   error  // underlying url.Parse error, if any
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 if err is not a *ParseError.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func newError(kind Kind) error {
	return &ParseError{Kind: kind}
}

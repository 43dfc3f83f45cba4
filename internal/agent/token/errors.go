package token

import "errors"

// Failure categorises why a token could not be decoded.
type Failure int

const (
	Malformed Failure = iota + 1
	IntegrityFailed
	Expired
)

func (f Failure) String() string {
	switch f {
	case Malformed:
		return "malformed"
	case IntegrityFailed:
		return "integrity_failed"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// DecodeError is returned by Codec.Decode. Callers treat every failure as a
// fresh conversation and never show it to the user.
type DecodeError struct {
	Failure Failure
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "session token " + e.Failure.String()
	}
	return "session token " + e.Failure.String() + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FailureOf returns the failure category of err, or 0 if err is not a DecodeError.
func FailureOf(err error) Failure {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Failure
	}
	return 0
}

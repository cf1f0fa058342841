package wordstore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates an empty or malformed word or record.
	ErrInvalidInput = errors.New("wordstore: invalid input")
	// ErrDuplicateKey indicates the canonical word is already stored.
	ErrDuplicateKey = errors.New("wordstore: already exists")
	// ErrNotFound indicates the canonical word is not stored.
	ErrNotFound = errors.New("wordstore: not found")
	// ErrIO indicates a filesystem or database failure.
	ErrIO = errors.New("wordstore: i/o failure")
	// ErrClosed indicates the store was used after Close.
	ErrClosed = errors.New("wordstore: store closed")
)

// Error carries the failed operation and word.
//
//	var werr *wordstore.Error
//	if errors.As(err, &werr) {
//		log.Printf("%s %q failed: %v", werr.Op, werr.Word, werr.Err)
//	}
type Error struct {
	Op   string
	Word string
	Err  error
}

func (e *Error) Error() string {
	if e.Word != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Word, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IOError wraps a low-level failure so it matches both ErrIO and cause.
func IOError(op, word string, cause error) error {
	return &Error{Op: op, Word: word, Err: &ioError{cause: cause}}
}

type ioError struct {
	cause error
}

func (e *ioError) Error() string { return e.cause.Error() }

func (e *ioError) Is(target error) bool { return target == ErrIO }

func (e *ioError) Unwrap() error { return e.cause }

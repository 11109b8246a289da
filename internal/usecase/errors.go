package usecase

import "errors"

var ErrStoreClosed = errors.New("store is closed")

// ErrStaleMirror is returned by a KeyValueStore when another process wrote
// to it after this one last read. The Store reloads and drops its change.
var ErrStaleMirror = errors.New("store was changed by another process")

// DomainError is a rule violation the caller can fix by changing the request.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps failures of the persistence mirror.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// NotPersisted reports whether err means the change was applied in memory
// but the mirror write failed. Retrying such a create makes a duplicate.
func NotPersisted(err error) bool {
	return IsTechnicalError(err) && !errors.Is(err, ErrStaleMirror)
}

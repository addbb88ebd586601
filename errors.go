package configtypes

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey reports a type key with no entry in the snapshot. It points
	// at snapshot corruption and is surfaced to the caller, never recovered.
	ErrUnknownKey = errors.New("configtypes: unknown config type key")
	// ErrUnreachableKind reports a TypeMeta whose kind matches no descriptor
	// variant. Resolution aborts instead of defaulting to another variant.
	ErrUnreachableKind = errors.New("configtypes: unreachable config type kind")
	// ErrNilSnapshot reports a session opened without a snapshot.
	ErrNilSnapshot = errors.New("configtypes: snapshot is nil")
)

// ResolutionError captures the key (and kind, once known) that failed to
// resolve alongside the originating error.
type ResolutionError struct {
	Key  string
	Kind Kind
	Err  error
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind != "" {
		return fmt.Sprintf("configtypes: resolve key=%q kind=%s: %v", e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("configtypes: resolve key=%q: %v", e.Key, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UnknownKeyError builds the error snapshot implementations return for a
// missing key.
func UnknownKeyError(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func wrapResolutionError(key string, kind Kind, err error) error {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return err
	}

	return &ResolutionError{
		Key:  key,
		Kind: kind,
		Err:  err,
	}
}

package hxel

import "errors"

// Sentinel errors for registry and element operations.
var (
	ErrClassDefined     = errors.New("hxel: class already defined")
	ErrNotDefined       = errors.New("hxel: custom element not defined")
	ErrDuplicateTag     = errors.New("hxel: tag already defined")
	ErrInvalidTag       = errors.New("hxel: invalid custom element name")
	ErrTaskFailed       = errors.New("hxel: deferred work failed")
	ErrObserverPanic    = errors.New("hxel: observer panicked")
	ErrDecryptFailed    = errors.New("hxel: state decryption failed")
	ErrSignatureInvalid = errors.New("hxel: signature verification failed")
	ErrInvalidFormat    = errors.New("hxel: invalid state format")
)

// IsNotDefined checks if err reports a missing custom element definition.
func IsNotDefined(err error) bool {
	return errors.Is(err, ErrNotDefined)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

package pib

import "fmt"

// Error kinds from spec.md §7's error-handling table. Each is a small
// concrete type implementing error so callers can errors.As/errors.Is
// through %w wrapping at every layer boundary.

// ErrBadShape is returned when a name fails the shape spec.md §3 requires
// for the operation attempting to use it (root cert, user cert, or a
// six-component request name).
type ErrBadShape struct {
	Name string
	Want string
}

func (e ErrBadShape) Error() string {
	return fmt.Sprintf("bad name shape: %q, expected %s", e.Name, e.Want)
}

// ErrNoDefault is returned by getDefaultX when the default column is null.
type ErrNoDefault struct {
	Entity string
	Key    string
}

func (e ErrNoDefault) Error() string {
	return fmt.Sprintf("no default %s set for %s", e.Entity, e.Key)
}

// ErrDbOpen is returned when PibDb's embedded store cannot be opened.
type ErrDbOpen struct {
	Path string
	Err  error
}

func (e ErrDbOpen) Error() string {
	return fmt.Sprintf("opening PIB database at %s: %v", e.Path, e.Err)
}

func (e ErrDbOpen) Unwrap() error { return e.Err }

// ErrOwnerMismatch is returned by Pib's constructor when the store already
// records a different owner.
type ErrOwnerMismatch struct {
	Stored, Requested string
}

func (e ErrOwnerMismatch) Error() string {
	return fmt.Sprintf("PIB owner mismatch: stored %q, requested %q", e.Stored, e.Requested)
}

// ErrTpmMismatch is returned by Pib's constructor when the store already
// records a different TPM locator.
type ErrTpmMismatch struct {
	Stored, Requested string
}

func (e ErrTpmMismatch) Error() string {
	return fmt.Sprintf("TPM locator mismatch: stored %q, requested %q", e.Stored, e.Requested)
}

// ErrValidationFailed wraps the rejection taxonomy from spec.md §4.2.
type ErrValidationFailed struct {
	Reason string
}

func (e ErrValidationFailed) Error() string {
	return e.Reason
}

// Rejection taxonomy strings (§4.2).
const (
	ReasonNotSigned     = "NotSigned"
	ReasonUnknownUser   = "UnknownUser"
	ReasonBadParam      = "BadParam"
	ReasonNoKeyLocator  = "NoKeyLocator"
	ReasonBadKeyLocator = "BadKeyLocator"
	ReasonUntrustedKey  = "UntrustedKey"
	ReasonBadSignature  = "BadSignature"
	ReasonBadUsage      = "BadUsage"
)

func rejected(reason string) error {
	return ErrValidationFailed{Reason: reason}
}

package pib

import (
	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

// PibType discriminates the entity kind carried by a request parameter,
// per spec.md §6/§9: "model as a tagged variant over the four entity
// kinds, not as a class hierarchy."
type PibType int

const (
	EntityUser PibType = iota
	EntityIdentity
	EntityKey
	EntityCertificate
)

func (t PibType) String() string {
	switch t {
	case EntityUser:
		return "User"
	case EntityIdentity:
		return "Identity"
	case EntityKey:
		return "Key"
	case EntityCertificate:
		return "Certificate"
	default:
		return "Unknown"
	}
}

// DefaultOpt is UpdateParam's NO/YES flag (spec.md §6): whether the
// updated entity should also become its parent's default pointer.
type DefaultOpt int

const (
	DefaultNo DefaultOpt = iota
	DefaultYes
)

// UserParam is UpdateParam's payload when Kind == EntityUser: installing
// or replacing a user's management certificate (self-registration's
// payload, per spec.md §4.2 step 2).
type UserParam struct {
	UserName        string
	MgmtCertificate *Certificate
}

// IdentityParam is UpdateParam's payload when Kind == EntityIdentity.
type IdentityParam struct {
	Identity enc.Name
}

// KeyParam is UpdateParam's payload when Kind == EntityKey.
type KeyParam struct {
	Identity enc.Name
	KeyId    enc.Component
	KeyType  tpm.KeyType
	KeyBits  []byte
}

// CertificateParam is UpdateParam's payload when Kind == EntityCertificate.
type CertificateParam struct {
	Certificate *Certificate
}

// UpdateParam is the decoded payload of an `update` verb request
// (spec.md §6): `UPDATE-TYPE L (PibUser | PibIdentity | PibPublicKey |
// PibCertificate) DefaultOpt?`. Exactly one of User/Identity/Key/Cert is
// non-nil, selected by Kind.
type UpdateParam struct {
	Kind    PibType
	Default DefaultOpt

	User        *UserParam
	Identity    *IdentityParam
	Key         *KeyParam
	Certificate *CertificateParam
}

// GetParam is the decoded payload of a `get` verb request (spec.md §6):
// `GET-TYPE L (PibType) Name?` — Name is required for all but EntityUser.
type GetParam struct {
	Kind PibType
	Name enc.Name
}

// DeleteParam is the decoded payload of a `delete` verb request; same
// outer framing as GetParam, carrying the minimal key tuple identifying
// its target.
type DeleteParam struct {
	Kind     PibType
	UserName string
	Identity enc.Name
	KeyId    enc.Component
	CertName enc.Name
}

// ListParam is the decoded payload of a `list` verb request.
type ListParam struct {
	Kind     PibType
	UserName string
	Identity enc.Name
	KeyId    enc.Component
}

// DefaultParam is the decoded payload of a `default` verb request
// (setDefaultX / getDefaultX dispatch).
type DefaultParam struct {
	Kind     PibType
	UserName string
	Identity enc.Name
	KeyId    enc.Component
	CertName enc.Name
}

// PibErrorCode enumerates the wire-level error codes of spec.md §6's
// `PibError := ERROR-TYPE L ErrorCode`.
type PibErrorCode int

const (
	ErrNonExistingId PibErrorCode = iota
	ErrNonExistingKey
	ErrNonExistingCert
	ErrWrongParam
	ErrVerificationFailed
)

func (c PibErrorCode) String() string {
	switch c {
	case ErrNonExistingId:
		return "NON_EXISTING_ID"
	case ErrNonExistingKey:
		return "NON_EXISTING_KEY"
	case ErrNonExistingCert:
		return "NON_EXISTING_CERT"
	case ErrWrongParam:
		return "WRONG_PARAM"
	case ErrVerificationFailed:
		return "VERIFICATION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// PibError is the wire-level error reply a dispatcher sends back for a
// rejected or failed request. It is distinct from the Go error types in
// errors.go, which are internal; a dispatcher translates those (e.g.
// ErrNoDefault -> NON_EXISTING_*, ErrValidationFailed -> VERIFICATION_FAILED)
// into a PibError for the wire, per spec.md §7's policy table.
type PibError struct {
	Code PibErrorCode
}

func (e PibError) Error() string { return e.Code.String() }

// NoDefaultToPibError maps the internal ErrNoDefault taxonomy onto the
// wire error codes, per spec.md §7 ("dispatcher translates to
// NON_EXISTING_*").
func NoDefaultToPibError(entity string) PibErrorCode {
	switch entity {
	case "identity":
		return ErrNonExistingId
	case "key":
		return ErrNonExistingKey
	case "certificate":
		return ErrNonExistingCert
	default:
		return ErrWrongParam
	}
}

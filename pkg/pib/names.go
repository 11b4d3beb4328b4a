package pib

import (
	"strconv"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

// Name-shape constants from spec.md §3 ("Naming conventions (bit-exact, used
// by the validator)") and §4.3's management-key naming scheme.

var pibPrefix = mustName("/localhost/pib")

// IsRootKeyShape reports whether name is shaped
// /localhost/pib/user/<KeyId> (four components), the subject-key-name shape
// spec.md §3 requires of the root user's management certificate.
func IsRootKeyShape(name enc.Name) bool {
	return len(name) == 4 &&
		name.Prefix(2).Equal(pibPrefix) &&
		name.At(2).String() == "user"
}

// IsUserKeyShape reports whether name is shaped
// /localhost/pib/user/<UserName>/<KeyId> (five components), and if so
// returns the UserName component.
func IsUserKeyShape(name enc.Name) (userName string, ok bool) {
	if len(name) != 5 || !name.Prefix(2).Equal(pibPrefix) || name.At(2).String() != "user" {
		return "", false
	}
	return name.At(3).String(), true
}

// IsRequestNameShape reports whether name has exactly six components in
// total and starts with /localhost/pib, i.e. /localhost/pib/<user>/<verb>
// followed by two more components; only the length and the prefix are
// checked. This is the signed-request shape check of spec.md §3 and §4.2
// step 1.
func IsRequestNameShape(name enc.Name) bool {
	return len(name) == 6 && name.Prefix(2).Equal(pibPrefix)
}

// RequestUser extracts the <user> component of a six-component request name.
func RequestUser(name enc.Name) string {
	return name.At(2).String()
}

// RequestVerb extracts the <verb> component of a six-component request name.
func RequestVerb(name enc.Name) string {
	return name.At(3).String()
}

// MgmtKeyName builds the management key name spec.md §4.3 step 4 mandates:
// /localhost/pib/<owner>/mgmt/dsk-<unixMicros>.
func MgmtKeyName(owner string, unixMicros int64) enc.Name {
	return pibPrefix.Append(
		enc.NewGenericComponent(owner),
		enc.NewGenericComponent("mgmt"),
		enc.NewGenericComponent(dskComponent(unixMicros)),
	)
}

func dskComponent(unixMicros int64) string {
	return "dsk-" + strconv.FormatInt(unixMicros, 10)
}

func mustName(s string) enc.Name {
	n, err := enc.NameFromStr(s)
	if err != nil {
		panic(err)
	}
	return n
}

// CertKeyName derives a certificate's subject-key name from its
// certificate name, per spec.md §3: "the public-key name is derived from a
// certificate name by removing KEY/ID-CERT/version components" — the
// inverse of BuildCertificate's name construction (cert.go).
func CertKeyName(certName enc.Name) enc.Name {
	// certName = identity ⊕ "KEY" ⊕ keyId ⊕ "ID-CERT" ⊕ version, so the
	// last 4 components are KEY, keyId, ID-CERT, version in that order.
	if len(certName) < 4 {
		return certName
	}
	identity := certName.Prefix(-4)
	keyId := certName.At(-3)
	return identity.Append(keyId)
}

// IdentityOfKeyName returns keyName.Prefix(-1), the identity owning a key.
func IdentityOfKeyName(keyName enc.Name) enc.Name {
	return keyName.Prefix(-1)
}

// KeyIdOf returns the last component of a key name.
func KeyIdOf(keyName enc.Name) enc.Component {
	return keyName.At(-1)
}

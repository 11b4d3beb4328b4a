// Package tpm implements the Trusted Platform Module abstraction that
// spec.md §1 names as an external collaborator: it holds private keys and
// performs all signing on the PIB's behalf. PibDb and PibValidator never
// see a private key; they only ever see what a Tpm hands back through
// GetPublicKey and GetSigner.
package tpm

import (
	"fmt"
	"strings"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
)

// KeyType enumerates the key algorithms a Tpm can generate, matching
// spec.md §3's Key.keyType attribute.
type KeyType int

const (
	KeyTypeRsa KeyType = iota
	KeyTypeEcdsa
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeRsa:
		return "RSA"
	case KeyTypeEcdsa:
		return "ECDSA"
	default:
		return "UNKNOWN"
	}
}

// Tpm is the private-key holder. It carries the four operations spec.md §1
// lists (generate, sign via GetSigner, getPublicKey, hasPrivateKey) plus
// DeleteKey.
type Tpm interface {
	// HasPrivateKey reports whether the private half of keyName is present.
	// Pib's reconciliation step (§4.3 step 4) uses this to detect key loss.
	HasPrivateKey(keyName enc.Name) bool
	// GenerateKey creates a new key pair of the given type/size and returns
	// the encoded public key.
	GenerateKey(keyName enc.Name, keyType KeyType, keyBits uint) (enc.Buffer, error)
	// GetPublicKey returns the encoded public key for an existing key pair.
	GetPublicKey(keyName enc.Name) (enc.Buffer, error)
	// GetSigner returns a Signer that signs with keyName's private key and
	// places keyLocatorName in the resulting signature's key locator.
	GetSigner(keyName enc.Name, keyLocatorName enc.Name) (ndn.Signer, error)
	// DeleteKey removes the private key. No-op if absent.
	DeleteKey(keyName enc.Name) error
}

// ErrTpmUnsupported is returned by New when the locator names a scheme this
// module does not implement (spec.md §4.3 step 3, §7 error table).
type ErrTpmUnsupported struct {
	Scheme string
}

func (e ErrTpmUnsupported) Error() string {
	return fmt.Sprintf("unsupported TPM scheme: %q", e.Scheme)
}

// ParseLocator splits a TPM locator of the form "<scheme>:<location>" (or
// just "<scheme>") into its two parts, per spec.md §4.3/§6.
func ParseLocator(locator string) (scheme, location string) {
	if idx := strings.IndexByte(locator, ':'); idx >= 0 {
		return locator[:idx], locator[idx+1:]
	}
	return locator, ""
}

// New dispatches a TPM locator to a concrete backend. Recognized schemes are
// tpm-file/file (FileTpm) and tpm-osxkeychain/osx-keychain/keychain
// (KeychainTpm, on every platform).
func New(locator string) (Tpm, error) {
	scheme, location := ParseLocator(locator)
	switch scheme {
	case "tpm-file", "file":
		return NewFileTpm(location), nil
	case "tpm-osxkeychain", "osx-keychain", "keychain":
		return newKeychainTpm(location)
	default:
		return nil, ErrTpmUnsupported{Scheme: scheme}
	}
}

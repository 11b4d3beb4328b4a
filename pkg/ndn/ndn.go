// Package ndn provides the abstract interfaces that the PIB core calls into:
// names, signatures, signers, and the wire specification. Concrete wire
// codecs and network faces are external collaborators; this package defines
// only the shapes the core depends on so it can be exercised against fakes.
package ndn

import (
	"time"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

// SigConfig carries the fields a Signer fills in on a to-be-signed packet.
type SigConfig struct {
	Type      SigType
	KeyName   enc.Name
	Nonce     []byte
	SigTime   *time.Time
	SeqNum    *uint64
	NotBefore *time.Time
	NotAfter  *time.Time
}

// KeyLocatorKind discriminates the three shapes a packet's KeyLocator TLV
// can take: absent, a Name, or a KeyDigest. The PIB validator only trusts
// the Name form; carrying the discriminator lets it tell "no locator at
// all" apart from "locator present but not of Name type" (spec.md §4.2
// step 3), which KeyName alone — always an enc.Name, possibly empty —
// cannot distinguish.
type KeyLocatorKind int

const (
	KeyLocatorAbsent KeyLocatorKind = iota
	KeyLocatorName
	KeyLocatorDigest
)

// Signature is the abstract view of a signature already present on a packet.
type Signature interface {
	SigType() SigType
	// KeyLocatorKind reports which shape, if any, this signature's
	// KeyLocator takes. KeyName is meaningful only when this returns
	// KeyLocatorName.
	KeyLocatorKind() KeyLocatorKind
	KeyName() enc.Name
	SigValue() []byte
	Validity() (notBefore, notAfter *time.Time)
}

// Signer produces a signature over a packet's signed portion.
type Signer interface {
	// SigInfo returns the SignatureInfo fields to place on the packet
	// before its signed portion is computed.
	SigInfo() (*SigConfig, error)
	// EstimateSize returns an upper bound on the signature value's length,
	// used to reserve space before the signed portion is finalized.
	EstimateSize() uint
	// ComputeSigValue signs the given signed-portion wire.
	ComputeSigValue(covered enc.Wire) ([]byte, error)
}

// Timer abstracts wall-clock time and nonce generation so tests can
// substitute a deterministic clock.
type Timer interface {
	Now() time.Time
	Nonce() []byte
}

package security

import (
	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
)

// emptySigner produces a well-formed but empty signature. Adapted from the
// teacher's test-only signer; useful here for exercising PibValidator's
// reject-on-unrecognized-signature-type path without a real key pair.
type emptySigner struct {
	keyLocatorName enc.Name
}

func (s emptySigner) SigInfo() (*ndn.SigConfig, error) {
	return &ndn.SigConfig{
		Type:    ndn.SignatureEmptyTest,
		KeyName: s.keyLocatorName,
	}, nil
}

func (emptySigner) EstimateSize() uint { return 0 }

func (emptySigner) ComputeSigValue(covered enc.Wire) ([]byte, error) {
	return []byte{}, nil
}

// NewEmptySigner returns a signer carrying keyLocatorName but no real
// cryptographic signature, for test fixtures only.
func NewEmptySigner(keyLocatorName enc.Name) ndn.Signer {
	return emptySigner{keyLocatorName: keyLocatorName}
}

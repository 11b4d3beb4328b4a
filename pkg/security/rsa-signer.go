package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"time"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/utils"
)

// rsaSigner is a signer that uses an RSA key to sign packets with
// SHA256WithRsa, the algorithm spec.md §4.4 mandates for PIB certificates.
type rsaSigner struct {
	timer ndn.Timer
	seq   uint64

	keyLocatorName enc.Name
	key            *rsa.PrivateKey
	keyLen         uint
	forCert        bool
	forInt         bool
	certExpireTime time.Duration
}

func (s *rsaSigner) SigInfo() (*ndn.SigConfig, error) {
	ret := &ndn.SigConfig{
		Type:    ndn.SignatureSha256WithRsa,
		KeyName: s.keyLocatorName,
	}
	if s.forCert {
		ret.NotBefore = utils.IdPtr(s.timer.Now())
		ret.NotAfter = utils.IdPtr(s.timer.Now().Add(s.certExpireTime))
	}
	if s.forInt {
		s.seq++
		ret.Nonce = s.timer.Nonce()
		ret.SigTime = utils.IdPtr(s.timer.Now())
		ret.SeqNum = utils.IdPtr(s.seq)
	}
	return ret, nil
}

func (s *rsaSigner) EstimateSize() uint {
	return s.keyLen
}

func (s *rsaSigner) ComputeSigValue(covered enc.Wire) ([]byte, error) {
	h := sha256.New()
	for _, buf := range covered {
		if _, err := h.Write(buf); err != nil {
			return nil, enc.ErrUnexpected{Err: err}
		}
	}
	digest := h.Sum(nil)
	return rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest)
}

// NewRsaSigner creates a signer using an RSA private key. forCert marks a
// signer used to sign a certificate (fills NotBefore/NotAfter); forInt marks
// one used to sign an Interest (fills Nonce/SigTime/SeqNum).
func NewRsaSigner(
	forCert bool, forInt bool, expireTime time.Duration, key *rsa.PrivateKey,
	keyLocatorName enc.Name,
) ndn.Signer {
	return &rsaSigner{
		timer:          ndn.NewTimer(),
		keyLocatorName: keyLocatorName,
		key:            key,
		keyLen:         uint(key.Size()),
		forCert:        forCert,
		forInt:         forInt,
		certExpireTime: expireTime,
	}
}

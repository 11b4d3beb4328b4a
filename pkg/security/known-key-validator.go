package security

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
)

func sha256HmacEqual(sigCovered enc.Wire, sigValue []byte, key []byte) bool {
	mac := hmac.New(sha256.New, key)
	for _, buf := range sigCovered {
		if _, err := mac.Write(buf); err != nil {
			return false
		}
	}
	return hmac.Equal(mac.Sum(nil), sigValue)
}

// Sha256Validate verifies the sha256 digest.
func Sha256Validate(sigCovered enc.Wire, sig ndn.Signature) bool {
	if sig.SigType() != ndn.SignatureDigestSha256 {
		return false
	}
	h := sha256.New()
	for _, buf := range sigCovered {
		if _, err := h.Write(buf); err != nil {
			return false
		}
	}
	return bytes.Equal(h.Sum(nil), sig.SigValue())
}

// HmacValidate verifies the signature with a known HMAC shared key.
func HmacValidate(sigCovered enc.Wire, sig ndn.Signature, key []byte) bool {
	if sig.SigType() != ndn.SignatureHmacWithSha256 {
		return false
	}
	return sha256HmacEqual(sigCovered, sig.SigValue(), key)
}

// EcdsaValidate verifies the signature with a known ECC public key.
// The PIB stores public keys in ASN.1 DER (PKIX) form; callers parse them
// into an *ecdsa.PublicKey before calling this.
func EcdsaValidate(sigCovered enc.Wire, sig ndn.Signature, pubKey *ecdsa.PublicKey) bool {
	if sig.SigType() != ndn.SignatureSha256WithEcdsa {
		return false
	}
	h := sha256.New()
	for _, buf := range sigCovered {
		if _, err := h.Write(buf); err != nil {
			return false
		}
	}
	return ecdsa.VerifyASN1(pubKey, h.Sum(nil), sig.SigValue())
}

// RsaValidate verifies the signature with a known RSA public key. This is
// the primary verification path for PIB management requests: spec.md §4.4
// mandates RSA+SHA256 for management certificates.
func RsaValidate(sigCovered enc.Wire, sig ndn.Signature, pubKey *rsa.PublicKey) bool {
	if sig.SigType() != ndn.SignatureSha256WithRsa {
		return false
	}
	h := sha256.New()
	for _, buf := range sigCovered {
		if _, err := h.Write(buf); err != nil {
			return false
		}
	}
	return rsa.VerifyPKCS1v15(pubKey, crypto.SHA256, h.Sum(nil), sig.SigValue()) == nil
}

// EddsaValidate verifies the signature with a known ed25519 public key.
func EddsaValidate(sigCovered enc.Wire, sig ndn.Signature, pubKey ed25519.PublicKey) bool {
	if sig.SigType() != ndn.SignatureEd25519 {
		return false
	}
	return ed25519.Verify(pubKey, sigCovered.Join(), sig.SigValue())
}

package security_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/security"
)

// fakeSignature is a minimal ndn.Signature fixture carrying a type and a
// signature value, enough to drive the Validate* functions in isolation
// without a full wire codec.
type fakeSignature struct {
	typ      ndn.SigType
	keyName  enc.Name
	value    []byte
	notAfter *time.Time
}

func (s fakeSignature) SigType() ndn.SigType { return s.typ }
func (s fakeSignature) KeyLocatorKind() ndn.KeyLocatorKind {
	if len(s.keyName) == 0 {
		return ndn.KeyLocatorAbsent
	}
	return ndn.KeyLocatorName
}
func (s fakeSignature) KeyName() enc.Name { return s.keyName }
func (s fakeSignature) SigValue() []byte  { return s.value }
func (s fakeSignature) Validity() (notBefore, notAfter *time.Time) {
	return nil, s.notAfter
}

func sampleCovered() enc.Wire {
	return enc.Wire{[]byte("/localhost/pib/alice/KEY/dsk-1"), []byte("update-request-body")}
}

func TestRsaSignerRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyLocator, err := enc.NameFromStr("/localhost/pib/alice/KEY/dsk-1")
	require.NoError(t, err)

	signer := security.NewRsaSigner(true, false, 24*time.Hour, key, keyLocator)
	cfg, err := signer.SigInfo()
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureSha256WithRsa, cfg.Type)
	require.NotNil(t, cfg.NotBefore)
	require.NotNil(t, cfg.NotAfter)

	covered := sampleCovered()
	sigValue, err := signer.ComputeSigValue(covered)
	require.NoError(t, err)
	require.NotEmpty(t, sigValue)

	sig := fakeSignature{typ: ndn.SignatureSha256WithRsa, value: sigValue}
	require.True(t, security.RsaValidate(covered, sig, &key.PublicKey))

	// Tampering with the covered wire must invalidate the signature.
	tampered := enc.Wire{[]byte("/localhost/pib/mallory/KEY/dsk-1"), []byte("update-request-body")}
	require.False(t, security.RsaValidate(tampered, sig, &key.PublicKey))

	// A signature of the wrong declared type is rejected outright.
	wrongType := fakeSignature{typ: ndn.SignatureSha256WithEcdsa, value: sigValue}
	require.False(t, security.RsaValidate(covered, wrongType, &key.PublicKey))
}

func TestEccSignerRoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	keyLocator, err := enc.NameFromStr("/localhost/pib/bob/KEY/dsk-1")
	require.NoError(t, err)

	signer := security.NewEccSigner(false, true, 0, key, keyLocator)
	cfg, err := signer.SigInfo()
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureSha256WithEcdsa, cfg.Type)
	require.NotNil(t, cfg.SigTime)
	require.NotNil(t, cfg.SeqNum)
	require.EqualValues(t, 1, *cfg.SeqNum)

	covered := sampleCovered()
	sigValue, err := signer.ComputeSigValue(covered)
	require.NoError(t, err)

	sig := fakeSignature{typ: ndn.SignatureSha256WithEcdsa, value: sigValue}
	require.True(t, security.EcdsaValidate(covered, sig, &key.PublicKey))

	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	require.False(t, security.EcdsaValidate(covered, sig, &other.PublicKey))
}

func TestHmacSignerRoundTrip(t *testing.T) {
	key := []byte("shared-management-secret")
	signer := security.NewHmacSigner(key)

	cfg, err := signer.SigInfo()
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureHmacWithSha256, cfg.Type)

	covered := sampleCovered()
	sigValue, err := signer.ComputeSigValue(covered)
	require.NoError(t, err)

	sig := fakeSignature{typ: ndn.SignatureHmacWithSha256, value: sigValue}
	require.True(t, security.HmacValidate(covered, sig, key))
	require.False(t, security.HmacValidate(covered, sig, []byte("wrong-secret")))
}

func TestSha256SignerRoundTrip(t *testing.T) {
	signer := security.NewSha256Signer()
	cfg, err := signer.SigInfo()
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureDigestSha256, cfg.Type)

	covered := sampleCovered()
	sigValue, err := signer.ComputeSigValue(covered)
	require.NoError(t, err)

	sig := fakeSignature{typ: ndn.SignatureDigestSha256, value: sigValue}
	require.True(t, security.Sha256Validate(covered, sig))

	tampered := enc.Wire{[]byte("different-content")}
	require.False(t, security.Sha256Validate(tampered, sig))
}

func TestEmptySignerCarriesNoRealSignature(t *testing.T) {
	keyLocator, err := enc.NameFromStr("/localhost/pib/eve/KEY/dsk-1")
	require.NoError(t, err)

	signer := security.NewEmptySigner(keyLocator)
	cfg, err := signer.SigInfo()
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureEmptyTest, cfg.Type)
	require.True(t, keyLocator.Equal(cfg.KeyName))

	sigValue, err := signer.ComputeSigValue(sampleCovered())
	require.NoError(t, err)
	require.Empty(t, sigValue)

	// None of the Validate* helpers accept SignatureEmptyTest: the type is
	// test-only and must never verify against a real scheme.
	sig := fakeSignature{typ: ndn.SignatureEmptyTest, value: sigValue}
	require.False(t, security.Sha256Validate(sampleCovered(), sig))
	require.False(t, security.HmacValidate(sampleCovered(), sig, []byte("k")))
}

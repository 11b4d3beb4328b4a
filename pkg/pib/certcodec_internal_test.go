package pib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/security"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

// certcodec.go's encode/decodeCertificate are unexported; this white-box
// test exercises them directly rather than only indirectly through PibDb.
func TestCertCodecRoundTrip(t *testing.T) {
	name, err := enc.NameFromStr("/alice/home/KEY/key-1/ID-CERT/v1")
	require.NoError(t, err)
	keyName, err := enc.NameFromStr("/alice/home/key-1")
	require.NoError(t, err)

	now := time.Now().Truncate(time.Microsecond)
	cert := &Certificate{
		Name:             name,
		KeyName:          keyName,
		KeyType:          tpm.KeyTypeRsa,
		PublicKeyInfo:    []byte("fake-pub-key-bytes"),
		SignerKeyLocator: keyName,
		NotBefore:        now,
		NotAfter:         now.AddDate(0, 0, 1),
	}

	signer := security.NewHmacSigner([]byte("test-key"))
	data, err := encodeCertificate(cert, signer)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, sigType, covered, sigValue, err := decodeCertificate(data)
	require.NoError(t, err)
	require.True(t, decoded.Name.Equal(cert.Name))
	require.True(t, decoded.KeyName.Equal(cert.KeyName))
	require.Equal(t, cert.KeyType, decoded.KeyType)
	require.Equal(t, cert.PublicKeyInfo, decoded.PublicKeyInfo)
	require.True(t, decoded.NotBefore.Equal(cert.NotBefore))
	require.True(t, decoded.NotAfter.Equal(cert.NotAfter))
	require.Equal(t, data, decoded.Data)

	// The recorded signature must itself verify against the covered bytes.
	require.NotEmpty(t, covered)
	require.True(t, security.HmacValidate(enc.Wire{covered}, recordedSig{sigType, sigValue}, []byte("test-key")))
}

// recordedSig adapts the (SigType, sigValue) pair decodeCertificate hands
// back into an ndn.Signature so it can be fed straight into the security
// package's Validate helpers.
type recordedSig struct {
	typ   ndn.SigType
	value []byte
}

func (s recordedSig) SigType() ndn.SigType                       { return s.typ }
func (s recordedSig) KeyLocatorKind() ndn.KeyLocatorKind         { return ndn.KeyLocatorAbsent }
func (s recordedSig) KeyName() enc.Name                          { return nil }
func (s recordedSig) SigValue() []byte                           { return s.value }
func (s recordedSig) Validity() (notBefore, notAfter *time.Time) { return nil, nil }

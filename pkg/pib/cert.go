package pib

import (
	"time"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

// Certificate is the PIB's view of a bound identity certificate: the
// opaque encoded blob (produced by the external Codec) alongside the
// fields PibDb and PibValidator need without decoding it themselves,
// per spec.md §3's "Codec encodes/decodes... to opaque byte blocks" split.
type Certificate struct {
	// Name is the certificate name (identity ⊕ KEY ⊕ keyId ⊕ ID-CERT ⊕ version).
	Name enc.Name
	// KeyName is the certificate's subject key name (identity ⊕ keyId).
	KeyName enc.Name
	// KeyType is the public key's algorithm.
	KeyType tpm.KeyType
	// PublicKeyInfo is the encoded public key.
	PublicKeyInfo []byte
	// SignerKeyLocator is the key-name of the certificate signing this one.
	SignerKeyLocator enc.Name
	NotBefore        time.Time
	NotAfter         time.Time
	// Data is the full encoded certificate, as handled to/from the Codec.
	Data []byte
}

// Identity returns the identity name owning this certificate's key.
func (c *Certificate) Identity() enc.Name {
	return IdentityOfKeyName(c.KeyName)
}

// KeyId returns the last component of the subject key name.
func (c *Certificate) KeyId() enc.Component {
	return KeyIdOf(c.KeyName)
}

const (
	certValidityDays = 7300 // spec.md §4.3 step 4 / §9 security note
)

// DefaultValidity returns the [now, now+7300 days) window spec.md §4.3 uses
// for freshly generated management certificates.
func DefaultValidity(now time.Time) (notBefore, notAfter time.Time) {
	return now, now.AddDate(0, 0, certValidityDays)
}

// BuildCertificate implements the contract of spec.md §4.4: given a key
// name, key parameters, a validity window, and an optional signer name,
// generate the key pair in the TPM and construct the signed certificate.
// signerName empty means self-sign.
func BuildCertificate(
	t tpm.Tpm,
	keyName enc.Name,
	keyType tpm.KeyType,
	keyBits uint,
	notBefore, notAfter time.Time,
	signerName enc.Name,
) (*Certificate, error) {
	pub, err := t.GenerateKey(keyName, keyType, keyBits)
	if err != nil {
		return nil, err
	}

	identity := IdentityOfKeyName(keyName)
	keyId := KeyIdOf(keyName)

	version := enc.NewVersionComponent(uint64(notBefore.UnixMicro()))
	certName := identity.
		Append(enc.NewGenericComponent("KEY"), keyId).
		Append(enc.NewGenericComponent("ID-CERT")).
		Append(*version)

	cert := &Certificate{
		Name:          certName,
		KeyName:       keyName,
		KeyType:       keyType,
		PublicKeyInfo: pub,
		NotBefore:     notBefore,
		NotAfter:      notAfter,
	}

	signerKeyName := keyName
	if len(signerName) > 0 {
		signerKeyName = signerName
	}
	// Key locator for a self-signed cert is the certificate name minus
	// its version component (spec.md §4.4 step 3).
	if len(signerName) == 0 {
		cert.SignerKeyLocator = certName.Prefix(-1)
	} else {
		cert.SignerKeyLocator = signerKeyName
	}

	signer, err := t.GetSigner(signerKeyName, cert.SignerKeyLocator)
	if err != nil {
		return nil, err
	}
	data, err := encodeCertificate(cert, signer)
	if err != nil {
		return nil, err
	}
	cert.Data = data

	return cert, nil
}

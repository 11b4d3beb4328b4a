package tpm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"github.com/apex/log"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	sec "github.com/named-data/go-pib/pkg/security"
)

const defaultRsaBits = 2048

// FileTpm is a file-backed Tpm. Private keys are stored PKCS1-DER, base64
// text-encoded, one file per key, named by the hex-SHA256 digest of the
// key's encoded name. Generalized from the teacher's read-only prototype:
// GenerateKey and DeleteKey are fully implemented here (the teacher left
// both as panics), since the PIB lifecycle (spec.md §4.3) depends on being
// able to actually create and retire management keys.
type FileTpm struct {
	dir string
}

// NewFileTpm returns a Tpm rooted at dir. It does not touch the filesystem;
// GenerateKey creates dir if it does not exist.
func NewFileTpm(dir string) *FileTpm {
	return &FileTpm{dir: dir}
}

func (tpm *FileTpm) keyFileName(keyName enc.Name) string {
	h := sha256.Sum256(keyName.Bytes())
	return hex.EncodeToString(h[:]) + ".privkey"
}

func (tpm *FileTpm) keyFilePath(keyName enc.Name) string {
	return path.Join(tpm.dir, tpm.keyFileName(keyName))
}

func (tpm *FileTpm) readKey(keyName enc.Name) (*rsa.PrivateKey, error) {
	fileName := tpm.keyFilePath(keyName)
	text, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	block, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return nil, fmt.Errorf("tpm-file: corrupt key file %s: %w", fileName, err)
	}
	key, err := x509.ParsePKCS1PrivateKey(block)
	if err != nil {
		return nil, fmt.Errorf("tpm-file: unrecognized private key format %s: %w", fileName, err)
	}
	return key, nil
}

func (tpm *FileTpm) HasPrivateKey(keyName enc.Name) bool {
	_, err := os.Stat(tpm.keyFilePath(keyName))
	return err == nil
}

func (tpm *FileTpm) GenerateKey(keyName enc.Name, keyType KeyType, keyBits uint) (enc.Buffer, error) {
	if keyType != KeyTypeRsa {
		return nil, fmt.Errorf("tpm-file: unsupported key type %s", keyType)
	}
	bits := int(keyBits)
	if bits == 0 {
		bits = defaultRsaBits
	}

	if err := os.MkdirAll(tpm.dir, 0700); err != nil {
		return nil, fmt.Errorf("tpm-file: creating tpm dir: %w", err)
	}

	unlock, err := tpm.lockDir()
	if err != nil {
		return nil, err
	}
	defer unlock()

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("tpm-file: generating RSA key: %w", err)
	}

	der := x509.MarshalPKCS1PrivateKey(key)
	encoded := []byte(base64.StdEncoding.EncodeToString(der))

	fileName := tpm.keyFilePath(keyName)
	if err := os.WriteFile(fileName, encoded, 0600); err != nil {
		return nil, fmt.Errorf("tpm-file: writing key file %s: %w", fileName, err)
	}

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("tpm-file: marshaling public key: %w", err)
	}
	return pub, nil
}

func (tpm *FileTpm) GetPublicKey(keyName enc.Name) (enc.Buffer, error) {
	key, err := tpm.readKey(keyName)
	if err != nil {
		return nil, err
	}
	return x509.MarshalPKIXPublicKey(&key.PublicKey)
}

func (tpm *FileTpm) GetSigner(keyName enc.Name, keyLocatorName enc.Name) (ndn.Signer, error) {
	key, err := tpm.readKey(keyName)
	if err != nil {
		log.WithField("module", "FileTpm").
			WithField("key", keyName.String()).
			WithError(err).Error("unable to load private key")
		return nil, err
	}
	return sec.NewRsaSigner(true, false, 0, key, keyLocatorName), nil
}

func (tpm *FileTpm) DeleteKey(keyName enc.Name) error {
	unlock, err := tpm.lockDir()
	if err != nil {
		return err
	}
	defer unlock()

	err = os.Remove(tpm.keyFilePath(keyName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tpm-file: deleting key file: %w", err)
	}
	return nil
}


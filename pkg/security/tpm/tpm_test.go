package tpm_test

import (
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

func mustName(t *testing.T, s string) enc.Name {
	n, err := enc.NameFromStr(s)
	require.NoError(t, err)
	return n
}

func TestFileTpmGenerateSignDelete(t *testing.T) {
	dir := t.TempDir()
	backend := tpm.NewFileTpm(dir)
	keyName := mustName(t, "/localhost/pib/alice/KEY/dsk-1")

	require.False(t, backend.HasPrivateKey(keyName))

	pubBytes, err := backend.GenerateKey(keyName, tpm.KeyTypeRsa, 2048)
	require.NoError(t, err)
	require.True(t, backend.HasPrivateKey(keyName))

	pub, err := x509.ParsePKIXPublicKey(pubBytes)
	require.NoError(t, err)
	require.NotNil(t, pub)

	// GetPublicKey must return the same public key material GenerateKey
	// handed back.
	again, err := backend.GetPublicKey(keyName)
	require.NoError(t, err)
	require.Equal(t, []byte(pubBytes), []byte(again))

	signer, err := backend.GetSigner(keyName, keyName)
	require.NoError(t, err)
	sigValue, err := signer.ComputeSigValue(enc.Wire{[]byte("hello-pib")})
	require.NoError(t, err)
	require.NotEmpty(t, sigValue)

	require.NoError(t, backend.DeleteKey(keyName))
	require.False(t, backend.HasPrivateKey(keyName))

	// Deleting an already-absent key is a no-op, not an error.
	require.NoError(t, backend.DeleteKey(keyName))
}

func TestFileTpmRejectsUnsupportedKeyType(t *testing.T) {
	backend := tpm.NewFileTpm(t.TempDir())
	keyName := mustName(t, "/localhost/pib/bob/KEY/dsk-1")
	_, err := backend.GenerateKey(keyName, tpm.KeyTypeEcdsa, 0)
	require.Error(t, err)
}

func TestNewDispatchesByScheme(t *testing.T) {
	dir := t.TempDir()

	backend, err := tpm.New("tpm-file:" + dir)
	require.NoError(t, err)
	require.IsType(t, &tpm.FileTpm{}, backend)

	backend, err = tpm.New("file:" + dir)
	require.NoError(t, err)
	require.IsType(t, &tpm.FileTpm{}, backend)

	_, err = tpm.New("tpm-quantum:somewhere")
	require.Error(t, err)
	var unsupported tpm.ErrTpmUnsupported
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "tpm-quantum", unsupported.Scheme)
}

func TestParseLocator(t *testing.T) {
	scheme, loc := tpm.ParseLocator("tpm-file:/var/lib/pib/tpm")
	require.Equal(t, "tpm-file", scheme)
	require.Equal(t, "/var/lib/pib/tpm", loc)

	scheme, loc = tpm.ParseLocator("tpm-file")
	require.Equal(t, "tpm-file", scheme)
	require.Equal(t, "", loc)
}

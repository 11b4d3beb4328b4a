package pib_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/pib"
)

func TestIsRootKeyShape(t *testing.T) {
	good, err := enc.NameFromStr("/localhost/pib/user/dsk-1")
	require.NoError(t, err)
	require.True(t, pib.IsRootKeyShape(good))

	wrongLiteral, err := enc.NameFromStr("/localhost/pib/alice/dsk-1")
	require.NoError(t, err)
	require.False(t, pib.IsRootKeyShape(wrongLiteral))

	tooLong, err := enc.NameFromStr("/localhost/pib/user/extra/dsk-1")
	require.NoError(t, err)
	require.False(t, pib.IsRootKeyShape(tooLong))
}

func TestIsUserKeyShape(t *testing.T) {
	good, err := enc.NameFromStr("/localhost/pib/user/alice/dsk-1")
	require.NoError(t, err)
	userName, ok := pib.IsUserKeyShape(good)
	require.True(t, ok)
	require.Equal(t, "alice", userName)

	rootShaped, err := enc.NameFromStr("/localhost/pib/user/dsk-1")
	require.NoError(t, err)
	_, ok = pib.IsUserKeyShape(rootShaped)
	require.False(t, ok)
}

func TestIsRequestNameShape(t *testing.T) {
	good, err := enc.NameFromStr("/localhost/pib/alice/update/param/sigvalue")
	require.NoError(t, err)
	require.True(t, pib.IsRequestNameShape(good))
	require.Equal(t, "alice", pib.RequestUser(good))
	require.Equal(t, "update", pib.RequestVerb(good))

	tooShort, err := enc.NameFromStr("/localhost/pib/alice/update")
	require.NoError(t, err)
	require.False(t, pib.IsRequestNameShape(tooShort))

	wrongPrefix, err := enc.NameFromStr("/somewhere/else/alice/update/param/sigvalue")
	require.NoError(t, err)
	require.False(t, pib.IsRequestNameShape(wrongPrefix))
}

func TestMgmtKeyName(t *testing.T) {
	name := pib.MgmtKeyName("alice", 1234567)
	require.Equal(t, "/localhost/pib/alice/mgmt/dsk-1234567", name.String())
}

func TestCertKeyNameDerivesSubjectKeyFromCertName(t *testing.T) {
	certName, err := enc.NameFromStr("/alice/home/KEY/key-1/ID-CERT/v1")
	require.NoError(t, err)
	keyName := pib.CertKeyName(certName)

	expected, err := enc.NameFromStr("/alice/home/key-1")
	require.NoError(t, err)
	require.True(t, keyName.Equal(expected))
}

func TestIdentityAndKeyIdOfKeyName(t *testing.T) {
	keyName, err := enc.NameFromStr("/alice/home/key-1")
	require.NoError(t, err)

	identity := pib.IdentityOfKeyName(keyName)
	expectedIdentity, err := enc.NameFromStr("/alice/home")
	require.NoError(t, err)
	require.True(t, identity.Equal(expectedIdentity))

	require.Equal(t, "key-1", pib.KeyIdOf(keyName).String())
}

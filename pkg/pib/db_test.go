package pib_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/pib"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

func openTestDb(t *testing.T) *pib.PibDb {
	db, err := pib.OpenPibDb(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func buildCert(t *testing.T, backend tpm.Tpm, keyName string, signerName string) *pib.Certificate {
	name, err := enc.NameFromStr(keyName)
	require.NoError(t, err)
	var signer enc.Name
	if signerName != "" {
		signer, err = enc.NameFromStr(signerName)
		require.NoError(t, err)
	}
	now := time.Now()
	cert, err := pib.BuildCertificate(backend, name, tpm.KeyTypeRsa, 2048, now, now.AddDate(0, 0, 1), signer)
	require.NoError(t, err)
	return cert
}

func TestAddRootUserEnforcesShape(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	badCert := buildCert(t, backend, "/localhost/pib/alice/dsk-1", "")
	require.Error(t, db.AddRootUser(badCert))

	rootCert := buildCert(t, backend, "/localhost/pib/user/dsk-1", "")
	require.NoError(t, db.AddRootUser(rootCert))
	require.True(t, db.HasUser("root"))

	stored, err := db.GetUserMgmtCertificate("root")
	require.NoError(t, err)
	require.True(t, stored.Name.Equal(rootCert.Name))
}

func TestAddUserDerivesNameAndRejectsRoot(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	cert := buildCert(t, backend, "/localhost/pib/user/alice/dsk-1", "")
	require.NoError(t, db.AddUser(cert))
	require.True(t, db.HasUser("alice"))

	rootShaped := buildCert(t, backend, "/localhost/pib/user/Root/dsk-1", "")
	require.Error(t, db.AddUser(rootShaped))

	wrongShape := buildCert(t, backend, "/localhost/pib/user/dsk-1", "")
	require.Error(t, db.AddUser(wrongShape))
}

func TestListUsersSortedAndDeleteCascades(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	require.NoError(t, db.AddUser(buildCert(t, backend, "/localhost/pib/user/bob/dsk-1", "")))
	require.NoError(t, db.AddUser(buildCert(t, backend, "/localhost/pib/user/alice/dsk-1", "")))

	users, err := db.ListUsers()
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, users)

	cert := buildCert(t, backend, "/alice/home/key-2", "/localhost/pib/user/alice/dsk-1")
	require.NoError(t, db.AddCertificate("alice", cert))
	require.True(t, db.HasCertificate("alice", cert.Name))

	require.NoError(t, db.DeleteUser("alice"))
	require.False(t, db.HasUser("alice"))
	require.False(t, db.HasCertificate("alice", cert.Name))

	// Deleting an absent user is a no-op, not an error.
	require.NoError(t, db.DeleteUser("alice"))
}

func TestDeleteIdentityCascadesToKeysAndCerts(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	identity, err := enc.NameFromStr("/bob/home")
	require.NoError(t, err)
	cert := buildCert(t, backend, "/bob/home/key-1", "")
	require.NoError(t, db.AddCertificate("bob", cert))
	require.True(t, db.HasKey("bob", identity, cert.KeyId()))

	require.NoError(t, db.DeleteIdentity("bob", identity))
	require.False(t, db.HasIdentity("bob", identity))
	require.False(t, db.HasKey("bob", identity, cert.KeyId()))
	require.False(t, db.HasCertificate("bob", cert.Name))
}

func TestDeleteKeyFiresObserverOnlyOnActualRemoval(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	identity, err := enc.NameFromStr("/carol/home")
	require.NoError(t, err)
	cert := buildCert(t, backend, "/carol/home/key-1", "")
	require.NoError(t, db.AddCertificate("carol", cert))

	obs := &fakeObserver{}
	db.RegisterObserver(obs)

	require.NoError(t, db.DeleteKey("carol", identity, cert.KeyId()))
	require.Equal(t, 1, obs.keyDeletedCalls)

	// Second delete of the same key is a no-op; observer must not fire again.
	require.NoError(t, db.DeleteKey("carol", identity, cert.KeyId()))
	require.Equal(t, 1, obs.keyDeletedCalls)
}

type fakeObserver struct {
	userChangedCalls int
	keyDeletedCalls  int
	lastUser         string
}

func (f *fakeObserver) OnUserChanged(userName string) {
	f.userChangedCalls++
	f.lastUser = userName
}

func (f *fakeObserver) OnKeyDeleted(userName string, identity enc.Name, keyId enc.Component) {
	f.keyDeletedCalls++
}

func TestDefaultPointerChainResolvesThroughGetDefaultCertificateOfUser(t *testing.T) {
	db := openTestDb(t)
	backend := tpm.NewFileTpm(t.TempDir())

	// SetDefaultIdentityOfUser only updates an existing users row, so dave
	// must be installed as a user first.
	require.NoError(t, db.AddUser(buildCert(t, backend, "/localhost/pib/user/dave/dsk-1", "")))

	identity, err := enc.NameFromStr("/dave/home")
	require.NoError(t, err)
	cert := buildCert(t, backend, "/dave/home/key-1", "")
	require.NoError(t, db.AddCertificate("dave", cert))

	_, err = db.GetDefaultCertificateOfUser("dave")
	require.Error(t, err)
	var noDefault pib.ErrNoDefault
	require.ErrorAs(t, err, &noDefault)

	require.NoError(t, db.SetDefaultIdentityOfUser("dave", identity))
	require.NoError(t, db.SetDefaultKeyIdOfIdentity("dave", identity, cert.KeyId()))
	require.NoError(t, db.SetDefaultCertificateNameOfKey("dave", identity, cert.KeyId(), cert.Name))

	got, err := db.GetDefaultCertificateOfUser("dave")
	require.NoError(t, err)
	require.True(t, got.Name.Equal(cert.Name))
}

func TestSetDefaultOnMissingRowIsSilentNoOp(t *testing.T) {
	db := openTestDb(t)
	identity, err := enc.NameFromStr("/ghost/home")
	require.NoError(t, err)

	// No such user/identity/key exists; these must not error (spec's
	// resolved Open Question: preserve silent no-op idempotence).
	require.NoError(t, db.SetDefaultIdentityOfUser("ghost", identity))
	require.NoError(t, db.SetDefaultKeyIdOfIdentity("ghost", identity, enc.NewGenericComponent("k1")))
	require.NoError(t, db.SetDefaultCertificateNameOfKey("ghost", identity, enc.NewGenericComponent("k1"), identity))
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDb(t)

	_, ok, err := db.GetMeta("owner")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.SetMeta("owner", "alice"))
	val, ok, err := db.GetMeta("owner")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", val)

	require.NoError(t, db.SetMeta("owner", "bob"))
	val, ok, err = db.GetMeta("owner")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bob", val)
}

func TestOpenPibDbCreatesDir(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "nested", "dir")
	db, err := pib.OpenPibDb(nested)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.SetMeta("k", "v"))
}

package pib_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/pib"
)

// fakeFace is an in-memory ndn.Face double: it records route/handler churn
// without touching any real transport, enough to exercise Pib's lifecycle.
type fakeFace struct {
	routes   map[string]bool
	handlers map[string]ndn.InterestHandler
}

func newFakeFace() *fakeFace {
	return &fakeFace{routes: map[string]bool{}, handlers: map[string]ndn.InterestHandler{}}
}

func (f *fakeFace) RegisterRoute(prefix enc.Name) error {
	f.routes[prefix.String()] = true
	return nil
}

func (f *fakeFace) UnregisterRoute(prefix enc.Name) error {
	delete(f.routes, prefix.String())
	return nil
}

func (f *fakeFace) AttachHandler(prefix enc.Name, handler ndn.InterestHandler) error {
	if _, exists := f.handlers[prefix.String()]; exists {
		return ndn.ErrMultipleHandlers
	}
	f.handlers[prefix.String()] = handler
	return nil
}

func (f *fakeFace) DetachHandler(prefix enc.Name) error {
	delete(f.handlers, prefix.String())
	return nil
}

func TestNewPibBootstrapsFreshManagementCertificate(t *testing.T) {
	face := newFakeFace()
	dbDir := t.TempDir()
	tpmDir := t.TempDir()

	p, err := pib.NewPib(face, dbDir, "tpm-file:"+tpmDir, "alice")
	require.NoError(t, err)
	defer p.Close()

	require.NotNil(t, p.MgmtCertificate())
	require.True(t, face.routes["/localhost/pib/alice"])
	require.Contains(t, face.handlers, "/localhost/pib/alice/mgmt")
}

func TestNewPibIsIdempotentAcrossRestarts(t *testing.T) {
	face := newFakeFace()
	dbDir := t.TempDir()
	tpmDir := t.TempDir()

	p1, err := pib.NewPib(face, dbDir, "tpm-file:"+tpmDir, "alice")
	require.NoError(t, err)
	firstCertName := p1.MgmtCertificate().Name
	require.NoError(t, p1.Close())

	// A second construction over the same dbDir/tpmDir must adopt the
	// existing certificate rather than minting a new one (spec.md §4.3
	// step 4: adopt-if-private-key-present).
	face2 := newFakeFace()
	p2, err := pib.NewPib(face2, dbDir, "tpm-file:"+tpmDir, "alice")
	require.NoError(t, err)
	defer p2.Close()

	require.True(t, p2.MgmtCertificate().Name.Equal(firstCertName))
}

func TestNewPibRejectsOwnerMismatch(t *testing.T) {
	face := newFakeFace()
	dbDir := t.TempDir()
	tpmDir := t.TempDir()

	p1, err := pib.NewPib(face, dbDir, "tpm-file:"+tpmDir, "alice")
	require.NoError(t, err)
	require.NoError(t, p1.Close())

	_, err = pib.NewPib(newFakeFace(), dbDir, "tpm-file:"+tpmDir, "bob")
	require.Error(t, err)
	var mismatch pib.ErrOwnerMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestNewPibRejectsTpmLocatorMismatch(t *testing.T) {
	face := newFakeFace()
	dbDir := t.TempDir()
	tpmDir1 := t.TempDir()
	tpmDir2 := t.TempDir()

	p1, err := pib.NewPib(face, dbDir, "tpm-file:"+tpmDir1, "alice")
	require.NoError(t, err)
	require.NoError(t, p1.Close())

	_, err = pib.NewPib(newFakeFace(), dbDir, "tpm-file:"+tpmDir2, "alice")
	require.Error(t, err)
	var mismatch pib.ErrTpmMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestPibHandlesMgmtInterestByPublishingCertificate(t *testing.T) {
	face := newFakeFace()
	dbDir := t.TempDir()
	tpmDir := t.TempDir()

	p, err := pib.NewPib(face, dbDir, "tpm-file:"+tpmDir, "alice")
	require.NoError(t, err)
	defer p.Close()

	handler := face.handlers["/localhost/pib/alice/mgmt"]
	require.NotNil(t, handler)

	var got *ndn.EncodedData
	reply := func(result *ndn.EncodedData) error {
		got = result
		return nil
	}
	handler(nil, nil, nil, reply, time.Time{})

	require.NotNil(t, got)
	require.Equal(t, p.MgmtCertificate().Data, []byte(got.Wire[0]))
}

func TestPibCloseTearsDownFaceRegistrations(t *testing.T) {
	face := newFakeFace()
	p, err := pib.NewPib(face, t.TempDir(), "tpm-file:"+t.TempDir(), "alice")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.False(t, face.routes["/localhost/pib/alice"])
	require.NotContains(t, face.handlers, "/localhost/pib/alice/mgmt")
}

func TestCheckPolicyDelegatesToValidator(t *testing.T) {
	face := newFakeFace()
	p, err := pib.NewPib(face, t.TempDir(), "tpm-file:"+t.TempDir(), "alice")
	require.NoError(t, err)
	defer p.Close()

	badName, err := enc.NameFromStr("/localhost/pib/too/short")
	require.NoError(t, err)
	err = p.CheckPolicy(badName, enc.Wire{[]byte("x")}, fakeSig{typ: ndn.SignatureSha256WithRsa}, nil)
	require.Error(t, err)
	require.Equal(t, pib.ReasonBadParam, err.(pib.ErrValidationFailed).Reason)
}

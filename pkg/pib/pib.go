package pib

import (
	"fmt"
	"time"

	"github.com/apex/log"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

// Pib is the per-host service lifecycle of spec.md §4.3: it owns the
// database, the validator, the TPM, the active management certificate, and
// the face registrations, and exclusively governs their lifetimes (§5
// "Shared resources").
type Pib struct {
	owner string
	face  ndn.Face
	db    *PibDb
	tpm   tpm.Tpm
	val   *PibValidator

	mgmtCert *Certificate

	mgmtPrefix    enc.Name
	mgmtSubPrefix enc.Name
}

// NewPib constructs and brings up a Pib over (face, dbDir, tpmLocator,
// owner), implementing spec.md §4.3's six-step construction contract in
// full, including management-certificate reconciliation and face
// registration.
func NewPib(face ndn.Face, dbDir, tpmLocator, owner string) (*Pib, error) {
	db, err := OpenPibDb(dbDir)
	if err != nil {
		return nil, err
	}

	if err := reconcileMeta(db, "owner", owner, func(stored, requested string) error {
		return ErrOwnerMismatch{Stored: stored, Requested: requested}
	}); err != nil {
		db.Close()
		return nil, err
	}
	if err := reconcileMeta(db, "tpm-locator", tpmLocator, func(stored, requested string) error {
		return ErrTpmMismatch{Stored: stored, Requested: requested}
	}); err != nil {
		db.Close()
		return nil, err
	}

	_, location := tpm.ParseLocator(tpmLocator)
	t, err := tpm.New(tpmLocator)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("module", "Pib").WithField("tpm", tpmLocator).WithField("location", location).
		Info("TPM backend initialized")

	val, err := NewPibValidator(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	p := &Pib{
		owner:         owner,
		face:          face,
		db:            db,
		tpm:           t,
		val:           val,
		mgmtPrefix:    pibPrefix.Append(enc.NewGenericComponent(owner)),
		mgmtSubPrefix: pibPrefix.Append(enc.NewGenericComponent(owner), enc.NewGenericComponent("mgmt")),
	}

	if err := p.reconcileMgmtCert(); err != nil {
		db.Close()
		return nil, err
	}

	if err := db.SetMeta("tpm-locator", tpmLocator); err != nil {
		db.Close()
		return nil, err
	}

	if err := p.registerFace(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pib: %w: %v", errNetworkRegistration, err)
	}

	log.WithField("module", "Pib").WithField("owner", owner).
		Info("PIB service started")
	return p, nil
}

var errNetworkRegistration = fmt.Errorf("NetworkRegistration")

// reconcileMeta implements spec.md §4.3 step 2: an empty stored value
// means "not yet set" and matches anything; otherwise the stored and
// requested values must agree.
func reconcileMeta(db *PibDb, key, requested string, mismatch func(stored, requested string) error) error {
	stored, ok, err := db.GetMeta(key)
	if err != nil {
		return err
	}
	if !ok || stored == "" {
		return db.SetMeta(key, requested)
	}
	if stored != requested {
		return mismatch(stored, requested)
	}
	return nil
}

// reconcileMgmtCert implements spec.md §4.3 step 4: adopt the stored
// management certificate if its private key is still present in the TPM;
// otherwise mint a fresh one.
func (p *Pib) reconcileMgmtCert() error {
	cert, err := p.db.GetUserMgmtCertificate(p.owner)
	if _, isNoDefault := err.(ErrNoDefault); err != nil && !isNoDefault {
		return err
	}

	if err == nil && p.tpm.HasPrivateKey(cert.KeyName) {
		p.mgmtCert = cert
		log.WithField("module", "Pib").WithField("owner", p.owner).
			Info("adopted stored management certificate")
		return nil
	}

	now := time.Now()
	notBefore, notAfter := DefaultValidity(now)
	keyName := MgmtKeyName(p.owner, now.UnixMicro())

	fresh, err := BuildCertificate(p.tpm, keyName, tpm.KeyTypeRsa, 0, notBefore, notAfter, nil)
	if err != nil {
		return fmt.Errorf("pib: generating management certificate: %w", err)
	}

	if err := p.db.putMgmtCertificate(p.owner, fresh); err != nil {
		return err
	}
	p.mgmtCert = fresh
	log.WithField("module", "Pib").WithField("owner", p.owner).WithField("key", keyName.String()).
		Info("generated fresh management certificate")
	return nil
}

// registerFace implements spec.md §4.3 step 6: register the owner's prefix
// and install an interest filter on its /mgmt sub-prefix that publishes the
// active management certificate.
func (p *Pib) registerFace() error {
	if err := p.face.RegisterRoute(p.mgmtPrefix); err != nil {
		return err
	}
	return p.face.AttachHandler(p.mgmtSubPrefix, p.handleMgmtInterest)
}

func (p *Pib) handleMgmtInterest(
	interest ndn.Interest,
	rawInterest enc.Wire,
	sigCovered enc.Wire,
	reply func(result *ndn.EncodedData) error,
	deadline time.Time,
) {
	if p.mgmtCert == nil {
		log.WithField("module", "Pib").Warn("mgmt interest received before a certificate exists")
		return
	}
	if err := reply(&ndn.EncodedData{Wire: enc.Wire{p.mgmtCert.Data}}); err != nil {
		log.WithField("module", "Pib").WithError(err).Error("failed to publish management certificate")
	}
}

// CheckPolicy authenticates a signed management request against this Pib's
// validator, per spec.md §4.2.
func (p *Pib) CheckPolicy(name enc.Name, sigCovered enc.Wire, sig ndn.Signature, param *UpdateParam) error {
	return p.val.CheckPolicy(name, sigCovered, sig, param)
}

// Db exposes the underlying PibDb for dispatcher code implementing the
// get/update/delete/list/default verbs of spec.md §6.
func (p *Pib) Db() *PibDb { return p.db }

// MgmtCertificate returns the currently active management certificate.
func (p *Pib) MgmtCertificate() *Certificate { return p.mgmtCert }

// Close implements spec.md §4.3's destruction contract: unregister the
// prefix and interest filter, then release the database handle.
func (p *Pib) Close() error {
	if err := p.face.DetachHandler(p.mgmtSubPrefix); err != nil {
		log.WithField("module", "Pib").WithError(err).Warn("failed to detach mgmt handler")
	}
	if err := p.face.UnregisterRoute(p.mgmtPrefix); err != nil {
		log.WithField("module", "Pib").WithError(err).Warn("failed to unregister prefix")
	}
	return p.db.Close()
}

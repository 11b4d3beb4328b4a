package pib

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/cornelk/hashmap"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/security"
)

// regularKeyCacheCapacity is the per-user bound on UserKeyCache's regular
// (non-management) key cache, spec.md §4.2's "small LRU-bounded mapping".
const regularKeyCacheCapacity = 32

// UserKeyCache holds one user's management certificate plus a small
// LRU-bounded mapping of regular public keys, per spec.md §4.2.
type UserKeyCache struct {
	mu          sync.RWMutex
	mgmtCert    *Certificate
	regularKeys *regularKeyLru
}

func newUserKeyCache() *UserKeyCache {
	return &UserKeyCache{regularKeys: newRegularKeyLru(regularKeyCacheCapacity)}
}

func (e *UserKeyCache) mgmt() *Certificate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mgmtCert
}

// PibValidator authenticates signed management requests against a cached
// trust view of PibDb, per spec.md §4.2. It implements DbObserver so PibDb
// can notify it without knowing its concrete type (§9 design note). The
// per-user registry is a lock-free concurrent map so a lookup during
// signature verification never blocks a DB-event cache update arriving
// concurrently (see SPEC_FULL.md §11).
type PibValidator struct {
	db    *PibDb
	cache *hashmap.HashMap // userName string -> *UserKeyCache
}

// NewPibValidator constructs a validator over db, preloading one cache
// entry per user already present. The "root" entry always exists, even
// before the root user is installed, per §4.2.
func NewPibValidator(db *PibDb) (*PibValidator, error) {
	v := &PibValidator{
		db:    db,
		cache: &hashmap.HashMap{},
	}
	v.cache.Set("root", newUserKeyCache())

	users, err := db.ListUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := v.refreshUser(u); err != nil {
			return nil, err
		}
	}
	db.RegisterObserver(v)
	return v, nil
}

func (v *PibValidator) entry(userName string) (*UserKeyCache, bool) {
	val, ok := v.cache.Get(userName)
	if !ok {
		return nil, false
	}
	return val.(*UserKeyCache), true
}

func (v *PibValidator) refreshUser(userName string) error {
	cert, err := v.db.GetUserMgmtCertificate(userName)
	if _, isNoDefault := err.(ErrNoDefault); isNoDefault {
		if _, ok := v.entry(userName); !ok {
			v.cache.Set(userName, newUserKeyCache())
		}
		return nil
	}
	if err != nil {
		return err
	}
	entry, ok := v.entry(userName)
	if !ok {
		entry = newUserKeyCache()
		v.cache.Set(userName, entry)
	}
	entry.mu.Lock()
	entry.mgmtCert = cert
	entry.mu.Unlock()
	return nil
}

// OnUserChanged implements DbObserver: refresh/insert the entry if the user
// still exists; erase it otherwise. "root" is reset rather than erased,
// matching §4.2's "the entry root is always present".
func (v *PibValidator) OnUserChanged(userName string) {
	if v.db.HasUser(userName) {
		_ = v.refreshUser(userName)
		return
	}
	if userName == "root" {
		v.cache.Set("root", newUserKeyCache())
		return
	}
	v.cache.Del(userName)
}

// OnKeyDeleted implements DbObserver: evict the regular-key cache entry for
// the deleted key, if any.
func (v *PibValidator) OnKeyDeleted(userName string, identity enc.Name, keyId enc.Component) {
	entry, ok := v.entry(userName)
	if !ok {
		return
	}
	keyName := identity.Append(keyId)
	entry.regularKeys.Delete(keyName.String())
}

// ValidateData always rejects: spec.md §4.2 "the PIB does not issue
// interests that expect replies the validator must authenticate".
func (v *PibValidator) ValidateData(enc.Name) error {
	return rejected(ReasonBadUsage)
}

// CheckPolicy implements the six-step state machine of spec.md §4.2 for an
// incoming signed management Interest. sigCovered is the signed portion of
// the Interest wire and sig its signature; param is the decoded
// UpdateParam carried by the request when verb is "update" (nil otherwise),
// needed only for the self-registration path.
func (v *PibValidator) CheckPolicy(name enc.Name, sigCovered enc.Wire, sig ndn.Signature, param *UpdateParam) error {
	if !IsRequestNameShape(name) {
		return rejected(ReasonBadParam)
	}
	if sig == nil {
		return rejected(ReasonNotSigned)
	}

	userName := RequestUser(name)
	verb := RequestVerb(name)

	entry, known := v.entry(userName)
	if !known || entry.mgmt() == nil {
		return v.checkSelfRegistration(verb, sigCovered, sig, param)
	}

	switch sig.KeyLocatorKind() {
	case ndn.KeyLocatorAbsent:
		return rejected(ReasonNoKeyLocator)
	case ndn.KeyLocatorDigest:
		return rejected(ReasonBadKeyLocator)
	}
	locator := sig.KeyName()
	if len(locator) == 0 {
		return rejected(ReasonBadKeyLocator)
	}

	if root := v.rootMgmtCert(); root != nil && locator.Equal(root.Name.Prefix(-1)) {
		return v.verify(sigCovered, sig, root.PublicKeyInfo)
	}

	mgmt := entry.mgmt()
	if mgmt != nil && locator.Equal(mgmt.Name.Prefix(-1)) {
		return v.verify(sigCovered, sig, mgmt.PublicKeyInfo)
	}

	keyName := CertKeyName(locator)
	keyNameStr := keyName.String()
	if pub, ok := entry.regularKeys.Get(keyNameStr); ok {
		return v.verify(sigCovered, sig, pub)
	}

	_, pub, err := v.db.GetKey(userName, IdentityOfKeyName(keyName), KeyIdOf(keyName))
	if err != nil {
		return rejected(ReasonUntrustedKey)
	}
	entry.regularKeys.Put(keyNameStr, pub)
	return v.verify(sigCovered, sig, pub)
}

func (v *PibValidator) rootMgmtCert() *Certificate {
	entry, ok := v.entry("root")
	if !ok {
		return nil
	}
	return entry.mgmt()
}

func (v *PibValidator) checkSelfRegistration(verb string, sigCovered enc.Wire, sig ndn.Signature, param *UpdateParam) error {
	if verb != "update" || param == nil || param.Kind != EntityUser || param.User == nil {
		return rejected(ReasonUnknownUser)
	}
	cert := param.User.MgmtCertificate
	if cert == nil {
		return rejected(ReasonBadParam)
	}
	if err := v.verify(sigCovered, sig, cert.PublicKeyInfo); err != nil {
		return rejected(ReasonBadSignature)
	}
	return nil
}

// verify dispatches to the concrete validator in pkg/security matching
// sig's signature type, parsing pubKeyInfo (an ASN.1 DER / PKIX-encoded
// public key) as needed.
func (v *PibValidator) verify(sigCovered enc.Wire, sig ndn.Signature, pubKeyInfo []byte) error {
	ok, err := verifySignature(sigCovered, sig, pubKeyInfo)
	if err != nil {
		return rejected(ReasonBadSignature)
	}
	if !ok {
		return rejected(ReasonBadSignature)
	}
	return nil
}

func verifySignature(sigCovered enc.Wire, sig ndn.Signature, pubKeyInfo []byte) (bool, error) {
	switch sig.SigType() {
	case ndn.SignatureSha256WithRsa:
		pub, err := x509.ParsePKIXPublicKey(pubKeyInfo)
		if err != nil {
			return false, err
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return false, fmt.Errorf("pib: key is not RSA")
		}
		return security.RsaValidate(sigCovered, sig, rsaPub), nil
	case ndn.SignatureSha256WithEcdsa:
		pub, err := x509.ParsePKIXPublicKey(pubKeyInfo)
		if err != nil {
			return false, err
		}
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return false, fmt.Errorf("pib: key is not ECDSA")
		}
		return security.EcdsaValidate(sigCovered, sig, ecdsaPub), nil
	default:
		return false, fmt.Errorf("pib: unsupported signature type %v", sig.SigType())
	}
}

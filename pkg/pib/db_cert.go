package pib

import (
	"fmt"

	"golang.org/x/exp/slices"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

// AddCertificate inserts cert, auto-creating its parent key (and that key's
// parent identity) if absent, recording the key type and public key info
// from cert's own public-key field, per spec.md §4.1.
func (p *PibDb) AddCertificate(userName string, cert *Certificate) error {
	identity := cert.Identity()
	keyId := cert.KeyId()

	if !p.HasKey(userName, identity, keyId) {
		if err := p.AddKey(userName, identity, keyId, cert.KeyType, cert.PublicKeyInfo); err != nil {
			return err
		}
	}

	_, err := p.db.Exec(
		`INSERT INTO certificates(user_name, certificate_name, identity, key_id, certificate_data)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_name, certificate_name) DO UPDATE SET certificate_data = excluded.certificate_data`,
		userName, cert.Name.Bytes(), identity.Bytes(), keyId.Bytes(), cert.Data,
	)
	return err
}

// HasCertificate reports whether (userName, certName) is installed.
func (p *PibDb) HasCertificate(userName string, certName enc.Name) bool {
	var id int64
	err := p.db.QueryRow(
		"SELECT id FROM certificates WHERE user_name = ? AND certificate_name = ?",
		userName, certName.Bytes(),
	).Scan(&id)
	return err == nil
}

// GetCertificate returns the stored certificate (userName, certName).
func (p *PibDb) GetCertificate(userName string, certName enc.Name) (*Certificate, error) {
	var data []byte
	err := p.db.QueryRow(
		"SELECT certificate_data FROM certificates WHERE user_name = ? AND certificate_name = ?",
		userName, certName.Bytes(),
	).Scan(&data)
	if err != nil {
		return nil, err
	}
	cert, _, _, _, err := decodeCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("pib: decoding certificate %s: %w", certName.String(), err)
	}
	return cert, nil
}

// DeleteCertificate removes (userName, certName). No-op if absent.
func (p *PibDb) DeleteCertificate(userName string, certName enc.Name) error {
	_, err := p.db.Exec(
		"DELETE FROM certificates WHERE user_name = ? AND certificate_name = ?",
		userName, certName.Bytes(),
	)
	return err
}

// ListCertificatesOfUser returns every certificate name userName owns.
func (p *PibDb) ListCertificatesOfUser(userName string) ([]enc.Name, error) {
	rows, err := p.db.Query(
		"SELECT certificate_name FROM certificates WHERE user_name = ?",
		userName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []enc.Name
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		name, err := enc.NameFromBytes(data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
	}
	slices.SortFunc(ret, func(a, b enc.Name) bool { return a.Compare(b) < 0 })
	return ret, rows.Err()
}

// GetDefaultCertificateOfUser resolves the default-pointer chain: the
// user's default identity, that identity's default key, that key's default
// certificate — the convenience accessor named in SPEC_FULL.md §4.1.
func (p *PibDb) GetDefaultCertificateOfUser(userName string) (*Certificate, error) {
	identity, err := p.GetDefaultIdentityOfUser(userName)
	if err != nil {
		return nil, err
	}
	keyId, err := p.GetDefaultKeyIdOfIdentity(userName, identity)
	if err != nil {
		return nil, err
	}
	certName, err := p.GetDefaultCertificateNameOfKey(userName, identity, keyId)
	if err != nil {
		return nil, err
	}
	return p.GetCertificate(userName, certName)
}

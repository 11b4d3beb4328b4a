package pib

import (
	"database/sql"

	"golang.org/x/exp/slices"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

// AddKey inserts a key row, auto-creating its parent identity first if
// absent (spec.md §4.1).
func (p *PibDb) AddKey(userName string, identity enc.Name, keyId enc.Component, keyType tpm.KeyType, keyBits []byte) error {
	if err := p.AddIdentity(userName, identity); err != nil {
		return err
	}
	_, err := p.db.Exec(
		`INSERT INTO keys(user_name, identity, key_id, key_type, key_bits)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_name, identity, key_id)
		 DO UPDATE SET key_type = excluded.key_type, key_bits = excluded.key_bits`,
		userName, identity.Bytes(), keyId.Bytes(), int(keyType), keyBits,
	)
	return err
}

// HasKey reports whether (userName, identity, keyId) is installed.
func (p *PibDb) HasKey(userName string, identity enc.Name, keyId enc.Component) bool {
	var id int64
	err := p.db.QueryRow(
		"SELECT id FROM keys WHERE user_name = ? AND identity = ? AND key_id = ?",
		userName, identity.Bytes(), keyId.Bytes(),
	).Scan(&id)
	return err == nil
}

// GetKey returns the key type and public key bits for (userName, identity, keyId).
func (p *PibDb) GetKey(userName string, identity enc.Name, keyId enc.Component) (tpm.KeyType, []byte, error) {
	var keyType int
	var bits []byte
	err := p.db.QueryRow(
		"SELECT key_type, key_bits FROM keys WHERE user_name = ? AND identity = ? AND key_id = ?",
		userName, identity.Bytes(), keyId.Bytes(),
	).Scan(&keyType, &bits)
	if err != nil {
		return 0, nil, err
	}
	return tpm.KeyType(keyType), bits, nil
}

// DeleteKey removes (userName, identity, keyId) and its certificates.
// OnKeyDeleted fires only if a key row was actually removed.
func (p *PibDb) DeleteKey(userName string, identity enc.Name, keyId enc.Component) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM certificates WHERE user_name = ? AND identity = ? AND key_id = ?",
		userName, identity.Bytes(), keyId.Bytes(),
	); err != nil {
		return err
	}
	res, err := tx.Exec(
		"DELETE FROM keys WHERE user_name = ? AND identity = ? AND key_id = ?",
		userName, identity.Bytes(), keyId.Bytes(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	if n > 0 {
		p.notifyKeyDeleted(userName, identity, keyId)
	}
	return nil
}

// ListKeysOfUser returns every (identity, keyId) pair userName owns.
func (p *PibDb) ListKeysOfUser(userName string) ([]enc.Name, error) {
	rows, err := p.db.Query("SELECT identity, key_id FROM keys WHERE user_name = ?", userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []enc.Name
	for rows.Next() {
		var idData, kidData []byte
		if err := rows.Scan(&idData, &kidData); err != nil {
			return nil, err
		}
		identity, err := enc.NameFromBytes(idData)
		if err != nil {
			return nil, err
		}
		kid, err := enc.ComponentFromBytes(kidData)
		if err != nil {
			return nil, err
		}
		ret = append(ret, identity.Append(*kid))
	}
	slices.SortFunc(ret, func(a, b enc.Name) bool { return a.Compare(b) < 0 })
	return ret, rows.Err()
}

// SetDefaultCertificateNameOfKey updates a key's default certificate name.
// Silently no-ops if the key row does not exist.
func (p *PibDb) SetDefaultCertificateNameOfKey(userName string, identity enc.Name, keyId enc.Component, certName enc.Name) error {
	_, err := p.db.Exec(
		`UPDATE keys SET default_certificate_name = ?
		 WHERE user_name = ? AND identity = ? AND key_id = ?`,
		certName.Bytes(), userName, identity.Bytes(), keyId.Bytes(),
	)
	return err
}

// GetDefaultCertificateNameOfKey returns a key's default certificate name,
// or ErrNoDefault if unset.
func (p *PibDb) GetDefaultCertificateNameOfKey(userName string, identity enc.Name, keyId enc.Component) (enc.Name, error) {
	var data []byte
	err := p.db.QueryRow(
		`SELECT default_certificate_name FROM keys
		 WHERE user_name = ? AND identity = ? AND key_id = ?`,
		userName, identity.Bytes(), keyId.Bytes(),
	).Scan(&data)
	if err == sql.ErrNoRows || (err == nil && data == nil) {
		return nil, ErrNoDefault{Entity: "certificate", Key: identity.Append(keyId).String()}
	}
	if err != nil {
		return nil, err
	}
	return enc.NameFromBytes(data)
}

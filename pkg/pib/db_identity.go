package pib

import (
	"database/sql"

	"golang.org/x/exp/slices"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

// AddIdentity inserts (userName, identity) if not already present.
func (p *PibDb) AddIdentity(userName string, identity enc.Name) error {
	_, err := p.db.Exec(
		`INSERT INTO identities(user_name, identity) VALUES (?, ?)
		 ON CONFLICT(user_name, identity) DO NOTHING`,
		userName, identity.Bytes(),
	)
	return err
}

// HasIdentity reports whether (userName, identity) is installed.
func (p *PibDb) HasIdentity(userName string, identity enc.Name) bool {
	var id int64
	err := p.db.QueryRow(
		"SELECT id FROM identities WHERE user_name = ? AND identity = ?",
		userName, identity.Bytes(),
	).Scan(&id)
	return err == nil
}

// DeleteIdentity removes (userName, identity) and cascades to its keys and
// their certificates. No-op if absent.
func (p *PibDb) DeleteIdentity(userName string, identity enc.Name) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	idBytes := identity.Bytes()

	rows, err := tx.Query(
		"SELECT key_id FROM keys WHERE user_name = ? AND identity = ?",
		userName, idBytes,
	)
	if err != nil {
		return err
	}
	var keyIds [][]byte
	for rows.Next() {
		var kid []byte
		if err := rows.Scan(&kid); err != nil {
			rows.Close()
			return err
		}
		keyIds = append(keyIds, kid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"DELETE FROM certificates WHERE user_name = ? AND identity = ?",
		userName, idBytes,
	); err != nil {
		return err
	}
	res, err := tx.Exec(
		"DELETE FROM keys WHERE user_name = ? AND identity = ?",
		userName, idBytes,
	)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		"DELETE FROM identities WHERE user_name = ? AND identity = ?",
		userName, idBytes,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		for _, kidBytes := range keyIds {
			kid, err := enc.ComponentFromBytes(kidBytes)
			if err != nil {
				continue
			}
			p.notifyKeyDeleted(userName, identity, *kid)
		}
	}
	return nil
}

// ListIdentitiesOfUser returns every identity userName owns.
func (p *PibDb) ListIdentitiesOfUser(userName string) ([]enc.Name, error) {
	rows, err := p.db.Query("SELECT identity FROM identities WHERE user_name = ?", userName)
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

// SetDefaultKeyIdOfIdentity updates (userName, identity)'s default key id.
// Silently no-ops if the identity row does not exist.
func (p *PibDb) SetDefaultKeyIdOfIdentity(userName string, identity enc.Name, keyId enc.Component) error {
	_, err := p.db.Exec(
		"UPDATE identities SET default_key_id = ? WHERE user_name = ? AND identity = ?",
		keyId.Bytes(), userName, identity.Bytes(),
	)
	return err
}

// GetDefaultKeyIdOfIdentity returns (userName, identity)'s default key id,
// or ErrNoDefault if unset.
func (p *PibDb) GetDefaultKeyIdOfIdentity(userName string, identity enc.Name) (enc.Component, error) {
	var data []byte
	err := p.db.QueryRow(
		"SELECT default_key_id FROM identities WHERE user_name = ? AND identity = ?",
		userName, identity.Bytes(),
	).Scan(&data)
	if err == sql.ErrNoRows || (err == nil && data == nil) {
		return enc.Component{}, ErrNoDefault{Entity: "key", Key: identity.String()}
	}
	if err != nil {
		return enc.Component{}, err
	}
	kid, err := enc.ComponentFromBytes(data)
	if err != nil {
		return enc.Component{}, err
	}
	return *kid, nil
}

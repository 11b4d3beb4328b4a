// Package pib implements the Public-Key Information Base core: the
// persistent store (PibDb), the command authenticator (PibValidator), and
// the service lifecycle (Pib).
package pib

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slices"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL UNIQUE,
	mgmt_certificate BLOB NOT NULL,
	default_identity BLOB
);
CREATE TABLE IF NOT EXISTS identities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL,
	identity BLOB NOT NULL,
	default_key_id BLOB,
	UNIQUE(user_name, identity)
);
CREATE TABLE IF NOT EXISTS keys (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL,
	identity BLOB NOT NULL,
	key_id BLOB NOT NULL,
	key_type INTEGER NOT NULL,
	key_bits BLOB NOT NULL,
	default_certificate_name BLOB,
	UNIQUE(user_name, identity, key_id)
);
CREATE TABLE IF NOT EXISTS certificates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_name TEXT NOT NULL,
	certificate_name BLOB NOT NULL,
	identity BLOB NOT NULL,
	key_id BLOB NOT NULL,
	certificate_data BLOB NOT NULL,
	UNIQUE(user_name, certificate_name)
);
`

// PibDb is the four-table persistent store named in spec.md §4.1. Every
// statement is prepared, bound, stepped, and released within the method
// that issues it, per the §9 design note — no cached prepared statements
// are kept across calls.
type PibDb struct {
	db        *sql.DB
	observers []DbObserver
}

// OpenPibDb opens (creating if necessary) <dbDir>/pib.db and ensures the
// schema exists, per spec.md §4.1/§6. An empty dbDir defaults to
// $HOME/.ndn, per §6's on-disk layout note.
func OpenPibDb(dbDir string) (*PibDb, error) {
	if dbDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, ErrDbOpen{Path: dbDir, Err: err}
		}
		dbDir = filepath.Join(home, ".ndn")
	}
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return nil, ErrDbOpen{Path: dbDir, Err: err}
	}

	path := filepath.Join(dbDir, "pib.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, ErrDbOpen{Path: path, Err: err}
	}
	// go-sqlite3 does not support concurrent writers on one *sql.DB; a
	// single connection matches spec.md §5's single-process assumption
	// and lets the engine's own locking serialize access, per §4.1.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, ErrDbOpen{Path: path, Err: err}
	}

	return &PibDb{db: db}, nil
}

// Close releases the underlying database handle.
func (p *PibDb) Close() error {
	return p.db.Close()
}

// RegisterObserver adds o to the set notified of user/key mutations.
func (p *PibDb) RegisterObserver(o DbObserver) {
	p.observers = append(p.observers, o)
}

func (p *PibDb) notifyUserChanged(userName string) {
	for _, o := range p.observers {
		o.OnUserChanged(userName)
	}
}

func (p *PibDb) notifyKeyDeleted(userName string, identity enc.Name, keyId enc.Component) {
	for _, o := range p.observers {
		o.OnKeyDeleted(userName, identity, keyId)
	}
}

// --- meta (owner / TPM locator persistence for Pib) ---

func (p *PibDb) GetMeta(key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *PibDb) SetMeta(key, value string) error {
	_, err := p.db.Exec(
		`INSERT INTO meta(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// --- users ---

// AddRootUser installs cert as the root user's management certificate.
// Fails with ErrBadShape unless cert's key name has the root shape spec.md
// §3 requires. Replaces any prior root. Emits OnUserChanged("root").
func (p *PibDb) AddRootUser(cert *Certificate) error {
	if !IsRootKeyShape(cert.KeyName) {
		return ErrBadShape{Name: cert.KeyName.String(), Want: "/localhost/pib/user/<KeyId> (4 components)"}
	}
	if err := p.upsertUser("root", cert); err != nil {
		return err
	}
	p.notifyUserChanged("root")
	return nil
}

// AddUser installs cert as a user's management certificate, deriving
// userName from the key name's fifth component. Fails with ErrBadShape if
// the name shape is wrong, or if the derived user name is "root"
// (case-insensitive — reserved for AddRootUser).
func (p *PibDb) AddUser(cert *Certificate) error {
	userName, ok := IsUserKeyShape(cert.KeyName)
	if !ok {
		return ErrBadShape{Name: cert.KeyName.String(), Want: "/localhost/pib/user/<UserName>/<KeyId> (5 components)"}
	}
	if strings.EqualFold(userName, "root") {
		return ErrBadShape{Name: cert.KeyName.String(), Want: "user name other than \"root\""}
	}
	if err := p.upsertUser(userName, cert); err != nil {
		return err
	}
	p.notifyUserChanged(userName)
	return nil
}

// putMgmtCertificate stores cert as userName's management certificate
// without the root/user key-name shape check AddRootUser/AddUser enforce.
// Pib's own bootstrap (spec.md §4.3 step 4) mints certificates under the
// distinct "management key name" convention of §3 ("/localhost/pib/<owner>
// /mgmt/dsk-<unixMicros>"), not the root/user subject-key shapes those
// public entry points validate against; this is the internal path Pib
// itself uses to persist what it just generated.
func (p *PibDb) putMgmtCertificate(userName string, cert *Certificate) error {
	if err := p.upsertUser(userName, cert); err != nil {
		return err
	}
	p.notifyUserChanged(userName)
	return nil
}

func (p *PibDb) upsertUser(userName string, cert *Certificate) error {
	_, err := p.db.Exec(
		`INSERT INTO users(user_name, mgmt_certificate) VALUES (?, ?)
		 ON CONFLICT(user_name) DO UPDATE SET mgmt_certificate = excluded.mgmt_certificate`,
		userName, cert.Data,
	)
	return err
}

// HasUser reports whether userName has an installed management certificate.
func (p *PibDb) HasUser(userName string) bool {
	var id int64
	err := p.db.QueryRow("SELECT id FROM users WHERE user_name = ?", userName).Scan(&id)
	return err == nil
}

// GetUserMgmtCertificate returns userName's stored management certificate.
func (p *PibDb) GetUserMgmtCertificate(userName string) (*Certificate, error) {
	var data []byte
	err := p.db.QueryRow("SELECT mgmt_certificate FROM users WHERE user_name = ?", userName).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNoDefault{Entity: "user", Key: userName}
	}
	if err != nil {
		return nil, err
	}
	cert, _, _, _, err := decodeCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("pib: decoding stored management certificate for %q: %w", userName, err)
	}
	return cert, nil
}

// ListUsers returns every installed user name, including "root" if present.
func (p *PibDb) ListUsers() ([]string, error) {
	rows, err := p.db.Query("SELECT user_name FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret, rows.Err()
}

// DeleteUser removes userName and cascades to every identity, key, and
// certificate it owns. No-op if userName is absent. Runs inside a single
// transaction so a reader never observes a partially-cascaded state
// (spec.md §4.1's durability contract).
func (p *PibDb) DeleteUser(userName string) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM users WHERE user_name = ?", userName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	if _, err := tx.Exec("DELETE FROM certificates WHERE user_name = ?", userName); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM keys WHERE user_name = ?", userName); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM identities WHERE user_name = ?", userName); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.notifyUserChanged(userName)
	return nil
}

// SetDefaultIdentityOfUser updates userName's default identity. Silently
// no-ops if userName does not exist (spec.md §4.1/§7: preserved idempotence).
func (p *PibDb) SetDefaultIdentityOfUser(userName string, identity enc.Name) error {
	_, err := p.db.Exec(
		"UPDATE users SET default_identity = ? WHERE user_name = ?",
		identity.Bytes(), userName,
	)
	return err
}

// GetDefaultIdentityOfUser returns userName's default identity, or
// ErrNoDefault if unset.
func (p *PibDb) GetDefaultIdentityOfUser(userName string) (enc.Name, error) {
	var data []byte
	err := p.db.QueryRow("SELECT default_identity FROM users WHERE user_name = ?", userName).Scan(&data)
	if err == sql.ErrNoRows || (err == nil && data == nil) {
		return nil, ErrNoDefault{Entity: "identity", Key: userName}
	}
	if err != nil {
		return nil, err
	}
	return enc.NameFromBytes(data)
}

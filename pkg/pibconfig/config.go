// Package pibconfig reads the TOML configuration file a pibd process
// starts from: the three required keys spec.md §6 names (pib-dir, tpm-dir,
// pib-root), using pelletier/go-toml rather than hand-rolling a parser
// (SPEC_FULL.md §6 supplement trades the original's INI syntax for TOML,
// keeping the same three-key/ConfigMissing contract).
package pibconfig

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// Config is the parsed configuration, with a relative PibRoot already
// resolved against the config file's own directory (spec.md §6).
type Config struct {
	pibDir  string
	tpmDir  string
	pibRoot string
}

// ErrConfigMissing is returned when a required key is absent from the file.
type ErrConfigMissing struct {
	Key string
}

func (e ErrConfigMissing) Error() string {
	return fmt.Sprintf("pibconfig: missing required key %q", e.Key)
}

// ErrConfigParse is returned when the file cannot be parsed as TOML.
type ErrConfigParse struct {
	Path string
	Err  error
}

func (e ErrConfigParse) Error() string {
	return fmt.Sprintf("pibconfig: parsing %s: %v", e.Path, e.Err)
}

func (e ErrConfigParse) Unwrap() error { return e.Err }

// Load reads and validates the TOML configuration file at path, per
// spec.md §6: pib-dir, tpm-dir, pib-root are all required; pib-root is
// resolved relative to path's directory.
func Load(path string) (*Config, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, ErrConfigParse{Path: path, Err: err}
	}

	pibDir, err := requiredString(tree, "pib-dir")
	if err != nil {
		return nil, err
	}
	tpmDir, err := requiredString(tree, "tpm-dir")
	if err != nil {
		return nil, err
	}
	pibRoot, err := requiredString(tree, "pib-root")
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(pibRoot) {
		pibRoot = filepath.Join(filepath.Dir(path), pibRoot)
	}

	return &Config{pibDir: pibDir, tpmDir: tpmDir, pibRoot: pibRoot}, nil
}

func requiredString(tree *toml.Tree, key string) (string, error) {
	val := tree.Get(key)
	if val == nil {
		return "", ErrConfigMissing{Key: key}
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", ErrConfigMissing{Key: key}
	}
	return s, nil
}

// PibDir is the database directory, the getPibLocator() equivalent.
func (c *Config) PibDir() string { return c.pibDir }

// TpmDir is the TPM's location string (passed after the scheme prefix),
// the getTpmLocator() equivalent.
func (c *Config) TpmDir() string { return c.tpmDir }

// PibRoot is the path to the root-user management certificate file. A
// relative pib-root value is joined onto the config file's directory, so the
// result is absolute only when that directory is. The file itself is not read.
func (c *Config) PibRoot() string { return c.pibRoot }

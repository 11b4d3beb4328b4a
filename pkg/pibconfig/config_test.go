package pibconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/named-data/go-pib/pkg/pibconfig"
)

func writeConfig(t *testing.T, dir, body string) string {
	path := filepath.Join(dir, "pibd.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadResolvesRelativePibRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
pib-dir = "/var/lib/pib/db"
tpm-dir = "/var/lib/pib/tpm"
pib-root = "root-cert.bin"
`)

	cfg, err := pibconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pib/db", cfg.PibDir())
	require.Equal(t, "/var/lib/pib/tpm", cfg.TpmDir())
	require.Equal(t, filepath.Join(dir, "root-cert.bin"), cfg.PibRoot())
}

func TestLoadKeepsAbsolutePibRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
pib-dir = "db"
tpm-dir = "tpm"
pib-root = "/etc/pib/root-cert.bin"
`)

	cfg, err := pibconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/etc/pib/root-cert.bin", cfg.PibRoot())
}

func TestLoadMissingKey(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
pib-dir = "db"
tpm-dir = "tpm"
`)

	_, err := pibconfig.Load(path)
	require.Error(t, err)
	var missing pibconfig.ErrConfigMissing
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "pib-root", missing.Key)
}

func TestLoadUnparsableFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `not = [valid toml`)

	_, err := pibconfig.Load(path)
	require.Error(t, err)
	var parseErr pibconfig.ErrConfigParse
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := pibconfig.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

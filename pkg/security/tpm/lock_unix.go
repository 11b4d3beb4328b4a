//go:build linux || darwin

package tpm

import (
	"fmt"
	"os"
	"path"

	"golang.org/x/sys/unix"
)

// lockDir takes an advisory exclusive flock on a sentinel file inside the
// TPM directory for the duration of a key-file mutation, satisfying
// spec.md §4.1's "alternate locking discipline ... selectable at open time"
// note generalized to the TPM's own file store.
func (tpm *FileTpm) lockDir() (unlock func(), err error) {
	lockPath := path.Join(tpm.dir, ".lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("tpm-file: opening lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("tpm-file: acquiring lock: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

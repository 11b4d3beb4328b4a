//go:build !linux && !darwin

package tpm

// lockDir is a no-op on platforms without an advisory flock primitive
// wired in; FileTpm still serializes through the single-process contract
// spec.md §5 assumes.
func (tpm *FileTpm) lockDir() (unlock func(), err error) {
	return func() {}, nil
}

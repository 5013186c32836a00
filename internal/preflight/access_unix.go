//go:build unix

package preflight

import "golang.org/x/sys/unix"

// checkReadWrite reports whether the current user can list, read and write dir.
func checkReadWrite(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK)
}

// checkCreatable reports whether the current user can create entries in dir.
func checkCreatable(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}

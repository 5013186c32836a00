//go:build !unix

package preflight

import (
	"fmt"
	"os"
)

func checkReadWrite(dir string) error {
	if _, err := os.ReadDir(dir); err != nil {
		return err
	}
	return tryWrite(dir)
}

func checkCreatable(dir string) error {
	return tryWrite(dir)
}

// tryWrite creates and removes a temporary file in dir; permission bits do
// not describe ACL-based access on these platforms.
func tryWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".apod-preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	closeErr := f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove test file: %w", err)
	}
	return closeErr
}

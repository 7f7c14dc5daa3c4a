package cleanup

import (
	"errors"
	"fmt"
	"os"
)

// Clean removes each directory and everything inside it. Directories that
// do not exist are skipped, so calling Clean repeatedly is safe.
func Clean(dirs ...string) error {
	var errs []error
	for _, dir := range dirs {
		err := os.RemoveAll(dir)
		if err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", dir, err))
		}
	}
	return errors.Join(errs...)
}

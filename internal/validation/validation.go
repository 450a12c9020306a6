// Package validation checks command-line arguments before any work starts.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// OutputFormats are the accepted export formats.
var OutputFormats = []string{"xlsx", "csv"}

// IsValidOutputFormat accepts "", which defers to configuration, or one of OutputFormats.
func IsValidOutputFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range OutputFormats {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s", format, strings.Join(OutputFormats, ", "))
}

// IsValidDirectory checks that path exists and is a directory.
func IsValidDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

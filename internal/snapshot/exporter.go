package snapshot

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/starford/oikos/internal/storage"
)

// ExportDir is the data-directory subfolder that receives export files.
const ExportDir = "exports"

// ExportFileName returns the timestamped file name for an export.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("oikos-backup-%d.json", now.UnixMilli())
}

// WriteExport encodes the state and writes it atomically to a timestamped
// file under the export folder, returning the relative path and the encoded
// document.
func WriteExport(provider storage.Provider, s State, now time.Time) (string, []byte, error) {
	data, err := Encode(s, now)
	if err != nil {
		return "", nil, err
	}
	rel := filepath.Join(ExportDir, ExportFileName(now))
	if err := provider.Write(rel, data); err != nil {
		return "", nil, err
	}
	return rel, data, nil
}

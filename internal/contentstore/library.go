package contentstore

import (
	"bytes"
	"log/slog"

	"github.com/starford/oikos/internal/models"
	"github.com/starford/oikos/internal/storage"
)

// LibraryDir is the data-directory subfolder scanned for unit content files.
const LibraryDir = "library"

// LoadLibrary reads every .json file under the library folder and upserts its
// units into the store. A file holds either one lesson object or an array of
// lessons, in the canonical or legacy shape. Files that fail to decode are
// skipped with a warning; loading never fails the whole pass.
func LoadLibrary(store *Store, provider storage.Provider, logger *slog.Logger) error {
	paths, err := provider.List(LibraryDir)
	if err != nil {
		return err
	}

	for _, p := range paths {
		data, err := provider.Read(p)
		if err != nil {
			logger.Warn("library: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		lessons, err := decodeLessonFile(data)
		if err != nil {
			logger.Warn("library: decode failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		for _, l := range lessons {
			if len(l.Pages) == 0 {
				logger.Warn("library: unit without pages skipped",
					slog.String("path", p), slog.Int("unit", l.UnitNumber))
				continue
			}
			for _, page := range l.Pages {
				outcome := store.UpsertPage(l.UnitNumber, l.Title, page.PageNumber, page.Sections)
				logger.Debug("library: page loaded",
					slog.String("path", p),
					slog.Int("unit", l.UnitNumber),
					slog.Int("page", page.PageNumber),
					slog.String("outcome", outcome.String()))
			}
		}
	}
	return nil
}

// decodeLessonFile accepts a single lesson object or an array of lessons.
func decodeLessonFile(data []byte) ([]models.Lesson, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return DecodeLessons(data)
	}
	wrapped := make([]byte, 0, len(data)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, ']')
	return DecodeLessons(wrapped)
}

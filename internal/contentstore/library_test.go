package contentstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/oikos/internal/storage"
)

func testLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, LibraryDir), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dataDir, files
}

func TestLoadLibraryArrayAndSingleObject(t *testing.T) {
	_, files := testLibrary(t)

	arr := `[{"unit_number": 1, "title": "One", "pages": [{"page_number": 1, "sections": []}]}]`
	single := `{"unit_number": 2, "title": "Two", "pages": [{"page_number": 1, "sections": []}]}`
	_ = files.Write(filepath.Join(LibraryDir, "arr.json"), []byte(arr))
	_ = files.Write(filepath.Join(LibraryDir, "single.json"), []byte(single))

	store := New()
	if err := LoadLibrary(store, files, slog.Default()); err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	if len(store.ListLessonsOrdered()) != 2 {
		t.Errorf("lessons = %d, want 2", len(store.ListLessonsOrdered()))
	}
}

func TestLoadLibrarySkipsBadFiles(t *testing.T) {
	_, files := testLibrary(t)

	_ = files.Write(filepath.Join(LibraryDir, "bad.json"), []byte("{not json"))
	good := `{"unit_number": 3, "title": "Good", "pages": [{"page_number": 1, "sections": []}]}`
	_ = files.Write(filepath.Join(LibraryDir, "good.json"), []byte(good))

	store := New()
	if err := LoadLibrary(store, files, slog.Default()); err != nil {
		t.Fatalf("LoadLibrary should not fail on a bad file: %v", err)
	}
	if _, err := store.GetLesson(3); err != nil {
		t.Errorf("good file not loaded: %v", err)
	}
}

func TestLoadLibrarySkipsUnitsWithoutPages(t *testing.T) {
	_, files := testLibrary(t)

	empty := `{"unit_number": 9, "title": "Empty"}`
	_ = files.Write(filepath.Join(LibraryDir, "empty.json"), []byte(empty))

	store := New()
	if err := LoadLibrary(store, files, slog.Default()); err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	if _, err := store.GetLesson(9); err == nil {
		t.Error("pageless unit should be skipped")
	}
}

func TestLoadLibraryReloadReplacesPages(t *testing.T) {
	_, files := testLibrary(t)
	path := filepath.Join(LibraryDir, "u1.json")

	v1 := `{"unit_number": 1, "title": "One", "pages": [{"page_number": 1, "sections": [{"id": "s1", "type": "text", "content": "v1"}]}]}`
	_ = files.Write(path, []byte(v1))

	store := New()
	_ = LoadLibrary(store, files, slog.Default())

	v2 := `{"unit_number": 1, "title": "One", "pages": [{"page_number": 1, "sections": [{"id": "s1", "type": "text", "content": "v2"}]}]}`
	_ = files.Write(path, []byte(v2))
	_ = LoadLibrary(store, files, slog.Default())

	lesson, err := store.GetLesson(1)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if len(lesson.Pages) != 1 {
		t.Fatalf("pages = %d, want 1 (reload must replace, not duplicate)", len(lesson.Pages))
	}
	if lesson.Pages[0].Sections[0].Text != "v2" {
		t.Errorf("content = %q, want v2", lesson.Pages[0].Sections[0].Text)
	}
}

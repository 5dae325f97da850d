package searchindex

// Index defines the interface for search index operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Index interface {
	Upsert(e Entry, body string) error
	Delete(key string) error
	Clear() error
	Count(kind string) (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Index at compile time.
var _ Index = (*DB)(nil)

// Package storage defines the data-directory file abstraction used for
// library content files and snapshot exports.
package storage

// Provider is the interface for data-directory file operations. All paths
// are relative to the provider's root.
type Provider interface {
	// List returns the relative paths of every .json file under dir.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

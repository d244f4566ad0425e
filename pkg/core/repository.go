package core

import "context"

// DocumentStore reads and writes whole text documents.
// Adhering to this interface keeps the pipeline independent of where
// documents live.
type DocumentStore interface {
	// Read returns the document text. A missing document yields a
	// *FileNotFoundError.
	Read(ctx context.Context, path string) (string, error)

	// Write replaces the document text. Implementations must not leave a
	// partially written document behind.
	Write(ctx context.Context, path string, text string) error
}

// Resolver is implemented by stores that can expand a path pattern to a
// concrete document path.
type Resolver interface {
	Resolve(ctx context.Context, pattern string) (string, error)
}

// Watchable is implemented by stores that can report changes to a document.
type Watchable interface {
	Watch(ctx context.Context, path string) (<-chan Event, error)
}

// Locator is implemented by stores that can turn a path into the absolute
// form used in reports and errors.
type Locator interface {
	Abs(path string) (string, error)
}

package domain

import "errors"

// Error kinds surfaced by the indexing and query pipelines.
// Adapters wrap these with context; callers match them with errors.Is.
var (
	// ErrNotFound indicates a source file or directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat indicates a file extension the operation does not accept.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates no content could be recovered from a source file.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the embedder rejected or failed on its input.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexStorage indicates a vector store persistence fault.
	ErrIndexStorage = errors.New("index storage error")

	// ErrClassificationIO indicates a topic directory could not be created or a file could not be copied.
	ErrClassificationIO = errors.New("classification io error")

	// ErrInvalidInput indicates malformed caller input such as an empty topic list.
	ErrInvalidInput = errors.New("invalid input")
)

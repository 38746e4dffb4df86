package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown backend or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding call failed or
	// returned malformed data. It is never retried by the pipelines.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Storage Errors.

	// ErrStoreWrite indicates the document store rejected a write.
	ErrStoreWrite = errors.New("document store write failed")

	// ErrStoreRead indicates the document store could not be read.
	ErrStoreRead = errors.New("document store read failed")

	// ErrIndex indicates the vector index failed during indexing or search.
	// A document that hit this during ingestion is stored but unsearchable
	// until the next reindex.
	ErrIndex = errors.New("vector index error")

	// ErrObjectStore indicates object storage could not be listed, read or written.
	ErrObjectStore = errors.New("object store error")

	// ErrHashCollision indicates two different texts produced the same
	// content identifier.
	ErrHashCollision = errors.New("content hash collision")
)

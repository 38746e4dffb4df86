// Package postgres provides a PostgreSQL DocumentStore and a pgvector
// VectorIndex that share one connection pool.
//
// Documents live in the documents table with vectors as little-endian
// float32 blobs. The index lives in document_vectors using the pgvector
// extension with an HNSW cosine index, so it can be dropped and rebuilt
// from documents at any time.
package postgres

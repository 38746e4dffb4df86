// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Turns text into a fixed-length vector
//   - DocumentStore: Source of truth for text, vectors and locators
//   - VectorIndex: Derived nearest-neighbour structure, rebuildable from DocumentStore
//   - ContentHasher: Content-addressing policy for document ids
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the entry points that need them report an error:
//
//   - ObjectStore: Raw document objects (bulk ingest, upload, events)
//   - ObjectWatcher: Notifications for newly written objects
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

package driven

// ContentHasher is the content-addressing policy that turns document text
// into its identifier. Identical text must always give the same id, in
// every process.
type ContentHasher interface {
	// ID returns the identifier for text.
	ID(text string) string

	// Name returns the algorithm name (e.g., "fnv64a").
	Name() string
}

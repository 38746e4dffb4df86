// Package memory provides in-memory implementations of the driven ports.
// Nothing survives a restart; they back tests and throwaway sessions.
package memory

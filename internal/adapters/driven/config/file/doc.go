// Package file provides the on-disk ConfigStore.
//
// Settings live in config.toml under the semsearch home directory
// (~/.semsearch, or $SEMSEARCH_HOME). A config.yaml in the same directory
// takes precedence when it exists. Keys are exposed in dot notation,
// so the TOML table [embedding] with provider = "openai" reads as
// "embedding.provider".
package file

// Package domain defines the entities, error kinds and ports shared by the
// indexing pipeline, the query engine and their adapters.
//
// It imports only the standard library. Embedders, vector stores and text
// extractors implement the interfaces declared here; services depend on the
// interfaces, never on a concrete adapter.
package domain

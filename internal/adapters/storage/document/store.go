// Package document is the realtime document store: named collections of
// schemaless documents with live snapshots pushed to watchers.
package document

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Delete when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored record. Fields hold JSON-compatible values.
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot is the full content of a collection at one point in time.
// Err is set when the snapshot could not be read; Docs is then nil.
type Snapshot struct {
	Collection string
	Docs       []Document
	Err        error
}

// SetOptions controls how Set combines new fields with a stored document.
type SetOptions struct {
	// Merge deep-merges nested maps into the existing document instead of replacing it.
	Merge bool
}

// Store persists documents and notifies watchers of changes.
type Store interface {
	Watch(ctx context.Context, collection string) (<-chan Snapshot, error)
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
}

package domain

import "fmt"

// KeyPrefix namespaces all querymorph keys in the shared store.
const KeyPrefix = "querymorph:"

// MaxContentSize is the maximum article content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is an ingested article with its precomputed embedding
// (immutable value object; the ID is assigned by the store on insert).
type Document struct {
	id        string
	title     string
	content   string
	sourceURL string
	vector    []float32
}

// NewDocument validates and creates a Document without an ID or vector.
// Content is required; title and source URL are provenance only.
func NewDocument(title, content, sourceURL string) (Document, error) {
	if content == "" {
		return Document{}, fmt.Errorf("content is required: %w", ErrInvalidInput)
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, ErrInvalidInput)
	}
	return Document{title: title, content: content, sourceURL: sourceURL}, nil
}

// ReconstructDocument creates a Document without validation (storage hydration).
func ReconstructDocument(id, title, content, sourceURL string, vector []float32) Document {
	return Document{id: id, title: title, content: content, sourceURL: sourceURL, vector: vector}
}

// ID returns the store-assigned document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the article title.
func (d *Document) Title() string { return d.title }

// Content returns the article text.
func (d *Document) Content() string { return d.content }

// SourceURL returns the provenance URL.
func (d *Document) SourceURL() string { return d.sourceURL }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// WithID returns a copy with the given identifier set.
func (d Document) WithID(id string) Document {
	c := d
	c.id = id
	return c
}

// WithVector returns a copy with the given vector set.
func (d Document) WithVector(v []float32) Document {
	c := d
	c.vector = v
	return c
}

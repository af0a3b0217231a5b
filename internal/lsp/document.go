package lsp

import (
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is an open editor document. Its content shadows the on-disk
// file for every workspace scan while it stays open.
type Document struct {
	URI     string
	Path    string
	Version int32
	Content string

	lines []string
}

// Lines returns the document content split into lines.
func (d *Document) Lines() []string {
	return d.lines
}

// DocumentStore holds the open documents, keyed by URI. It implements the
// engine's overlay interface via LinesByPath. Safe for concurrent use.
type DocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	byPath map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:   make(map[string]*Document),
		byPath: make(map[string]*Document),
	}
}

// Open registers a newly opened document and returns it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Path:    uriToPath(uri),
		Version: version,
		Content: content,
		lines:   strings.Split(content, "\n"),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = doc
	s.byPath[doc.Path] = doc
	return doc
}

// Change applies content change events to an open document. Whole-document
// events replace the content; ranged events splice into it. Changes for an
// unopened URI are ignored.
func (s *DocumentStore) Change(uri string, version int32, changes []any) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			doc.Content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				doc.Content = c.Text
			} else {
				doc.Content = splice(doc.Content, *c.Range, c.Text)
			}
		}
	}
	doc.Version = version
	doc.lines = strings.Split(doc.Content, "\n")
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		delete(s.byPath, doc.Path)
		delete(s.docs, uri)
	}
}

// Get returns the open document for uri, or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// LinesByPath returns the line-split content of the open document at the
// given filesystem path. The boolean is false when the path is not open.
func (s *DocumentStore) LinesByPath(path string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byPath[path]
	if !ok {
		return nil, false
	}
	return doc.lines, true
}

// splice replaces the span rng of content with text. Positions are clamped
// to the document rather than rejected, since editors may race edits
// against each other.
func splice(content string, rng protocol.Range, text string) string {
	start := offsetOf(content, int(rng.Start.Line), int(rng.Start.Character))
	end := offsetOf(content, int(rng.End.Line), int(rng.End.Character))
	if end < start {
		end = start
	}
	return content[:start] + text + content[end:]
}

// offsetOf converts a line/character position to a byte offset in content.
func offsetOf(content string, line, character int) int {
	offset := 0
	for line > 0 {
		next := strings.IndexByte(content[offset:], '\n')
		if next < 0 {
			return len(content)
		}
		offset += next + 1
		line--
	}
	lineEnd := strings.IndexByte(content[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content) - offset
	}
	if character > lineEnd {
		character = lineEnd
	}
	return offset + character
}

package arbor

import (
	"github.com/jward/arbor/internal/scan"
	"github.com/jward/arbor/internal/token"
)

// DocumentStore supplies the current in-memory content of open documents,
// line-split and independent of on-disk state. Open documents shadow their
// on-disk counterparts during every scan.
type DocumentStore interface {
	LinesByPath(path string) ([]string, bool)
}

// Engine answers completion, hover, definition, and references queries over
// a workspace of behavior scripts and their Python behavior modules.
//
// The Engine holds no index: every query re-derives its answer from the
// document store and the filesystem, so results are always consistent with
// the workspace at the moment of the request. Queries are read-only and
// safe to run concurrently.
type Engine struct {
	root    string
	docs    DocumentStore
	workers int
	scanner *scan.Scanner
}

// Option configures an Engine.
type Option func(*Engine)

// WithDocumentStore wires in the open-document overlay.
func WithDocumentStore(docs DocumentStore) Option {
	return func(e *Engine) { e.docs = docs }
}

// WithScanWorkers bounds the number of files read and parsed concurrently
// during a workspace scan.
func WithScanWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New creates an Engine for the workspace rooted at root.
func New(root string, opts ...Option) *Engine {
	e := &Engine{root: root}
	for _, opt := range opts {
		opt(e)
	}

	scanOpts := []scan.Option{scan.WithWorkers(e.workers)}
	if e.docs != nil {
		scanOpts = append(scanOpts, scan.WithOverlay(overlaySource{e.docs}))
	}
	e.scanner = scan.New(root, scanOpts...)
	return e
}

// Root returns the workspace root the Engine scans under.
func (e *Engine) Root() string {
	return e.root
}

// overlaySource adapts a DocumentStore to the scanner's Source interface.
type overlaySource struct {
	docs DocumentStore
}

func (o overlaySource) Lines(path string) ([]string, bool) {
	return o.docs.LinesByPath(path)
}

// SymbolAt reports the symbol reference under the cursor. The second return
// is false when the cursor is not adjacent to any recognized sigil.
func (e *Engine) SymbolAt(path string, pos Position) (SymbolReference, bool) {
	line, ok := e.lineAt(path, pos.Line)
	if !ok {
		return SymbolReference{}, false
	}
	word, rng := token.FindWord(line, pos.Character)
	kind := token.Classify(line, rng)
	if kind == token.None {
		return SymbolReference{}, false
	}
	return SymbolReference{Kind: kind, Name: word, Range: rng}, true
}

// scopeFor maps a symbol kind to the workspace scope it is resolved in.
func scopeFor(kind Kind) Scope {
	switch kind {
	case KindAction:
		return scan.Actions
	case KindDecision:
		return scan.Decisions
	default:
		return scan.Entrypoints
	}
}

// lineAt fetches a single line of a document, overlay first.
func (e *Engine) lineAt(path string, line int) (string, bool) {
	lines, err := e.scanner.Lines(path)
	if err != nil || line < 0 || line >= len(lines) {
		return "", false
	}
	return lines[line], true
}

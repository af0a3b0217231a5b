package arbor

import (
	"github.com/jward/arbor/internal/scan"
	"github.com/jward/arbor/internal/token"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=) — identical to the internal types at compile time.
// External consumers use these names; no conversion is needed.

type Location = scan.Location
type Scope = scan.Scope
type Kind = token.Kind
type Range = token.Range

// Symbol kinds recognized in script text.
const (
	KindNone       = token.None
	KindEntrypoint = token.Entrypoint
	KindAction     = token.Action
	KindDecision   = token.Decision
	KindSubtree    = token.Subtree
)

// Position is a zero-based cursor position within a document.
type Position struct {
	Line      int
	Character int
}

// SymbolReference is the symbol under a cursor: its kind, name, and column
// span on the line. It exists only for the duration of a request.
type SymbolReference struct {
	Kind  Kind
	Name  string
	Range Range
}

package arbor

import (
	"context"
	"strings"
)

// Definition resolves the symbol under the cursor to its defining location.
// Entrypoints, actions, and decisions resolve through the workspace class
// index. Subtrees resolve within the current document only: the first line
// containing the literal "#name" anchor, provided the match does not run to
// the very end of the line (a declaration-only layout quirk the notation
// relies on). Returns nil when nothing resolves.
func (e *Engine) Definition(ctx context.Context, path string, pos Position) (*Location, error) {
	sym, ok := e.SymbolAt(path, pos)
	if !ok || strings.TrimSpace(sym.Name) == "" {
		return nil, nil
	}

	switch sym.Kind {
	case KindEntrypoint, KindAction, KindDecision:
		return e.scanner.FindClass(ctx, sym.Name, scopeFor(sym.Kind))

	case KindSubtree:
		lines, err := e.scanner.Lines(path)
		if err != nil {
			return nil, nil
		}
		needle := "#" + sym.Name
		for lineIdx, line := range lines {
			start := strings.Index(line, needle)
			if start < 0 {
				continue
			}
			end := start + len(sym.Name)
			if end < len(line) {
				return &Location{Path: path, Line: lineIdx, StartCol: start, EndCol: end}, nil
			}
		}
	}
	return nil, nil
}

package arbor

import (
	"context"
	"strings"

	"github.com/jward/arbor/internal/params"
	"github.com/jward/arbor/internal/scan"
)

// Hover returns a markdown block describing the symbol under the cursor,
// or "" when the cursor is not on a recognized symbol. Entrypoints,
// actions, and decisions are resolved through the workspace to pull in
// their class docstring; actions additionally list their full parameter
// surface. Subtrees are document-local, so their hover is just a label.
func (e *Engine) Hover(ctx context.Context, path string, pos Position) (string, error) {
	sym, ok := e.SymbolAt(path, pos)
	if !ok {
		return "", nil
	}

	switch sym.Kind {
	case KindEntrypoint:
		doc := e.classDoc(ctx, sym.Name, scan.Entrypoints)
		text := "Entrypoint: " + sym.Name
		if doc != "" {
			text += " \n\n_" + doc + "_"
		}
		return text, nil

	case KindAction:
		loc, err := e.scanner.FindClass(ctx, sym.Name, scan.Actions)
		if err != nil {
			return "", err
		}
		doc := ""
		paramList := []string{params.Implicit}
		if loc != nil {
			doc = params.Docstring(e.scanner, loc)
			paramList, err = params.Resolve(ctx, e.scanner, loc, scan.Actions)
			if err != nil {
				return "", err
			}
		}
		text := "### " + sym.Name + "\n----------"
		if doc != "" {
			text += " \n\n" + doc
		}
		if len(paramList) > 0 {
			text += " \n\n**Parameters**:\n" + strings.Join(paramList, ", ")
		}
		return text, nil

	case KindDecision:
		doc := e.classDoc(ctx, sym.Name, scan.Decisions)
		text := "Decision: " + sym.Name
		if doc != "" {
			text += " \n\n" + doc
		}
		return text, nil

	case KindSubtree:
		return "Subtree: " + sym.Name, nil
	}
	return "", nil
}

// classDoc resolves name in scope and extracts its docstring; unresolvable
// names and undocumented classes both yield "".
func (e *Engine) classDoc(ctx context.Context, name string, scope Scope) string {
	loc, err := e.scanner.FindClass(ctx, name, scope)
	if err != nil || loc == nil {
		return ""
	}
	return params.Docstring(e.scanner, loc)
}

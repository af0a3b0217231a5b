package arbor

import (
	"context"

	"github.com/jward/arbor/internal/scan"
	"github.com/jward/arbor/internal/token"
)

// Completion returns the candidate symbol names for the cursor position,
// dispatched on the sigil immediately before the token under the cursor:
// "@" lists action classes, "$" lists decision classes, and "#" lists the
// current document's subtree labels. A "#" at column 0 declares a label
// rather than referencing one, so it offers no completions. With no sigil
// the result is empty.
func (e *Engine) Completion(ctx context.Context, path string, pos Position) ([]string, error) {
	line, ok := e.lineAt(path, pos.Line)
	if !ok {
		return nil, nil
	}
	_, rng := token.FindWord(line, pos.Character)
	if rng.Start < 1 {
		return nil, nil
	}

	switch line[rng.Start-1] {
	case '@':
		return e.scanner.ListClasses(ctx, scan.Actions)
	case '$':
		return e.scanner.ListClasses(ctx, scan.Decisions)
	case '#':
		if rng.Start-1 == 0 {
			return nil, nil
		}
		lines, err := e.scanner.Lines(path)
		if err != nil {
			return nil, nil
		}
		return scan.SubtreeLabels(lines), nil
	}
	return nil, nil
}

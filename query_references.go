package arbor

import (
	"context"
	"strings"

	"github.com/jward/arbor/internal/token"
)

// References lists every line of the current document referencing the
// symbol under the cursor. Reference search supports subtree ("#") and
// action ("@") sigils; both are literal scans of the current document that
// report the first occurrence per line and include the declaration line
// itself. Other sigils return nothing.
//
// This query uses the loose tokenization policy, so a cursor sitting on a
// trailing colon ("#Loop:") still selects the anchor.
func (e *Engine) References(ctx context.Context, path string, pos Position) ([]Location, error) {
	line, ok := e.lineAt(path, pos.Line)
	if !ok {
		return nil, nil
	}
	word, rng := token.FindWordLoose(line, pos.Character)
	if rng.Start < 1 {
		return nil, nil
	}
	sigil := line[rng.Start-1]
	if sigil != '#' && sigil != '@' {
		return nil, nil
	}
	needle := string(sigil) + word

	lines, err := e.scanner.Lines(path)
	if err != nil {
		return nil, nil
	}
	var locs []Location
	for lineIdx, docLine := range lines {
		start := strings.Index(docLine, needle)
		if start < 0 {
			continue
		}
		locs = append(locs, Location{
			Path:     path,
			Line:     lineIdx,
			StartCol: start,
			EndCol:   start + len(needle),
		})
	}
	return locs, nil
}

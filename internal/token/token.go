// Package token locates identifier tokens in behavior script lines and
// classifies them by the sigil that precedes them.
//
// Two tokenization policies exist. The strict policy matches identifiers
// starting with a letter and drives completion, hover, and definition. The
// loose policy additionally accepts digit-led tokens and skips backward past
// a trailing colon; it drives reference lookups, where the cursor often sits
// on a subtree anchor like "#Loop:".
package token

import (
	"regexp"
	"strings"
)

// Kind identifies the role of a symbol reference in script text.
type Kind int

const (
	None Kind = iota
	Entrypoint
	Action
	Decision
	Subtree
)

func (k Kind) String() string {
	switch k {
	case Entrypoint:
		return "entrypoint"
	case Action:
		return "action"
	case Decision:
		return "decision"
	case Subtree:
		return "subtree"
	}
	return "none"
}

// Range is a half-open [Start,End) column span within a single line.
type Range struct {
	Start int
	End   int
}

// Len returns the number of columns the range covers.
func (r Range) Len() int { return r.End - r.Start }

var (
	strictWordRe = regexp.MustCompile(`[A-Za-z]\w*`)
	looseWordRe  = regexp.MustCompile(`\w+|\d+`)
)

// stripEOL removes a trailing newline and carriage return from line.
func stripEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// FindWord returns the identifier token enclosing col in line, with its
// column span. A cursor sitting immediately after a token still selects it.
// When no token encloses the cursor: at end of line the result is an empty
// token at (col,col); otherwise it is the single character at col.
func FindWord(line string, col int) (string, Range) {
	line = stripEOL(line)
	if col < 0 || col > len(line) {
		return "", Range{col, col}
	}
	for _, m := range strictWordRe.FindAllStringIndex(line, -1) {
		if m[0] <= col && col <= m[1] {
			return line[m[0]:m[1]], Range{m[0], m[1]}
		}
	}
	if col == len(line) {
		return "", Range{col, col}
	}
	return string(line[col]), Range{col, col + 1}
}

// FindWordLoose is the reference-lookup tokenization policy: the cursor is
// pulled back from end of line and across a trailing colon, and tokens may
// start with a digit.
func FindWordLoose(line string, col int) (string, Range) {
	line = stripEOL(line)
	if col < 0 || col > len(line) {
		return "", Range{col, col}
	}
	for col == len(line) || (col < len(line) && line[col] == ':') {
		if col == 0 {
			return "", Range{0, 0}
		}
		col--
	}
	for _, m := range looseWordRe.FindAllStringIndex(line, -1) {
		if m[0] <= col && col < m[1] {
			return line[m[0]:m[1]], Range{m[0], m[1]}
		}
	}
	return string(line[col]), Range{col, col + 1}
}

// Classify reports the symbol kind of the token at r based on the characters
// immediately preceding it: "-->" marks an entrypoint, "@" an action, "$" a
// decision and "#" a subtree.
func Classify(line string, r Range) Kind {
	line = stripEOL(line)
	if r.Start > len(line) {
		return None
	}
	if r.Start >= 3 && line[r.Start-3:r.Start] == "-->" {
		return Entrypoint
	}
	if r.Start < 1 {
		return None
	}
	switch line[r.Start-1] {
	case '@':
		return Action
	case '$':
		return Decision
	case '#':
		return Subtree
	}
	return None
}

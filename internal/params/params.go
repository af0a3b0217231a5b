// Package params computes the configuration surface of a behavior class:
// the parameter keys it reads, unioned across its inheritance chain, plus
// the class docstring shown on hover.
//
// Everything here works on the lexical class-definition block — the header
// line and the indented, comment, or docstring lines that follow it — not
// on a parsed syntax tree. That keeps parameter discovery robust against
// files that are mid-edit.
package params

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jward/arbor/internal/scan"
)

// Implicit is accepted by every action without being declared anywhere.
const Implicit = "r / reevaluate"

var (
	paramRe     = regexp.MustCompile(`parameters\.get\((?:"([A-Za-z_]+?)"|'([A-Za-z_]+?)')`)
	parentRe    = regexp.MustCompile(`^\s*class\s+\w+\s*\((\w+)\)`)
	docstringRe = regexp.MustCompile(`(?s)\A\s*"""(.*?)"""`)
)

// Resolve computes the full parameter set of the class declared at loc:
// its own declared parameters, those of every ancestor reachable through
// the class headers within scope, and the implicit reevaluate parameter.
// The result is sorted. A parent that cannot be located terminates the
// walk; a cycle in the inheritance chain aborts it and yields only the
// class's own declared parameters.
func Resolve(ctx context.Context, sc *scan.Scanner, loc *scan.Location, scope scan.Scope) ([]string, error) {
	declared, err := declaredAt(sc, loc)
	if err != nil {
		return nil, fmt.Errorf("resolve parameters: %w", err)
	}

	all := make(map[string]bool, len(declared))
	for p := range declared {
		all[p] = true
	}

	visited := map[string]bool{locKey(loc): true}
	cur := loc
	for {
		lines, err := sc.Lines(cur.Path)
		if err != nil {
			break // file vanished mid-walk; treat as terminal
		}
		if cur.Line >= len(lines) {
			break
		}
		m := parentRe.FindStringSubmatch(lines[cur.Line])
		if m == nil {
			break
		}
		parentLoc, err := sc.FindClass(ctx, m[1], scope)
		if err != nil {
			return nil, fmt.Errorf("resolve parameters: locate parent %s: %w", m[1], err)
		}
		if parentLoc == nil {
			break
		}
		if visited[locKey(parentLoc)] {
			// Inheritance cycle: fall back to the declared-only set.
			return withImplicit(declared), nil
		}
		visited[locKey(parentLoc)] = true

		parentDeclared, err := declaredAt(sc, parentLoc)
		if err != nil {
			return nil, fmt.Errorf("resolve parameters: %w", err)
		}
		for p := range parentDeclared {
			all[p] = true
		}
		cur = parentLoc
	}

	return withImplicit(all), nil
}

func withImplicit(set map[string]bool) []string {
	out := make([]string, 0, len(set)+1)
	for p := range set {
		out = append(out, p)
	}
	out = append(out, Implicit)
	sort.Strings(out)
	return out
}

func locKey(loc *scan.Location) string {
	return fmt.Sprintf("%s:%d", loc.Path, loc.Line)
}

// declaredAt scans the class-definition block at loc for parameter reads.
func declaredAt(sc *scan.Scanner, loc *scan.Location) (map[string]bool, error) {
	lines, err := sc.Lines(loc.Path)
	if err != nil {
		return nil, err
	}
	return Declared(lines, loc.Line), nil
}

// Declared returns the parameter keys read within the class-definition
// block starting at headerLine.
func Declared(lines []string, headerLine int) map[string]bool {
	block := definitionBlock(lines, headerLine)
	found := make(map[string]bool)
	for _, m := range paramRe.FindAllStringSubmatch(strings.Join(block, "\n"), -1) {
		if m[1] != "" {
			found[m[1]] = true
		} else if m[2] != "" {
			found[m[2]] = true
		}
	}
	return found
}

// definitionBlock returns the header line plus every following line that
// still belongs to the class body: indented lines, blank lines, comment
// lines, and docstring delimiters.
func definitionBlock(lines []string, headerLine int) []string {
	if headerLine < 0 || headerLine >= len(lines) {
		return nil
	}
	block := []string{lines[headerLine]}
	for _, line := range lines[headerLine+1:] {
		if !continuesBlock(line) {
			break
		}
		block = append(block, line)
	}
	return block
}

func continuesBlock(line string) bool {
	if line == "" {
		return true
	}
	if line[0] == ' ' || line[0] == '\t' {
		return true
	}
	return line[0] == '#' || strings.HasPrefix(line, `"""`)
}

// Docstring extracts the class documentation declared at loc: the first
// """-delimited block following the header line, trimmed, with newlines
// reflowed into explicit line continuations for markdown rendering. A
// missing docstring or a header on the file's last line yields "".
func Docstring(sc *scan.Scanner, loc *scan.Location) string {
	lines, err := sc.Lines(loc.Path)
	if err != nil {
		return ""
	}
	start := loc.Line + 1
	if start >= len(lines) {
		return ""
	}
	m := docstringRe.FindStringSubmatch(strings.Join(lines[start:], "\n"))
	if m == nil {
		return ""
	}
	doc := strings.TrimSpace(m[1])
	return strings.ReplaceAll(doc, "\n", " \\\n")
}

// Package scan discovers behavior module files in a workspace and indexes
// the classes they declare.
//
// The index is ephemeral: every query walks the workspace again, so results
// are always consistent with the files on disk (and with open-editor
// overlays) at the moment of the request. Nothing is cached between calls.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("arbor.scan")

// Location points at a span of characters on a single line of a file.
// Columns are a half-open [StartCol,EndCol) byte range.
type Location struct {
	Path     string
	Line     int
	StartCol int
	EndCol   int
}

// Scope restricts a scan to module files directly inside folders whose name
// ends in Folder. The empty Folder scans every module file in the workspace.
type Scope struct {
	Folder string
}

var (
	// Actions are declared in files under folders ending in "actions".
	Actions = Scope{Folder: "actions"}
	// Decisions are declared in files under folders ending in "decisions".
	Decisions = Scope{Folder: "decisions"}
	// Entrypoints may live anywhere in the workspace.
	Entrypoints = Scope{}
)

// Source supplies in-memory content for open documents. Paths that resolve
// through a Source shadow the on-disk file.
type Source interface {
	Lines(path string) ([]string, bool)
}

// Scanner enumerates and parses behavior module files under a workspace
// root. A Scanner is stateless apart from its configuration and is safe for
// concurrent use.
type Scanner struct {
	root    string
	overlay Source
	workers int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithOverlay makes open-document content shadow on-disk files.
func WithOverlay(src Source) Option {
	return func(s *Scanner) { s.overlay = src }
}

// WithWorkers bounds the number of files read and parsed concurrently
// during a scan. Values below 1 fall back to the default.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// New creates a Scanner for the workspace rooted at root.
func New(root string, opts ...Option) *Scanner {
	s := &Scanner{root: root, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// skipDirs are never descended into during workspace walks.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Files returns the workspace's module files matching scope, sorted
// lexicographically so that first-match resolution is deterministic. Hidden
// directories, the usual dependency directories, and paths excluded by the
// root .gitignore are skipped.
func (s *Scanner) Files(scope Scope) ([]string, error) {
	var gi *ignore.GitIgnore
	if compiled, err := ignore.CompileIgnoreFile(filepath.Join(s.root, ".gitignore")); err == nil {
		gi = compiled
	}

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()
		if d.IsDir() {
			if path == s.root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".py") {
			return nil
		}
		if scope.Folder != "" && !strings.HasSuffix(filepath.Base(filepath.Dir(path)), scope.Folder) {
			return nil
		}
		if gi != nil {
			if rel, relErr := filepath.Rel(s.root, path); relErr == nil && gi.MatchesPath(rel) {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Lines returns the line-split content of path, preferring open-document
// overlay content over the on-disk file.
func (s *Scanner) Lines(path string) ([]string, error) {
	if s.overlay != nil {
		if lines, ok := s.overlay.Lines(path); ok {
			return lines, nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return strings.Split(string(b), "\n"), nil
}

// content returns path's full text, preferring the overlay.
func (s *Scanner) content(path string) ([]byte, error) {
	if s.overlay != nil {
		if lines, ok := s.overlay.Lines(path); ok {
			return []byte(strings.Join(lines, "\n")), nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// classHeaderRe matches a class header at the start of a line and captures
// the name token. The trailing "(" is part of the declaration grammar: a
// behavior class always names a base (or at least empty parentheses).
var classHeaderRe = regexp.MustCompile(`^class\s+(\w+)\s*\(`)

// FindClass locates the declaration of name within scope: the first file
// (in sorted path order) whose lines contain a matching class header. The
// returned Location spans exactly the name token. When no header matches
// but a file's basename equals the snake_case form of name, that file's
// first character is returned instead — entrypoints are often identified by
// filename convention alone. A nil Location with nil error means not found.
func (s *Scanner) FindClass(ctx context.Context, name string, scope Scope) (*Location, error) {
	paths, err := s.Files(scope)
	if err != nil {
		return nil, err
	}

	type hit struct {
		loc    *Location
		direct bool
	}
	hits := make([]hit, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	snake := toSnake(name)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines, err := s.Lines(path)
			if err != nil {
				log.Debugf("find class: skipping %s: %s", path, err.Error())
				return nil
			}
			if strings.TrimSuffix(filepath.Base(path), ".py") == snake {
				hits[i].direct = true
			}
			for lineIdx, line := range lines {
				m := classHeaderRe.FindStringSubmatchIndex(line)
				if m == nil || line[m[2]:m[3]] != name {
					continue
				}
				hits[i].loc = &Location{Path: path, Line: lineIdx, StartCol: m[2], EndCol: m[3]}
				return nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("find class %s: %w", name, err)
	}

	for _, h := range hits {
		if h.loc != nil {
			return h.loc, nil
		}
	}
	for i, h := range hits {
		if h.direct {
			return &Location{Path: paths[i]}, nil
		}
	}
	return nil, nil
}

// ListClasses returns the names of all top-level classes declared in
// scope's module files, sorted. Classes whose name starts with "abstract"
// (case-insensitive) are omitted: they exist to be inherited from, not to
// be placed in a tree. Files that fail to parse are skipped.
func (s *Scanner) ListClasses(ctx context.Context, scope Scope) ([]string, error) {
	paths, err := s.Files(scope)
	if err != nil {
		return nil, err
	}

	perFile := make([][]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := s.content(path)
			if err != nil {
				log.Debugf("list classes: skipping %s: %s", path, err.Error())
				return nil
			}
			names, err := topLevelClasses(ctx, src)
			if err != nil {
				log.Debugf("list classes: skipping malformed %s: %s", path, err.Error())
				return nil
			}
			perFile[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, fileNames := range perFile {
		for _, name := range fileNames {
			if strings.HasPrefix(strings.ToLower(name), "abstract") {
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// topLevelClasses parses src as Python and returns the names of top-level
// class definitions. A source whose parse tree contains errors is treated
// as malformed.
func topLevelClasses(ctx context.Context, src []byte) ([]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse: source contains syntax errors")
	}

	var names []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "class_definition" {
			continue
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			names = append(names, nameNode.Content(src))
		}
	}
	return names, nil
}

// subtreeLabelRe matches a subtree label declaration: a comment line whose
// "#" sits at column 0, immediately followed by an identifier.
var subtreeLabelRe = regexp.MustCompile(`^#(\w+)`)

// SubtreeLabels collects the subtree labels declared in a document's lines.
// Labels are document-local and are not subject to the "abstract" filter.
func SubtreeLabels(lines []string) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, line := range lines {
		m := subtreeLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !seen[m[1]] {
			seen[m[1]] = true
			labels = append(labels, m[1])
		}
	}
	sort.Strings(labels)
	return labels
}

var snakeRe = regexp.MustCompile(`[A-Z]+[a-z]*`)

// toSnake converts a PascalCase name to snake_case ("MyEntry" becomes
// "my_entry"). Characters outside the uppercase-led runs are dropped, which
// matches how entrypoint files are conventionally named.
func toSnake(pascal string) string {
	return strings.ToLower(strings.Join(snakeRe.FindAllString(pascal, -1), "_"))
}

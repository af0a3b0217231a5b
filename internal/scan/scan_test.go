package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates rel under root, making parent directories as needed.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testWorkspace builds a small behavior workspace.
func testWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "behaviors/actions/abstract_move.py", `class AbstractMove(object):
    """Base for all movement actions."""

    def perform(self, parameters):
        self.speed = parameters.get("speed")
`)
	writeFile(t, root, "behaviors/actions/go_to_ball.py", `class GoToBall(AbstractMove):
    """Walks toward the ball."""

    def perform(self, parameters):
        self.target = parameters.get('target')
`)
	writeFile(t, root, "behaviors/decisions/ball_seen.py", `class BallSeen(AbstractDecisionElement):
    """Checks whether the ball was seen recently."""

    def perform(self):
        return "YES"
`)
	writeFile(t, root, "behaviors/main_frame.py", `class MainFrame(object):
    """Top level behavior."""
`)
	writeFile(t, root, "behaviors/my_entry.py", "# entrypoint by filename convention\n")
	return root
}

func TestFiles(t *testing.T) {
	root := testWorkspace(t)
	s := New(root)

	t.Run("actions scope", func(t *testing.T) {
		paths, err := s.Files(Actions)
		require.NoError(t, err)
		require.Len(t, paths, 2)
		assert.Equal(t, "abstract_move.py", filepath.Base(paths[0]))
		assert.Equal(t, "go_to_ball.py", filepath.Base(paths[1]))
	})
	t.Run("decisions scope", func(t *testing.T) {
		paths, err := s.Files(Decisions)
		require.NoError(t, err)
		require.Len(t, paths, 1)
		assert.Equal(t, "ball_seen.py", filepath.Base(paths[0]))
	})
	t.Run("entrypoint scope covers everything", func(t *testing.T) {
		paths, err := s.Files(Entrypoints)
		require.NoError(t, err)
		assert.Len(t, paths, 5)
	})
	t.Run("folder suffix matches", func(t *testing.T) {
		writeFile(t, root, "sub/head_actions/look_around.py", "class LookAround(object):\n    pass\n")
		paths, err := s.Files(Actions)
		require.NoError(t, err)
		assert.Len(t, paths, 3)
	})
	t.Run("sorted deterministically", func(t *testing.T) {
		paths, err := s.Files(Entrypoints)
		require.NoError(t, err)
		assert.IsIncreasing(t, paths)
	})
}

func TestFilesSkipsIgnored(t *testing.T) {
	root := testWorkspace(t)
	writeFile(t, root, ".gitignore", "generated/\n")
	writeFile(t, root, "generated/actions/machine_made.py", "class MachineMade(object):\n    pass\n")
	writeFile(t, root, "__pycache__/cached.py", "class Cached(object):\n    pass\n")
	writeFile(t, root, ".hidden/secret.py", "class Secret(object):\n    pass\n")

	s := New(root)
	paths, err := s.Files(Entrypoints)
	require.NoError(t, err)
	for _, p := range paths {
		assert.NotContains(t, p, "generated")
		assert.NotContains(t, p, "__pycache__")
		assert.NotContains(t, p, ".hidden")
	}
}

func TestFindClass(t *testing.T) {
	root := testWorkspace(t)
	s := New(root)
	ctx := context.Background()

	t.Run("locates the name token exactly", func(t *testing.T) {
		loc, err := s.FindClass(ctx, "GoToBall", Actions)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "go_to_ball.py", filepath.Base(loc.Path))
		assert.Equal(t, 0, loc.Line)
		assert.Equal(t, 6, loc.StartCol)
		assert.Equal(t, 14, loc.EndCol)
	})
	t.Run("scope excludes other kinds", func(t *testing.T) {
		loc, err := s.FindClass(ctx, "BallSeen", Actions)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})
	t.Run("entrypoint scope finds classes anywhere", func(t *testing.T) {
		loc, err := s.FindClass(ctx, "MainFrame", Entrypoints)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "main_frame.py", filepath.Base(loc.Path))
	})
	t.Run("snake_case filename fallback", func(t *testing.T) {
		loc, err := s.FindClass(ctx, "MyEntry", Entrypoints)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "my_entry.py", filepath.Base(loc.Path))
		assert.Equal(t, Location{Path: loc.Path}, *loc)
	})
	t.Run("header match beats filename fallback", func(t *testing.T) {
		writeFile(t, root, "behaviors/zz_late.py", "class MyEntry(object):\n    pass\n")
		loc, err := s.FindClass(ctx, "MyEntry", Entrypoints)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, "zz_late.py", filepath.Base(loc.Path))
		assert.Equal(t, 6, loc.StartCol)
	})
	t.Run("unknown name", func(t *testing.T) {
		loc, err := s.FindClass(ctx, "Nonexistent", Actions)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})
	t.Run("idempotent across calls", func(t *testing.T) {
		first, err := s.FindClass(ctx, "GoToBall", Actions)
		require.NoError(t, err)
		second, err := s.FindClass(ctx, "GoToBall", Actions)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestFindClassDeterministicTieBreak(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "actions/a_first.py", "class Kick(object):\n    pass\n")
	writeFile(t, root, "actions/b_second.py", "class Kick(object):\n    pass\n")

	s := New(root)
	loc, err := s.FindClass(context.Background(), "Kick", Actions)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "a_first.py", filepath.Base(loc.Path))
}

func TestListClasses(t *testing.T) {
	root := testWorkspace(t)
	s := New(root)
	ctx := context.Background()

	t.Run("lists actions without abstract bases", func(t *testing.T) {
		names, err := s.ListClasses(ctx, Actions)
		require.NoError(t, err)
		assert.Equal(t, []string{"GoToBall"}, names)
	})
	t.Run("lists decisions", func(t *testing.T) {
		names, err := s.ListClasses(ctx, Decisions)
		require.NoError(t, err)
		assert.Equal(t, []string{"BallSeen"}, names)
	})
	t.Run("malformed file skipped, siblings survive", func(t *testing.T) {
		writeFile(t, root, "behaviors/actions/broken.py", "class Broken(:\n  def\n")
		names, err := s.ListClasses(ctx, Actions)
		require.NoError(t, err)
		assert.Equal(t, []string{"GoToBall"}, names)
	})
	t.Run("abstract filter is case-insensitive", func(t *testing.T) {
		writeFile(t, root, "behaviors/actions/bases.py", "class ABSTRACTBase(object):\n    pass\n\nclass Turn(object):\n    pass\n")
		names, err := s.ListClasses(ctx, Actions)
		require.NoError(t, err)
		assert.Equal(t, []string{"GoToBall", "Turn"}, names)
	})
}

// mapSource is a test overlay backed by a map.
type mapSource map[string][]string

func (m mapSource) Lines(path string) ([]string, bool) {
	lines, ok := m[path]
	return lines, ok
}

func TestOverlayShadowsDisk(t *testing.T) {
	root := testWorkspace(t)
	onDisk := filepath.Join(root, "behaviors", "actions", "go_to_ball.py")
	overlay := mapSource{
		onDisk: {"class GoToGoal(AbstractMove):", "    pass", ""},
	}
	s := New(root, WithOverlay(overlay))
	ctx := context.Background()

	loc, err := s.FindClass(ctx, "GoToGoal", Actions)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, onDisk, loc.Path)

	names, err := s.ListClasses(ctx, Actions)
	require.NoError(t, err)
	assert.Equal(t, []string{"GoToGoal"}, names)

	// The on-disk class name is shadowed away.
	stale, err := s.FindClass(ctx, "GoToBall", Actions)
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestSubtreeLabels(t *testing.T) {
	lines := []string{
		"#Loop",
		"$BallSeen",
		"    YES --> #Loop",
		"#Search comment after label",
		"# not a label (space after hash)",
		"#Loop",
	}
	assert.Equal(t, []string{"Loop", "Search"}, SubtreeLabels(lines))
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "my_entrypoint", toSnake("MyEntrypoint"))
	assert.Equal(t, "go_to_ball", toSnake("GoToBall"))
	assert.Equal(t, "abc", toSnake("ABC"))
	assert.Equal(t, "", toSnake("lowercase"))
}

// Package arbor provides editor intelligence for behavior-tree scripts:
// completion, hover documentation, go-to-definition, and find-references
// for the four symbol kinds the script notation references by sigil.
//
// # Notation
//
// A script line references symbols through fixed markers:
//
//	-->Entrypoint   top-level tree root
//	@Action         leaf behavior unit
//	$Decision       branching unit
//	#Subtree        in-file reusable fragment (a "#" at column 0 declares
//	                a subtree label; anywhere else it references one)
//
// Actions and decisions are Python classes discovered by scanning the
// workspace: actions under folders ending in "actions", decisions under
// folders ending in "decisions", entrypoints anywhere. Subtree labels are
// document-local comment anchors and never resolve across files.
//
// # Queries
//
// Create an Engine and ask it about cursor positions:
//
//	e := arbor.New("path/to/workspace", arbor.WithDocumentStore(docs))
//
//	ctx := context.Background()
//	names, err := e.Completion(ctx, "behavior.dsd", arbor.Position{Line: 4, Character: 9})
//	text, err := e.Hover(ctx, "behavior.dsd", pos)
//	loc, err := e.Definition(ctx, "behavior.dsd", pos)
//	locs, err := e.References(ctx, "behavior.dsd", pos)
//
// Every query is a fresh, read-only scan of the document store and the
// filesystem — there is no persistent index and therefore no staleness:
// answers always reflect the workspace at the moment of the request.
// Unresolvable symbols produce empty results, never errors.
//
// # Parameters
//
// Hovering an action lists the configuration parameters it accepts: every
// parameters.get("...") read in its class body, unioned across the class's
// inheritance chain, plus the implicit "r / reevaluate" parameter every
// action supports.
//
// The LSP transport wrapping these queries lives in internal/lsp and is
// served by the arbor-ls binary.
package arbor

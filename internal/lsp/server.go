// Package lsp is the transport wrapper around the arbor engine: a Language
// Server Protocol 3.16 server that maps textDocument requests onto the four
// engine queries and keeps the open-document overlay current.
package lsp

import (
	"context"
	"os"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"

	"github.com/jward/arbor"
)

const serverName = "arbor-ls"

var log = commonlog.GetLogger("arbor.lsp")

// Server wires the arbor engine into an LSP session. The engine is created
// at initialize time, once the client has told us the workspace root.
type Server struct {
	handler protocol.Handler
	docs    *DocumentStore
	engine  *arbor.Engine

	version  string
	rootPath string
	workers  int
	debug    bool
}

// Option configures a Server.
type Option func(*Server)

// WithScanWorkers bounds concurrent file scans in the engine.
func WithScanWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithDebug enables glsp transport debugging.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// New creates an LSP server.
func New(version string, opts ...Option) *Server {
	s := &Server{
		docs:    NewDocumentStore(),
		version: version,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}
	return s
}

// RunStdio serves LSP over stdin/stdout.
func (s *Server) RunStdio() error {
	return glspserv.NewServer(&s.handler, serverName, s.debug).RunStdio()
}

// RunTCP serves LSP over a TCP listener.
func (s *Server) RunTCP(address string) error {
	return glspserv.NewServer(&s.handler, serverName, s.debug).RunTCP(address)
}

// RunWebSocket serves LSP over a WebSocket listener.
func (s *Server) RunWebSocket(address string) error {
	return glspserv.NewServer(&s.handler, serverName, s.debug).RunWebSocket(address)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.rootPath = rootPathFrom(params)
	s.engine = arbor.New(s.rootPath,
		arbor.WithDocumentStore(s.docs),
		arbor.WithScanWorkers(s.workers),
	)
	log.Infof("initialized for workspace %s", s.rootPath)

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"@", "$", "#"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

// rootPathFrom extracts the workspace root from the initialize request,
// falling back to the working directory for rootless clients.
func rootPathFrom(params *protocol.InitializeParams) string {
	if params.RootURI != nil && *params.RootURI != "" {
		return uriToPath(string(*params.RootURI))
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return *params.RootPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.Open(string(params.TextDocument.URI), params.TextDocument.Version, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.docs.Change(string(params.TextDocument.URI), params.TextDocument.Version, params.ContentChanges)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.Close(string(params.TextDocument.URI))
	return nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	if s.engine == nil {
		return nil, nil
	}
	names, err := s.engine.Completion(context.Background(),
		uriToPath(string(params.TextDocument.URI)), enginePosition(params.Position))
	if err != nil {
		log.Errorf("completion: %s", err.Error())
		return nil, nil
	}
	if len(names) == 0 {
		return nil, nil
	}
	items := make([]protocol.CompletionItem, len(names))
	for i, name := range names {
		items[i] = protocol.CompletionItem{Label: name}
	}
	return items, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	if s.engine == nil {
		return nil, nil
	}
	text, err := s.engine.Hover(context.Background(),
		uriToPath(string(params.TextDocument.URI)), enginePosition(params.Position))
	if err != nil {
		log.Errorf("hover: %s", err.Error())
		return nil, nil
	}
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	if s.engine == nil {
		return nil, nil
	}
	loc, err := s.engine.Definition(context.Background(),
		uriToPath(string(params.TextDocument.URI)), enginePosition(params.Position))
	if err != nil {
		log.Errorf("definition: %s", err.Error())
		return nil, nil
	}
	if loc == nil {
		return nil, nil
	}
	return protocolLocation(loc), nil
}

func (s *Server) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	if s.engine == nil {
		return nil, nil
	}
	locs, err := s.engine.References(context.Background(),
		uriToPath(string(params.TextDocument.URI)), enginePosition(params.Position))
	if err != nil {
		log.Errorf("references: %s", err.Error())
		return nil, nil
	}
	if len(locs) == 0 {
		return nil, nil
	}
	out := make([]protocol.Location, len(locs))
	for i := range locs {
		out[i] = protocolLocation(&locs[i])
	}
	return out, nil
}

func enginePosition(pos protocol.Position) arbor.Position {
	return arbor.Position{Line: int(pos.Line), Character: int(pos.Character)}
}

func protocolLocation(loc *arbor.Location) protocol.Location {
	return protocol.Location{
		URI: protocol.DocumentUri(pathToURI(loc.Path)),
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      protocol.UInteger(loc.Line),
				Character: protocol.UInteger(loc.StartCol),
			},
			End: protocol.Position{
				Line:      protocol.UInteger(loc.Line),
				Character: protocol.UInteger(loc.EndCol),
			},
		},
	}
}

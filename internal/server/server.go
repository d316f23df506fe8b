// Package server exposes the engine as a language server over glsp.
package server

import (
	"runtime"
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/rbozan/lsp-translations/internal/engine"
	"github.com/rbozan/lsp-translations/internal/parser"
	"github.com/rbozan/lsp-translations/internal/scheduler"
)

const Name = "lsp-translations"

var log = commonlog.GetLogger("lsp-translations.server")

type Server struct {
	version   string
	handler   *protocol.Handler
	indexer   *parser.Indexer
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
	// single file reloads outside the scheduler
	reloads sync.WaitGroup

	mu      sync.Mutex
	folders []string
	// initializationOptions, used when the client cannot answer
	// workspace/configuration
	fallback any
	client   clientCapabilities
	// id of the current didChangeWatchedFiles registration
	watcherID string
}

type clientCapabilities struct {
	configuration        bool
	watchedFilesDynamic  bool
	configurationDynamic bool
}

// NewServer creates the language server. Run it with RunStdio.
func NewServer(version string) (*server.Server, error) {
	ls, err := newServer(version)
	if err != nil {
		return nil, err
	}
	return server.NewServer(ls.handler, Name, false), nil
}

func newServer(version string) (*Server, error) {
	indexer, err := parser.NewIndexer(runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}
	ls := &Server{
		version:   version,
		indexer:   indexer,
		engine:    engine.New(indexer),
		scheduler: scheduler.NewScheduler(),
	}
	ls.handler = &protocol.Handler{
		Initialize:                         ls.initialize,
		Initialized:                        ls.initialized,
		Shutdown:                           ls.shutdown,
		SetTrace:                           ls.setTrace,
		TextDocumentDidOpen:                ls.textDocumentDidOpen,
		TextDocumentDidChange:              ls.textDocumentDidChange,
		TextDocumentDidClose:               ls.textDocumentDidClose,
		TextDocumentCompletion:             ls.textDocumentCompletion,
		CompletionItemResolve:              ls.completionItemResolve,
		TextDocumentHover:                  ls.textDocumentHover,
		WorkspaceDidChangeConfiguration:    ls.workspaceDidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: ls.workspaceDidChangeWorkspaceFolders,
		WorkspaceDidChangeWatchedFiles:     ls.workspaceDidChangeWatchedFiles,
	}
	ls.scheduler.RunScheduler()
	return ls, nil
}

func (s *Server) workspaceFolders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.folders...)
}

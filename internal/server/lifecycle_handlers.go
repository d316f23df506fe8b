package server

import (
	"github.com/google/uuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rbozan/lsp-translations/internal/locator"
	"github.com/rbozan/lsp-translations/internal/scanner"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	folders := folderPaths(params.WorkspaceFolders, params.RootURI)
	log.Infof("workspace folders: %v", folders)

	s.mu.Lock()
	s.folders = folders
	s.fallback = params.InitializationOptions
	s.client = capabilitiesOf(params.Capabilities)
	s.mu.Unlock()

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: locator.TriggerCharacters(locator.DefaultTerminators),
		ResolveProvider:   &protocol.True,
	}
	capabilities.Workspace = &protocol.ServerCapabilitiesWorkspace{
		WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
			Supported:           &protocol.True,
			ChangeNotifications: &protocol.BoolOrString{Value: true},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")

	s.mu.Lock()
	dynamic := s.client.configurationDynamic
	s.mu.Unlock()
	if dynamic {
		// the client answers only after this notification has been handled
		go register(context, protocol.Registration{
			ID:     uuid.NewString(),
			Method: protocol.MethodWorkspaceDidChangeConfiguration,
		})
	}

	s.scheduleReindex(context)
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	s.scheduler.StopScheduler()
	s.reloads.Wait()
	s.indexer.Close()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func capabilitiesOf(c protocol.ClientCapabilities) clientCapabilities {
	var cc clientCapabilities
	if w := c.Workspace; w != nil {
		cc.configuration = w.Configuration != nil && *w.Configuration
		if d := w.DidChangeWatchedFiles; d != nil && d.DynamicRegistration != nil {
			cc.watchedFilesDynamic = *d.DynamicRegistration
		}
		if d := w.DidChangeConfiguration; d != nil && d.DynamicRegistration != nil {
			cc.configurationDynamic = *d.DynamicRegistration
		}
	}
	return cc
}

// folderPaths returns the file system paths of the workspace folders, or of
// the root when the client sent no folders.
func folderPaths(folders []protocol.WorkspaceFolder, root *protocol.DocumentUri) []string {
	var paths []string
	for _, f := range folders {
		path, err := scanner.PathFromURI(f.URI)
		if err != nil {
			log.Warningf("ignoring workspace folder %s: %v", f.URI, err)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 && root != nil {
		if path, err := scanner.PathFromURI(*root); err == nil {
			paths = append(paths, path)
		}
	}
	return paths
}

package server

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/rbozan/lsp-translations/internal/config"
	"github.com/rbozan/lsp-translations/internal/scanner"
	"github.com/rbozan/lsp-translations/internal/scheduler"
)

func (s *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	if settings, ok := params.Settings.(map[string]any); ok {
		if section, ok := settings[config.Section]; ok {
			s.mu.Lock()
			s.fallback = section
			s.mu.Unlock()
		}
	}
	s.scheduleReindex(context)
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(
	context *glsp.Context,
	params *protocol.DidChangeWorkspaceFoldersParams,
) error {
	removed := folderPaths(params.Event.Removed, nil)
	added := folderPaths(params.Event.Added, nil)

	s.mu.Lock()
	s.folders = slices.DeleteFunc(s.folders, func(f string) bool {
		return slices.Contains(removed, f)
	})
	for _, f := range added {
		if !slices.Contains(s.folders, f) {
			s.folders = append(s.folders, f)
		}
	}
	s.mu.Unlock()

	s.scheduleReindex(context)
	return nil
}

func (s *Server) workspaceDidChangeWatchedFiles(
	context *glsp.Context,
	params *protocol.DidChangeWatchedFilesParams,
) error {
	folders := s.workspaceFolders()
	files := s.engine.Config().TranslationFiles

	var reload, remove []string
	for _, change := range params.Changes {
		path, err := scanner.PathFromURI(change.URI)
		if err != nil {
			log.Warningf("ignoring change of %s: %v", change.URI, err)
			continue
		}
		switch {
		case change.Type == protocol.FileChangeTypeDeleted:
			if s.engine.Tracks(path) {
				remove = append(remove, path)
			}
		case s.engine.Tracks(path) || scanner.Matches(folders, files, path):
			reload = append(reload, path)
		}
	}

	for _, path := range remove {
		log.Infof("%s was deleted", path)
		s.engine.RemoveFile(path)
	}
	if len(reload) > 0 {
		s.reloads.Add(1)
		go func() {
			defer s.reloads.Done()
			s.reindexFiles(reload)
		}()
	}
	return nil
}

func (s *Server) reindexFiles(paths []string) {
	for _, path := range paths {
		if err := s.engine.ReindexFile(context.Background(), path); err != nil {
			log.Warningf("reloading %s: %v", path, err)
		}
	}
}

// scheduleReindex replaces the whole index in the background. A reindex that
// is still running is cancelled.
func (s *Server) scheduleReindex(client *glsp.Context) {
	s.scheduler.Schedule(scheduler.Task{
		Name: "reindex",
		Execute: func(ctx context.Context) error {
			return s.reindex(ctx, client)
		},
	})
}

func (s *Server) reindex(ctx context.Context, client *glsp.Context) error {
	cfg, err := config.Load(s.fetchConfiguration(client))
	if err != nil {
		log.Errorf("invalid configuration: %v", err)
		client.Notify("window/showMessage", protocol.ShowMessageParams{
			Type:    protocol.MessageTypeError,
			Message: Name + ": " + err.Error(),
		})
		return err
	}

	folders := s.workspaceFolders()
	files := scanner.Discover(folders, cfg.TranslationFiles)
	log.Infof("found %d translation files", len(files))
	s.watch(client, scanner.WatchPatterns(folders, cfg.TranslationFiles))

	report, err := s.engine.Reindex(ctx, files, cfg)
	if err != nil {
		return err
	}
	log.Infof("indexed %d definitions from %d files, %d failed",
		report.Definitions, report.Files, len(report.Failed))
	return nil
}

// fetchConfiguration asks the client for the settings section and falls back
// to the initialization options.
func (s *Server) fetchConfiguration(client *glsp.Context) any {
	s.mu.Lock()
	fallback := s.fallback
	supported := s.client.configuration
	s.mu.Unlock()
	if !supported {
		return fallback
	}

	section := config.Section
	var result []any
	client.Call("workspace/configuration", protocol.ConfigurationParams{
		Items: []protocol.ConfigurationItem{{Section: &section}},
	}, &result)
	if len(result) == 0 || result[0] == nil {
		return fallback
	}
	return result[0]
}

// watch replaces the file watchers registered with the client.
func (s *Server) watch(client *glsp.Context, patterns []string) {
	s.mu.Lock()
	dynamic := s.client.watchedFilesDynamic
	previous := s.watcherID
	s.watcherID = ""
	if dynamic && len(patterns) > 0 {
		s.watcherID = uuid.NewString()
	}
	id := s.watcherID
	s.mu.Unlock()
	if !dynamic {
		return
	}

	if previous != "" {
		var result any
		client.Call("client/unregisterCapability", protocol.UnregistrationParams{
			Unregisterations: []protocol.Unregistration{{
				ID:     previous,
				Method: protocol.MethodWorkspaceDidChangeWatchedFiles,
			}},
		}, &result)
	}
	if id == "" {
		return
	}
	register(client, protocol.Registration{
		ID:     id,
		Method: protocol.MethodWorkspaceDidChangeWatchedFiles,
		RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
			Watchers: watchers(patterns),
		},
	})
}

func watchers(patterns []string) []protocol.FileSystemWatcher {
	ws := make([]protocol.FileSystemWatcher, 0, len(patterns))
	for _, p := range patterns {
		ws = append(ws, protocol.FileSystemWatcher{GlobPattern: p})
	}
	return ws
}

func register(client *glsp.Context, registrations ...protocol.Registration) {
	var result any
	client.Call("client/registerCapability", protocol.RegistrationParams{
		Registrations: registrations,
	}, &result)
}

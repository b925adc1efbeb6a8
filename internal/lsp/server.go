// Package lsp implements the moltree language server over stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"moltree/internal/logging"
	"moltree/internal/project"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce time.Duration
	// MaxDiagnostics caps diagnostics per document; <= 0 takes the
	// manifest value.
	MaxDiagnostics int
	Logger         *slog.Logger
	Version        string
}

// docState is an open buffer. rev grows on every edit; analysis is
// dropped whenever rev changes.
type docState struct {
	text     string
	version  int
	rev      uint64
	path     string
	analysis *document
}

// Server handles stdio JSON-RPC for the moltree LSP.
type Server struct {
	in        *bufio.Reader
	out       *bufio.Writer
	sendMu    sync.Mutex
	mu        sync.Mutex
	docs      map[string]*docState
	published map[string]struct{}
	pending   map[string]struct{}
	index     *workspaceIndex
	log       *slog.Logger
	version   string

	workspaceRoot     string
	analysisRoot      string
	analysisMode      analysisMode
	config            project.Config
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	analysisSeq       uint64
	maxDiagnostics    int
	limitFromOptions  bool
	traceLSP          bool
	baseCtx           context.Context
	scanCancel        context.CancelFunc
	scanDone          chan struct{}
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cfg := project.Defaults()
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = cfg.Diagnostics.Max
	}
	return &Server{
		in:               bufio.NewReader(in),
		out:              bufio.NewWriter(out),
		docs:             make(map[string]*docState),
		published:        make(map[string]struct{}),
		pending:          make(map[string]struct{}),
		index:            newWorkspaceIndex(),
		log:              logger,
		version:          opts.Version,
		config:           cfg,
		debounce:         debounce,
		maxDiagnostics:   maxDiagnostics,
		limitFromOptions: opts.MaxDiagnostics > 0,
		baseCtx:          context.Background(),
	}
}

// Run serves LSP requests until exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.stopBackground()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", "err", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

// handlers maps request and notification methods to their handlers.
// Unknown requests get MethodNotFound; unknown notifications are dropped.
var handlers = map[string]func(*Server, *rpcMessage) error{
	"initialize":                       (*Server).handleInitialize,
	"initialized":                      (*Server).handleInitialized,
	"shutdown":                         (*Server).handleShutdown,
	"exit":                             (*Server).handleExit,
	"workspace/didChangeConfiguration": (*Server).handleDidChangeConfiguration,
	"textDocument/didOpen":             (*Server).handleDidOpen,
	"textDocument/didChange":           (*Server).handleDidChange,
	"textDocument/didSave":             (*Server).handleDidSave,
	"textDocument/didClose":            (*Server).handleDidClose,
	"textDocument/hover":               (*Server).handleHover,
	"textDocument/completion":          (*Server).handleCompletion,
	"textDocument/definition":          (*Server).handleDefinition,
	"textDocument/foldingRange":        (*Server).handleFoldingRange,
	"textDocument/documentSymbol":      (*Server).handleDocumentSymbol,
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	s.log.Debug("request", "method", msg.Method)
	if h, ok := handlers[msg.Method]; ok {
		return h(s, msg)
	}
	if len(msg.ID) > 0 {
		return s.sendError(msg.ID, codeMethodNotFound, "method not found")
	}
	return nil
}

func (s *Server) handleInitialized(*rpcMessage) error {
	s.startScan()
	return nil
}

func (s *Server) handleExit(*rpcMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return ErrExit
	}
	return ErrExitWithoutShutdown
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := params.workspaceRoot()
	s.mu.Lock()
	s.workspaceRoot = canonicalPath(root)
	s.mu.Unlock()
	s.log.Info("initialize", "root", root)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncIncremental,
				Save:      saveOptions{IncludeText: true},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			CompletionProvider: &completionOptions{
				TriggerCharacters: completionTriggers,
			},
			FoldingRangeProvider:   true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: &serverInfo{Name: "moltree", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopBackground()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

// startScan resolves the analysis root, loads its manifest and indexes the
// workspace in the background.
func (s *Server) startScan() {
	s.mu.Lock()
	firstFile := ""
	for _, st := range s.docs {
		if st.path != "" && (firstFile == "" || st.path < firstFile) {
			firstFile = st.path
		}
	}
	root, mode := detectAnalysisScope(s.workspaceRoot, firstFile)
	s.analysisRoot, s.analysisMode = canonicalPath(root), mode
	if s.scanCancel != nil {
		s.scanCancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.scanCancel = cancel
	done := make(chan struct{})
	s.scanDone = done
	root = s.analysisRoot
	s.mu.Unlock()

	if root == "" {
		close(done)
		return
	}
	cfg := project.Defaults()
	if m, found, err := project.Load(root); err != nil {
		s.log.Warn("manifest ignored", "root", root, "err", err)
	} else if found {
		cfg = m.Config
	}
	s.mu.Lock()
	s.config = cfg
	if !s.limitFromOptions && cfg.Diagnostics.Max > 0 {
		s.maxDiagnostics = cfg.Diagnostics.Max
	}
	s.mu.Unlock()

	go func() {
		defer close(done)
		started := time.Now()
		n, err := s.index.scan(ctx, root, cfg, s.isOpenPath)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("workspace scan failed", "root", root, "err", err)
			}
			return
		}
		s.log.Info("workspace indexed", "root", root, "mode", mode.String(), "files", n, "elapsed", time.Since(started))
	}()
}

// waitScan blocks until the running workspace scan, if any, finishes.
func (s *Server) waitScan() {
	s.mu.Lock()
	done := s.scanDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Server) stopBackground() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if s.scanCancel != nil {
		s.scanCancel()
	}
	s.mu.Unlock()
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

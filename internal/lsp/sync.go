package lsp

import "encoding/json"

// decodeParams unmarshals the params of msg into a fresh T.
func decodeParams[T any](msg *rpcMessage) (T, error) {
	var params T
	err := json.Unmarshal(msg.Params, &params)
	return params, err
}

// updateDoc runs edit on the open buffer of uri under the lock. It reports
// false when the document is not open. edit returns whether the text
// changed; a change bumps rev and drops the cached analysis.
func (s *Server) updateDoc(uri string, edit func(st *docState) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.docs[uri]
	if !ok {
		return false
	}
	if edit(st) {
		st.rev++
		st.analysis = nil
	}
	return true
}

func (s *Server) tracing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	params, err := decodeParams[didOpenTextDocumentParams](msg)
	if err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	st := &docState{
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
		rev:     1,
		path:    canonicalPath(uriToPath(uri)),
	}
	s.mu.Lock()
	// повторное открытие продолжает счётчик, чтобы старый анализ не прижился
	if old, ok := s.docs[uri]; ok {
		st.rev = old.rev + 1
	}
	s.docs[uri] = st
	s.mu.Unlock()
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	params, err := decodeParams[didChangeTextDocumentParams](msg)
	if err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	open := s.updateDoc(uri, func(st *docState) bool {
		st.text = applyChanges(st.text, params.ContentChanges)
		st.version = params.TextDocument.Version
		return true
	})
	if !open {
		return nil
	}
	if s.tracing() {
		s.log.Info("didChange", "uri", uri, "version", params.TextDocument.Version)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	params, err := decodeParams[didSaveTextDocumentParams](msg)
	if err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	open := s.updateDoc(uri, func(st *docState) bool {
		if params.Text == nil || *params.Text == st.text {
			return false
		}
		st.text = *params.Text
		return true
	})
	if !open {
		return nil
	}
	if s.tracing() {
		s.log.Info("didSave", "uri", uri)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	params, err := decodeParams[didCloseTextDocumentParams](msg)
	if err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	st, wasOpen := s.docs[uri]
	_, published := s.published[uri]
	delete(s.docs, uri)
	delete(s.pending, uri)
	delete(s.published, uri)
	root := s.analysisRoot
	s.mu.Unlock()

	if published {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.log.Warn("failed to clear diagnostics", "uri", uri, "err", err)
		}
	}
	if wasOpen {
		s.reindexFromDisk(uri, st.path, root)
	}
	return nil
}

// reindexFromDisk replaces the entry of a closed buffer with what the file
// on disk holds; files outside the analysis root leave the index.
func (s *Server) reindexFromDisk(uri, path, root string) {
	key := indexKey(uri, path)
	if path == "" || !pathWithinRoot(path, root) {
		s.index.set(key, nil)
		return
	}
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()
	entry, err := indexFile(s.baseCtx, path, cfg)
	if err != nil {
		s.log.Warn("reindex failed", "path", path, "err", err)
	}
	s.index.set(key, entry)
}

func (s *Server) isOpenPath(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.docs {
		if st.path == path {
			return true
		}
	}
	return false
}

// documentFor returns the analysis of an open document, analysing it
// when the cached one is stale.
func (s *Server) documentFor(rawURI string) *document {
	uri := canonicalURI(rawURI)
	s.mu.Lock()
	st, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if doc := st.analysis; doc != nil {
		s.mu.Unlock()
		return doc
	}
	text, version, rev, limit := st.text, st.version, st.rev, s.maxDiagnostics
	s.mu.Unlock()

	doc, err := analyzeDocument(s.baseCtx, uri, version, text, limit)
	if err != nil {
		s.log.Error("analysis failed", "uri", uri, "err", err)
		return nil
	}
	// правка могла прийти, пока шёл анализ: такой результат не кэшируем
	s.mu.Lock()
	cur, ok := s.docs[uri]
	fresh := ok && cur.rev == rev
	if fresh {
		cur.analysis = doc
	}
	s.mu.Unlock()
	if fresh {
		s.index.set(indexKey(uri, doc.path), entryFromDocument(doc))
	}
	return doc
}

func indexKey(uri, path string) string {
	if path != "" {
		return canonicalPath(path)
	}
	return uri
}

// canonicalURI makes file URIs comparable; other schemes pass through.
func canonicalURI(uri string) string {
	path := uriToPath(uri)
	if path == "" {
		return uri
	}
	return pathToURI(canonicalPath(path))
}

package lsp

import (
	"sort"
	"sync/atomic"
	"time"

	"moltree/internal/diag"
)

// scheduleDiagnostics queues uri and restarts the debounce timer. Only the
// latest timer publishes; older ones find a newer sequence and return.
func (s *Server) scheduleDiagnostics(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[uri] = struct{}{}
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
}

func (s *Server) isLatestSeq(seq uint64) bool {
	return seq != 0 && seq == atomic.LoadUint64(&s.analysisSeq)
}

// runDiagnostics analyses the queued documents and publishes their
// diagnostics.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	uris := make([]string, 0, len(s.pending))
	for uri := range s.pending {
		uris = append(uris, uri)
	}
	clear(s.pending)
	root := s.analysisRoot
	s.mu.Unlock()
	sort.Strings(uris)

	for _, uri := range uris {
		if err := s.baseCtx.Err(); err != nil {
			return
		}
		started := time.Now()
		doc := s.documentFor(uri)
		if doc == nil {
			continue
		}
		s.publishDocument(doc)
		name := doc.uri
		if doc.path != "" && root != "" {
			name = relPath(root, doc.path)
		}
		s.log.Debug("diagnostics published", "file", name, "version", doc.version, "count", doc.bag.Len(), "elapsed", time.Since(started))
	}
}

// publishDocument sends the diagnostics of doc unless the buffer moved on
// to another version in the meantime.
func (s *Server) publishDocument(doc *document) {
	s.mu.Lock()
	st, ok := s.docs[doc.uri]
	if !ok || st.version != doc.version {
		s.mu.Unlock()
		return
	}
	s.published[doc.uri] = struct{}{}
	s.mu.Unlock()

	list := make([]lspDiagnostic, 0, doc.bag.Len())
	for _, d := range doc.bag.Items() {
		if d.Code == diag.ObsTimings {
			continue
		}
		list = append(list, toLSPDiagnostic(doc, d))
	}
	version := doc.version
	if err := s.sendPublish(doc.uri, &version, list); err != nil {
		s.log.Warn("publish failed", "uri", doc.uri, "err", err)
	}
}

func toLSPDiagnostic(doc *document, d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    doc.rangeOf(d.Primary),
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "moltree",
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: doc.uri, Range: doc.rangeOf(note.Span)},
			Message:  note.Msg,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	clear(s.published)
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.log.Warn("failed to clear diagnostics", "uri", uri, "err", err)
		}
	}
}

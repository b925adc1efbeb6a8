package lsp

import (
	"encoding/json"
	"time"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("bad configuration payload", "err", err)
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings reads the "moltree" section; absent keys keep their values.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Warn("bad settings", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := settings.Moltree.MaxDiagnostics; v != nil && *v > 0 {
		s.maxDiagnostics = *v
		// лимит влияет на анализ, кэш документов устарел
		for _, st := range s.docs {
			st.analysis = nil
		}
	}
	if v := settings.Moltree.DebounceMS; v != nil && *v >= 0 {
		s.debounce = time.Duration(*v) * time.Millisecond
	}
	if v := settings.Moltree.Trace; v != nil {
		s.traceLSP = *v
	}
	s.log.Debug("settings applied", "maxDiagnostics", s.maxDiagnostics, "debounce", s.debounce, "trace", s.traceLSP)
}

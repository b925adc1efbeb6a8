package lexer

// State is a stored cursor: restoring it resumes tokenization from the
// same position without re-scanning the prefix.
type State struct {
	Off uint32
	err *Error
}

// Save captures the position of the next token to be returned by Next.
func (lx *Lexer) Save() State {
	if lx.look != nil {
		return State{Off: lx.lookFrom, err: lx.lookErr}
	}
	return State{Off: lx.cursor.Off, err: lx.err}
}

// Restore rewinds (or advances) the lexer to a saved state.
func (lx *Lexer) Restore(st State) {
	lx.look = nil
	lx.hold = nil
	lx.err = st.err
	lx.cursor.Reset(Mark(st.Off))
	if lx.cursor.Off > lx.cursor.Limit {
		lx.cursor.SkipToEnd()
	}
}

// StateAt returns a state that starts lexing at byte offset off.
// off must lie on a token or trivia boundary.
func StateAt(off uint32) State {
	return State{Off: off}
}

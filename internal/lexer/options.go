package lexer

import (
	"moltree/internal/diag"
	"moltree/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil — тогда ошибка доступна только через Err()
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string, fixes ...diag.Fix) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, fixes)
	}
}

package parser

import (
	"errors"
	"fmt"

	"moltree/internal/diag"
	"moltree/internal/source"
	"moltree/internal/token"
)

var (
	ErrExpectedIdentifier = errors.New("expected identifier")
	ErrExpectedOperator   = errors.New("expected operator")
	ErrUnclosedBlock      = errors.New("unclosed block")
	ErrUnexpectedToken    = errors.New("unexpected token")
)

// Error is the structural error that stopped the parse.
type Error struct {
	Code  diag.Code
	Span  source.Span
	Found token.Token // токен в позиции ошибки (EOF для UnclosedBlock)
	Msg   string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Title()
	}
	return fmt.Sprintf("%s at offset %d", msg, e.Span.Start)
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case diag.SynExpectIdentifier:
		return ErrExpectedIdentifier
	case diag.SynExpectOperator:
		return ErrExpectedOperator
	case diag.SynUnclosedBlock:
		return ErrUnclosedBlock
	case diag.SynUnexpectedToken:
		return ErrUnexpectedToken
	default:
		return nil
	}
}

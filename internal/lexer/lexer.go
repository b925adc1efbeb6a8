package lexer

import (
	"iter"

	"moltree/internal/source"
	"moltree/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	err    *Error         // первая (и единственная) ошибка лексера

	// состояние до Peek, чтобы Save не терял подсмотренный токен
	lookFrom uint32
	lookErr  *Error
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		look:   nil,
		hold:   nil,
	}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// Хвостовые trivia приклеиваются к EOF. После EOF (и после ошибки) всегда
// возвращает EOF.
func (lx *Lexer) Next() token.Token {
	// 1) Если есть look — вернуть его и очистить
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	// 2) набить lx.hold
	lx.collectLeadingTrivia()
	leading := lx.hold
	lx.hold = nil

	// 3) EOF забирает хвостовые trivia
	if lx.cursor.EOF() {
		return token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Text:    "",
			Leading: leading,
		}
	}

	// 4) Посмотреть текущий байт и выбрать сканер
	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch == '$':
		tok = lx.scanIdent()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString()

	default:
		// операторы, скобки, иначе — ошибка
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = leading
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	lx.lookFrom, lx.lookErr = lx.cursor.Off, lx.err
	t := lx.Next()
	lx.look = &t
	return t
}

// All yields tokens up to and including EOF.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Err returns the lex error that stopped the lexer, if any.
func (lx *Lexer) Err() *Error {
	return lx.err
}

// File returns the file being tokenized.
func (lx *Lexer) File() *source.File {
	return lx.file
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

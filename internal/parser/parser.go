package parser

import (
	"context"
	"slices"

	"moltree/internal/ast"
	"moltree/internal/diag"
	"moltree/internal/lexer"
	"moltree/internal/source"
	"moltree/internal/token"
	"moltree/internal/trace"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	// MaxDepth caps nested blocks; 0 selects DefaultMaxDepth.
	MaxDepth uint
	Reporter diag.Reporter
}

// DefaultMaxDepth bounds block nesting so that deep input ends in a
// diagnostic instead of exhausting the goroutine stack.
const DefaultMaxDepth = 10_000

func (o *Options) maxDepth() uint {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result of parsing one file. File is always valid and holds the tree built
// so far; Err is the first lex or parse error (or the context error).
type Result struct {
	File ast.FileID
	Bag  *diag.Bag
	Err  error
}

// Parser — состояние парсера на один файл
type Parser struct {
	ctx      context.Context
	lx       *lexer.Lexer // поток токенов (Peek/Next)
	arenas   *ast.Builder // построитель аренных узлов
	file     ast.FileID   // текущий FileID (в AST)
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	failure  error       // первая ошибка; после неё разбор останавливается
	depth    uint        // число открытых блоков

	tracer  trace.Tracer
	traceID uint64 // span разбора файла, родитель событий узлов
}

// ParseFile — входная точка для разбора одного файла.
// Требует уже созданный lexer (на основе source.File). Разбор идёт до первой
// ошибки; частичное дерево остаётся в arenas.
func ParseFile(
	ctx context.Context,
	fs *source.FileSet,
	lx *lexer.Lexer,
	arenas *ast.Builder,
	opts Options,
) Result {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "parse_file", trace.CurrentSpan(ctx).SpanID)

	f := lx.File()
	fileSpan := source.Span{File: f.ID, Start: 0, End: f.LenContent()}
	p := Parser{
		ctx:      ctx,
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(fileSpan),
		fs:       fs,
		opts:     opts,
		lastSpan: fileSpan.At(0),
		tracer:   tracer,
		traceID:  span.ID(),
	}

	p.parseTopLevel()

	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case *diag.BagReporter:
		bag = br.Bag
	case diag.BagReporter:
		bag = br.Bag
	}

	detail := "ok"
	if p.failure != nil {
		detail = p.failure.Error()
	}
	span.WithExtra("path", f.Path).End(detail)

	return Result{
		File: p.file,
		Bag:  bag,
		Err:  p.failure,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.failure != nil
}

// parseTopLevel — основной цикл: пока не EOF и не было ошибки — parseStatement.
func (p *Parser) parseTopLevel() {
	for !p.IsError() && !p.at(token.EOF) {
		if err := p.ctx.Err(); err != nil {
			p.failure = err
			return
		}
		id, _ := p.parseStatement()
		if id.IsValid() {
			p.arenas.PushStmt(p.file, id)
			if def, ok := p.arenas.Stmts.Definition(id); ok {
				trace.Point(p.tracer, trace.ScopeNode, "component", def.Name.Name, p.traceID)
			}
		}
	}
	if !p.IsError() {
		// EOF несёт хвостовые комментарии
		p.advance()
	}
}

// Package token defines lexical token kinds and trivia for moltree sources.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - The `$` sigil is part of an identifier's text, never a separate token.
//   - Whitespace and `#` comments are represented as leading Trivia and
//     never appear in the main token stream. The EOF token carries the
//     trailing trivia of the file.
package token

package token_test

import (
	"testing"

	"moltree/internal/source"
	"moltree/internal/token"
)

func TestCommentTriviaShape(t *testing.T) {
	tv := token.Trivia{
		Kind: token.TriviaComment,
		Span: source.Span{Start: 0, End: 7},
		Text: "# title",
	}
	tk := token.Token{
		Kind:    token.Ident,
		Span:    source.Span{Start: 8, End: 12},
		Text:    "$app",
		Leading: []token.Trivia{tv, {Kind: token.TriviaNewline, Span: source.Span{Start: 7, End: 8}, Text: "\n"}},
	}
	if len(tk.Leading) != 2 || tk.Leading[0].Kind != token.TriviaComment {
		t.Fatalf("comment trivia must be present")
	}
	if tk.Leading[1].Kind.String() != "Newline" {
		t.Fatalf("unexpected trivia kind name %q", tk.Leading[1].Kind)
	}
}

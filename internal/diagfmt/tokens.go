package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cohere/internal/source"
	"cohere/internal/token"
)

// TokenOutput is one row of `cohere tokenize`.
type TokenOutput struct {
	Kind    string         `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Span    source.Span    `json:"span"`
	Start   source.LineCol `json:"start"`
	End     source.LineCol `json:"end"`
	Keyword bool           `json:"keyword,omitempty"`
	Leading []string       `json:"leading,omitempty"`
}

// tokenRows stops after EOF; the lexer may return a longer slice.
func tokenRows(tokens []token.Token, fs *source.FileSet) []TokenOutput {
	rows := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		row := TokenOutput{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Span:    tok.Span,
			Keyword: tok.IsKeyword(),
		}
		if known(fs, tok.Span) {
			row.Start, row.End = fs.Resolve(tok.Span)
		}
		for _, tr := range tok.Leading {
			row.Leading = append(row.Leading, tr.Kind.String())
		}
		rows = append(rows, row)
		if tok.Kind == token.EOF {
			break
		}
	}
	return rows
}

// FormatTokensPretty prints one token per line:
//
//	  3: KwImpl          "impl" at 1:8-1:12 (leading: space)
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, row := range tokenRows(tokens, fs) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%3d: %-15s", i+1, row.Kind)
		if row.Text != "" {
			fmt.Fprintf(&sb, " %q", row.Text)
		}
		fmt.Fprintf(&sb, " at %d:%d-%d:%d", row.Start.Line, row.Start.Col, row.End.Line, row.End.Col)
		if len(row.Leading) > 0 {
			fmt.Fprintf(&sb, " (leading: %s)", strings.Join(row.Leading, ", "))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON writes the rows as an indented JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenRows(tokens, fs))
}

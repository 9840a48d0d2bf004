// Package token defines lexical token kinds and trivia for the declaration
// language.
// Invariants:
//   - Token.Span matches Text exactly (Start..End) except for identifiers,
//     whose Text is NFC-normalized.
//   - Comments and whitespace are leading Trivia and never appear in the main
//     token stream.
//   - Built-in type names (u8, i32, ...) are identifiers.
package token

// Package token defines lexical token kinds and trivia for LPC sources.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Comments and whitespace never appear in the token stream; they are
//     attached as leading Trivia of the next significant token.
//   - A preprocessor line ("#include <x.h>", "#define A 1") is a single
//     Directive token, including backslash continuations.
//   - Type names (int, string, mapping, ...) are keywords, so declarations
//     can be recognized without a symbol table.
package token

// Package fuzztests houses Go fuzz harnesses for the checking pipeline
// (source -> lexer -> parser -> resolver -> coherence). They guard against
// panics, hangs and nondeterministic diagnostics on arbitrary input.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

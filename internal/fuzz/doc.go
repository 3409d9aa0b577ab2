// Package fuzztests houses Go fuzz harnesses for the compiler pipeline
// (source -> preprocessor -> parser -> sema -> SPIR-V). They guard against
// panics and hangs on arbitrary input; diagnostics are expected and ignored.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

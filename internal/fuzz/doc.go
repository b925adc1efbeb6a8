// Package fuzztests houses Go fuzz harnesses for the moltree front end
// (source -> lexer -> parser -> formatter). They smoke test robustness and
// guard against panics, hangs and lossy tokenization on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через FileSet, лексер, парсер и
// форматтер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests

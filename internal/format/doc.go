// Package format prints a parsed moltree file in canonical layout.
//
// Назначение: одна инструкция на строку, отступ по уровню блока (таб или N
// пробелов), комментарии остаются на своих местах, не больше одной пустой
// строки подряд.
// Не делает: IO и разбор файлов с ошибками.
// Зависимости: internal/ast, internal/source (и lexer/parser для round-trip).
package format

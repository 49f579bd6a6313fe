// Package fuzztests houses Go fuzz harnesses for the template pipeline
// (source -> braces.Scan -> braces.Match -> diagnostics, positions).
// Its goal is to smoke test robustness: no panics on arbitrary bytes and the
// pairing invariants hold for every input.
//
// Назначение: загружать байты в FileSet и прогонять их через сканер,
// сопоставление и перевод смещений в позиции редактора.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/braces, internal/diag,
// internal/testkit.

package fuzztests

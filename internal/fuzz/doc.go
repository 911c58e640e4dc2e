// Package fuzztests houses Go fuzz harnesses that exercise the analysis
// pipeline (decode -> IR -> CFG -> analyzers) on arbitrary serialized
// programs. Its goal is to guard against panics escaping the driver and
// against analyses that do not terminate.
//
// Назначение: декодировать байты как JSON или msgpack программу и прогонять
// её через driver.Analyze с ограничением по времени.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

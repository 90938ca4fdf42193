// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to reconcile", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// UID возвращает атрибут с идентификатором пользователя. Пустой
// идентификатор выводится как "anonymous".
func UID(uid string) slog.Attr {
	if uid == "" {
		uid = "anonymous"
	}
	return slog.String("uid", uid)
}

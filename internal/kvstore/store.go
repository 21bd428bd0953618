// Package kvstore содержит key-value хранилища для кэша изображений.
package kvstore

import "context"

// Store описывает строковое key-value хранилище с персистентностью
// на время жизни данных (переживает рестарты процесса).
// Транзакции и range-запросы кэшу не нужны.
type Store interface {
	// Get возвращает значение по ключу. Второй результат — признак наличия ключа.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set записывает значение по ключу. Повторная запись того же ключа безопасна:
	// значение детерминировано содержимым, конфликтов не бывает.
	Set(ctx context.Context, key, value string) error
}

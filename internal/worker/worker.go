package worker

import (
	"context"
)

// Worker - фоновая задача с управляемым жизненным циклом
type Worker interface {
	// Start запускает воркер и блокируется до его остановки
	Start(ctx context.Context) error

	// Stop сигнализирует воркеру остановиться
	Stop() error

	// Name возвращает имя воркера для логов
	Name() string
}

package warmer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/usecase"
	"github.com/SnapyBara/snapybara-geo/internal/worker"
)

// interval - период между полными проходами прогрева
const interval = 1 * time.Hour

// WarmupWorker периодически прогревает кеш по списку известных точек.
// Явный фоновый воркер с поддержкой остановки вместо бесконечного цикла
// с голыми паузами: на shutdown его можно корректно погасить.
type WarmupWorker struct {
	*worker.BaseWorker
	searchUC *usecase.SearchUseCase
	delay    time.Duration
}

// NewWarmupWorker создает новый WarmupWorker
func NewWarmupWorker(searchUC *usecase.SearchUseCase, cfg *config.WarmupConfig, logger *zap.Logger) *WarmupWorker {
	return &WarmupWorker{
		BaseWorker: worker.NewBaseWorker("cache-warmup", logger),
		searchUC:   searchUC,
		delay:      cfg.Delay,
	}
}

// Start запускает воркер: первый проход сразу, дальше по таймеру
func (w *WarmupWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting WarmupWorker", zap.Duration("interval", interval))

	w.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce выполняет один проход прогрева, отменяемый остановкой воркера
func (w *WarmupWorker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Остановка воркера прерывает текущий проход
	go func() {
		select {
		case <-w.StopChan():
			cancel()
		case <-runCtx.Done():
		}
	}()

	result := w.searchUC.Warmup(runCtx, w.delay)
	w.Logger().Info("Warmup pass completed",
		zap.Int("warmed", result.Warmed),
		zap.Int("failed", result.Failed))
}

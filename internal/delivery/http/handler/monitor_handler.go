package handler

import (
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MonitorHandler - обработчик метрик здоровья upstream-серверов
type MonitorHandler struct {
	monitor repository.ServerMonitor
	logger  *zap.Logger
}

// NewMonitorHandler - создание нового MonitorHandler
func NewMonitorHandler(monitor repository.ServerMonitor, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitor: monitor,
		logger:  logger,
	}
}

// GetServers - текущие метрики по всем серверам
func (h *MonitorHandler) GetServers(c *fiber.Ctx) error {
	snapshot := h.monitor.Snapshot()
	return utils.SendSuccess(c, snapshot, &utils.Meta{
		Total: len(snapshot.Servers),
	})
}

// Reset - сброс всех счётчиков монитора
func (h *MonitorHandler) Reset(c *fiber.Ctx) error {
	h.monitor.Reset()
	h.logger.Info("Server monitor reset")
	return utils.SendSuccess(c, fiber.Map{"reset": true}, nil)
}

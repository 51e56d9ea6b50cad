package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/cleberrangel/orcamento-sst-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Limite de heap usado nas verificações de saúde
const maxHeapMB = 512

// HealthHandler atende as verificações de saúde
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	precos    *service.PrecoService
	version   string
	startTime time.Time
}

// NewHealthHandler cria um novo health handler; db e wsHub podem ser nil
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, precos *service.PrecoService, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		precos:    precos,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck indica que o processo está de pé
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck indica se a API pode atender: tabela carregada e banco acessível
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.responder(c, h.componentes(c, false))
}

// DetailedHealthCheck inclui todos os componentes
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	h.responder(c, h.componentes(c, true))
}

func (h *HealthHandler) componentes(c *gin.Context, detalhado bool) map[string]metrics.HealthStatus {
	components := make(map[string]metrics.HealthStatus)

	components["tabela"] = metrics.CheckTabelaHealth(h.precos.Info().Linhas)
	if h.db != nil {
		components["database"] = metrics.CheckDatabaseHealth(c.Request.Context(), h.db)
	}
	components["memory"] = metrics.CheckMemoryHealth(maxHeapMB)

	if detalhado && h.wsHub != nil {
		components["websocket"] = metrics.HealthStatus{Status: metrics.StatusHealthy}
	}
	return components
}

func (h *HealthHandler) responder(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == metrics.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, healthCheck)
}

package handler

import (
	"net/http"

	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/cleberrangel/orcamento-sst-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// AdminHandler atende a manutenção da tabela de preços
type AdminHandler struct {
	precos *service.PrecoService
	hub    *websocket.Hub
}

// NewAdminHandler cria um novo handler administrativo
func NewAdminHandler(precos *service.PrecoService, hub *websocket.Hub) *AdminHandler {
	return &AdminHandler{precos: precos, hub: hub}
}

// Recarregar relê a tabela de preços da origem configurada
// @Summary Recarrega a tabela de preços
// @Tags admin
// @Produce json
// @Success 200 {object} model.TabelaResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/precos/recarregar [post]
func (h *AdminHandler) Recarregar(c *gin.Context) {
	if _, err := h.precos.Recarregar(c.Request.Context()); err != nil {
		responderErro(c, "Erro ao recarregar tabela de preços", err)
		return
	}
	info := h.precos.Info()
	c.JSON(http.StatusOK, model.TabelaResponse{
		Success: true,
		Versao:  info.Versao,
		Linhas:  info.Linhas,
		Origem:  info.Origem,
		Message: "Tabela de preços recarregada",
	})
}

// Importar grava as planilhas no banco
func (h *AdminHandler) Importar(c *gin.Context) {
	linhas, err := h.precos.Importar(c.Request.Context())
	if err != nil {
		responderErro(c, "Erro ao importar tabela de preços", err)
		return
	}
	info := h.precos.Info()
	c.JSON(http.StatusOK, model.TabelaResponse{
		Success: true,
		Versao:  info.Versao,
		Linhas:  linhas,
		Origem:  info.Origem,
		Message: "Planilhas importadas para o banco",
	})
}

// Auditoria lista as combinações sem preço
func (h *AdminHandler) Auditoria(c *gin.Context) {
	lacunas := h.precos.Auditar(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   len(lacunas),
		"lacunas": lacunas,
	})
}

// Metricas retorna as métricas da aplicação, do cache e da tabela
func (h *AdminHandler) Metricas(c *gin.Context) {
	resp := gin.H{
		"success":  true,
		"metricas": metrics.Get().Snapshot(),
		"cache":    h.precos.CacheStats(),
		"tabela":   h.precos.Info(),
	}
	if h.hub != nil {
		resp["websocket_conexoes"] = h.hub.GetConnectionCount()
	}
	c.JSON(http.StatusOK, resp)
}

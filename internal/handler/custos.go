package handler

import (
	"net/http"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CustoHandler atende os cálculos de custos adicionais
type CustoHandler struct {
	custos *service.CustoService
}

// NewCustoHandler cria um novo handler de custos
func NewCustoHandler(custos *service.CustoService) *CustoHandler {
	return &CustoHandler{custos: custos}
}

func responderCusto(c *gin.Context, custo decimal.Decimal) {
	c.JSON(http.StatusOK, model.CustoResponse{
		Success:        true,
		Custo:          custo.InexactFloat64(),
		CustoFormatado: moeda.Formatar(custo),
	})
}

// Logisticos calcula o custo de deslocamento
func (h *CustoHandler) Logisticos(c *gin.Context) {
	var req model.LogisticaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	custo, err := h.custos.Logisticos(c.Request.Context(), req)
	if err != nil {
		responderErro(c, "Não foi possível calcular o custo logístico", err)
		return
	}
	responderCusto(c, custo)
}

// MultiplosDias calcula o custo de coleta em vários dias
func (h *CustoHandler) MultiplosDias(c *gin.Context) {
	var req model.MultiplosDiasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	responderCusto(c, h.custos.MultiplosDias(c.Request.Context(), req))
}

// Laboratoriais calcula o custo das análises laboratoriais
func (h *CustoHandler) Laboratoriais(c *gin.Context) {
	var req model.LaboratorioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	custo, err := h.custos.Laboratoriais(c.Request.Context(), req)
	if err != nil {
		responderErro(c, "Não foi possível calcular o custo laboratorial", err)
		return
	}
	responderCusto(c, custo)
}

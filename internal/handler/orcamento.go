package handler

import (
	"net/http"
	"strconv"

	"github.com/cleberrangel/orcamento-sst-api/internal/middleware"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/gin-gonic/gin"
)

// OrcamentoHandler atende a emissão e consulta de orçamentos
type OrcamentoHandler struct {
	orcamentos *service.OrcamentoService
}

// NewOrcamentoHandler cria um novo handler de orçamentos
func NewOrcamentoHandler(orcamentos *service.OrcamentoService) *OrcamentoHandler {
	return &OrcamentoHandler{orcamentos: orcamentos}
}

// Gerar emite um orçamento; os preços são recalculados pela tabela oficial
// @Summary Gera orçamento
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param request body model.OrcamentoRequest true "Pedido de orçamento"
// @Success 200 {object} model.OrcamentoResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /orcamentos/gerar_orcamento [post]
func (h *OrcamentoHandler) Gerar(c *gin.Context) {
	var req model.OrcamentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	middleware.SanitizeOrcamento(&req)

	o, err := h.orcamentos.Gerar(c.Request.Context(), req)
	if err != nil {
		responderErro(c, "Não foi possível gerar o orçamento", err)
		return
	}
	c.JSON(http.StatusOK, service.ParaResposta(o))
}

// Buscar retorna um orçamento emitido
func (h *OrcamentoHandler) Buscar(c *gin.Context) {
	o, err := h.orcamentos.Buscar(c.Request.Context(), c.Param("numero"))
	if err != nil {
		responderErro(c, "Orçamento não encontrado", err)
		return
	}
	c.JSON(http.StatusOK, service.ParaResposta(o))
}

// Listar retorna os orçamentos mais recentes
func (h *OrcamentoHandler) Listar(c *gin.Context) {
	limite, _ := strconv.Atoi(c.DefaultQuery("limite", "50"))
	resumos, err := h.orcamentos.Listar(c.Request.Context(), limite)
	if err != nil {
		responderErro(c, "Erro ao listar orçamentos", err)
		return
	}
	c.JSON(http.StatusOK, service.ResumosParaResposta(resumos))
}

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PrecoHandler atende o catálogo de serviços e o cálculo de preços
type PrecoHandler struct {
	precos *service.PrecoService
}

// NewPrecoHandler cria um novo handler de preços
func NewPrecoHandler(precos *service.PrecoService) *PrecoHandler {
	return &PrecoHandler{precos: precos}
}

// Servicos lista os serviços da tabela
// @Summary Lista serviços
// @Tags precos
// @Produce json
// @Success 200 {object} model.ServicosResponse
// @Router /api/servicos [get]
func (h *PrecoHandler) Servicos(c *gin.Context) {
	c.JSON(http.StatusOK, model.ServicosResponse{
		Success:  true,
		Servicos: naoNulo(h.precos.Tabela().Servicos()),
	})
}

// Regioes lista as regiões com preço para o serviço
func (h *PrecoHandler) Regioes(c *gin.Context) {
	servico := strings.TrimSpace(c.Query("servico"))
	if servico == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "Parâmetro servico é obrigatório",
		})
		return
	}
	c.JSON(http.StatusOK, model.RegioesResponse{
		Success: true,
		Regioes: naoNulo(h.precos.Tabela().Regioes(servico)),
	})
}

// Variaveis descreve os parâmetros que o formulário deve exibir para o serviço
func (h *PrecoHandler) Variaveis(c *gin.Context) {
	variaveis := h.precos.Tabela().Variaveis(c.Param("servico"))
	if variaveis == nil {
		variaveis = map[string]model.Variavel{}
	}
	c.JSON(http.StatusOK, model.VariaveisResponse{Success: true, Variaveis: variaveis})
}

// ListaVariaveis retorna apenas os valores selecionáveis da variável do serviço
func (h *PrecoHandler) ListaVariaveis(c *gin.Context) {
	c.JSON(http.StatusOK, model.ListaVariaveisResponse{
		Success:   true,
		Variaveis: naoNulo(h.precos.Tabela().ListaVariaveis(c.Query("servico"))),
	})
}

// CalcularPreco calcula o preço a partir do corpo JSON
// @Summary Calcula preço de um item
// @Tags precos
// @Accept json
// @Produce json
// @Param request body model.PrecoRequest true "Parâmetros do item"
// @Success 200 {object} model.PrecoResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /orcamentos/calcular_preco [post]
func (h *PrecoHandler) CalcularPreco(c *gin.Context) {
	var req model.PrecoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	h.calcular(c, req)
}

// CalcularPrecoQuery calcula o preço a partir da query string
func (h *PrecoHandler) CalcularPrecoQuery(c *gin.Context) {
	var req model.PrecoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		requisicaoInvalida(c, err)
		return
	}
	h.calcular(c, req)
}

// calcular responde sempre com preço zero e placeholder quando não há preço:
// seleção incompleta vira success=false; combinação sem preço, success=true.
func (h *PrecoHandler) calcular(c *gin.Context, req model.PrecoRequest) {
	quantidade := req.Quantidade
	if quantidade < 1 {
		quantidade = 1
	}

	res, err := h.precos.Calcular(c.Request.Context(), service.ConsultaDe(req))
	switch {
	case err == nil:
		total := moeda.Arredondar(res.Preco.Mul(decimal.NewFromInt(int64(quantidade))))
		c.JSON(http.StatusOK, model.PrecoResponse{
			Success:        true,
			Preco:          res.Preco.InexactFloat64(),
			PrecoFormatado: moeda.Formatar(res.Preco),
			PrecoUnitario:  res.Preco.InexactFloat64(),
			PrecoTotal:     total.InexactFloat64(),
		})
	case errors.Is(err, model.ErrPrecoNaoEncontrado):
		c.JSON(http.StatusOK, model.PrecoResponse{Success: true, PrecoFormatado: moeda.Placeholder})
	case errors.Is(err, model.ErrSelecaoIncompleta):
		c.JSON(http.StatusOK, model.PrecoResponse{
			Success:        false,
			PrecoFormatado: moeda.Placeholder,
			Error:          err.Error(),
		})
	default:
		c.JSON(statusDe(err), model.PrecoResponse{
			Success:        false,
			PrecoFormatado: moeda.Placeholder,
			Error:          err.Error(),
		})
	}
}

func naoNulo(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

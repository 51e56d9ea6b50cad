package handler

import (
	"errors"
	"net/http"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/gin-gonic/gin"
)

// statusDe mapeia os erros de domínio para o status HTTP
func statusDe(err error) int {
	switch {
	case errors.Is(err, model.ErrSelecaoIncompleta),
		errors.Is(err, model.ErrDadosIncompletos),
		errors.Is(err, model.ErrQuantidadeInvalida),
		errors.Is(err, model.ErrRegiaoInvalida),
		errors.Is(err, model.ErrServicoNaoEncontrado),
		errors.Is(err, model.ErrPrecoNaoEncontrado):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrOrcamentoNaoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, model.ErrTabelaVazia):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrBancoIndisponivel):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// responderErro escreve o ErrorResponse com o status do erro
func responderErro(c *gin.Context, mensagem string, err error) {
	status := statusDe(err)
	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(mensagem)
	} else {
		log.Warn().Err(err).Msg(mensagem)
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   mensagem,
		Details: err.Error(),
	})
}

func requisicaoInvalida(c *gin.Context, err error) {
	logger.FromGin(c).Warn().Err(err).Msg("Erro ao fazer bind do request")
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   "Dados inválidos",
		Details: err.Error(),
	})
}

package service

import (
	"context"

	"github.com/cleberrangel/orcamento-sst-api/internal/custos"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/shopspring/decimal"
)

// CustoService calcula os custos adicionais de um item
type CustoService struct{}

// NewCustoService cria um novo serviço de custos
func NewCustoService() *CustoService {
	return &CustoService{}
}

func (s *CustoService) Logisticos(ctx context.Context, req model.LogisticaRequest) (decimal.Decimal, error) {
	custo, err := custos.Logisticos(req.Regiao, req.DistanciaKm)
	if err != nil {
		logger.Get(ctx).Warn().Err(err).Str("regiao", req.Regiao).Msg("Custo logístico rejeitado")
		return decimal.Zero, err
	}
	logger.Get(ctx).Debug().
		Str("regiao", req.Regiao).
		Float64("distancia_km", req.DistanciaKm).
		Str("custo", custo.StringFixed(2)).
		Msg("Custo logístico calculado")
	return custo, nil
}

func (s *CustoService) MultiplosDias(ctx context.Context, req model.MultiplosDiasRequest) decimal.Decimal {
	custo := custos.MultiplosDias(req.DiasColeta)
	logger.Get(ctx).Debug().Int("dias", req.DiasColeta).Str("custo", custo.StringFixed(2)).Msg("Custo de múltiplos dias calculado")
	return custo
}

func (s *CustoService) Laboratoriais(ctx context.Context, req model.LaboratorioRequest) (decimal.Decimal, error) {
	custo, err := custos.Laboratoriais(custos.DeRequest(req))
	if err != nil {
		logger.Get(ctx).Warn().Err(err).
			Str("amostrador", req.TipoAmostrador).
			Str("analise", req.TipoAnalise).
			Msg("Custo laboratorial rejeitado")
		return decimal.Zero, err
	}
	return custo, nil
}

// Adicionais soma os custos adicionais informados no item do pedido
func (s *CustoService) Adicionais(ctx context.Context, it model.ItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero

	if it.DistanciaKm > 0 {
		c, err := s.Logisticos(ctx, model.LogisticaRequest{Regiao: it.Regiao, DistanciaKm: it.DistanciaKm})
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(c)
	}
	total = total.Add(s.MultiplosDias(ctx, model.MultiplosDiasRequest{DiasColeta: it.DiasColeta}))

	if it.Laboratorio != nil {
		c, err := s.Laboratoriais(ctx, *it.Laboratorio)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(c)
	}
	return total, nil
}

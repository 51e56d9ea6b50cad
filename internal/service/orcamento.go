package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/custos"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/orcamento"
	"github.com/shopspring/decimal"
)

// OrcamentoStore persiste orçamentos emitidos
type OrcamentoStore interface {
	Salvar(ctx context.Context, o *orcamento.Orcamento) error
	BuscarPorNumero(ctx context.Context, numero string) (*orcamento.Orcamento, error)
	Listar(ctx context.Context, limite int) ([]orcamento.Resumo, error)
}

// Publicador entrega eventos de orçamento a outros sistemas
type Publicador interface {
	Publicar(ctx context.Context, evento model.EventoOrcamento) error
}

// OrcamentoService emite orçamentos com preços da tabela oficial
type OrcamentoService struct {
	precos     *PrecoService
	custos     *CustoService
	store      OrcamentoStore
	publicador Publicador
	percentual decimal.Decimal
	agora      func() time.Time
}

// NewOrcamentoService cria um novo serviço de orçamentos.
// publicador pode ser nil quando a publicação de eventos está desabilitada.
func NewOrcamentoService(precos *PrecoService, custos *CustoService, store OrcamentoStore, publicador Publicador, percentual decimal.Decimal) *OrcamentoService {
	return &OrcamentoService{
		precos:     precos,
		custos:     custos,
		store:      store,
		publicador: publicador,
		percentual: percentual,
		agora:      time.Now,
	}
}

// Gerar valida o pedido, reprecifica cada item pela tabela, grava e publica o orçamento.
// O valor enviado pelo cliente em cada item é ignorado.
func (s *OrcamentoService) Gerar(ctx context.Context, req model.OrcamentoRequest) (*orcamento.Orcamento, error) {
	o, err := s.montar(ctx, req)
	if err == nil {
		err = o.Validar()
	}
	if err != nil {
		metrics.Get().IncrementQuote(false)
		logger.AuditOrcamento(ctx, "", req.Empresa, len(req.Servicos), "", err)
		return nil, err
	}

	agora := s.agora()
	o.Numero = orcamento.GerarNumero(agora)
	o.CriadoEm = agora.UTC().Truncate(time.Microsecond)
	ctx = logger.WithOrcamento(ctx, o.Numero)
	log := logger.Get(ctx)

	if err := s.store.Salvar(ctx, o); err != nil {
		metrics.Get().IncrementQuote(false)
		logger.AuditOrcamento(ctx, o.Numero, o.Empresa, len(o.Itens), "", err)
		return nil, fmt.Errorf("erro ao salvar orçamento: %w", err)
	}

	totais := o.Totais()
	metrics.Get().IncrementQuote(true)
	logger.AuditOrcamento(ctx, o.Numero, o.Empresa, len(o.Itens), totais.Total.StringFixed(2), nil)
	log.Info().
		Str("empresa", o.Empresa).
		Int("itens", len(o.Itens)).
		Str("total", totais.Total.StringFixed(2)).
		Msg("Orçamento gerado")

	s.publicar(ctx, o, req.EnviarEmail)
	return o, nil
}

func (s *OrcamentoService) montar(ctx context.Context, req model.OrcamentoRequest) (*orcamento.Orcamento, error) {
	o := orcamento.Novo(req.Empresa, req.Email)
	o.Telefone = req.Telefone
	o.Contato = req.Contato
	o.PercentualSESI = s.percentual
	if req.PercentualSESI != nil {
		o.PercentualSESI = decimal.NewFromFloat(*req.PercentualSESI)
	}

	for i, it := range req.Servicos {
		quantidade := it.Quantidade
		if quantidade == 0 {
			quantidade = 1
		}

		res, err := s.precos.Calcular(ctx, ConsultaDe(it.PrecoRequest))
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, it.Servico, err)
		}
		adicionais, err := s.custos.Adicionais(ctx, it)
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, it.Servico, err)
		}

		item := orcamento.Item{
			Servico:                 it.Servico,
			Regiao:                  it.Regiao,
			Variavel:                it.TipoAvaliacaoEfetivo(),
			GrauRisco:               it.GrauRisco,
			Faixa:                   it.NumTrabalhadores,
			NumGesGhe:               it.NumGesGhe,
			NumAvaliacoesAdicionais: it.NumAvaliacoesAdicionais,
			Quantidade:              quantidade,
			PrecoUnitario:           res.Preco,
			Adicionais:              adicionais,
			DistanciaKm:             it.DistanciaKm,
			DiasColeta:              it.DiasColeta,
			Detalhes:                it.Detalhes,
		}
		if it.Laboratorio != nil {
			lab := custos.DeRequest(*it.Laboratorio)
			item.Laboratorio = &lab
		}
		o.Adicionar(item)
	}
	return o, nil
}

func (s *OrcamentoService) publicar(ctx context.Context, o *orcamento.Orcamento, enviarEmail bool) {
	if s.publicador == nil {
		return
	}
	resp := ParaResposta(o)
	evento := model.EventoOrcamento{
		Tipo:            model.TipoOrcamentoGerado,
		NumeroOrcamento: resp.NumeroOrcamento,
		Empresa:         resp.Empresa,
		Email:           resp.Email,
		Telefone:        o.Telefone,
		Contato:         o.Contato,
		Itens:           resp.Itens,
		Subtotal:        resp.Subtotal,
		PercentualSESI:  resp.PercentualSESI,
		ValorSESI:       resp.ValorSESI,
		Total:           resp.Total,
		EnviarEmail:     enviarEmail,
		CriadoEm:        resp.CriadoEm,
	}

	err := s.publicador.Publicar(ctx, evento)
	metrics.Get().IncrementEvent(err == nil)
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionOrcamentoPublicar,
		Resource:   "orcamento",
		ResourceID: o.Numero,
		Success:    err == nil,
		Error:      errString(err),
	})
	if err != nil {
		// o orçamento já foi gravado; a falha de publicação não é repassada ao cliente
		logger.Get(ctx).Error().Err(err).Msg("Erro ao publicar evento de orçamento")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Buscar retorna um orçamento emitido
func (s *OrcamentoService) Buscar(ctx context.Context, numero string) (*orcamento.Orcamento, error) {
	o, err := s.store.BuscarPorNumero(ctx, numero)
	if err != nil && !errors.Is(err, model.ErrOrcamentoNaoEncontrado) {
		logger.Get(ctx).Error().Err(err).Str("numero", numero).Msg("Erro ao buscar orçamento")
	}
	return o, err
}

// Listar retorna os orçamentos mais recentes
func (s *OrcamentoService) Listar(ctx context.Context, limite int) ([]orcamento.Resumo, error) {
	return s.store.Listar(ctx, limite)
}

// ParaResposta converte o orçamento no payload HTTP
func ParaResposta(o *orcamento.Orcamento) model.OrcamentoResponse {
	totais := o.Totais()
	itens := make([]model.ItemResponse, 0, len(o.Itens))
	for _, it := range o.Itens {
		itens = append(itens, model.ItemResponse{
			ID:                      it.ID,
			Servico:                 it.Servico,
			Regiao:                  it.Regiao,
			Variavel:                it.Variavel,
			GrauRisco:               it.GrauRisco,
			Faixa:                   it.Faixa,
			NumGesGhe:               it.NumGesGhe,
			NumAvaliacoesAdicionais: it.NumAvaliacoesAdicionais,
			Quantidade:              it.Quantidade,
			PrecoUnitario:           it.PrecoUnitario.InexactFloat64(),
			Adicionais:              it.Adicionais.InexactFloat64(),
			Valor:                   it.Total().InexactFloat64(),
			Detalhes:                it.Detalhes,
		})
	}

	return model.OrcamentoResponse{
		Success:         true,
		NumeroOrcamento: o.Numero,
		Empresa:         o.Empresa,
		Email:           o.Email,
		Itens:           itens,
		Subtotal:        totais.Subtotal.InexactFloat64(),
		PercentualSESI:  o.PercentualSESI.InexactFloat64(),
		ValorSESI:       totais.ValorSESI.InexactFloat64(),
		Total:           totais.Total.InexactFloat64(),
		CriadoEm:        o.CriadoEm,
	}
}

// ResumosParaResposta converte a listagem no payload HTTP
func ResumosParaResposta(resumos []orcamento.Resumo) model.ListaOrcamentosResponse {
	out := make([]model.ResumoOrcamento, 0, len(resumos))
	for _, r := range resumos {
		out = append(out, model.ResumoOrcamento{
			NumeroOrcamento: r.Numero,
			Empresa:         r.Empresa,
			Email:           r.Email,
			Itens:           r.Itens,
			Total:           r.Total.InexactFloat64(),
			CriadoEm:        r.CriadoEm,
		})
	}
	return model.ListaOrcamentosResponse{Success: true, Orcamentos: out}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/cache"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
)

// ErrBancoIndisponivel indica operação que exige PostgreSQL sem banco configurado
var ErrBancoIndisponivel = errors.New("banco de dados não configurado")

// Notificador é avisado quando uma nova tabela de preços entra em vigor
type Notificador interface {
	NotificarTabela(versao int64, linhas int)
}

// PrecoStore persiste a tabela de preços
type PrecoStore interface {
	Substituir(ctx context.Context, c tabela.Conteudo) error
	Carregar(ctx context.Context) (tabela.Conteudo, error)
}

// PrecoOptions configura o PrecoService
type PrecoOptions struct {
	Arquivos    []string
	Banco       PrecoStore
	UsarBanco   bool
	CacheTTL    time.Duration
	Notificador Notificador
}

// InfoTabela descreve a tabela em vigor
type InfoTabela struct {
	Versao      int64     `json:"versao"`
	Linhas      int       `json:"linhas"`
	Servicos    int       `json:"servicos"`
	Origem      string    `json:"origem"`
	CarregadaEm time.Time `json:"carregada_em"`
}

// PrecoService resolve preços a partir da tabela oficial em vigor
type PrecoService struct {
	mu          sync.RWMutex
	tabela      *tabela.Tabela
	info        InfoTabela
	modificados map[string]time.Time

	arquivos    []string
	banco       PrecoStore
	usarBanco   bool
	cache       *cache.Cache[tabela.Resultado]
	notificador Notificador

	// Recarga periódica
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPrecoService cria o serviço com uma tabela vazia; chame Recarregar antes de usar
func NewPrecoService(opts PrecoOptions) *PrecoService {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &PrecoService{
		tabela:      tabela.Nova(nil, nil),
		modificados: make(map[string]time.Time),
		arquivos:    opts.Arquivos,
		banco:       opts.Banco,
		usarBanco:   opts.UsarBanco,
		cache:       cache.New[tabela.Resultado](ttl),
		notificador: opts.Notificador,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Tabela retorna a tabela em vigor
func (s *PrecoService) Tabela() *tabela.Tabela {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tabela
}

// vigente retorna a tabela em vigor e sua versão numa única leitura
func (s *PrecoService) vigente() (*tabela.Tabela, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tabela, s.info.Versao
}

// Info retorna versão e origem da tabela em vigor
func (s *PrecoService) Info() InfoTabela {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// CacheStats expõe as estatísticas do cache de consultas
func (s *PrecoService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Recarregar lê a tabela da origem configurada e a coloca em vigor
func (s *PrecoService) Recarregar(ctx context.Context) (int, error) {
	log := logger.Get(ctx)

	conteudo, origem, err := s.lerOrigem(ctx)
	linhas := len(conteudo.PGR) + len(conteudo.Ambiental)
	if err == nil && linhas == 0 {
		err = fmt.Errorf("%w: %s", model.ErrTabelaVazia, origem)
	}
	if err != nil {
		metrics.Get().RecordTableReload(false, 0)
		logger.AuditTabela(ctx, logger.AuditActionTabelaRecarregar, origem, 0, err)
		log.Error().Err(err).Str("origem", origem).Msg("Erro ao recarregar tabela de preços")
		return 0, err
	}

	info := s.aplicar(conteudo, origem)

	metrics.Get().RecordTableReload(true, info.Linhas)
	logger.AuditTabela(ctx, logger.AuditActionTabelaRecarregar, origem, info.Linhas, nil)
	log.Info().
		Int64("versao", info.Versao).
		Int("linhas", info.Linhas).
		Int("servicos", info.Servicos).
		Str("origem", origem).
		Msg("Tabela de preços carregada")

	if s.notificador != nil {
		s.notificador.NotificarTabela(info.Versao, info.Linhas)
	}
	return info.Linhas, nil
}

func (s *PrecoService) lerOrigem(ctx context.Context) (tabela.Conteudo, string, error) {
	if s.usarBanco {
		if s.banco == nil {
			return tabela.Conteudo{}, "banco", ErrBancoIndisponivel
		}
		c, err := s.banco.Carregar(ctx)
		return c, "banco", err
	}
	origem := strings.Join(s.arquivos, ",")
	c, err := tabela.CarregarArquivos(s.arquivos...)
	if err == nil {
		s.registrarModificacao()
	}
	return c, origem, err
}

func (s *PrecoService) aplicar(c tabela.Conteudo, origem string) InfoTabela {
	nova := c.Tabela()

	s.mu.Lock()
	s.tabela = nova
	s.info = InfoTabela{
		Versao:      s.info.Versao + 1,
		Linhas:      nova.Tamanho(),
		Servicos:    len(nova.Servicos()),
		Origem:      origem,
		CarregadaEm: time.Now(),
	}
	info := s.info
	s.mu.Unlock()

	s.cache.Clear()
	return info
}

// Importar grava no banco as planilhas configuradas e recarrega a tabela
func (s *PrecoService) Importar(ctx context.Context) (int, error) {
	origem := strings.Join(s.arquivos, ",")
	if s.banco == nil {
		logger.AuditTabela(ctx, logger.AuditActionTabelaImportar, origem, 0, ErrBancoIndisponivel)
		return 0, ErrBancoIndisponivel
	}

	conteudo, err := tabela.CarregarArquivos(s.arquivos...)
	if err == nil && len(conteudo.PGR)+len(conteudo.Ambiental) == 0 {
		err = fmt.Errorf("%w: %s", model.ErrTabelaVazia, origem)
	}
	if err == nil {
		err = s.banco.Substituir(ctx, conteudo)
	}
	linhas := len(conteudo.PGR) + len(conteudo.Ambiental)
	logger.AuditTabela(ctx, logger.AuditActionTabelaImportar, origem, linhas, err)
	if err != nil {
		return 0, fmt.Errorf("erro ao importar tabela: %w", err)
	}

	if s.usarBanco {
		return s.Recarregar(ctx)
	}
	return linhas, nil
}

// Auditar lista as combinações ausentes na tabela em vigor
func (s *PrecoService) Auditar(ctx context.Context) []tabela.Lacuna {
	lacunas := s.Tabela().Auditar()
	logger.AuditTabela(ctx, logger.AuditActionTabelaAuditar, s.Info().Origem, len(lacunas), nil)
	if len(lacunas) > 0 {
		logger.Get(ctx).Warn().Int("lacunas", len(lacunas)).Msg("Combinações sem preço na tabela")
	}
	return lacunas
}

// Calcular resolve o preço unitário de uma consulta.
// Consultas bem-sucedidas ficam em cache até a próxima recarga; a chave
// carrega a versão da tabela, então um Set atrasado não sobrevive à troca.
func (s *PrecoService) Calcular(ctx context.Context, c tabela.Consulta) (tabela.Resultado, error) {
	m := metrics.Get()
	tab, versao := s.vigente()
	chave := chaveConsulta(versao, c)
	if res, ok := s.cache.Get(chave); ok {
		m.IncrementPriceLookup(metrics.LookupOK)
		return res, nil
	}

	res, err := tab.Preco(c)
	switch {
	case err == nil:
		m.IncrementPriceLookup(metrics.LookupOK)
		s.cache.Set(chave, res)
	case errors.Is(err, model.ErrPrecoNaoEncontrado):
		m.IncrementPriceLookup(metrics.LookupMiss)
		logger.Get(ctx).Warn().
			Str("servico", c.Servico).
			Str("regiao", c.Regiao).
			Str("tipo_avaliacao", c.TipoAvaliacao).
			Str("grau_risco", c.GrauRisco).
			Str("faixa", c.Faixa).
			Msg("Preço não encontrado")
	case errors.Is(err, model.ErrSelecaoIncompleta):
		m.IncrementPriceLookup(metrics.LookupIncomplete)
	default:
		m.IncrementPriceLookup(metrics.LookupError)
		logger.Get(ctx).Warn().Err(err).Str("servico", c.Servico).Msg("Consulta de preço rejeitada")
	}
	return res, err
}

func chaveConsulta(versao int64, c tabela.Consulta) string {
	return strings.Join([]string{
		"preco",
		fmt.Sprint(versao),
		tabela.Normalizar(c.Servico),
		tabela.Normalizar(c.Regiao),
		tabela.Normalizar(c.TipoAvaliacao),
		tabela.Normalizar(c.GrauRisco),
		tabela.Normalizar(c.Faixa),
		fmt.Sprint(c.NumGesGhe),
		fmt.Sprint(c.NumAvaliacoesAdicionais),
	}, "|")
}

// ConsultaDe converte o payload HTTP em consulta à tabela
func ConsultaDe(req model.PrecoRequest) tabela.Consulta {
	return tabela.Consulta{
		Servico:                 req.Servico,
		Regiao:                  req.Regiao,
		TipoAvaliacao:           req.TipoAvaliacaoEfetivo(),
		GrauRisco:               req.GrauRisco,
		Faixa:                   req.NumTrabalhadores,
		NumGesGhe:               req.NumGesGhe,
		NumAvaliacoesAdicionais: req.NumAvaliacoesAdicionais,
	}
}

// Start inicia a verificação periódica das planilhas (ou do banco).
// Intervalo zero desativa a recarga automática.
func (s *PrecoService) Start(intervalo time.Duration) {
	if intervalo <= 0 {
		return
	}
	logger.Global().Info().Dur("intervalo", intervalo).Msg("Recarga automática da tabela iniciada")

	s.wg.Add(1)
	go s.recargaLoop(intervalo)
}

// Stop encerra a recarga automática e o cache
func (s *PrecoService) Stop() {
	s.cancel()
	s.wg.Wait()
	s.cache.Stop()
}

func (s *PrecoService) recargaLoop(intervalo time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			logger.Global().Info().Msg("Recarga automática parando")
			return
		case <-ticker.C:
			if s.usarBanco || s.arquivosAlterados() {
				s.Recarregar(s.ctx)
			}
		}
	}
}

func (s *PrecoService) registrarModificacao() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.arquivos {
		if st, err := os.Stat(a); err == nil {
			s.modificados[a] = st.ModTime()
		}
	}
}

// arquivosAlterados indica se alguma planilha mudou desde a última leitura
func (s *PrecoService) arquivosAlterados() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.arquivos {
		if a == "" {
			continue
		}
		st, err := os.Stat(a)
		if err != nil {
			continue
		}
		if !st.ModTime().Equal(s.modificados[a]) {
			return true
		}
	}
	return false
}

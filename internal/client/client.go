// Package client é o cliente HTTP da API de preços usado pelo formulário e pela CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout timeout padrão para requisições
	DefaultTimeout = 15 * time.Second

	// RequestsPerMinute limite padrão do cliente
	RequestsPerMinute = 600

	// RetryMaxAttempts número máximo de tentativas para requisições idempotentes
	RetryMaxAttempts = 3

	// RetryBackoff espera inicial entre tentativas, dobrada a cada falha
	RetryBackoff = 500 * time.Millisecond
)

// Options ajusta o comportamento do cliente; campos zerados usam os padrões
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	Tentativas        int
	Backoff           time.Duration
	HTTPClient        *http.Client
}

// Client é o cliente HTTP da API de preços
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tentativas int
	backoff    time.Duration
}

// New cria um cliente para a API em baseURL
func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = RequestsPerMinute
	}
	if opts.Tentativas <= 0 {
		opts.Tentativas = RetryMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = RetryBackoff
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 10),
		tentativas: opts.Tentativas,
		backoff:    opts.Backoff,
	}
}

// BaseURL retorna o endereço da API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Servicos lista os serviços com preço
func (c *Client) Servicos(ctx context.Context) ([]string, error) {
	var resp model.ServicosResponse
	if err := c.get(ctx, "/api/servicos", nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar serviços: %w", err)
	}
	return resp.Servicos, nil
}

// Regioes lista as regiões atendidas pelo serviço
func (c *Client) Regioes(ctx context.Context, servico string) ([]string, error) {
	var resp model.RegioesResponse
	q := url.Values{"servico": {servico}}
	if err := c.get(ctx, "/orcamentos/obter_regioes", q, &resp); err != nil {
		return nil, fmt.Errorf("buscar regiões: %w", err)
	}
	return resp.Regioes, nil
}

// Variaveis descreve os parâmetros do serviço
func (c *Client) Variaveis(ctx context.Context, servico string) (map[string]model.Variavel, error) {
	var resp model.VariaveisResponse
	if err := c.get(ctx, "/orcamentos/variaveis/"+url.PathEscape(servico), nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar variáveis: %w", err)
	}
	return resp.Variaveis, nil
}

// ListaVariaveis retorna os valores selecionáveis da variável do serviço
func (c *Client) ListaVariaveis(ctx context.Context, servico string) ([]string, error) {
	var resp model.ListaVariaveisResponse
	q := url.Values{"servico": {servico}}
	if err := c.get(ctx, "/obter_variaveis", q, &resp); err != nil {
		return nil, fmt.Errorf("buscar lista de variáveis: %w", err)
	}
	return resp.Variaveis, nil
}

// CalcularPreco consulta o preço unitário de uma combinação. Uma resposta
// com success=false é devolvida sem erro para que o chamador exiba a mensagem.
func (c *Client) CalcularPreco(ctx context.Context, req model.PrecoRequest) (model.PrecoResponse, error) {
	var resp model.PrecoResponse
	err := c.comRetry(ctx, "calcular_preco", func() error {
		return c.do(ctx, http.MethodPost, "/orcamentos/calcular_preco", nil, req, &resp)
	})
	if err != nil {
		var erroAPI *ErroAPI
		if errors.As(err, &erroAPI) && erroAPI.Status == http.StatusBadRequest && erroAPI.Mensagem != "" {
			return model.PrecoResponse{Success: false, PrecoFormatado: "R$ 0,00", Error: erroAPI.Mensagem}, nil
		}
		return model.PrecoResponse{}, fmt.Errorf("calcular preço: %w", err)
	}
	return resp, nil
}

// GerarOrcamento emite o orçamento. Não há nova tentativa para não duplicar a emissão.
func (c *Client) GerarOrcamento(ctx context.Context, req model.OrcamentoRequest) (model.OrcamentoResponse, error) {
	var resp model.OrcamentoResponse
	if err := c.limiter.Wait(ctx); err != nil {
		return resp, fmt.Errorf("rate limiter: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, "/orcamentos/gerar_orcamento", nil, req, &resp); err != nil {
		return resp, fmt.Errorf("gerar orçamento: %w", err)
	}
	return resp, nil
}

// BuscarOrcamento retorna um orçamento emitido
func (c *Client) BuscarOrcamento(ctx context.Context, numero string) (model.OrcamentoResponse, error) {
	var resp model.OrcamentoResponse
	if err := c.get(ctx, "/orcamentos/"+url.PathEscape(numero), nil, &resp); err != nil {
		return resp, fmt.Errorf("buscar orçamento %s: %w", numero, err)
	}
	return resp, nil
}

// ErroAPI é uma resposta não-2xx da API
type ErroAPI struct {
	Status   int
	Mensagem string
}

func (e *ErroAPI) Error() string {
	if e.Mensagem == "" {
		return fmt.Sprintf("%v: status %d", model.ErrRespostaInvalida, e.Status)
	}
	return fmt.Sprintf("%v: status %d: %s", model.ErrRespostaInvalida, e.Status, e.Mensagem)
}

func (e *ErroAPI) Unwrap() error { return model.ErrRespostaInvalida }

// Temporario indica se vale tentar novamente
func (e *ErroAPI) Temporario() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

func (c *Client) get(ctx context.Context, path string, q url.Values, result interface{}) error {
	return c.comRetry(ctx, path, func() error {
		return c.do(ctx, http.MethodGet, path, q, nil, result)
	})
}

// comRetry aguarda o rate limiter e repete falhas temporárias com backoff exponencial
func (c *Client) comRetry(ctx context.Context, operacao string, fn func() error) error {
	var lastErr error
	espera := c.backoff

	for attempt := 1; attempt <= c.tentativas; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		var erroAPI *ErroAPI
		if errors.As(err, &erroAPI) && !erroAPI.Temporario() {
			return err
		}

		if attempt < c.tentativas {
			logger.Get(ctx).Warn().
				Str("operacao", operacao).
				Int("attempt", attempt).
				Int("max_attempts", c.tentativas).
				Dur("backoff", espera).
				Err(err).
				Msg("Tentativa falhou, aguardando retry")

			select {
			case <-time.After(espera):
			case <-ctx.Done():
				return ctx.Err()
			}
			espera *= 2
		}
	}
	return lastErr
}

// do executa a requisição e decodifica o JSON de resposta
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, result interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	dados, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ler resposta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ErroAPI{Status: resp.StatusCode, Mensagem: mensagemDeErro(dados)}
	}

	if err := json.Unmarshal(dados, result); err != nil {
		return fmt.Errorf("%w: %v", model.ErrRespostaInvalida, err)
	}
	return nil
}

// mensagemDeErro extrai "details" ou "error" do corpo de erro
func mensagemDeErro(dados []byte) string {
	var resp model.ErrorResponse
	if err := json.Unmarshal(dados, &resp); err != nil {
		texto := strings.TrimSpace(string(dados))
		if len(texto) > 200 {
			texto = texto[:200]
		}
		return texto
	}
	if resp.Details != "" {
		return resp.Details
	}
	return resp.Error
}


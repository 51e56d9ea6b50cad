package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics acumula métricas de uma rota
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics reúne os contadores da aplicação
type Metrics struct {
	mu sync.RWMutex

	// Requisições
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	RateLimited        int64
	TotalLatency       int64

	// Consultas de preço
	PriceLookups      int64
	PriceMisses       int64
	IncompleteLookups int64
	PriceErrors       int64

	// Orçamentos
	QuotesGenerated int64
	QuotesRejected  int64
	EventsPublished int64
	EventsFailed    int64

	// Tabela de preços
	TableReloads      int64
	TableReloadErrors int64
	TableRows         int64

	// WebSocket
	WSConnections int64
	WSMessagesOut int64

	// Administração
	AdminAuthFailures int64

	EndpointMetrics map[string]*EndpointMetrics

	StartTime time.Time
}

var (
	globalMetrics *Metrics
	once          sync.Once
)

// Init inicializa a instância global
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New cria uma instância isolada, usada em testes
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get retorna a instância global
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests registra uma requisição concluída
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementRateLimited registra uma requisição barrada pelo limitador
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimited, 1)
}

// Resultado de uma consulta de preço
const (
	LookupOK         = "ok"
	LookupMiss       = "miss"
	LookupIncomplete = "incomplete"
	LookupError      = "error"
)

// IncrementPriceLookup registra uma consulta de preço pelo resultado
func (m *Metrics) IncrementPriceLookup(resultado string) {
	atomic.AddInt64(&m.PriceLookups, 1)
	switch resultado {
	case LookupMiss:
		atomic.AddInt64(&m.PriceMisses, 1)
	case LookupIncomplete:
		atomic.AddInt64(&m.IncompleteLookups, 1)
	case LookupError:
		atomic.AddInt64(&m.PriceErrors, 1)
	}
}

// IncrementQuote registra um orçamento gerado ou rejeitado
func (m *Metrics) IncrementQuote(success bool) {
	if success {
		atomic.AddInt64(&m.QuotesGenerated, 1)
	} else {
		atomic.AddInt64(&m.QuotesRejected, 1)
	}
}

// IncrementEvent registra a publicação de um evento de orçamento
func (m *Metrics) IncrementEvent(success bool) {
	if success {
		atomic.AddInt64(&m.EventsPublished, 1)
	} else {
		atomic.AddInt64(&m.EventsFailed, 1)
	}
}

// RecordTableReload registra uma recarga da tabela de preços
func (m *Metrics) RecordTableReload(success bool, rows int) {
	atomic.AddInt64(&m.TableReloads, 1)
	if !success {
		atomic.AddInt64(&m.TableReloadErrors, 1)
		return
	}
	atomic.StoreInt64(&m.TableRows, int64(rows))
}

// IncrementWSConnection registra uma conexão WebSocket
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection registra uma desconexão WebSocket
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageOut registra uma mensagem enviada
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// IncrementAdminAuthFailure registra uma falha de autenticação administrativa
func (m *Metrics) IncrementAdminAuthFailure() {
	atomic.AddInt64(&m.AdminAuthFailures, 1)
}

// TrackEndpoint acumula métricas por rota
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	em.Requests++
	em.TotalLatency += latencyMs
	if statusCode >= 400 {
		em.Errors++
	}
}

// GetAverageLatency retorna a latência média em milissegundos
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.TotalRequests)
	if count == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TotalLatency)) / float64(count)
}

// GetUptime retorna o tempo desde a inicialização
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot é a visão de uma rota no snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot é uma fotografia de todas as métricas
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		RateLimited  int64   `json:"rate_limited"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Precos struct {
		Consultas   int64 `json:"consultas"`
		SemPreco    int64 `json:"sem_preco"`
		Incompletas int64 `json:"incompletas"`
		Erros       int64 `json:"erros"`
	} `json:"precos"`

	Orcamentos struct {
		Gerados         int64 `json:"gerados"`
		Rejeitados      int64 `json:"rejeitados"`
		EventosEnviados int64 `json:"eventos_enviados"`
		EventosComFalha int64 `json:"eventos_com_falha"`
	} `json:"orcamentos"`

	Tabela struct {
		Recargas     int64 `json:"recargas"`
		ErrosRecarga int64 `json:"erros_recarga"`
		Linhas       int64 `json:"linhas"`
	} `json:"tabela"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	AdminAuthFailures int64 `json:"admin_auth_failures"`

	System struct {
		Goroutines  int    `json:"goroutines"`
		HeapAllocMB uint64 `json:"heap_alloc_mb"`
		NumGC       uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot retorna uma fotografia das métricas
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s := MetricsSnapshot{}
	s.UptimeSeconds = m.GetUptime().Seconds()
	s.StartTime = m.StartTime.Format(time.RFC3339)

	s.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	s.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	s.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	s.Requests.RateLimited = atomic.LoadInt64(&m.RateLimited)
	s.Requests.AvgLatencyMs = m.GetAverageLatency()

	s.Precos.Consultas = atomic.LoadInt64(&m.PriceLookups)
	s.Precos.SemPreco = atomic.LoadInt64(&m.PriceMisses)
	s.Precos.Incompletas = atomic.LoadInt64(&m.IncompleteLookups)
	s.Precos.Erros = atomic.LoadInt64(&m.PriceErrors)

	s.Orcamentos.Gerados = atomic.LoadInt64(&m.QuotesGenerated)
	s.Orcamentos.Rejeitados = atomic.LoadInt64(&m.QuotesRejected)
	s.Orcamentos.EventosEnviados = atomic.LoadInt64(&m.EventsPublished)
	s.Orcamentos.EventosComFalha = atomic.LoadInt64(&m.EventsFailed)

	s.Tabela.Recargas = atomic.LoadInt64(&m.TableReloads)
	s.Tabela.ErrosRecarga = atomic.LoadInt64(&m.TableReloadErrors)
	s.Tabela.Linhas = atomic.LoadInt64(&m.TableRows)

	s.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	s.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	s.AdminAuthFailures = atomic.LoadInt64(&m.AdminAuthFailures)

	s.System.Goroutines = runtime.NumGoroutine()
	s.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	s.System.NumGC = memStats.NumGC

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.EndpointMetrics) > 0 {
		s.Endpoints = make(map[string]EndpointMetricsSnapshot, len(m.EndpointMetrics))
		for k, v := range m.EndpointMetrics {
			em := EndpointMetricsSnapshot{Requests: v.Requests, Errors: v.Errors}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			s.Endpoints[k] = em
		}
	}

	return s
}

// Estados de saúde
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus é o estado de um componente
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck é a resposta completa de saúde
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth verifica a conectividade com o PostgreSQL
func CheckDatabaseHealth(ctx context.Context, db *sql.DB) HealthStatus {
	if db == nil {
		return HealthStatus{Status: StatusUnhealthy, Message: "database connection not initialized"}
	}

	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{Status: StatusUnhealthy, Message: err.Error(), Latency: latency}
	}
	if latency > 100 {
		return HealthStatus{Status: StatusDegraded, Message: "high latency", Latency: latency}
	}
	return HealthStatus{Status: StatusHealthy, Latency: latency}
}

// CheckTabelaHealth verifica se há linhas de preço carregadas
func CheckTabelaHealth(linhas int) HealthStatus {
	if linhas == 0 {
		return HealthStatus{Status: StatusUnhealthy, Message: "tabela de preços vazia"}
	}
	return HealthStatus{Status: StatusHealthy}
}

// CheckMemoryHealth verifica o uso de heap
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024
	if heapMB > maxHeapMB {
		return HealthStatus{Status: StatusUnhealthy, Message: "heap memory exceeds limit"}
	}
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{Status: StatusDegraded, Message: "heap memory usage high"}
	}
	return HealthStatus{Status: StatusHealthy}
}

// DetermineOverallStatus consolida o estado dos componentes
func DetermineOverallStatus(components map[string]HealthStatus) string {
	degraded := false
	for _, st := range components {
		switch st.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			degraded = true
		}
	}
	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

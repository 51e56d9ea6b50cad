package handler

import (
	"database/sql"

	"github.com/cleberrangel/orcamento-sst-api/internal/middleware"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/cleberrangel/orcamento-sst-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Dependencies reúne o que o roteador precisa
type Dependencies struct {
	Precos     *service.PrecoService
	Custos     *service.CustoService
	Orcamentos *service.OrcamentoService
	Hub        *websocket.Hub
	DB         *sql.DB
	Auth       middleware.AuthConfig
	// Requisições por minuto por IP; zero desativa o limite
	RateLimitPerMinute int
	Version            string
}

// NewRouter monta todas as rotas da API
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())
	if deps.RateLimitPerMinute > 0 {
		r.Use(middleware.NewRateLimiter(deps.RateLimitPerMinute).Middleware())
	}

	precos := NewPrecoHandler(deps.Precos)
	custos := NewCustoHandler(deps.Custos)
	orcamentos := NewOrcamentoHandler(deps.Orcamentos)
	admin := NewAdminHandler(deps.Precos, deps.Hub)
	health := NewHealthHandler(deps.DB, deps.Hub, deps.Precos, deps.Version)

	r.GET("/health", health.DetailedHealthCheck)
	r.GET("/health/live", health.LivenessCheck)
	r.GET("/health/ready", health.ReadinessCheck)

	r.GET("/api/servicos", precos.Servicos)
	r.GET("/obter_variaveis", precos.ListaVariaveis)
	r.GET("/calcular_preco", precos.CalcularPrecoQuery)

	o := r.Group("/orcamentos")
	{
		o.GET("/servicos", precos.Servicos)
		o.GET("/obter_servicos", precos.Servicos)
		o.GET("/regioes", precos.Regioes)
		o.GET("/obter_regioes", precos.Regioes)
		o.GET("/variaveis/:servico", precos.Variaveis)
		o.GET("/obter_variaveis/:servico", precos.Variaveis)

		o.POST("/calcular_preco", precos.CalcularPreco)
		o.POST("/calcular_custos_logisticos", custos.Logisticos)
		o.POST("/calcular_custos_multiplos_dias", custos.MultiplosDias)
		o.POST("/calcular_custos_laboratoriais", custos.Laboratoriais)

		o.POST("/gerar_orcamento", orcamentos.Gerar)
		o.POST("/gerar", orcamentos.Gerar)
		o.GET("/:numero", orcamentos.Buscar)
	}

	a := r.Group("/admin", middleware.AdminAuth(deps.Auth))
	{
		a.POST("/precos/recarregar", admin.Recarregar)
		a.POST("/precos/importar", admin.Importar)
		a.GET("/precos/auditoria", admin.Auditoria)
		a.GET("/metricas", admin.Metricas)
		a.GET("/orcamentos", orcamentos.Listar)
	}

	if deps.Hub != nil {
		r.GET("/ws", deps.Hub.ServeWS)
	}

	return r
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/broker"
	"github.com/cleberrangel/orcamento-sst-api/internal/config"
	"github.com/cleberrangel/orcamento-sst-api/internal/database"
	"github.com/cleberrangel/orcamento-sst-api/internal/handler"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/middleware"
	"github.com/cleberrangel/orcamento-sst-api/internal/migration"
	"github.com/cleberrangel/orcamento-sst-api/internal/repository"
	"github.com/cleberrangel/orcamento-sst-api/internal/service"
	"github.com/cleberrangel/orcamento-sst-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "2.0.0"

// publicador com encerramento
type publicador interface {
	service.Publicador
	Close() error
}

func main() {
	task := flag.String("task", "", "tarefa administrativa: migrar, importar")
	flag.Parse()

	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("precos_fonte", cfg.PrecosFonte).
		Bool("banco", cfg.UsaBanco()).
		Bool("broker", cfg.UsaBroker()).
		Msg("API de orçamentos SST iniciando")

	ctx := context.Background()

	// Banco (opcional)
	var db *sql.DB
	if cfg.UsaBanco() {
		db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao conectar ao banco")
		}
		defer db.Close()

		if err := migration.NewMigrator(db).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Erro ao executar migrações")
		}
	}

	hub := websocket.NewHub()
	precos := service.NewPrecoService(precoOptions(cfg, db, hub))

	// Tarefas administrativas encerram o processo sem subir o HTTP
	if *task != "" {
		code := executarTarefa(ctx, *task, db, precos)
		if db != nil {
			db.Close()
		}
		os.Exit(code)
	}

	linhas, err := precos.Recarregar(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao carregar tabela de preços")
	}
	log.Info().Int("linhas", linhas).Str("origem", precos.Info().Origem).Msg("Tabela de preços carregada")

	precos.Start(cfg.PrecosRecarga)
	defer precos.Stop()

	go hub.Run()
	defer hub.Stop()

	// Publicação de eventos
	var pub publicador = broker.NoopPublisher{}
	if cfg.UsaBroker() {
		p, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao conectar no RabbitMQ")
		}
		pub = p
	}
	defer pub.Close()

	var store service.OrcamentoStore = repository.NewMemoriaOrcamentoRepository()
	if db != nil {
		store = repository.NewOrcamentoRepository(db)
	}

	custos := service.NewCustoService()
	orcamentos := service.NewOrcamentoService(precos, custos, store, pub, cfg.PercentualSESI)

	auth := middleware.AuthConfig{TokenAPI: cfg.TokenAPI}
	if cfg.AdminBasicAuth() {
		auth.Users = map[string]string{cfg.AdminUser: cfg.AdminPasswordHash}
	}

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.Dependencies{
		Precos:             precos,
		Custos:             custos,
		Orcamentos:         orcamentos,
		Hub:                hub,
		DB:                 db,
		Auth:               auth,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Version:            Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	// Encerramento gracioso
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no encerramento gracioso")
	}
}

func precoOptions(cfg *config.Config, db *sql.DB, hub *websocket.Hub) service.PrecoOptions {
	opts := service.PrecoOptions{
		Arquivos:    []string{cfg.PrecosPGR, cfg.PrecosAmbientais},
		UsarBanco:   cfg.PrecosFonte == config.FontePrecosBanco,
		CacheTTL:    cfg.CacheTTL,
		Notificador: hub,
	}
	if db != nil {
		opts.Banco = repository.NewPrecoRepository(db)
	}
	return opts
}

func executarTarefa(ctx context.Context, task string, db *sql.DB, precos *service.PrecoService) int {
	log := logger.Global()

	switch task {
	case "migrar":
		if db == nil {
			log.Error().Msg("Tarefa migrar exige DB_HOST configurado")
			return 1
		}
		// as migrações já rodaram na conexão
		log.Info().Msg("Migrações aplicadas")
		return 0
	case "importar":
		linhas, err := precos.Importar(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Erro ao importar planilhas")
			return 1
		}
		log.Info().Int("linhas", linhas).Msg("Planilhas importadas para o banco")
		return 0
	default:
		log.Error().Str("task", task).Msg("Tarefa desconhecida")
		return 2
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/database"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Origem da tabela de preços
const (
	FontePrecosArquivo = "arquivo"
	FontePrecosBanco   = "banco"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogJSON  bool

	TokenAPI          string
	AdminUser         string
	AdminPasswordHash string

	PercentualSESI   decimal.Decimal
	PrecosPGR        string
	PrecosAmbientais string
	PrecosFonte      string
	PrecosRecarga    time.Duration

	Database database.Config

	RabbitURI   string
	RabbitQueue string

	CacheTTL           time.Duration
	RateLimitPerMinute int
}

// ErrMissingToken indica que um token obrigatório não foi configurado
var ErrMissingToken = errors.New("token obrigatório não configurado")

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogJSON:           getEnvBool("LOG_JSON", false),
		TokenAPI:          os.Getenv("TOKEN_API"),
		AdminUser:         os.Getenv("ADMIN_USER"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PrecosPGR:         getEnv("PRECOS_PGR", "csv/Precos_PGR.csv"),
		PrecosAmbientais:  getEnv("PRECOS_AMBIENTAIS", "csv/Precos_Ambientais.csv"),
		PrecosFonte:       strings.ToLower(getEnv("PRECOS_FONTE", FontePrecosArquivo)),
		Database: database.Config{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "orcamentos"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RabbitURI:          os.Getenv("RABBIT_URI"),
		RabbitQueue:        getEnv("RABBIT_QUEUE", "orcamentos.gerados"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
	}

	// Validações obrigatórias
	if cfg.TokenAPI == "" {
		return nil, fmt.Errorf("%w: TOKEN_API", ErrMissingToken)
	}

	pct, err := decimal.NewFromString(getEnv("PERCENTUAL_SESI", "30"))
	if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("PERCENTUAL_SESI inválido: %q", os.Getenv("PERCENTUAL_SESI"))
	}
	cfg.PercentualSESI = pct

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL inválido: %w", err)
	}
	cfg.CacheTTL = ttl

	recarga, err := time.ParseDuration(getEnv("PRECOS_RECARGA_INTERVALO", "0s"))
	if err != nil || recarga < 0 {
		return nil, fmt.Errorf("PRECOS_RECARGA_INTERVALO inválido: %q", os.Getenv("PRECOS_RECARGA_INTERVALO"))
	}
	cfg.PrecosRecarga = recarga

	if cfg.PrecosFonte != FontePrecosArquivo && cfg.PrecosFonte != FontePrecosBanco {
		return nil, fmt.Errorf("PRECOS_FONTE deve ser %q ou %q", FontePrecosArquivo, FontePrecosBanco)
	}
	if cfg.PrecosFonte == FontePrecosBanco && !cfg.UsaBanco() {
		return nil, errors.New("PRECOS_FONTE=banco exige DB_HOST configurado")
	}

	return cfg, nil
}

// UsaBanco indica se há PostgreSQL configurado
func (c *Config) UsaBanco() bool {
	return c.Database.Host != ""
}

// UsaBroker indica se a publicação de eventos está habilitada
func (c *Config) UsaBroker() bool {
	return c.RabbitURI != ""
}

// AdminBasicAuth indica se o login por usuário e senha do admin está habilitado
func (c *Config) AdminBasicAuth() bool {
	return c.AdminUser != "" && c.AdminPasswordHash != ""
}

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

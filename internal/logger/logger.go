package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	LoggerKey    ctxKey = "logger"
	UsernameKey  ctxKey = "username"
	OrcamentoKey ctxKey = "numero_orcamento"
	TraceIDKey   ctxKey = "trace_id"
)

// ServiceName identifica a aplicação nos logs
const ServiceName = "orcamento-sst-api"

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Str("service", ServiceName).Logger()

// Init inicializa o logger global
func Init(level string, jsonFormat bool) {
	InitWithWriter(level, jsonFormat, os.Stdout)
}

// InitWithWriter inicializa o logger global escrevendo em out
func InitWithWriter(level string, jsonFormat bool, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := out
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	InitAudit()
}

// Global retorna o logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get retorna logger do contexto ou global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// FromGin extrai o logger do contexto Gin
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// WithRequestID adiciona request_id ao logger e contexto
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return context.WithValue(ctx, LoggerKey, &l)
}

// WithUsername adiciona o usuário administrativo autenticado
func WithUsername(ctx context.Context, username string) context.Context {
	l := Get(ctx).With().Str("username", username).Logger()
	ctx = context.WithValue(ctx, UsernameKey, username)
	return context.WithValue(ctx, LoggerKey, &l)
}

// WithOrcamento adiciona o número do orçamento em processamento
func WithOrcamento(ctx context.Context, numero string) context.Context {
	l := Get(ctx).With().Str("numero_orcamento", numero).Logger()
	ctx = context.WithValue(ctx, OrcamentoKey, numero)
	return context.WithValue(ctx, LoggerKey, &l)
}

// WithTraceID adiciona um trace ID para rastreamento distribuído
func WithTraceID(ctx context.Context, traceID string) context.Context {
	l := Get(ctx).With().Str("trace_id", traceID).Logger()
	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	return context.WithValue(ctx, LoggerKey, &l)
}

func valor(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetRequestID extrai request_id do contexto
func GetRequestID(ctx context.Context) string { return valor(ctx, RequestIDKey) }

// GetUsername extrai o usuário administrativo do contexto
func GetUsername(ctx context.Context) string { return valor(ctx, UsernameKey) }

// GetOrcamento extrai o número do orçamento do contexto
func GetOrcamento(ctx context.Context) string { return valor(ctx, OrcamentoKey) }

// GetTraceID extrai trace_id do contexto
func GetTraceID(ctx context.Context) string { return valor(ctx, TraceIDKey) }

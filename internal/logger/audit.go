package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction identifica o tipo de ação auditada
type AuditAction string

const (
	// Orçamentos
	AuditActionOrcamentoGerar    AuditAction = "ORCAMENTO_GERAR"
	AuditActionOrcamentoRejeitar AuditAction = "ORCAMENTO_REJEITAR"
	AuditActionOrcamentoPublicar AuditAction = "ORCAMENTO_PUBLICAR"

	// Tabela de preços
	AuditActionTabelaRecarregar AuditAction = "TABELA_RECARREGAR"
	AuditActionTabelaImportar   AuditAction = "TABELA_IMPORTAR"
	AuditActionTabelaAuditar    AuditAction = "TABELA_AUDITAR"

	// Administração
	AuditActionAdminLoginFailed AuditAction = "ADMIN_LOGIN_FAILED"

	// WebSocket
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"

	// API
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent representa uma entrada de auditoria
type AuditEvent struct {
	Action     AuditAction
	Username   string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	ClientIP   string
	RequestID  string
	Success    bool
	Error      string
	Duration   int64 // ms
	Method     string
	Path       string
	StatusCode int
}

var auditLogger zerolog.Logger

// InitAudit inicializa o logger de auditoria
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit registra um evento de auditoria
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.Username == "" {
		event.Username = GetUsername(ctx)
	}

	logEvent := auditLogger.Info()
	if !event.Success {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.Username != "" {
		logEvent.Str("username", event.Username)
	}
	if event.ClientIP != "" {
		logEvent.Str("client_ip", event.ClientIP)
	}
	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}
	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}
	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}
	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}
	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}
	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditOrcamento registra a geração ou rejeição de um orçamento
func AuditOrcamento(ctx context.Context, numero, empresa string, itens int, total string, err error) {
	event := AuditEvent{
		Action:     AuditActionOrcamentoGerar,
		Resource:   "orcamento",
		ResourceID: numero,
		Success:    err == nil,
		Details: map[string]interface{}{
			"empresa": empresa,
			"itens":   itens,
			"total":   total,
		},
	}
	if err != nil {
		event.Action = AuditActionOrcamentoRejeitar
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditTabela registra recarga, importação ou auditoria da tabela de preços
func AuditTabela(ctx context.Context, action AuditAction, origem string, linhas int, err error) {
	event := AuditEvent{
		Action:     action,
		Resource:   "tabela_precos",
		ResourceID: origem,
		Success:    err == nil,
		Details:    map[string]interface{}{"linhas": linhas},
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditRequest registra uma requisição da API
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditWebSocket registra conexões WebSocket
func AuditWebSocket(ctx context.Context, action AuditAction, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:   action,
		Resource: "websocket",
		ClientIP: clientIP,
		Success:  true,
		Details:  details,
	})
}

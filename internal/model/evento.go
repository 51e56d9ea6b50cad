package model

import "time"

// TipoOrcamentoGerado identifica o evento publicado ao emitir um orçamento
const TipoOrcamentoGerado = "orcamento.gerado"

// EventoOrcamento é publicado no broker quando um orçamento é emitido
type EventoOrcamento struct {
	Tipo            string         `json:"tipo"`
	NumeroOrcamento string         `json:"numero_orcamento"`
	Empresa         string         `json:"empresa"`
	Email           string         `json:"email"`
	Telefone        string         `json:"telefone,omitempty"`
	Contato         string         `json:"contato,omitempty"`
	Itens           []ItemResponse `json:"itens"`
	Subtotal        float64        `json:"subtotal"`
	PercentualSESI  float64        `json:"percentual_sesi"`
	ValorSESI       float64        `json:"valor_sesi"`
	Total           float64        `json:"total"`
	EnviarEmail     bool           `json:"enviar_email"`
	CriadoEm        time.Time      `json:"criado_em"`
}

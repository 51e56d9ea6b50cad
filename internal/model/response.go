package model

import "time"

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ServicosResponse lista os serviços disponíveis
type ServicosResponse struct {
	Success  bool     `json:"success"`
	Servicos []string `json:"servicos"`
}

// RegioesResponse lista as regiões de um serviço
type RegioesResponse struct {
	Success bool     `json:"success"`
	Regioes []string `json:"regioes"`
}

// Variavel descreve um parâmetro que o formulário deve exibir para o serviço
type Variavel struct {
	Nome   string   `json:"nome"`
	Tipo   string   `json:"tipo"` // "select" ou "numero"
	Opcoes []string `json:"opcoes,omitempty"`
	Min    *int     `json:"min,omitempty"`
	Max    *int     `json:"max,omitempty"`
}

// VariaveisResponse descreve os parâmetros de um serviço
type VariaveisResponse struct {
	Success   bool                `json:"success"`
	Variaveis map[string]Variavel `json:"variaveis"`
}

// ListaVariaveisResponse é a forma simplificada: apenas os nomes das variáveis
type ListaVariaveisResponse struct {
	Success   bool     `json:"success"`
	Variaveis []string `json:"variaveis"`
}

// PrecoResponse representa o resultado do cálculo de preço de um item
type PrecoResponse struct {
	Success        bool    `json:"success"`
	Preco          float64 `json:"preco"`
	PrecoFormatado string  `json:"preco_formatado"`
	PrecoUnitario  float64 `json:"preco_unitario"`
	PrecoTotal     float64 `json:"preco_total"`
	Error          string  `json:"error,omitempty"`
}

// CustoResponse representa o resultado de um cálculo de custo adicional
type CustoResponse struct {
	Success        bool    `json:"success"`
	Custo          float64 `json:"custo"`
	CustoFormatado string  `json:"custo_formatado"`
}

// ItemResponse representa um item precificado do orçamento
type ItemResponse struct {
	ID                      int     `json:"id"`
	Servico                 string  `json:"servico"`
	Regiao                  string  `json:"regiao"`
	Variavel                string  `json:"variavel,omitempty"`
	GrauRisco               string  `json:"grau_risco,omitempty"`
	Faixa                   string  `json:"num_trabalhadores,omitempty"`
	NumGesGhe               int     `json:"num_ges_ghe,omitempty"`
	NumAvaliacoesAdicionais int     `json:"num_avaliacoes_adicionais,omitempty"`
	Quantidade              int     `json:"quantidade"`
	PrecoUnitario           float64 `json:"preco_unitario"`
	Adicionais              float64 `json:"adicionais"`
	Valor                   float64 `json:"valor"`
	Detalhes                string  `json:"detalhes,omitempty"`
}

// OrcamentoResponse representa o orçamento gerado
type OrcamentoResponse struct {
	Success         bool           `json:"success"`
	NumeroOrcamento string         `json:"numero_orcamento"`
	Empresa         string         `json:"empresa,omitempty"`
	Email           string         `json:"email,omitempty"`
	Itens           []ItemResponse `json:"itens"`
	Subtotal        float64        `json:"subtotal"`
	PercentualSESI  float64        `json:"percentual_sesi"`
	ValorSESI       float64        `json:"valor_sesi"`
	Total           float64        `json:"total"`
	CriadoEm        time.Time      `json:"criado_em"`
}

// ResumoOrcamento é uma linha da listagem de orçamentos
type ResumoOrcamento struct {
	NumeroOrcamento string    `json:"numero_orcamento"`
	Empresa         string    `json:"empresa"`
	Email           string    `json:"email"`
	Itens           int       `json:"itens"`
	Total           float64   `json:"total"`
	CriadoEm        time.Time `json:"criado_em"`
}

// ListaOrcamentosResponse lista os orçamentos emitidos
type ListaOrcamentosResponse struct {
	Success    bool              `json:"success"`
	Orcamentos []ResumoOrcamento `json:"orcamentos"`
}

// TabelaResponse descreve o resultado de uma recarga ou importação da tabela
type TabelaResponse struct {
	Success bool   `json:"success"`
	Versao  int64  `json:"versao"`
	Linhas  int    `json:"linhas"`
	Origem  string `json:"origem"`
	Message string `json:"message,omitempty"`
}

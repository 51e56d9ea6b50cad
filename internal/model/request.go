package model

// PrecoRequest representa o payload de cálculo de preço de um item
type PrecoRequest struct {
	Servico                 string `json:"servico" form:"servico"`
	Regiao                  string `json:"regiao" form:"regiao"`
	Variavel                string `json:"variavel,omitempty" form:"variavel"`
	TipoAvaliacao           string `json:"tipo_avaliacao,omitempty" form:"tipo_avaliacao"`
	GrauRisco               string `json:"grau_risco,omitempty" form:"grau_risco"`
	NumTrabalhadores        string `json:"num_trabalhadores,omitempty" form:"num_trabalhadores"`
	NumGesGhe               int    `json:"num_ges_ghe,omitempty" form:"num_ges_ghe"`
	NumAvaliacoesAdicionais int    `json:"num_avaliacoes_adicionais,omitempty" form:"num_avaliacoes_adicionais"`
	Quantidade              int    `json:"quantidade,omitempty" form:"quantidade"`
}

// TipoAvaliacaoEfetivo retorna tipo_avaliacao ou, na ausência, a variável selecionada
func (r PrecoRequest) TipoAvaliacaoEfetivo() string {
	if r.TipoAvaliacao != "" {
		return r.TipoAvaliacao
	}
	return r.Variavel
}

// LogisticaRequest representa o payload de custos logísticos
type LogisticaRequest struct {
	Regiao      string  `json:"regiao"`
	DistanciaKm float64 `json:"distancia_km"`
}

// MultiplosDiasRequest representa o payload de custos de coleta em vários dias
type MultiplosDiasRequest struct {
	DiasColeta int `json:"dias_coleta"`
}

// LaboratorioRequest representa os parâmetros de análise laboratorial
type LaboratorioRequest struct {
	TipoAmostrador     string `json:"tipo_amostrador"`
	QuantidadeAmostras int    `json:"quantidade_amostras"`
	TipoAnalise        string `json:"tipo_analise"`
	NecessitaART       bool   `json:"necessita_art"`
	MetodoEnvio        string `json:"metodo_envio,omitempty"`
}

// ItemRequest representa um serviço enviado no pedido de orçamento.
// Valor é ignorado pelo servidor: o preço é sempre recalculado pela tabela.
type ItemRequest struct {
	PrecoRequest
	Valor       float64             `json:"valor,omitempty"`
	DistanciaKm float64             `json:"distancia_km,omitempty"`
	DiasColeta  int                 `json:"dias_coleta,omitempty"`
	Laboratorio *LaboratorioRequest `json:"laboratorio,omitempty"`
	Detalhes    string              `json:"detalhes,omitempty"`
}

// OrcamentoRequest representa o payload de geração de orçamento
type OrcamentoRequest struct {
	Empresa        string        `json:"empresa"`
	Email          string        `json:"email"`
	Telefone       string        `json:"telefone,omitempty"`
	Contato        string        `json:"contato,omitempty"`
	Servicos       []ItemRequest `json:"servicos"`
	PercentualSESI *float64      `json:"percentual_sesi,omitempty"`
	EnviarEmail    bool          `json:"enviar_email,omitempty"`
}

package formulario

import (
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/shopspring/decimal"
)

// LinhaResumo é a linha como exibida ao usuário
type LinhaResumo struct {
	ID            int    `json:"id"`
	Servico       string `json:"servico"`
	Regiao        string `json:"regiao"`
	Quantidade    int    `json:"quantidade"`
	PrecoUnitario string `json:"preco_unitario"`
	PrecoTotal    string `json:"preco_total"`
	Mensagem      string `json:"mensagem"`
	PrecoPendente bool   `json:"preco_pendente"`
}

// Resumo é a visão formatada do formulário
type Resumo struct {
	Linhas         []LinhaResumo `json:"linhas"`
	PercentualSESI string        `json:"percentual_sesi"`
	Subtotal       string        `json:"subtotal"`
	ValorSESI      string        `json:"valor_sesi"`
	Total          string        `json:"total"`
}

// Resumo formata as linhas e os totais
func (f *Formulario) Resumo(percentual decimal.Decimal) Resumo {
	linhas := f.Linhas()
	t := f.Totais(percentual)

	r := Resumo{
		Linhas:         make([]LinhaResumo, 0, len(linhas)),
		PercentualSESI: percentual.String() + "%",
		Subtotal:       moeda.Formatar(t.Subtotal),
		ValorSESI:      moeda.Formatar(t.ValorSESI),
		Total:          moeda.Formatar(t.Total),
	}
	for _, l := range linhas {
		r.Linhas = append(r.Linhas, LinhaResumo{
			ID:            l.ID,
			Servico:       l.Servico,
			Regiao:        l.Regiao,
			Quantidade:    l.quantidade(),
			PrecoUnitario: moeda.Formatar(l.PrecoUnitario),
			PrecoTotal:    moeda.Formatar(l.Total()),
			Mensagem:      l.Mensagem,
			PrecoPendente: l.PrecoUnitario.IsZero(),
		})
	}
	return r
}

// DadosCliente são os campos de identificação do pedido
type DadosCliente struct {
	Empresa        string   `json:"empresa"`
	Email          string   `json:"email"`
	Telefone       string   `json:"telefone,omitempty"`
	Contato        string   `json:"contato,omitempty"`
	PercentualSESI *float64 `json:"percentual_sesi,omitempty"`
	EnviarEmail    bool     `json:"enviar_email,omitempty"`
}

// Pedido monta a requisição de emissão com as linhas que têm serviço
func (f *Formulario) Pedido(dados DadosCliente) model.OrcamentoRequest {
	req := model.OrcamentoRequest{
		Empresa:        dados.Empresa,
		Email:          dados.Email,
		Telefone:       dados.Telefone,
		Contato:        dados.Contato,
		PercentualSESI: dados.PercentualSESI,
		EnviarEmail:    dados.EnviarEmail,
	}
	for _, l := range f.Linhas() {
		if l.Servico == "" {
			continue
		}
		req.Servicos = append(req.Servicos, model.ItemRequest{
			PrecoRequest: l.consulta(),
			Valor:        l.Total().InexactFloat64(),
			DistanciaKm:  l.DistanciaKm,
			DiasColeta:   l.DiasColeta,
			Laboratorio:  l.Laboratorio,
		})
	}
	return req
}

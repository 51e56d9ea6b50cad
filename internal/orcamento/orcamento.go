// Package orcamento modela o orçamento: itens precificados, subtotal,
// acréscimo SESI e total geral.
package orcamento

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/custos"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PercentualPadrao é o acréscimo SESI quando o pedido não informa outro
var PercentualPadrao = decimal.NewFromInt(30)

var (
	cem      = decimal.NewFromInt(100)
	validate = validator.New()
)

// Item é uma linha do orçamento
type Item struct {
	ID                      int                 `json:"id"`
	Servico                 string              `json:"servico"`
	Regiao                  string              `json:"regiao"`
	Variavel                string              `json:"variavel,omitempty"`
	GrauRisco               string              `json:"grau_risco,omitempty"`
	Faixa                   string              `json:"num_trabalhadores,omitempty"`
	NumGesGhe               int                 `json:"num_ges_ghe,omitempty"`
	NumAvaliacoesAdicionais int                 `json:"num_avaliacoes_adicionais,omitempty"`
	Quantidade              int                 `json:"quantidade"`
	PrecoUnitario           decimal.Decimal     `json:"preco_unitario"`
	Adicionais              decimal.Decimal     `json:"adicionais"`
	Laboratorio             *custos.Laboratorio `json:"laboratorio,omitempty"`
	DistanciaKm             float64             `json:"distancia_km,omitempty"`
	DiasColeta              int                 `json:"dias_coleta,omitempty"`
	Detalhes                string              `json:"detalhes,omitempty"`
}

// Total retorna preço unitário * quantidade + adicionais, arredondado
func (i Item) Total() decimal.Decimal {
	return moeda.Arredondar(i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade))).Add(i.Adicionais))
}

// Totais é o resumo financeiro do orçamento
type Totais struct {
	Subtotal  decimal.Decimal
	ValorSESI decimal.Decimal
	Total     decimal.Decimal
}

// Orcamento agrega os itens e os dados do cliente
type Orcamento struct {
	Numero         string          `json:"numero_orcamento"`
	Empresa        string          `json:"empresa"`
	Email          string          `json:"email"`
	Telefone       string          `json:"telefone,omitempty"`
	Contato        string          `json:"contato,omitempty"`
	Itens          []Item          `json:"itens"`
	PercentualSESI decimal.Decimal `json:"percentual_sesi"`
	CriadoEm       time.Time       `json:"criado_em"`

	proximoID int
}

// Novo cria um orçamento vazio com o percentual SESI padrão
func Novo(empresa, email string) *Orcamento {
	return &Orcamento{
		Empresa:        strings.TrimSpace(empresa),
		Email:          strings.TrimSpace(email),
		PercentualSESI: PercentualPadrao,
	}
}

// Adicionar inclui o item e retorna o identificador atribuído
func (o *Orcamento) Adicionar(item Item) int {
	if item.ID > o.proximoID {
		o.proximoID = item.ID
	}
	if item.ID == 0 || o.indice(item.ID) >= 0 {
		o.proximoID++
		item.ID = o.proximoID
	}
	o.Itens = append(o.Itens, item)
	return item.ID
}

// Item retorna o item pelo identificador
func (o *Orcamento) Item(id int) (Item, bool) {
	if i := o.indice(id); i >= 0 {
		return o.Itens[i], true
	}
	return Item{}, false
}

// Remover exclui o item
func (o *Orcamento) Remover(id int) error {
	i := o.indice(id)
	if i < 0 {
		return fmt.Errorf("item %d não existe", id)
	}
	o.Itens = append(o.Itens[:i], o.Itens[i+1:]...)
	return nil
}

// AlterarQuantidade muda a quantidade de um item sem tocar nos demais
func (o *Orcamento) AlterarQuantidade(id, quantidade int) error {
	if quantidade < 1 {
		return fmt.Errorf("%w: quantidade deve ser maior que zero", model.ErrQuantidadeInvalida)
	}
	i := o.indice(id)
	if i < 0 {
		return fmt.Errorf("item %d não existe", id)
	}
	o.Itens[i].Quantidade = quantidade
	return nil
}

func (o *Orcamento) indice(id int) int {
	for i, it := range o.Itens {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Subtotal soma os totais dos itens
func (o *Orcamento) Subtotal() decimal.Decimal {
	sub := decimal.Zero
	for _, it := range o.Itens {
		sub = sub.Add(it.Total())
	}
	return sub
}

// Totais calcula subtotal, acréscimo SESI e total geral
func (o *Orcamento) Totais() Totais {
	return CalcularTotais(o.Subtotal(), o.PercentualSESI)
}

// CalcularTotais aplica o percentual SESI sobre o subtotal
func CalcularTotais(subtotal, percentual decimal.Decimal) Totais {
	sub := moeda.Arredondar(subtotal)
	sesi := moeda.Percentual(sub, percentual)
	return Totais{
		Subtotal:  sub,
		ValorSESI: sesi,
		Total:     sub.Add(sesi),
	}
}

// Validar confere os dados mínimos para emitir o orçamento
func (o *Orcamento) Validar() error {
	if strings.TrimSpace(o.Empresa) == "" {
		return fmt.Errorf("%w: empresa não informada", model.ErrDadosIncompletos)
	}
	if err := validate.Var(o.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: e-mail inválido", model.ErrDadosIncompletos)
	}
	if len(o.Itens) == 0 {
		return fmt.Errorf("%w: nenhum serviço selecionado", model.ErrDadosIncompletos)
	}
	for _, it := range o.Itens {
		if it.Quantidade < 1 {
			return fmt.Errorf("%w: item %d com quantidade %d", model.ErrQuantidadeInvalida, it.ID, it.Quantidade)
		}
	}
	if o.PercentualSESI.IsNegative() || o.PercentualSESI.GreaterThan(cem) {
		return fmt.Errorf("%w: percentual SESI deve estar entre 0 e 100", model.ErrDadosIncompletos)
	}
	return nil
}

// GerarNumero gera o número do orçamento: data + prefixo de UUID
func GerarNumero(agora time.Time) string {
	sufixo := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return agora.Format("20060102") + "-" + sufixo
}

// Resumo é a visão de listagem de um orçamento emitido
type Resumo struct {
	Numero   string          `json:"numero_orcamento"`
	Empresa  string          `json:"empresa"`
	Email    string          `json:"email"`
	Itens    int             `json:"itens"`
	Total    decimal.Decimal `json:"total"`
	CriadoEm time.Time       `json:"criado_em"`
}

// Resumir monta o resumo do orçamento
func (o *Orcamento) Resumir() Resumo {
	return Resumo{
		Numero:   o.Numero,
		Empresa:  o.Empresa,
		Email:    o.Email,
		Itens:    len(o.Itens),
		Total:    o.Totais().Total,
		CriadoEm: o.CriadoEm,
	}
}

// Copiar retorna uma cópia independente do orçamento
func (o *Orcamento) Copiar() *Orcamento {
	c := *o
	c.Itens = make([]Item, len(o.Itens))
	for i, it := range o.Itens {
		if it.Laboratorio != nil {
			lab := *it.Laboratorio
			it.Laboratorio = &lab
		}
		c.Itens[i] = it
	}
	return &c
}

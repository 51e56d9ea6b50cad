// Package custos calcula os custos adicionais de um item de orçamento:
// deslocamento, coleta em vários dias e análises laboratoriais.
package custos

import (
	"fmt"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/shopspring/decimal"
)

var (
	// Custo base de deslocamento por região
	baseLogistica = map[string]decimal.Decimal{
		tabela.RegiaoInstituto:  decimal.Zero,
		tabela.RegiaoCentral:    decimal.Zero,
		tabela.RegiaoNorte:      decimal.NewFromInt(150),
		tabela.RegiaoOeste:      decimal.NewFromInt(200),
		tabela.RegiaoSudoeste:   decimal.NewFromInt(250),
		tabela.RegiaoSul:        decimal.NewFromInt(300),
		tabela.RegiaoExtremoSul: decimal.NewFromInt(300),
	}

	custoPorKm  = decimal.NewFromInt(2)
	custoPorDia = decimal.NewFromInt(250)
	custoART    = decimal.RequireFromString("88.78")
)

// Amostradores, análises e métodos de envio aceitos
var (
	Amostradores = map[string]decimal.Decimal{
		"Bomba de Amostragem":  decimal.NewFromInt(150),
		"Dosímetro":            decimal.NewFromInt(120),
		"Tubos Colorimétricos": decimal.NewFromInt(100),
		"Amostragem Passiva":   decimal.NewFromInt(80),
	}
	Analises = map[string]decimal.Decimal{
		"Química":   decimal.NewFromInt(200),
		"Física":    decimal.NewFromInt(150),
		"Biológica": decimal.NewFromInt(250),
	}
	Envios = map[string]decimal.Decimal{
		"Correios":          decimal.NewFromInt(50),
		"Transportadora":    decimal.NewFromInt(100),
		"Retirada no Local": decimal.Zero,
	}
)

// EnvioPadrao é usado quando o método de envio não é informado
const EnvioPadrao = "Correios"

// Laboratorio reúne os parâmetros de análise laboratorial de um item
type Laboratorio struct {
	TipoAmostrador     string `json:"tipo_amostrador"`
	QuantidadeAmostras int    `json:"quantidade_amostras"`
	TipoAnalise        string `json:"tipo_analise"`
	NecessitaART       bool   `json:"necessita_art"`
	MetodoEnvio        string `json:"metodo_envio,omitempty"`
}

// DeRequest converte o payload HTTP
func DeRequest(r model.LaboratorioRequest) Laboratorio {
	return Laboratorio{
		TipoAmostrador:     r.TipoAmostrador,
		QuantidadeAmostras: r.QuantidadeAmostras,
		TipoAnalise:        r.TipoAnalise,
		NecessitaART:       r.NecessitaART,
		MetodoEnvio:        r.MetodoEnvio,
	}
}

// Logisticos retorna o custo de deslocamento: base da região + R$ 2,00 por km
func Logisticos(regiao string, distanciaKm float64) (decimal.Decimal, error) {
	r, err := tabela.ParseRegiao(regiao)
	if err != nil {
		return decimal.Zero, err
	}
	if distanciaKm < 0 {
		return decimal.Zero, fmt.Errorf("%w: distância negativa", model.ErrQuantidadeInvalida)
	}

	custo := baseLogistica[r]
	if distanciaKm > 0 {
		custo = custo.Add(custoPorKm.Mul(decimal.NewFromFloat(distanciaKm)))
	}
	return moeda.Arredondar(custo), nil
}

// MultiplosDias retorna R$ 250,00 por dia de coleta além do primeiro
func MultiplosDias(dias int) decimal.Decimal {
	if dias <= 1 {
		return decimal.Zero
	}
	return custoPorDia.Mul(decimal.NewFromInt(int64(dias - 1)))
}

// Laboratoriais retorna (amostrador + análise) * amostras + ART + envio
func Laboratoriais(l Laboratorio) (decimal.Decimal, error) {
	amostrador, ok := buscar(Amostradores, l.TipoAmostrador)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: tipo de amostrador %q", model.ErrSelecaoIncompleta, l.TipoAmostrador)
	}
	analise, ok := buscar(Analises, l.TipoAnalise)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: tipo de análise %q", model.ErrSelecaoIncompleta, l.TipoAnalise)
	}
	if l.QuantidadeAmostras < 0 {
		return decimal.Zero, fmt.Errorf("%w: quantidade de amostras negativa", model.ErrQuantidadeInvalida)
	}

	metodo := l.MetodoEnvio
	if metodo == "" {
		metodo = EnvioPadrao
	}
	envio, ok := buscar(Envios, metodo)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: método de envio %q", model.ErrSelecaoIncompleta, l.MetodoEnvio)
	}

	total := amostrador.Add(analise).Mul(decimal.NewFromInt(int64(l.QuantidadeAmostras)))
	if l.NecessitaART {
		total = total.Add(custoART)
	}
	return moeda.Arredondar(total.Add(envio)), nil
}

// buscar compara ignorando acentos e caixa
func buscar(m map[string]decimal.Decimal, nome string) (decimal.Decimal, bool) {
	n := tabela.Normalizar(nome)
	if n == "" {
		return decimal.Zero, false
	}
	for k, v := range m {
		if tabela.Normalizar(k) == n {
			return v, true
		}
	}
	return decimal.Zero, false
}

// Package tabela mantém a tabela oficial de preços dos serviços de SST
// (PGR e avaliações ambientais) e resolve o preço unitário de um item.
//
// A tabela é imutável depois de construída; recargas criam uma nova instância.
package tabela

import (
	"fmt"
	"sort"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/shopspring/decimal"
)

// Categoria identifica a tabela de origem de um serviço
type Categoria string

const (
	CategoriaPGR       Categoria = "pgr"
	CategoriaAmbiental Categoria = "ambiental"
)

// Limite das contagens de GES/GHE e avaliações adicionais
const MaxContagem = 100

var meio = decimal.NewFromFloat(0.5)

// LinhaPGR é uma linha da tabela de PGR
type LinhaPGR struct {
	Servico   string          `json:"servico"`
	Regiao    string          `json:"regiao"`
	GrauRisco string          `json:"grau_risco"`
	Faixa     string          `json:"num_trabalhadores"`
	Preco     decimal.Decimal `json:"preco"`
}

// LinhaAmbiental é uma linha da tabela de avaliações ambientais
type LinhaAmbiental struct {
	Servico         string          `json:"servico"`
	TipoAvaliacao   string          `json:"tipo_avaliacao"`
	AdicionalGesGhe decimal.Decimal `json:"adicional_ges_ghe"`
	Regiao          string          `json:"regiao"`
	Preco           decimal.Decimal `json:"preco"`
}

// Consulta reúne os parâmetros de busca de preço de um item
type Consulta struct {
	Servico                 string
	Regiao                  string
	TipoAvaliacao           string
	GrauRisco               string
	Faixa                   string
	NumGesGhe               int
	NumAvaliacoesAdicionais int
}

// Resultado é o preço unitário resolvido
type Resultado struct {
	Preco     decimal.Decimal
	Base      decimal.Decimal
	Categoria Categoria
}

type chavePGR struct{ servico, regiao, grau, faixa string }

type chaveAmbiental struct{ servico, tipo, regiao string }

type servicoInfo struct {
	nome      string
	categoria Categoria
}

// Tabela indexa as linhas de preço por chave normalizada
type Tabela struct {
	pgr       map[chavePGR]LinhaPGR
	amb       map[chaveAmbiental]LinhaAmbiental
	linhasPGR []LinhaPGR
	linhasAmb []LinhaAmbiental
	servicos  map[string]servicoInfo
}

// Nova constrói a tabela. Linhas repetidas mantêm a primeira ocorrência;
// um serviço presente nas duas tabelas é tratado como PGR.
func Nova(pgr []LinhaPGR, amb []LinhaAmbiental) *Tabela {
	t := &Tabela{
		pgr:      make(map[chavePGR]LinhaPGR, len(pgr)),
		amb:      make(map[chaveAmbiental]LinhaAmbiental, len(amb)),
		servicos: make(map[string]servicoInfo),
	}

	for _, l := range pgr {
		k := chavePGR{Normalizar(l.Servico), Normalizar(l.Regiao), chaveGrau(l.GrauRisco), chaveFaixa(l.Faixa)}
		if _, dup := t.pgr[k]; dup {
			continue
		}
		t.pgr[k] = l
		t.linhasPGR = append(t.linhasPGR, l)
		t.servicos[k.servico] = servicoInfo{nome: l.Servico, categoria: CategoriaPGR}
	}

	for _, l := range amb {
		k := chaveAmbiental{Normalizar(l.Servico), Normalizar(l.TipoAvaliacao), Normalizar(l.Regiao)}
		if _, dup := t.amb[k]; dup {
			continue
		}
		t.amb[k] = l
		t.linhasAmb = append(t.linhasAmb, l)
		if _, existe := t.servicos[k.servico]; !existe {
			t.servicos[k.servico] = servicoInfo{nome: l.Servico, categoria: CategoriaAmbiental}
		}
	}

	return t
}

// Tamanho retorna o total de linhas indexadas
func (t *Tabela) Tamanho() int {
	return len(t.linhasPGR) + len(t.linhasAmb)
}

// Linhas retorna cópias das linhas indexadas
func (t *Tabela) Linhas() ([]LinhaPGR, []LinhaAmbiental) {
	pgr := make([]LinhaPGR, len(t.linhasPGR))
	copy(pgr, t.linhasPGR)
	amb := make([]LinhaAmbiental, len(t.linhasAmb))
	copy(amb, t.linhasAmb)
	return pgr, amb
}

// Servicos retorna os serviços das duas tabelas, ordenados
func (t *Tabela) Servicos() []string {
	out := make([]string, 0, len(t.servicos))
	for _, info := range t.servicos {
		out = append(out, info.nome)
	}
	ordenar(out)
	return out
}

// Regioes retorna as regiões com preço para o serviço
func (t *Tabela) Regioes(servico string) []string {
	info, ok := t.servicos[Normalizar(servico)]
	if !ok {
		return []string{}
	}

	vistos := make(map[string]string)
	if info.categoria == CategoriaPGR {
		for k, l := range t.pgr {
			if k.servico == Normalizar(servico) {
				vistos[k.regiao] = l.Regiao
			}
		}
	} else {
		for k, l := range t.amb {
			if k.servico == Normalizar(servico) {
				vistos[k.regiao] = l.Regiao
			}
		}
	}
	return valores(vistos)
}

// Variaveis descreve os parâmetros exibidos pelo formulário para o serviço
func (t *Tabela) Variaveis(servico string) map[string]model.Variavel {
	info, ok := t.servicos[Normalizar(servico)]
	if !ok {
		return map[string]model.Variavel{}
	}

	if info.categoria == CategoriaPGR {
		return map[string]model.Variavel{
			"grau_risco": {
				Nome:   "Grau de Risco",
				Tipo:   "select",
				Opcoes: t.grausDe(servico),
			},
			"num_trabalhadores": {
				Nome:   "Número de Trabalhadores",
				Tipo:   "select",
				Opcoes: t.faixasDe(servico),
			},
		}
	}

	min, max := 0, MaxContagem
	return map[string]model.Variavel{
		"tipo_avaliacao": {
			Nome:   "Tipo de Avaliação",
			Tipo:   "select",
			Opcoes: t.tiposDe(servico),
		},
		"num_ges_ghe": {
			Nome: "Número de GES/GHE",
			Tipo: "numero",
			Min:  &min,
			Max:  &max,
		},
		"num_avaliacoes_adicionais": {
			Nome: "Número de Avaliações Adicionais",
			Tipo: "numero",
			Min:  &min,
			Max:  &max,
		},
	}
}

// ListaVariaveis retorna a lista simples de variáveis selecionáveis:
// tipos de avaliação para serviços ambientais, faixas para PGR
func (t *Tabela) ListaVariaveis(servico string) []string {
	info, ok := t.servicos[Normalizar(servico)]
	if !ok {
		return []string{}
	}
	if info.categoria == CategoriaPGR {
		return t.faixasDe(servico)
	}
	return t.tiposDe(servico)
}

func (t *Tabela) grausDe(servico string) []string {
	vistos := make(map[string]string)
	for k := range t.pgr {
		if k.servico == Normalizar(servico) {
			vistos[k.grau] = k.grau
		}
	}
	return valores(vistos)
}

// faixasDe retorna os códigos de faixa ordenados pelo limite inferior
func (t *Tabela) faixasDe(servico string) []string {
	vistos := make(map[string]bool)
	for k := range t.pgr {
		if k.servico == Normalizar(servico) {
			vistos[k.faixa] = true
		}
	}

	out := make([]string, 0, len(vistos))
	for _, f := range Faixas {
		if vistos[f.Codigo] {
			out = append(out, f.Codigo)
			delete(vistos, f.Codigo)
		}
	}
	// faixas fora do padrão vão para o fim
	resto := make([]string, 0, len(vistos))
	for k := range vistos {
		resto = append(resto, k)
	}
	ordenar(resto)
	return append(out, resto...)
}

// tiposDe segue a ordem de TiposAvaliacao; tipos fora da lista vão para o fim
func (t *Tabela) tiposDe(servico string) []string {
	vistos := make(map[string]string)
	for k, l := range t.amb {
		if k.servico == Normalizar(servico) {
			vistos[k.tipo] = l.TipoAvaliacao
		}
	}

	out := make([]string, 0, len(vistos))
	for _, tipo := range TiposAvaliacao {
		chave := Normalizar(tipo)
		if nome, ok := vistos[chave]; ok {
			out = append(out, nome)
			delete(vistos, chave)
		}
	}
	return append(out, valores(vistos)...)
}

// Preco resolve o preço unitário de um item.
//
// Serviços de PGR exigem região, grau de risco e faixa de trabalhadores.
// Serviços ambientais exigem região e tipo de avaliação; o preço é
// base + adicional_ges_ghe*GES + 50% da base por avaliação adicional.
func (t *Tabela) Preco(c Consulta) (Resultado, error) {
	if Normalizar(c.Servico) == "" {
		return Resultado{}, fmt.Errorf("%w: serviço", model.ErrSelecaoIncompleta)
	}
	info, ok := t.servicos[Normalizar(c.Servico)]
	if !ok {
		return Resultado{}, fmt.Errorf("%w: %q", model.ErrServicoNaoEncontrado, c.Servico)
	}
	if Normalizar(c.Regiao) == "" {
		return Resultado{}, fmt.Errorf("%w: região", model.ErrSelecaoIncompleta)
	}
	if c.NumGesGhe < 0 || c.NumGesGhe > MaxContagem || c.NumAvaliacoesAdicionais < 0 || c.NumAvaliacoesAdicionais > MaxContagem {
		return Resultado{}, fmt.Errorf("%w: contagens devem estar entre 0 e %d", model.ErrQuantidadeInvalida, MaxContagem)
	}

	if info.categoria == CategoriaPGR {
		return t.precoPGR(c)
	}
	return t.precoAmbiental(c)
}

func (t *Tabela) precoPGR(c Consulta) (Resultado, error) {
	if Normalizar(c.GrauRisco) == "" {
		return Resultado{}, fmt.Errorf("%w: grau de risco", model.ErrSelecaoIncompleta)
	}
	if Normalizar(c.Faixa) == "" {
		return Resultado{}, fmt.Errorf("%w: número de trabalhadores", model.ErrSelecaoIncompleta)
	}

	k := chavePGR{Normalizar(c.Servico), Normalizar(c.Regiao), chaveGrau(c.GrauRisco), chaveFaixa(c.Faixa)}
	l, ok := t.pgr[k]
	if !ok {
		return Resultado{}, fmt.Errorf("%w: %s, região %s, grau %s, faixa %s",
			model.ErrPrecoNaoEncontrado, c.Servico, c.Regiao, c.GrauRisco, c.Faixa)
	}

	return Resultado{Preco: l.Preco.Round(2), Base: l.Preco, Categoria: CategoriaPGR}, nil
}

func (t *Tabela) precoAmbiental(c Consulta) (Resultado, error) {
	if Normalizar(c.TipoAvaliacao) == "" {
		return Resultado{}, fmt.Errorf("%w: tipo de avaliação", model.ErrSelecaoIncompleta)
	}

	k := chaveAmbiental{Normalizar(c.Servico), Normalizar(c.TipoAvaliacao), Normalizar(c.Regiao)}
	l, ok := t.amb[k]
	if !ok {
		return Resultado{}, fmt.Errorf("%w: %s, região %s, tipo %s",
			model.ErrPrecoNaoEncontrado, c.Servico, c.Regiao, c.TipoAvaliacao)
	}

	preco := l.Preco.
		Add(l.AdicionalGesGhe.Mul(decimal.NewFromInt(int64(c.NumGesGhe)))).
		Add(l.Preco.Mul(meio).Mul(decimal.NewFromInt(int64(c.NumAvaliacoesAdicionais))))

	return Resultado{Preco: preco.Round(2), Base: l.Preco, Categoria: CategoriaAmbiental}, nil
}

func valores(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	ordenar(out)
	return out
}

func ordenar(s []string) {
	sort.Slice(s, func(i, j int) bool {
		a, b := Normalizar(s[i]), Normalizar(s[j])
		if a != b {
			return a < b
		}
		return s[i] < s[j]
	})
}

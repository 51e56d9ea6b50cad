package tabela

import (
	"errors"
	"strings"
	"testing"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

const servicoLTCAT = "Laudo Técnico das Condições Ambientais do Trabalho"

func tabelaExemplo() *Tabela {
	return Nova(
		[]LinhaPGR{
			{Servico: ServicoPGR, Regiao: "Central", GrauRisco: "1 e 2", Faixa: "ate19", Preco: decimal.RequireFromString("1500.00")},
			{Servico: ServicoPGR, Regiao: "Central", GrauRisco: "1 e 2", Faixa: "20a50", Preco: decimal.RequireFromString("1850.00")},
			{Servico: ServicoPGR, Regiao: "Norte", GrauRisco: "3 e 4", Faixa: "ate19", Preco: decimal.RequireFromString("2100.50")},
			// duplicada: a primeira vence
			{Servico: ServicoPGR, Regiao: "Central", GrauRisco: "1 e 2", Faixa: "ate19", Preco: decimal.RequireFromString("9999.00")},
		},
		[]LinhaAmbiental{
			{Servico: servicoLTCAT, TipoAvaliacao: "Pacote (1 a 4 avaliações)", AdicionalGesGhe: decimal.RequireFromString("120"), Regiao: "Central", Preco: decimal.RequireFromString("700")},
			{Servico: servicoLTCAT, TipoAvaliacao: "Por Laudo Técnico", AdicionalGesGhe: decimal.Zero, Regiao: "Sul", Preco: decimal.RequireFromString("950")},
		},
	)
}

func TestPrecoPGR(t *testing.T) {
	tab := tabelaExemplo()

	res, err := tab.Preco(Consulta{Servico: ServicoPGR, Regiao: "Central", GrauRisco: "1 e 2", Faixa: "ate19"})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !res.Preco.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("preço = %s, esperado 1500", res.Preco)
	}
	if res.Categoria != CategoriaPGR {
		t.Errorf("categoria = %s, esperado pgr", res.Categoria)
	}

	// nome da faixa, sem acento e com caixa diferente
	res, err = tab.Preco(Consulta{Servico: "elaboracao e acompanhamento do pgr", Regiao: " central ", GrauRisco: "Grau 1 e 2", Faixa: "20 a 50 Trabalhadores"})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !res.Preco.Equal(decimal.RequireFromString("1850")) {
		t.Errorf("preço = %s, esperado 1850", res.Preco)
	}
}

func TestPrecoAmbiental(t *testing.T) {
	tab := tabelaExemplo()

	res, err := tab.Preco(Consulta{
		Servico:                 servicoLTCAT,
		Regiao:                  "Central",
		TipoAvaliacao:           "Pacote (1 a 4 avaliações)",
		NumGesGhe:               2,
		NumAvaliacoesAdicionais: 1,
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	// 700 + 120*2 + 700*0,5*1
	if !res.Preco.Equal(decimal.RequireFromString("1290")) {
		t.Errorf("preço = %s, esperado 1290", res.Preco)
	}
	if !res.Base.Equal(decimal.RequireFromString("700")) {
		t.Errorf("base = %s, esperado 700", res.Base)
	}
}

func TestPrecoErros(t *testing.T) {
	tab := tabelaExemplo()

	tests := []struct {
		name     string
		consulta Consulta
		want     error
	}{
		{"sem serviço", Consulta{Regiao: "Central"}, model.ErrSelecaoIncompleta},
		{"serviço desconhecido", Consulta{Servico: "Inexistente", Regiao: "Central"}, model.ErrServicoNaoEncontrado},
		{"sem região", Consulta{Servico: ServicoPGR, GrauRisco: "1 e 2", Faixa: "ate19"}, model.ErrSelecaoIncompleta},
		{"pgr sem grau", Consulta{Servico: ServicoPGR, Regiao: "Central", Faixa: "ate19"}, model.ErrSelecaoIncompleta},
		{"pgr sem faixa", Consulta{Servico: ServicoPGR, Regiao: "Central", GrauRisco: "1 e 2"}, model.ErrSelecaoIncompleta},
		{"ambiental sem tipo", Consulta{Servico: servicoLTCAT, Regiao: "Central"}, model.ErrSelecaoIncompleta},
		{"combinação sem preço", Consulta{Servico: ServicoPGR, Regiao: "Oeste", GrauRisco: "1 e 2", Faixa: "ate19"}, model.ErrPrecoNaoEncontrado},
		{"ges negativo", Consulta{Servico: servicoLTCAT, Regiao: "Central", TipoAvaliacao: "Por Laudo Técnico", NumGesGhe: -1}, model.ErrQuantidadeInvalida},
		{"avaliações acima do limite", Consulta{Servico: servicoLTCAT, Regiao: "Central", TipoAvaliacao: "Por Laudo Técnico", NumAvaliacoesAdicionais: MaxContagem + 1}, model.ErrQuantidadeInvalida},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tab.Preco(tt.consulta)
			if !errors.Is(err, tt.want) {
				t.Errorf("erro = %v, esperado %v", err, tt.want)
			}
		})
	}
}

func TestCatalogo(t *testing.T) {
	tab := tabelaExemplo()

	servicos := tab.Servicos()
	if len(servicos) != 2 || servicos[0] != ServicoPGR || servicos[1] != servicoLTCAT {
		t.Errorf("serviços = %v", servicos)
	}

	regioes := tab.Regioes(ServicoPGR)
	if strings.Join(regioes, ",") != "Central,Norte" {
		t.Errorf("regiões PGR = %v", regioes)
	}
	if got := tab.Regioes("Inexistente"); len(got) != 0 {
		t.Errorf("regiões de serviço desconhecido = %v", got)
	}

	vars := tab.Variaveis(ServicoPGR)
	if strings.Join(vars["num_trabalhadores"].Opcoes, ",") != "ate19,20a50" {
		t.Errorf("faixas = %v", vars["num_trabalhadores"].Opcoes)
	}
	if strings.Join(vars["grau_risco"].Opcoes, ",") != "1 e 2,3 e 4" {
		t.Errorf("graus = %v", vars["grau_risco"].Opcoes)
	}

	amb := tab.Variaveis(servicoLTCAT)
	if amb["num_ges_ghe"].Tipo != "numero" || *amb["num_ges_ghe"].Max != MaxContagem {
		t.Errorf("descritor num_ges_ghe = %+v", amb["num_ges_ghe"])
	}
	if got := tab.ListaVariaveis(servicoLTCAT); len(got) != 2 {
		t.Errorf("tipos = %v", got)
	}

	if tab.Tamanho() != 5 {
		t.Errorf("tamanho = %d, esperado 5 (duplicada ignorada)", tab.Tamanho())
	}
}

func TestTiposNaOrdemDoFormulario(t *testing.T) {
	tab := Nova(nil, []LinhaAmbiental{
		{Servico: servicoLTCAT, TipoAvaliacao: "Por Laudo Técnico", Regiao: "Sul", Preco: decimal.NewFromInt(950)},
		{Servico: servicoLTCAT, TipoAvaliacao: "Avulso Especial", Regiao: "Sul", Preco: decimal.NewFromInt(400)},
		{Servico: servicoLTCAT, TipoAvaliacao: "Por Avaliação Adicional", Regiao: "Sul", Preco: decimal.NewFromInt(300)},
		{Servico: servicoLTCAT, TipoAvaliacao: "pacote (1 a 4 avaliacoes)", Regiao: "Sul", Preco: decimal.NewFromInt(700)},
	})

	got := strings.Join(tab.ListaVariaveis(servicoLTCAT), "|")
	esperado := "pacote (1 a 4 avaliacoes)|Por Avaliação Adicional|Por Laudo Técnico|Avulso Especial"
	if got != esperado {
		t.Errorf("tipos = %q, esperado %q", got, esperado)
	}
}

func TestAuditar(t *testing.T) {
	lacunas := tabelaExemplo().Auditar()

	// PGR: 1 serviço x 2 graus x 2 faixas x 2 regiões = 8, 3 definidas
	// ambiental: 1 serviço x 2 tipos x 2 regiões = 4, 2 definidas
	pgr, amb := 0, 0
	for _, l := range lacunas {
		switch l.Categoria {
		case CategoriaPGR:
			pgr++
		case CategoriaAmbiental:
			amb++
		}
	}
	if pgr != 5 || amb != 2 {
		t.Errorf("lacunas pgr=%d amb=%d, esperado 5 e 2", pgr, amb)
	}
}

func TestFaixas(t *testing.T) {
	if len(Faixas) != 16 {
		t.Fatalf("faixas = %d, esperado 16", len(Faixas))
	}
	if Faixas[15].Codigo != "751a800" {
		t.Errorf("última faixa = %s", Faixas[15].Codigo)
	}

	tests := map[string]string{
		"ate19":                   "ate19",
		"Até 19 Trab.":            "ate19",
		"20-50":                   "20a50",
		"101 a 160 Trabalhadores": "101a160",
		"300":                     "251a300",
	}
	for entrada, esperado := range tests {
		f, ok := ParseFaixa(entrada)
		if !ok || f.Codigo != esperado {
			t.Errorf("ParseFaixa(%q) = %q, %v; esperado %q", entrada, f.Codigo, ok, esperado)
		}
	}
	if _, ok := ParseFaixa("mil"); ok {
		t.Error("ParseFaixa aceitou texto sem números")
	}
}

// Para qualquer linha tabelada, a consulta com os mesmos parâmetros retorna exatamente o preço da linha
func TestPrecoTabeladoExato(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("consulta PGR retorna o preço da linha", prop.ForAll(
		func(centavos int64, regiao, grau, faixa int) bool {
			preco := decimal.New(centavos, -2)
			tab := Nova([]LinhaPGR{{
				Servico:   ServicoPGR,
				Regiao:    Regioes[regiao],
				GrauRisco: GrausRisco[grau],
				Faixa:     Faixas[faixa].Codigo,
				Preco:     preco,
			}}, nil)

			res, err := tab.Preco(Consulta{
				Servico:   strings.ToUpper(ServicoPGR),
				Regiao:    Regioes[regiao],
				GrauRisco: GrausRisco[grau],
				Faixa:     Faixas[faixa].Nome,
			})
			return err == nil && res.Preco.Equal(preco)
		},
		gen.Int64Range(0, 10_000_000),
		gen.IntRange(0, len(Regioes)-1),
		gen.IntRange(0, len(GrausRisco)-1),
		gen.IntRange(0, len(Faixas)-1),
	))

	properties.Property("preço ambiental segue base + adicional*GES + 50% da base por avaliação", prop.ForAll(
		func(base, adicional int64, ges, aval int) bool {
			b := decimal.New(base, -2)
			a := decimal.New(adicional, -2)
			tab := Nova(nil, []LinhaAmbiental{{
				Servico: servicoLTCAT, TipoAvaliacao: "Por Laudo Técnico", AdicionalGesGhe: a, Regiao: "Sul", Preco: b,
			}})

			res, err := tab.Preco(Consulta{
				Servico: servicoLTCAT, Regiao: "sul", TipoAvaliacao: "por laudo tecnico",
				NumGesGhe: ges, NumAvaliacoesAdicionais: aval,
			})
			if err != nil {
				return false
			}
			esperado := b.Add(a.Mul(decimal.NewFromInt(int64(ges)))).
				Add(b.Div(decimal.NewFromInt(2)).Mul(decimal.NewFromInt(int64(aval)))).Round(2)
			return res.Preco.Equal(esperado)
		},
		gen.Int64Range(0, 1_000_000),
		gen.Int64Range(0, 100_000),
		gen.IntRange(0, MaxContagem),
		gen.IntRange(0, MaxContagem),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

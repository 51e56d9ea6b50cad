package orcamento

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func novoItem(centavos int64, quantidade int) Item {
	return Item{
		Servico:       "Elaboração e acompanhamento do PGR",
		Regiao:        "Central",
		Quantidade:    quantidade,
		PrecoUnitario: decimal.New(centavos, -2),
	}
}

func TestTotaisExemplo(t *testing.T) {
	o := Novo("ACME Ltda", "compras@acme.com.br")
	o.Adicionar(novoItem(150000, 1))
	o.Adicionar(Item{Servico: "LTCAT", Regiao: "Sul", Quantidade: 2, PrecoUnitario: decimal.NewFromInt(700), Adicionais: decimal.NewFromInt(300)})

	tot := o.Totais()
	// 1500 + (1400 + 300) = 3200; 30% = 960
	if !tot.Subtotal.Equal(decimal.NewFromInt(3200)) {
		t.Errorf("subtotal = %s", tot.Subtotal)
	}
	if !tot.ValorSESI.Equal(decimal.NewFromInt(960)) {
		t.Errorf("valor SESI = %s", tot.ValorSESI)
	}
	if !tot.Total.Equal(decimal.NewFromInt(4160)) {
		t.Errorf("total = %s", tot.Total)
	}
}

func TestCalcularTotaisArredonda(t *testing.T) {
	// 1000,15 * 12,5% = 125,01875
	tot := CalcularTotais(decimal.RequireFromString("1000.15"), decimal.RequireFromString("12.5"))
	if !tot.ValorSESI.Equal(decimal.RequireFromString("125.02")) {
		t.Errorf("valor SESI = %s", tot.ValorSESI)
	}
	if !tot.Total.Equal(decimal.RequireFromString("1125.17")) {
		t.Errorf("total = %s", tot.Total)
	}
}

func TestAdicionarRemover(t *testing.T) {
	o := Novo("ACME", "a@b.com")
	a := o.Adicionar(novoItem(100, 1))
	b := o.Adicionar(novoItem(200, 1))
	if a == b {
		t.Fatalf("ids repetidos: %d", a)
	}

	if err := o.Remover(a); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if err := o.Remover(a); err == nil {
		t.Error("remover item inexistente deveria falhar")
	}
	c := o.Adicionar(novoItem(300, 1))
	if c == b || c == a {
		t.Errorf("id reutilizado: %d", c)
	}
	if len(o.Itens) != 2 {
		t.Errorf("itens = %d, esperado 2", len(o.Itens))
	}
}

func TestValidar(t *testing.T) {
	valido := func() *Orcamento {
		o := Novo("ACME", "contato@acme.com")
		o.Adicionar(novoItem(100, 1))
		return o
	}

	if err := valido().Validar(); err != nil {
		t.Fatalf("orçamento válido rejeitado: %v", err)
	}

	tests := []struct {
		name     string
		mudar    func(*Orcamento)
		esperado error
	}{
		{"sem empresa", func(o *Orcamento) { o.Empresa = " " }, model.ErrDadosIncompletos},
		{"e-mail inválido", func(o *Orcamento) { o.Email = "contato" }, model.ErrDadosIncompletos},
		{"sem itens", func(o *Orcamento) { o.Itens = nil }, model.ErrDadosIncompletos},
		{"quantidade zero", func(o *Orcamento) { o.Itens[0].Quantidade = 0 }, model.ErrQuantidadeInvalida},
		{"percentual acima de 100", func(o *Orcamento) { o.PercentualSESI = decimal.NewFromInt(101) }, model.ErrDadosIncompletos},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valido()
			tt.mudar(o)
			if err := o.Validar(); !errors.Is(err, tt.esperado) {
				t.Errorf("erro = %v, esperado %v", err, tt.esperado)
			}
		})
	}
}

func TestGerarNumero(t *testing.T) {
	agora := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	n := GerarNumero(agora)
	if !regexp.MustCompile(`^20240307-[0-9A-F]{8}$`).MatchString(n) {
		t.Errorf("número = %q", n)
	}
	if GerarNumero(agora) == n {
		t.Error("números repetidos")
	}
}

func TestPropriedadesTotais(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genItens := gen.SliceOf(gopter.CombineGens(
		gen.Int64Range(0, 5_000_000),
		gen.IntRange(1, 20),
	).Map(func(v []interface{}) Item {
		return novoItem(v[0].(int64), v[1].(int))
	}))

	properties.Property("total geral = arredondar(subtotal * (1 + pct/100))", prop.ForAll(
		func(itens []Item, pct int) bool {
			o := Novo("ACME", "a@b.com")
			o.PercentualSESI = decimal.NewFromInt(int64(pct))
			for _, it := range itens {
				o.Adicionar(it)
			}
			tot := o.Totais()
			esperado := tot.Subtotal.Mul(decimal.NewFromInt(int64(100 + pct))).Div(decimal.NewFromInt(100)).Round(2)
			return tot.Total.Equal(esperado) && tot.Total.Equal(tot.Subtotal.Add(tot.ValorSESI))
		},
		genItens,
		gen.IntRange(0, 100),
	))

	properties.Property("alterar quantidade só muda o total daquela linha", prop.ForAll(
		func(itens []Item, alvo, quantidade int) bool {
			if len(itens) == 0 {
				return true
			}
			o := Novo("ACME", "a@b.com")
			for _, it := range itens {
				o.Adicionar(it)
			}
			antes := make([]decimal.Decimal, len(o.Itens))
			for i, it := range o.Itens {
				antes[i] = it.Total()
			}

			idx := alvo % len(o.Itens)
			if err := o.AlterarQuantidade(o.Itens[idx].ID, quantidade); err != nil {
				return false
			}
			for i, it := range o.Itens {
				if i == idx {
					esperado := it.PrecoUnitario.Mul(decimal.NewFromInt(int64(quantidade))).Round(2)
					if !it.Total().Equal(esperado) {
						return false
					}
					continue
				}
				if !it.Total().Equal(antes[i]) {
					return false
				}
			}
			return true
		},
		genItens,
		gen.IntRange(0, 1000),
		gen.IntRange(1, 50),
	))

	properties.Property("remover um item desconta exatamente o seu total", prop.ForAll(
		func(itens []Item, alvo int) bool {
			if len(itens) == 0 {
				return true
			}
			o := Novo("ACME", "a@b.com")
			for _, it := range itens {
				o.Adicionar(it)
			}
			idx := alvo % len(o.Itens)
			removido := o.Itens[idx]
			antes := o.Subtotal()
			if err := o.Remover(removido.ID); err != nil {
				return false
			}
			return o.Subtotal().Equal(antes.Sub(removido.Total()))
		},
		genItens,
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

package formulario

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// precificadorFake responde pela região; "Lenta" aguarda liberar
type precificadorFake struct {
	mu       sync.Mutex
	chamadas []model.PrecoRequest
	precos   map[string]float64
	recebida chan struct{}
	liberar  chan struct{}
	falha    error
}

func novoFake() *precificadorFake {
	return &precificadorFake{
		precos: map[string]float64{
			"Central": 1200,
			"Norte":   1850.5,
			"Lenta":   999,
		},
		recebida: make(chan struct{}, 1),
		liberar:  make(chan struct{}),
	}
}

func (p *precificadorFake) CalcularPreco(_ context.Context, req model.PrecoRequest) (model.PrecoResponse, error) {
	p.mu.Lock()
	p.chamadas = append(p.chamadas, req)
	falha := p.falha
	p.mu.Unlock()

	if falha != nil {
		return model.PrecoResponse{}, falha
	}
	if req.Regiao == "Lenta" {
		p.recebida <- struct{}{}
		<-p.liberar
	}
	if req.Regiao == "Sem Seleção" {
		return model.PrecoResponse{Success: false, PrecoFormatado: moeda.Placeholder, Error: "seleção incompleta: tipo de avaliação"}, nil
	}
	preco := p.precos[req.Regiao]
	return model.PrecoResponse{Success: true, Preco: preco}, nil
}

func (p *precificadorFake) totalChamadas() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chamadas)
}

func TestLinhasIniciaisEContador(t *testing.T) {
	f := Novo(novoFake())
	if n := len(f.Linhas()); n != 1 {
		t.Fatalf("linhas iniciais = %d", n)
	}
	l := f.Linhas()[0]
	if l.ID != 1 || l.Quantidade != 1 || l.Mensagem != moeda.Placeholder {
		t.Errorf("linha inicial = %+v", l)
	}

	id2 := f.Adicionar()
	id3 := f.Adicionar()
	if id2 != 2 || id3 != 3 {
		t.Errorf("ids = %d, %d", id2, id3)
	}

	if err := f.Remover(2); err != nil {
		t.Fatal(err)
	}
	// o contador não reaproveita ids
	if id := f.Adicionar(); id != 4 {
		t.Errorf("id após remoção = %d, esperado 4", id)
	}

	f.RemoverUltima()
	f.RemoverUltima()
	f.RemoverUltima()
	if n := len(f.Linhas()); n != 1 {
		t.Errorf("formulário deve manter uma linha, tem %d", n)
	}
	if err := f.Remover(f.Linhas()[0].ID); err != nil || len(f.Linhas()) != 1 {
		t.Errorf("remover a única linha: err=%v linhas=%d", err, len(f.Linhas()))
	}
	if err := f.Remover(99); !errors.Is(err, ErrLinhaNaoEncontrada) {
		t.Errorf("err = %v", err)
	}
}

func TestPrecificacao(t *testing.T) {
	ctx := context.Background()
	fake := novoFake()
	f := Novo(fake)

	// sem região não há consulta
	if err := f.DefinirServico(ctx, 1, tabela.ServicoPGR); err != nil {
		t.Fatal(err)
	}
	if fake.totalChamadas() != 0 {
		t.Errorf("consulta sem região: %d chamadas", fake.totalChamadas())
	}
	l, _ := f.Linha(1)
	if l.GrauRisco != GrauRiscoPadrao {
		t.Errorf("grau padrão = %q", l.GrauRisco)
	}
	if !l.PrecoUnitario.IsZero() || l.Mensagem != moeda.Placeholder {
		t.Errorf("linha sem seleção = %+v", l)
	}

	f.DefinirRegiao(ctx, 1, "Central")
	f.DefinirFaixa(ctx, 1, "ate19")
	l, _ = f.Linha(1)
	if !l.PrecoUnitario.Equal(decimal.NewFromInt(1200)) || l.Mensagem != "R$ 1.200,00" {
		t.Errorf("linha precificada = %+v", l)
	}
	ultima := fake.chamadas[len(fake.chamadas)-1]
	if ultima.GrauRisco != GrauRiscoPadrao || ultima.NumTrabalhadores != "ate19" || ultima.Quantidade != 1 {
		t.Errorf("consulta enviada = %+v", ultima)
	}

	// quantidade não consulta a API
	antes := fake.totalChamadas()
	f.DefinirQuantidade(1, 3)
	if fake.totalChamadas() != antes {
		t.Error("DefinirQuantidade consultou a API")
	}
	l, _ = f.Linha(1)
	if !l.Total().Equal(decimal.NewFromInt(3600)) || !l.PrecoUnitario.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("total = %s, unitário = %s", l.Total(), l.PrecoUnitario)
	}
	f.DefinirQuantidade(1, 0)
	if l, _ = f.Linha(1); l.Quantidade != 1 {
		t.Errorf("quantidade mínima = %d", l.Quantidade)
	}

	// trocar o serviço limpa os parâmetros do anterior
	f.DefinirServico(ctx, 1, "Avaliação Quantitativa de Ruído")
	if l, _ = f.Linha(1); l.GrauRisco != "" || l.Faixa != "" {
		t.Errorf("parâmetros não foram limpos: %+v", l)
	}

	if err := f.DefinirRegiao(ctx, 42, "Central"); !errors.Is(err, ErrLinhaNaoEncontrada) {
		t.Errorf("err = %v", err)
	}
}

func TestErrosViramPrecoZero(t *testing.T) {
	ctx := context.Background()
	fake := novoFake()
	f := Novo(fake)

	f.DefinirServico(ctx, 1, "Avaliação Quantitativa de Ruído")
	f.DefinirRegiao(ctx, 1, "Central")

	f.DefinirRegiao(ctx, 1, "Sem Seleção")
	l, _ := f.Linha(1)
	if !l.PrecoUnitario.IsZero() || l.Mensagem != "seleção incompleta: tipo de avaliação" {
		t.Errorf("success=false: %+v", l)
	}

	fake.falha = errors.New("conexão recusada")
	f.DefinirRegiao(ctx, 1, "Central")
	l, _ = f.Linha(1)
	if !l.PrecoUnitario.IsZero() || l.Mensagem != "conexão recusada" {
		t.Errorf("erro de rede: %+v", l)
	}

	// combinação sem preço
	fake.falha = nil
	f.DefinirRegiao(ctx, 1, "Oeste")
	l, _ = f.Linha(1)
	if !l.PrecoUnitario.IsZero() || l.Mensagem != moeda.Placeholder {
		t.Errorf("sem preço: %+v", l)
	}
}

func TestUltimaAlteracaoPrevalece(t *testing.T) {
	ctx := context.Background()
	fake := novoFake()
	f := Novo(fake)
	f.DefinirServico(ctx, 1, "Avaliação Quantitativa de Ruído")

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.DefinirRegiao(ctx, 1, "Lenta")
	}()

	<-fake.recebida
	f.DefinirRegiao(ctx, 1, "Norte")
	close(fake.liberar)
	<-done

	l, _ := f.Linha(1)
	if !l.PrecoUnitario.Equal(decimal.RequireFromString("1850.5")) || l.Regiao != "Norte" {
		t.Errorf("resposta atrasada sobrescreveu a linha: %+v", l)
	}
}

func TestAtualizarTodas(t *testing.T) {
	ctx := context.Background()
	fake := novoFake()
	f := Novo(fake)
	f.Adicionar()

	f.DefinirServico(ctx, 1, tabela.ServicoPGR)
	f.DefinirRegiao(ctx, 1, "Central")
	f.DefinirServico(ctx, 2, "Avaliação Quantitativa de Ruído")
	f.DefinirRegiao(ctx, 2, "Norte")

	fake.mu.Lock()
	fake.precos["Central"] = 1300
	fake.mu.Unlock()

	f.AtualizarTodas(ctx)
	l1, _ := f.Linha(1)
	l2, _ := f.Linha(2)
	if !l1.PrecoUnitario.Equal(decimal.NewFromInt(1300)) || !l2.PrecoUnitario.Equal(decimal.RequireFromString("1850.5")) {
		t.Errorf("linhas após atualização: %s, %s", l1.PrecoUnitario, l2.PrecoUnitario)
	}
}

func TestResumoEPedido(t *testing.T) {
	ctx := context.Background()
	f := Novo(novoFake())
	f.Adicionar()

	f.DefinirServico(ctx, 1, tabela.ServicoPGR)
	f.DefinirRegiao(ctx, 1, "Central")
	f.DefinirFaixa(ctx, 1, "ate19")
	f.DefinirQuantidade(1, 2)
	f.DefinirAdicionais(1, 10, 2, nil)

	r := f.Resumo(decimal.NewFromInt(30))
	if len(r.Linhas) != 2 {
		t.Fatalf("linhas = %d", len(r.Linhas))
	}
	if r.Linhas[0].PrecoUnitario != "R$ 1.200,00" || r.Linhas[0].PrecoTotal != "R$ 2.400,00" {
		t.Errorf("linha 1 = %+v", r.Linhas[0])
	}
	if !r.Linhas[1].PrecoPendente || r.Linhas[1].PrecoTotal != moeda.Placeholder {
		t.Errorf("linha 2 = %+v", r.Linhas[1])
	}
	if r.Subtotal != "R$ 2.400,00" || r.ValorSESI != "R$ 720,00" || r.Total != "R$ 3.120,00" {
		t.Errorf("totais = %+v", r)
	}

	req := f.Pedido(DadosCliente{Empresa: "ACME", Email: "a@acme.com", EnviarEmail: true})
	if len(req.Servicos) != 1 {
		t.Fatalf("linhas sem serviço não entram no pedido: %d", len(req.Servicos))
	}
	it := req.Servicos[0]
	if it.Servico != tabela.ServicoPGR || it.Quantidade != 2 || it.Valor != 2400 || it.DistanciaKm != 10 || it.DiasColeta != 2 {
		t.Errorf("item = %+v", it)
	}
	if req.Empresa != "ACME" || !req.EnviarEmail {
		t.Errorf("pedido = %+v", req)
	}
}

// O total geral é sempre a soma das linhas acrescida do percentual, e
// remover uma linha retira exatamente a contribuição dela
func TestPropriedadesTotais(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	regioes := []string{"Central", "Norte"}

	properties.Property("total = soma das linhas * (1 + pct/100)", prop.ForAll(
		func(qtds []int, pct int) bool {
			ctx := context.Background()
			f := Novo(novoFake())
			for i := 1; i < len(qtds); i++ {
				f.Adicionar()
			}
			soma := decimal.Zero
			for i, l := range f.Linhas() {
				f.DefinirServico(ctx, l.ID, tabela.ServicoPGR)
				f.DefinirRegiao(ctx, l.ID, regioes[i%2])
				f.DefinirQuantidade(l.ID, qtds[i])
				atual, _ := f.Linha(l.ID)
				soma = soma.Add(atual.Total())
			}

			p := decimal.NewFromInt(int64(pct))
			tot := f.Totais(p)
			esperado := soma.Mul(decimal.NewFromInt(100).Add(p)).Div(decimal.NewFromInt(100)).Round(2)
			if !tot.Total.Equal(esperado) {
				return false
			}

			ultima := f.Linhas()[len(f.Linhas())-1]
			f.Remover(ultima.ID)
			if len(qtds) > 1 {
				return f.Totais(decimal.Zero).Subtotal.Equal(soma.Sub(ultima.Total()))
			}
			return true
		},
		gen.SliceOfN(5, gen.IntRange(1, 20)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

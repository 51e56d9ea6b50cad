package formulario

import (
	"context"
	"strings"
	"testing"

	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/shopspring/decimal"
)

const rascunhoExemplo = `{
  "cliente": {"empresa": "ACME Ltda", "email": "compras@acme.com", "enviar_email": true},
  "linhas": [
    {"servico": "Elaboração e acompanhamento do PGR", "regiao": "Central", "num_trabalhadores": "ate19", "quantidade": 2},
    {"servico": "Avaliação Quantitativa de Ruído", "regiao": "Norte", "variavel": "Pacote (1 a 4 avaliações)", "distancia_km": 10}
  ]
}`

func TestLerRascunho(t *testing.T) {
	rs, err := LerRascunho(strings.NewReader(rascunhoExemplo))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Linhas) != 2 || rs.Cliente.Empresa != "ACME Ltda" || !rs.Cliente.EnviarEmail {
		t.Errorf("rascunho = %+v", rs)
	}

	for _, invalido := range []string{`{"linhas": []}`, `{"linhas": [{"servico": "X", "cor": "azul"}]}`, `[`} {
		if _, err := LerRascunho(strings.NewReader(invalido)); err == nil {
			t.Errorf("esperava erro para %s", invalido)
		}
	}
}

func TestPreencher(t *testing.T) {
	rs, err := LerRascunho(strings.NewReader(rascunhoExemplo))
	if err != nil {
		t.Fatal(err)
	}
	f, err := rs.Preencher(context.Background(), novoFake())
	if err != nil {
		t.Fatal(err)
	}

	linhas := f.Linhas()
	if len(linhas) != 2 {
		t.Fatalf("linhas = %d", len(linhas))
	}
	if linhas[0].GrauRisco != GrauRiscoPadrao || linhas[0].Servico != tabela.ServicoPGR {
		t.Errorf("linha 1 = %+v", linhas[0])
	}
	if !linhas[0].Total().Equal(decimal.NewFromInt(2400)) {
		t.Errorf("total linha 1 = %s", linhas[0].Total())
	}
	if linhas[1].DistanciaKm != 10 || linhas[1].Quantidade != 1 {
		t.Errorf("linha 2 = %+v", linhas[1])
	}

	req := f.Pedido(rs.Cliente)
	if len(req.Servicos) != 2 || req.Servicos[1].DistanciaKm != 10 {
		t.Errorf("pedido = %+v", req)
	}
}

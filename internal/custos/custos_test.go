package custos

import (
	"errors"
	"testing"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/shopspring/decimal"
)

func TestLogisticos(t *testing.T) {
	tests := []struct {
		regiao    string
		distancia float64
		esperado  string
	}{
		{"Central", 0, "0"},
		{"Instituto", 10, "20"},
		{"Norte", 0, "150"},
		{"oeste", 12.5, "225"},
		{"Sudoeste", 100, "450"},
		{"Sul", 1, "302"},
		{"Extremo Sul", 0, "300"},
	}

	for _, tt := range tests {
		t.Run(tt.regiao, func(t *testing.T) {
			got, err := Logisticos(tt.regiao, tt.distancia)
			if err != nil {
				t.Fatalf("erro inesperado: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.esperado)) {
				t.Errorf("custo = %s, esperado %s", got, tt.esperado)
			}
		})
	}

	if _, err := Logisticos("Lua", 0); !errors.Is(err, model.ErrRegiaoInvalida) {
		t.Errorf("erro = %v, esperado ErrRegiaoInvalida", err)
	}
	if _, err := Logisticos("Norte", -1); !errors.Is(err, model.ErrQuantidadeInvalida) {
		t.Errorf("erro = %v, esperado ErrQuantidadeInvalida", err)
	}
}

func TestMultiplosDias(t *testing.T) {
	for dias, esperado := range map[int]int64{0: 0, 1: 0, 2: 250, 5: 1000} {
		if got := MultiplosDias(dias); !got.Equal(decimal.NewFromInt(esperado)) {
			t.Errorf("MultiplosDias(%d) = %s, esperado %d", dias, got, esperado)
		}
	}
}

func TestLaboratoriais(t *testing.T) {
	got, err := Laboratoriais(Laboratorio{
		TipoAmostrador:     "Bomba de Amostragem",
		QuantidadeAmostras: 3,
		TipoAnalise:        "quimica",
		NecessitaART:       true,
		MetodoEnvio:        "Transportadora",
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	// (150 + 200) * 3 + 88,78 + 100
	if !got.Equal(decimal.RequireFromString("1238.78")) {
		t.Errorf("custo = %s, esperado 1238.78", got)
	}

	// envio padrão: Correios
	got, err = Laboratoriais(Laboratorio{TipoAmostrador: "Dosímetro", QuantidadeAmostras: 1, TipoAnalise: "Física"})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(320)) {
		t.Errorf("custo = %s, esperado 320", got)
	}

	invalidos := []Laboratorio{
		{TipoAnalise: "Química", QuantidadeAmostras: 1},
		{TipoAmostrador: "Dosímetro", QuantidadeAmostras: 1},
		{TipoAmostrador: "Dosímetro", TipoAnalise: "Química", MetodoEnvio: "Pombo"},
	}
	for _, l := range invalidos {
		if _, err := Laboratoriais(l); !errors.Is(err, model.ErrSelecaoIncompleta) {
			t.Errorf("Laboratoriais(%+v) erro = %v", l, err)
		}
	}
}

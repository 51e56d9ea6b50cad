package moeda

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatar(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"700", "R$ 700,00"},
		{"1234.5", "R$ 1.234,50"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-88.78", "-R$ 88,78"},
		{"-0.001", "R$ 0,00"},
		{"999.995", "R$ 1.000,00"},
	}

	for _, tc := range cases {
		got := Formatar(decimal.RequireFromString(tc.in))
		if got != tc.want {
			t.Errorf("Formatar(%s) = %q, esperado %q", tc.in, got, tc.want)
		}
	}
}

func TestPlaceholderIgualZeroFormatado(t *testing.T) {
	if Formatar(decimal.Zero) != Placeholder {
		t.Fatalf("placeholder divergente: %q", Formatar(decimal.Zero))
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"700", "700"},
		{" R$ 88,78 ", "88.78"},
		{"1.234.567", "1234567"},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): erro inesperado %v", tc.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Parse(%q) = %s, esperado %s", tc.in, got, tc.want)
		}
	}

	for _, invalido := range []string{"", "R$", "abc", "12,3,4"} {
		if _, err := Parse(invalido); err == nil {
			t.Errorf("Parse(%q) deveria falhar", invalido)
		}
	}
}

func TestPercentual(t *testing.T) {
	got := Percentual(decimal.RequireFromString("1000.10"), decimal.NewFromInt(30))
	if !got.Equal(decimal.RequireFromString("300.03")) {
		t.Fatalf("Percentual = %s", got)
	}
}

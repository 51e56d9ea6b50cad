// Package moeda formata e interpreta valores em reais (BRL).
package moeda

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder é o texto exibido quando não há preço calculado
const Placeholder = "R$ 0,00"

// ErrValorInvalido indica texto que não representa um valor monetário
var ErrValorInvalido = errors.New("valor monetário inválido")

var cem = decimal.NewFromInt(100)

// Arredondar arredonda para 2 casas decimais (meio para longe do zero)
func Arredondar(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percentual retorna base * pct / 100, arredondado
func Percentual(base, pct decimal.Decimal) decimal.Decimal {
	return Arredondar(base.Mul(pct).Div(cem))
}

// Formatar formata no padrão "R$ 1.234,56"
func Formatar(d decimal.Decimal) string {
	s := FormatarSimples(d.Abs())
	if d.Round(2).IsNegative() {
		return "-R$ " + s
	}
	return "R$ " + s
}

// FormatarSimples formata sem o símbolo: "1.234,56"
func FormatarSimples(d decimal.Decimal) string {
	neg := d.Round(2).IsNegative()
	raw := d.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	inteiro, centavos := parts[0], parts[1]

	var b strings.Builder
	n := len(inteiro)
	for i, r := range inteiro {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + centavos
	if neg {
		return "-" + out
	}
	return out
}

// Parse interpreta "R$ 1.234,56", "1234,56", "1234.56" ou "700"
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrValorInvalido
	}

	switch {
	case strings.Contains(s, ","):
		// formato brasileiro: ponto é separador de milhar
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrValorInvalido
	}
	return d, nil
}

package tabela

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizar gera a chave de comparação de um texto: sem acentos, minúsculo
// e com espaços colapsados. "  Região  Sul " -> "regiao sul"
func Normalizar(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// normalizarCabecalho converte "Adicional GES/GHE" em "adicional_ges_ghe"
func normalizarCabecalho(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = Normalizar(s)
	s = strings.NewReplacer(" ", "_", "/", "_", "-", "_", ".", "").Replace(s)
	return s
}

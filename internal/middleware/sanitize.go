package middleware

import (
	"strings"
	"unicode"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
)

// SanitizeConfig configura a limpeza de textos livres.
// O texto é gravado e devolvido como veio; escapar HTML cabe a quem renderiza.
type SanitizeConfig struct {
	MaxStringLength int
}

// DefaultSanitizeConfig retorna a configuração padrão
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 500,
	}
}

// SanitizeString remove bytes nulos e caracteres de controle, apara espaços
// e trunca no limite configurado
func SanitizeString(input string, config SanitizeConfig) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = removeControlChars(input)
	input = strings.TrimSpace(input)

	if config.MaxStringLength > 0 && len([]rune(input)) > config.MaxStringLength {
		input = string([]rune(input)[:config.MaxStringLength])
	}
	return input
}

// SanitizeOrcamento limpa os textos livres do pedido de orçamento
func SanitizeOrcamento(req *model.OrcamentoRequest) {
	cfg := DefaultSanitizeConfig()
	req.Empresa = SanitizeString(req.Empresa, cfg)
	req.Contato = SanitizeString(req.Contato, cfg)
	req.Telefone = SanitizeString(req.Telefone, cfg)
	req.Email = strings.TrimSpace(req.Email)

	detalhes := cfg
	detalhes.MaxStringLength = 2000
	for i := range req.Servicos {
		req.Servicos[i].Detalhes = SanitizeString(req.Servicos[i].Detalhes, detalhes)
	}
}

func removeControlChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

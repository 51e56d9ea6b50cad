package tabela

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
)

// Regiões atendidas
const (
	RegiaoInstituto  = "Instituto"
	RegiaoCentral    = "Central"
	RegiaoNorte      = "Norte"
	RegiaoOeste      = "Oeste"
	RegiaoSudoeste   = "Sudoeste"
	RegiaoSul        = "Sul"
	RegiaoExtremoSul = "Extremo Sul"
)

// Regioes lista as regiões na ordem do formulário
var Regioes = []string{
	RegiaoInstituto,
	RegiaoCentral,
	RegiaoNorte,
	RegiaoOeste,
	RegiaoSudoeste,
	RegiaoSul,
	RegiaoExtremoSul,
}

// ParseRegiao retorna o nome canônico da região
func ParseRegiao(s string) (string, error) {
	n := Normalizar(s)
	for _, r := range Regioes {
		if Normalizar(r) == n {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", model.ErrRegiaoInvalida, s)
}

// Graus de risco
const (
	GrauRisco1e2 = "1 e 2"
	GrauRisco3e4 = "3 e 4"
)

// GrausRisco lista os graus de risco aceitos
var GrausRisco = []string{GrauRisco1e2, GrauRisco3e4}

// ServicoPGR é o serviço que exige grau de risco e faixa de trabalhadores
const ServicoPGR = "Elaboração e acompanhamento do PGR"

// ParseGrauRisco aceita "1 e 2", "1e2", "1-2", "Grau 3 e 4"
func ParseGrauRisco(s string) (string, bool) {
	n := strings.NewReplacer("grau", "", " ", "", "-", "", ",", "", "/", "").Replace(Normalizar(s))
	switch n {
	case "1e2", "12":
		return GrauRisco1e2, true
	case "3e4", "34":
		return GrauRisco3e4, true
	}
	return "", false
}

// Faixa é uma faixa de número de trabalhadores
type Faixa struct {
	Codigo string
	Nome   string
	Min    int
	Max    int
}

// Faixas lista as 16 faixas em ordem crescente
var Faixas = construirFaixas()

func construirFaixas() []Faixa {
	limites := [][2]int{{0, 19}, {20, 50}, {51, 100}, {101, 160}, {161, 250}}
	for min := 251; min <= 751; min += 50 {
		limites = append(limites, [2]int{min, min + 49})
	}

	faixas := make([]Faixa, 0, len(limites))
	for _, l := range limites {
		f := Faixa{Min: l[0], Max: l[1]}
		if l[0] == 0 {
			f.Codigo = fmt.Sprintf("ate%d", l[1])
			f.Nome = fmt.Sprintf("Até %d Trabalhadores", l[1])
		} else {
			f.Codigo = fmt.Sprintf("%da%d", l[0], l[1])
			f.Nome = fmt.Sprintf("%d a %d Trabalhadores", l[0], l[1])
		}
		faixas = append(faixas, f)
	}
	return faixas
}

// FaixaPorTrabalhadores retorna a faixa que contém n trabalhadores
func FaixaPorTrabalhadores(n int) (Faixa, bool) {
	for _, f := range Faixas {
		if n >= f.Min && n <= f.Max {
			return f, true
		}
	}
	return Faixa{}, false
}

var numeros = regexp.MustCompile(`\d+`)

// ParseFaixa aceita o código ("20a50"), o nome ("20 a 50 Trabalhadores"),
// a forma abreviada ("Até 19 Trab.") ou intervalo ("20-50")
func ParseFaixa(s string) (Faixa, bool) {
	n := Normalizar(s)
	if n == "" {
		return Faixa{}, false
	}
	for _, f := range Faixas {
		if n == f.Codigo {
			return f, true
		}
	}

	encontrados := numeros.FindAllString(n, -1)
	switch len(encontrados) {
	case 1:
		v, _ := strconv.Atoi(encontrados[0])
		return FaixaPorTrabalhadores(v)
	case 2:
		a, _ := strconv.Atoi(encontrados[0])
		b, _ := strconv.Atoi(encontrados[1])
		for _, f := range Faixas {
			if f.Max == b && (f.Min == a || (f.Min == 0 && a <= 1)) {
				return f, true
			}
		}
	}
	return Faixa{}, false
}

// chaveFaixa retorna o código da faixa ou o texto normalizado quando não reconhecida
func chaveFaixa(s string) string {
	if f, ok := ParseFaixa(s); ok {
		return f.Codigo
	}
	return Normalizar(s)
}

// chaveGrau retorna o grau canônico ou o texto normalizado
func chaveGrau(s string) string {
	if g, ok := ParseGrauRisco(s); ok {
		return g
	}
	return Normalizar(s)
}

// TiposAvaliacao lista as variáveis usuais dos serviços ambientais
var TiposAvaliacao = []string{
	"Pacote (1 a 4 avaliações)",
	"Por Avaliação Adicional",
	"Por Relatório Unitário",
	"Base + Adicional por GES/GHE",
	"Adicional por GES/GHE Revisado",
	"Por Laudo Técnico",
}

package tabela

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Erros de carga das planilhas de preço
var (
	ErrFormatoNaoSuportado = errors.New("formato de arquivo não suportado (use CSV ou XLSX)")
	ErrArquivoVazio        = errors.New("arquivo de preços está vazio")
	ErrCabecalhoInvalido   = errors.New("cabeçalho não identifica tabela de PGR nem de avaliações ambientais")
)

// Conteudo reúne as linhas lidas de uma ou mais planilhas
type Conteudo struct {
	PGR       []LinhaPGR
	Ambiental []LinhaAmbiental
}

// Juntar acrescenta as linhas de outro conteúdo
func (c *Conteudo) Juntar(o Conteudo) {
	c.PGR = append(c.PGR, o.PGR...)
	c.Ambiental = append(c.Ambiental, o.Ambiental...)
}

// Tabela constrói a tabela indexada a partir do conteúdo
func (c Conteudo) Tabela() *Tabela {
	return Nova(c.PGR, c.Ambiental)
}

// ErroLinha indica uma linha inválida da planilha
type ErroLinha struct {
	Linha int
	Err   error
}

func (e *ErroLinha) Error() string {
	return fmt.Sprintf("linha %d: %v", e.Linha, e.Err)
}

func (e *ErroLinha) Unwrap() error { return e.Err }

// aliases aceitos para cada coluna, já normalizados
var aliases = map[string][]string{
	"servico":           {"servico", "nome_servico"},
	"regiao":            {"regiao"},
	"grau_risco":        {"grau_risco", "grau_de_risco", "grau"},
	"num_trabalhadores": {"num_trabalhadores", "faixa_trab", "faixa", "faixa_trabalhadores"},
	"tipo_avaliacao":    {"tipo_avaliacao", "variavel", "tipo"},
	"adicional_ges_ghe": {"adicional_ges_ghe", "adicional_ges", "adicional"},
	"preco":             {"preco", "valor", "preco_base"},
}

// CarregarArquivo lê uma planilha de preços, escolhendo o leitor pela extensão
func CarregarArquivo(caminho string) (Conteudo, error) {
	f, err := os.Open(caminho)
	if err != nil {
		return Conteudo{}, fmt.Errorf("erro ao abrir planilha de preços: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(caminho)) {
	case ".csv":
		return CarregarCSV(f)
	case ".xlsx":
		return CarregarXLSX(f)
	default:
		return Conteudo{}, fmt.Errorf("%w: %s", ErrFormatoNaoSuportado, caminho)
	}
}

// CarregarArquivos lê todas as planilhas informadas. Caminhos vazios são ignorados.
func CarregarArquivos(caminhos ...string) (Conteudo, error) {
	var total Conteudo
	for _, c := range caminhos {
		if c == "" {
			continue
		}
		conteudo, err := CarregarArquivo(c)
		if err != nil {
			return Conteudo{}, fmt.Errorf("%s: %w", c, err)
		}
		total.Juntar(conteudo)
	}
	return total, nil
}

// CarregarCSV lê uma planilha CSV separada por vírgula ou ponto e vírgula
func CarregarCSV(r io.Reader) (Conteudo, error) {
	dados, err := io.ReadAll(r)
	if err != nil {
		return Conteudo{}, fmt.Errorf("erro ao ler CSV: %w", err)
	}
	if len(strings.TrimSpace(string(dados))) == 0 {
		return Conteudo{}, ErrArquivoVazio
	}

	reader := csv.NewReader(strings.NewReader(string(dados)))
	reader.Comma = detectarSeparador(string(dados))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	registros, err := reader.ReadAll()
	if err != nil {
		return Conteudo{}, fmt.Errorf("erro ao ler CSV: %w", err)
	}
	return converter(registros)
}

// CarregarXLSX lê a primeira aba de uma planilha Excel
func CarregarXLSX(r io.Reader) (Conteudo, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Conteudo{}, fmt.Errorf("erro ao abrir arquivo Excel: %w", err)
	}
	defer f.Close()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return Conteudo{}, ErrArquivoVazio
	}

	registros, err := f.GetRows(abas[0])
	if err != nil {
		return Conteudo{}, fmt.Errorf("erro ao ler aba %s: %w", abas[0], err)
	}
	return converter(registros)
}

// detectarSeparador escolhe ";" quando a primeira linha não tem vírgulas
func detectarSeparador(dados string) rune {
	primeira := dados
	if i := strings.IndexByte(dados, '\n'); i >= 0 {
		primeira = dados[:i]
	}
	if strings.Count(primeira, ";") > strings.Count(primeira, ",") {
		return ';'
	}
	return ','
}

func converter(registros [][]string) (Conteudo, error) {
	if len(registros) == 0 {
		return Conteudo{}, ErrArquivoVazio
	}

	colunas := mapearColunas(registros[0])
	_, temGrau := colunas["grau_risco"]
	_, temTipo := colunas["tipo_avaliacao"]
	for _, obrigatoria := range []string{"servico", "regiao", "preco"} {
		if _, ok := colunas[obrigatoria]; !ok {
			return Conteudo{}, fmt.Errorf("%w: coluna %s ausente", ErrCabecalhoInvalido, obrigatoria)
		}
	}

	var c Conteudo
	for i, reg := range registros[1:] {
		if linhaVazia(reg) {
			continue
		}
		// linha 1 é o cabeçalho
		num := i + 2
		campo := func(nome string) string {
			idx, ok := colunas[nome]
			if !ok || idx >= len(reg) {
				return ""
			}
			return strings.TrimSpace(reg[idx])
		}

		preco, err := moeda.Parse(campo("preco"))
		if err != nil {
			return Conteudo{}, &ErroLinha{Linha: num, Err: err}
		}
		if preco.IsNegative() {
			return Conteudo{}, &ErroLinha{Linha: num, Err: fmt.Errorf("preço negativo: %s", campo("preco"))}
		}
		if campo("servico") == "" || campo("regiao") == "" {
			return Conteudo{}, &ErroLinha{Linha: num, Err: errors.New("serviço e região são obrigatórios")}
		}

		switch {
		case temGrau:
			faixa := campo("num_trabalhadores")
			if f, ok := ParseFaixa(faixa); ok {
				faixa = f.Codigo
			}
			grau := campo("grau_risco")
			if g, ok := ParseGrauRisco(grau); ok {
				grau = g
			}
			if grau == "" || faixa == "" {
				return Conteudo{}, &ErroLinha{Linha: num, Err: errors.New("grau de risco e faixa de trabalhadores são obrigatórios")}
			}
			c.PGR = append(c.PGR, LinhaPGR{
				Servico:   campo("servico"),
				Regiao:    campo("regiao"),
				GrauRisco: grau,
				Faixa:     faixa,
				Preco:     preco,
			})
		case temTipo:
			adicional := decimal.Zero
			if v := campo("adicional_ges_ghe"); v != "" {
				adicional, err = moeda.Parse(v)
				if err != nil {
					return Conteudo{}, &ErroLinha{Linha: num, Err: err}
				}
			}
			c.Ambiental = append(c.Ambiental, LinhaAmbiental{
				Servico:         campo("servico"),
				TipoAvaliacao:   campo("tipo_avaliacao"),
				AdicionalGesGhe: adicional,
				Regiao:          campo("regiao"),
				Preco:           preco,
			})
		default:
			return Conteudo{}, ErrCabecalhoInvalido
		}
	}

	return c, nil
}

func mapearColunas(cabecalho []string) map[string]int {
	colunas := make(map[string]int)
	for i, h := range cabecalho {
		n := normalizarCabecalho(h)
		for nome, alternativas := range aliases {
			for _, a := range alternativas {
				if n == a {
					if _, ja := colunas[nome]; !ja {
						colunas[nome] = i
					}
				}
			}
		}
	}
	return colunas
}

func linhaVazia(reg []string) bool {
	for _, v := range reg {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

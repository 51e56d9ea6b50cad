package formulario

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
)

// LinhaRascunho é uma linha salva em arquivo
type LinhaRascunho struct {
	Servico                 string                    `json:"servico"`
	Regiao                  string                    `json:"regiao"`
	Variavel                string                    `json:"variavel,omitempty"`
	GrauRisco               string                    `json:"grau_risco,omitempty"`
	Faixa                   string                    `json:"num_trabalhadores,omitempty"`
	NumGesGhe               int                       `json:"num_ges_ghe,omitempty"`
	NumAvaliacoesAdicionais int                       `json:"num_avaliacoes_adicionais,omitempty"`
	Quantidade              int                       `json:"quantidade,omitempty"`
	DistanciaKm             float64                   `json:"distancia_km,omitempty"`
	DiasColeta              int                       `json:"dias_coleta,omitempty"`
	Laboratorio             *model.LaboratorioRequest `json:"laboratorio,omitempty"`
}

// Rascunho é um formulário salvo em JSON, usado pela CLI
type Rascunho struct {
	Cliente DadosCliente    `json:"cliente"`
	Linhas  []LinhaRascunho `json:"linhas"`
}

// LerRascunho decodifica um rascunho
func LerRascunho(r io.Reader) (Rascunho, error) {
	var rs Rascunho
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		return Rascunho{}, fmt.Errorf("rascunho inválido: %w", err)
	}
	if len(rs.Linhas) == 0 {
		return Rascunho{}, fmt.Errorf("rascunho inválido: nenhuma linha")
	}
	return rs, nil
}

// LerRascunhoArquivo abre e decodifica o rascunho em caminho
func LerRascunhoArquivo(caminho string) (Rascunho, error) {
	f, err := os.Open(caminho)
	if err != nil {
		return Rascunho{}, fmt.Errorf("erro ao abrir rascunho: %w", err)
	}
	defer f.Close()
	return LerRascunho(f)
}

// Preencher cria um formulário com as linhas do rascunho, na mesma ordem em
// que o usuário preencheria os campos
func (rs Rascunho) Preencher(ctx context.Context, p Precificador) (*Formulario, error) {
	f := Novo(p)
	for i, lr := range rs.Linhas {
		id := f.Linhas()[0].ID
		if i > 0 {
			id = f.Adicionar()
		}

		passos := []func() error{
			func() error { return f.DefinirServico(ctx, id, lr.Servico) },
			func() error { return f.DefinirRegiao(ctx, id, lr.Regiao) },
		}
		if lr.GrauRisco != "" {
			passos = append(passos, func() error { return f.DefinirGrauRisco(ctx, id, lr.GrauRisco) })
		}
		if lr.Faixa != "" {
			passos = append(passos, func() error { return f.DefinirFaixa(ctx, id, lr.Faixa) })
		}
		if lr.Variavel != "" {
			passos = append(passos, func() error { return f.DefinirVariavel(ctx, id, lr.Variavel) })
		}
		if lr.NumGesGhe != 0 {
			passos = append(passos, func() error { return f.DefinirGesGhe(ctx, id, lr.NumGesGhe) })
		}
		if lr.NumAvaliacoesAdicionais != 0 {
			passos = append(passos, func() error { return f.DefinirAvaliacoesAdicionais(ctx, id, lr.NumAvaliacoesAdicionais) })
		}
		passos = append(passos,
			func() error { return f.DefinirQuantidade(id, lr.Quantidade) },
			func() error { return f.DefinirAdicionais(id, lr.DistanciaKm, lr.DiasColeta, lr.Laboratorio) },
		)

		for _, passo := range passos {
			if err := passo(); err != nil {
				return nil, fmt.Errorf("linha %d: %w", i+1, err)
			}
		}
	}
	return f, nil
}

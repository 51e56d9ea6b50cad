// cotacao é a CLI do formulário de orçamentos SST.
//
// Uso:
//
//	cotacao servicos
//	cotacao preco --servico "Elaboração e acompanhamento do PGR" --regiao Central --faixa ate19
//	cotacao montar --arquivo rascunho.json --emitir
//	cotacao verificar --pgr csv/Precos_PGR.csv --ambientais csv/Precos_Ambientais.csv
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/client"
	"github.com/cleberrangel/orcamento-sst-api/internal/formulario"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/orcamento"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := novoApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

func novoApp() *cli.App {
	return &cli.App{
		Name:    "cotacao",
		Usage:   "Consulta preços e monta orçamentos de serviços SST",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   "http://localhost:8080",
				Usage:   "Endereço da API de orçamentos",
				EnvVars: []string{"COTACAO_API"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: client.DefaultTimeout,
				Usage: "Timeout por requisição",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Nível de log (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.InitWithWriter(c.String("log-level"), false, os.Stderr)
			return nil
		},

		Commands: []*cli.Command{
			servicosCommand(),
			regioesCommand(),
			variaveisCommand(),
			precoCommand(),
			montarCommand(),
			verificarCommand(),
		},
	}
}

// novoCliente não repete requisições: o usuário refaz a consulta
func novoCliente(c *cli.Context) *client.Client {
	return client.New(c.String("api"), client.Options{
		Timeout:    c.Duration("timeout"),
		Tentativas: 1,
	})
}

func contexto() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func flagServico() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "servico",
		Aliases:  []string{"s"},
		Usage:    "Nome do serviço",
		Required: true,
	}
}

// =============================================================================
// CATÁLOGO
// =============================================================================

func servicosCommand() *cli.Command {
	return &cli.Command{
		Name:  "servicos",
		Usage: "Lista os serviços com preço",
		Action: func(c *cli.Context) error {
			ctx, cancel := contexto()
			defer cancel()

			servicos, err := novoCliente(c).Servicos(ctx)
			if err != nil {
				return err
			}
			for _, s := range servicos {
				fmt.Fprintln(c.App.Writer, s)
			}
			return nil
		},
	}
}

func regioesCommand() *cli.Command {
	return &cli.Command{
		Name:  "regioes",
		Usage: "Lista as regiões atendidas por um serviço",
		Flags: []cli.Flag{flagServico()},
		Action: func(c *cli.Context) error {
			ctx, cancel := contexto()
			defer cancel()

			regioes, err := novoCliente(c).Regioes(ctx, c.String("servico"))
			if err != nil {
				return err
			}
			if len(regioes) == 0 {
				return cli.Exit("nenhuma região encontrada para o serviço", 1)
			}
			for _, r := range regioes {
				fmt.Fprintln(c.App.Writer, r)
			}
			return nil
		},
	}
}

func variaveisCommand() *cli.Command {
	return &cli.Command{
		Name:  "variaveis",
		Usage: "Mostra os parâmetros de um serviço",
		Flags: []cli.Flag{flagServico()},
		Action: func(c *cli.Context) error {
			ctx, cancel := contexto()
			defer cancel()

			variaveis, err := novoCliente(c).Variaveis(ctx, c.String("servico"))
			if err != nil {
				return err
			}

			nomes := make([]string, 0, len(variaveis))
			for k := range variaveis {
				nomes = append(nomes, k)
			}
			sort.Strings(nomes)

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CAMPO\tTIPO\tVALORES")
			for _, k := range nomes {
				v := variaveis[k]
				valores := strings.Join(v.Opcoes, " | ")
				if v.Tipo == "numero" && v.Min != nil && v.Max != nil {
					valores = fmt.Sprintf("%d a %d", *v.Min, *v.Max)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", k, v.Tipo, valores)
			}
			return w.Flush()
		},
	}
}

// =============================================================================
// PREÇO
// =============================================================================

func precoCommand() *cli.Command {
	return &cli.Command{
		Name:  "preco",
		Usage: "Consulta o preço de uma combinação",
		Flags: []cli.Flag{
			flagServico(),
			&cli.StringFlag{Name: "regiao", Aliases: []string{"r"}, Usage: "Região", Required: true},
			&cli.StringFlag{Name: "variavel", Usage: "Tipo de avaliação (serviços ambientais)"},
			&cli.StringFlag{Name: "grau-risco", Usage: "Grau de risco do PGR (1 e 2, 3 e 4)"},
			&cli.StringFlag{Name: "faixa", Usage: "Faixa de trabalhadores do PGR (ex.: ate19, 20a50)"},
			&cli.IntFlag{Name: "trabalhadores", Usage: "Número de trabalhadores; escolhe a faixa automaticamente"},
			&cli.IntFlag{Name: "ges-ghe", Usage: "Quantidade de GES/GHE"},
			&cli.IntFlag{Name: "avaliacoes", Usage: "Avaliações adicionais"},
			&cli.IntFlag{Name: "quantidade", Aliases: []string{"q"}, Value: 1, Usage: "Quantidade"},
		},
		Action: runPreco,
	}
}

func runPreco(c *cli.Context) error {
	ctx, cancel := contexto()
	defer cancel()

	req := model.PrecoRequest{
		Servico:                 c.String("servico"),
		Regiao:                  c.String("regiao"),
		Variavel:                c.String("variavel"),
		GrauRisco:               c.String("grau-risco"),
		NumTrabalhadores:        c.String("faixa"),
		NumGesGhe:               c.Int("ges-ghe"),
		NumAvaliacoesAdicionais: c.Int("avaliacoes"),
		Quantidade:              c.Int("quantidade"),
	}
	if n := c.Int("trabalhadores"); n > 0 && req.NumTrabalhadores == "" {
		f, ok := tabela.FaixaPorTrabalhadores(n)
		if !ok {
			return cli.Exit(fmt.Sprintf("nenhuma faixa para %d trabalhadores", n), 1)
		}
		req.NumTrabalhadores = f.Codigo
	}
	if req.GrauRisco == "" && tabela.Normalizar(req.Servico) == tabela.Normalizar(tabela.ServicoPGR) {
		req.GrauRisco = formulario.GrauRiscoPadrao
	}

	resp, err := novoCliente(c).CalcularPreco(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return cli.Exit(resp.Error, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Preço unitário\t%s\n", moeda.Formatar(decimal.NewFromFloat(resp.Preco)))
	fmt.Fprintf(w, "Quantidade\t%d\n", req.Quantidade)
	fmt.Fprintf(w, "Total\t%s\n", moeda.Formatar(decimal.NewFromFloat(resp.PrecoTotal)))
	if resp.Preco == 0 {
		fmt.Fprintln(w, "Aviso\tcombinação sem preço na tabela")
	}
	return w.Flush()
}

// =============================================================================
// MONTAR ORÇAMENTO
// =============================================================================

func montarCommand() *cli.Command {
	return &cli.Command{
		Name:  "montar",
		Usage: "Precifica um rascunho de orçamento e opcionalmente o emite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "arquivo",
				Aliases:  []string{"a"},
				Usage:    "Rascunho em JSON ({\"cliente\": {...}, \"linhas\": [...]})",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "percentual",
				Value: orcamento.PercentualPadrao.InexactFloat64(),
				Usage: "Percentual SESI",
			},
			&cli.BoolFlag{Name: "emitir", Usage: "Emite o orçamento na API"},
			&cli.BoolFlag{Name: "enviar", Usage: "Solicita o envio do orçamento por e-mail"},
			&cli.BoolFlag{Name: "json", Usage: "Saída em JSON"},
		},
		Action: runMontar,
	}
}

func runMontar(c *cli.Context) error {
	ctx, cancel := contexto()
	defer cancel()

	rs, err := formulario.LerRascunhoArquivo(c.String("arquivo"))
	if err != nil {
		return err
	}

	api := novoCliente(c)
	inicio := time.Now()
	f, err := rs.Preencher(ctx, api)
	if err != nil {
		return err
	}
	logger.Global().Debug().Dur("duracao", time.Since(inicio)).Int("linhas", len(rs.Linhas)).Msg("Rascunho precificado")

	// a flag vence o rascunho; o resumo e o pedido usam o mesmo percentual
	pct := orcamento.PercentualPadrao
	switch {
	case c.IsSet("percentual"):
		pct = decimal.NewFromFloat(c.Float64("percentual"))
	case rs.Cliente.PercentualSESI != nil:
		pct = decimal.NewFromFloat(*rs.Cliente.PercentualSESI)
	}
	resumo := f.Resumo(pct)

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resumo); err != nil {
			return err
		}
	} else if err := imprimirResumo(c, resumo); err != nil {
		return err
	}

	if !c.Bool("emitir") {
		return nil
	}

	dados := rs.Cliente
	p := pct.InexactFloat64()
	dados.PercentualSESI = &p
	if c.Bool("enviar") {
		dados.EnviarEmail = true
	}

	resp, err := api.GerarOrcamento(ctx, f.Pedido(dados))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nOrçamento %s emitido: total %s\n",
		resp.NumeroOrcamento, moeda.Formatar(decimal.NewFromFloat(resp.Total)))
	return nil
}

func imprimirResumo(c *cli.Context, r formulario.Resumo) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSERVIÇO\tREGIÃO\tQTD\tUNITÁRIO\tTOTAL\tOBS")
	for _, l := range r.Linhas {
		obs := ""
		if l.PrecoPendente && l.Mensagem != moeda.Placeholder {
			obs = l.Mensagem
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.Servico, l.Regiao, l.Quantidade, l.PrecoUnitario, l.PrecoTotal, obs)
	}
	fmt.Fprintf(w, "\t\t\t\tSubtotal\t%s\t\n", r.Subtotal)
	fmt.Fprintf(w, "\t\t\t\tSESI (%s)\t%s\t\n", r.PercentualSESI, r.ValorSESI)
	fmt.Fprintf(w, "\t\t\t\tTotal\t%s\t\n", r.Total)
	return w.Flush()
}

// =============================================================================
// VERIFICAR TABELA
// =============================================================================

func verificarCommand() *cli.Command {
	return &cli.Command{
		Name:  "verificar",
		Usage: "Valida as planilhas de preço localmente e lista combinações sem preço",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pgr", Value: "csv/Precos_PGR.csv", Usage: "Planilha de PGR (CSV ou XLSX)"},
			&cli.StringFlag{Name: "ambientais", Value: "csv/Precos_Ambientais.csv", Usage: "Planilha de avaliações ambientais"},
			&cli.BoolFlag{Name: "estrito", Usage: "Retorna erro se houver combinações sem preço"},
		},
		Action: runVerificar,
	}
}

func runVerificar(c *cli.Context) error {
	conteudo, err := tabela.CarregarArquivos(c.String("pgr"), c.String("ambientais"))
	if err != nil {
		return err
	}
	t := conteudo.Tabela()
	lacunas := t.Auditar()

	fmt.Fprintf(c.App.Writer, "%d linhas, %d serviços, %d combinações sem preço\n",
		t.Tamanho(), len(t.Servicos()), len(lacunas))

	if len(lacunas) > 0 {
		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVIÇO\tREGIÃO\tPARÂMETROS")
		for _, l := range lacunas {
			params := l.TipoAvaliacao
			if l.Categoria == tabela.CategoriaPGR {
				params = fmt.Sprintf("grau %s, faixa %s", l.GrauRisco, l.Faixa)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.Servico, l.Regiao, params)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if c.Bool("estrito") {
			return cli.Exit("tabela incompleta", 1)
		}
	}
	return nil
}

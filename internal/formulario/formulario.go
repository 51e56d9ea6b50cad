// Package formulario mantém o estado do formulário de cotação: linhas de
// serviço, preço unitário consultado na API a cada alteração e totais.
// Respostas atrasadas são descartadas: vale a última alteração de cada linha.
package formulario

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/moeda"
	"github.com/cleberrangel/orcamento-sst-api/internal/orcamento"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/shopspring/decimal"
)

// GrauRiscoPadrao é pré-selecionado ao escolher o PGR
const GrauRiscoPadrao = "1 e 2"

// ErrLinhaNaoEncontrada indica um id de linha inexistente
var ErrLinhaNaoEncontrada = errors.New("linha não encontrada")

// Precificador consulta o preço unitário de uma combinação
type Precificador interface {
	CalcularPreco(ctx context.Context, req model.PrecoRequest) (model.PrecoResponse, error)
}

// Linha é um serviço do formulário
type Linha struct {
	ID                      int
	Servico                 string
	Regiao                  string
	Variavel                string
	GrauRisco               string
	Faixa                   string
	NumGesGhe               int
	NumAvaliacoesAdicionais int
	Quantidade              int

	DistanciaKm float64
	DiasColeta  int
	Laboratorio *model.LaboratorioRequest

	PrecoUnitario decimal.Decimal
	Mensagem      string

	geracao uint64
}

// Total retorna preço unitário * quantidade
func (l Linha) Total() decimal.Decimal {
	return moeda.Arredondar(l.PrecoUnitario.Mul(decimal.NewFromInt(int64(l.quantidade()))))
}

func (l Linha) quantidade() int {
	if l.Quantidade < 1 {
		return 1
	}
	return l.Quantidade
}

func (l Linha) consulta() model.PrecoRequest {
	return model.PrecoRequest{
		Servico:                 l.Servico,
		Regiao:                  l.Regiao,
		Variavel:                l.Variavel,
		GrauRisco:               l.GrauRisco,
		NumTrabalhadores:        l.Faixa,
		NumGesGhe:               l.NumGesGhe,
		NumAvaliacoesAdicionais: l.NumAvaliacoesAdicionais,
		Quantidade:              l.quantidade(),
	}
}

// Formulario é o estado do formulário. Seguro para uso concorrente.
type Formulario struct {
	mu           sync.Mutex
	precificador Precificador
	linhas       []*Linha
	contador     int
}

// Novo cria um formulário com uma linha vazia
func Novo(p Precificador) *Formulario {
	f := &Formulario{precificador: p}
	f.Adicionar()
	return f
}

// Adicionar inclui uma linha vazia e retorna seu id
func (f *Formulario) Adicionar() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.contador++
	f.linhas = append(f.linhas, &Linha{
		ID:            f.contador,
		Quantidade:    1,
		PrecoUnitario: decimal.Zero,
		Mensagem:      moeda.Placeholder,
	})
	return f.contador
}

// Remover exclui a linha; o formulário nunca fica sem linhas
func (f *Formulario) Remover(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indice(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrLinhaNaoEncontrada, id)
	}
	if len(f.linhas) == 1 {
		return nil
	}
	f.linhas = append(f.linhas[:i], f.linhas[i+1:]...)
	return nil
}

// RemoverUltima exclui a última linha, mantendo ao menos uma
func (f *Formulario) RemoverUltima() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.linhas) > 1 {
		f.linhas = f.linhas[:len(f.linhas)-1]
	}
}

// Linhas retorna uma cópia das linhas na ordem do formulário
func (f *Formulario) Linhas() []Linha {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Linha, len(f.linhas))
	for i, l := range f.linhas {
		out[i] = *l
	}
	return out
}

// Linha retorna uma cópia da linha
func (f *Formulario) Linha(id int) (Linha, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indice(id)
	if i < 0 {
		return Linha{}, false
	}
	return *f.linhas[i], true
}

func (f *Formulario) indice(id int) int {
	for i, l := range f.linhas {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// DefinirServico troca o serviço e limpa os parâmetros que dependem dele
func (f *Formulario) DefinirServico(ctx context.Context, id int, servico string) error {
	return f.alterar(ctx, id, func(l *Linha) {
		l.Servico = servico
		l.Variavel = ""
		l.Faixa = ""
		l.GrauRisco = ""
		if tabela.Normalizar(servico) == tabela.Normalizar(tabela.ServicoPGR) {
			l.GrauRisco = GrauRiscoPadrao
		}
	})
}

// DefinirRegiao altera a região
func (f *Formulario) DefinirRegiao(ctx context.Context, id int, regiao string) error {
	return f.alterar(ctx, id, func(l *Linha) { l.Regiao = regiao })
}

// DefinirVariavel altera o tipo de avaliação
func (f *Formulario) DefinirVariavel(ctx context.Context, id int, variavel string) error {
	return f.alterar(ctx, id, func(l *Linha) { l.Variavel = variavel })
}

// DefinirGrauRisco altera o grau de risco do PGR
func (f *Formulario) DefinirGrauRisco(ctx context.Context, id int, grau string) error {
	return f.alterar(ctx, id, func(l *Linha) { l.GrauRisco = grau })
}

// DefinirFaixa altera a faixa de trabalhadores do PGR
func (f *Formulario) DefinirFaixa(ctx context.Context, id int, faixa string) error {
	return f.alterar(ctx, id, func(l *Linha) { l.Faixa = faixa })
}

// DefinirGesGhe altera a quantidade de GES/GHE
func (f *Formulario) DefinirGesGhe(ctx context.Context, id, n int) error {
	return f.alterar(ctx, id, func(l *Linha) { l.NumGesGhe = n })
}

// DefinirAvaliacoesAdicionais altera a quantidade de avaliações adicionais
func (f *Formulario) DefinirAvaliacoesAdicionais(ctx context.Context, id, n int) error {
	return f.alterar(ctx, id, func(l *Linha) { l.NumAvaliacoesAdicionais = n })
}

// DefinirQuantidade altera a quantidade; só o total da linha muda
func (f *Formulario) DefinirQuantidade(id, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indice(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrLinhaNaoEncontrada, id)
	}
	if n < 1 {
		n = 1
	}
	f.linhas[i].Quantidade = n
	return nil
}

// DefinirAdicionais informa deslocamento, dias de coleta e análise
// laboratorial. Os custos são calculados pela API na emissão.
func (f *Formulario) DefinirAdicionais(id int, distanciaKm float64, diasColeta int, lab *model.LaboratorioRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indice(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrLinhaNaoEncontrada, id)
	}
	l := f.linhas[i]
	l.DistanciaKm = distanciaKm
	l.DiasColeta = diasColeta
	l.Laboratorio = lab
	return nil
}

// alterar aplica a mudança, incrementa a geração da linha e consulta o novo preço
func (f *Formulario) alterar(ctx context.Context, id int, mudar func(*Linha)) error {
	f.mu.Lock()
	i := f.indice(id)
	if i < 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrLinhaNaoEncontrada, id)
	}
	l := f.linhas[i]
	mudar(l)
	l.geracao++
	geracao, req := l.geracao, l.consulta()
	f.mu.Unlock()

	f.precificar(ctx, id, geracao, req)
	return nil
}

// precificar consulta a API fora do lock e só aplica o resultado se a linha
// não foi alterada nesse meio tempo
func (f *Formulario) precificar(ctx context.Context, id int, geracao uint64, req model.PrecoRequest) {
	preco, mensagem := decimal.Zero, moeda.Placeholder

	if tabela.Normalizar(req.Servico) != "" && tabela.Normalizar(req.Regiao) != "" {
		resp, err := f.precificador.CalcularPreco(ctx, req)
		switch {
		case err != nil:
			mensagem = err.Error()
		case !resp.Success:
			if resp.Error != "" {
				mensagem = resp.Error
			}
		case resp.Preco > 0:
			preco = moeda.Arredondar(decimal.NewFromFloat(resp.Preco))
			mensagem = moeda.Formatar(preco)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indice(id)
	if i < 0 || f.linhas[i].geracao != geracao {
		return
	}
	f.linhas[i].PrecoUnitario = preco
	f.linhas[i].Mensagem = mensagem
}

// AtualizarTodas consulta novamente o preço de todas as linhas, usado quando
// a tabela de preços é recarregada no servidor
func (f *Formulario) AtualizarTodas(ctx context.Context) {
	type pendente struct {
		id      int
		geracao uint64
		req     model.PrecoRequest
	}

	f.mu.Lock()
	pendentes := make([]pendente, 0, len(f.linhas))
	for _, l := range f.linhas {
		l.geracao++
		pendentes = append(pendentes, pendente{l.ID, l.geracao, l.consulta()})
	}
	f.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range pendentes {
		wg.Add(1)
		go func(p pendente) {
			defer wg.Done()
			f.precificar(ctx, p.id, p.geracao, p.req)
		}(p)
	}
	wg.Wait()
}

// Totais soma as linhas e aplica o percentual SESI
func (f *Formulario) Totais(percentual decimal.Decimal) orcamento.Totais {
	f.mu.Lock()
	defer f.mu.Unlock()

	subtotal := decimal.Zero
	for _, l := range f.linhas {
		subtotal = subtotal.Add(l.Total())
	}
	return orcamento.CalcularTotais(subtotal, percentual)
}

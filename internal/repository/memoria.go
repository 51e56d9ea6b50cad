package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/orcamento"
)

// LimitePadrao é o tamanho da listagem quando nenhum limite é informado
const LimitePadrao = 50

// MemoriaOrcamentoRepository guarda orçamentos em memória, usado sem DB_HOST
type MemoriaOrcamentoRepository struct {
	mu    sync.RWMutex
	itens map[string]*orcamento.Orcamento
}

// NewMemoriaOrcamentoRepository cria o repositório em memória
func NewMemoriaOrcamentoRepository() *MemoriaOrcamentoRepository {
	return &MemoriaOrcamentoRepository{itens: make(map[string]*orcamento.Orcamento)}
}

func (r *MemoriaOrcamentoRepository) Salvar(_ context.Context, o *orcamento.Orcamento) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, existe := r.itens[o.Numero]; existe {
		return fmt.Errorf("orçamento %s já existe", o.Numero)
	}
	r.itens[o.Numero] = o.Copiar()
	return nil
}

func (r *MemoriaOrcamentoRepository) BuscarPorNumero(_ context.Context, numero string) (*orcamento.Orcamento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.itens[numero]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrOrcamentoNaoEncontrado, numero)
	}
	return o.Copiar(), nil
}

func (r *MemoriaOrcamentoRepository) Listar(_ context.Context, limite int) ([]orcamento.Resumo, error) {
	if limite <= 0 {
		limite = LimitePadrao
	}

	r.mu.RLock()
	resumos := make([]orcamento.Resumo, 0, len(r.itens))
	for _, o := range r.itens {
		resumos = append(resumos, o.Resumir())
	}
	r.mu.RUnlock()

	sort.Slice(resumos, func(i, j int) bool {
		if !resumos[i].CriadoEm.Equal(resumos[j].CriadoEm) {
			return resumos[i].CriadoEm.After(resumos[j].CriadoEm)
		}
		return resumos[i].Numero > resumos[j].Numero
	})
	if len(resumos) > limite {
		resumos = resumos[:limite]
	}
	return resumos, nil
}

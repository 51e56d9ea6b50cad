package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cleberrangel/orcamento-sst-api/internal/custos"
	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/cleberrangel/orcamento-sst-api/internal/orcamento"
)

// OrcamentoRepository persiste orçamentos emitidos no PostgreSQL
type OrcamentoRepository struct {
	db *sql.DB
}

// NewOrcamentoRepository cria um novo repositório de orçamentos
func NewOrcamentoRepository(db *sql.DB) *OrcamentoRepository {
	return &OrcamentoRepository{db: db}
}

// detalhesItem é gravado na coluna JSONB detalhes
type detalhesItem struct {
	Laboratorio *custos.Laboratorio `json:"laboratorio,omitempty"`
	DistanciaKm float64             `json:"distancia_km,omitempty"`
	DiasColeta  int                 `json:"dias_coleta,omitempty"`
	Observacao  string              `json:"observacao,omitempty"`
}

// Salvar grava o orçamento e seus itens numa única transação
func (r *OrcamentoRepository) Salvar(ctx context.Context, o *orcamento.Orcamento) error {
	log := logger.Get(ctx)
	totais := o.Totais()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orcamentos (numero, empresa, email, telefone, contato,
			percentual_sesi, subtotal, valor_sesi, total, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.Numero, o.Empresa, o.Email, o.Telefone, o.Contato,
		o.PercentualSESI, totais.Subtotal, totais.ValorSESI, totais.Total, o.CriadoEm)
	if err != nil {
		log.Error().Err(err).Str("numero", o.Numero).Msg("Erro ao inserir orçamento")
		return fmt.Errorf("erro ao inserir orçamento: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO itens_orcamento (numero_orcamento, posicao, servico, regiao, variavel,
			grau_risco, faixa, num_ges_ghe, num_avaliacoes_adicionais, quantidade,
			preco_unitario, adicionais, valor, detalhes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`)
	if err != nil {
		return fmt.Errorf("erro ao preparar inserção de itens: %w", err)
	}
	defer stmt.Close()

	for pos, it := range o.Itens {
		detalhes, err := json.Marshal(detalhesItem{
			Laboratorio: it.Laboratorio,
			DistanciaKm: it.DistanciaKm,
			DiasColeta:  it.DiasColeta,
			Observacao:  it.Detalhes,
		})
		if err != nil {
			return fmt.Errorf("erro ao serializar detalhes do item %d: %w", it.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, o.Numero, pos+1, it.Servico, it.Regiao, it.Variavel,
			it.GrauRisco, it.Faixa, it.NumGesGhe, it.NumAvaliacoesAdicionais, it.Quantidade,
			it.PrecoUnitario, it.Adicionais, it.Total(), detalhes); err != nil {
			log.Error().Err(err).Str("numero", o.Numero).Int("item", it.ID).Msg("Erro ao inserir item")
			return fmt.Errorf("erro ao inserir item %d: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao confirmar transação: %w", err)
	}
	return nil
}

// BuscarPorNumero retorna o orçamento com seus itens
func (r *OrcamentoRepository) BuscarPorNumero(ctx context.Context, numero string) (*orcamento.Orcamento, error) {
	o := &orcamento.Orcamento{}
	err := r.db.QueryRowContext(ctx, `
		SELECT numero, empresa, email, COALESCE(telefone, ''), COALESCE(contato, ''),
			percentual_sesi, criado_em
		FROM orcamentos
		WHERE numero = $1
	`, numero).Scan(&o.Numero, &o.Empresa, &o.Email, &o.Telefone, &o.Contato,
		&o.PercentualSESI, &o.CriadoEm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrOrcamentoNaoEncontrado, numero)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar orçamento: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT posicao, servico, regiao, COALESCE(variavel, ''), COALESCE(grau_risco, ''),
			COALESCE(faixa, ''), num_ges_ghe, num_avaliacoes_adicionais, quantidade,
			preco_unitario, adicionais, detalhes
		FROM itens_orcamento
		WHERE numero_orcamento = $1
		ORDER BY posicao
	`, numero)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar itens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it orcamento.Item
		var detalhesJSON []byte
		if err := rows.Scan(&it.ID, &it.Servico, &it.Regiao, &it.Variavel, &it.GrauRisco,
			&it.Faixa, &it.NumGesGhe, &it.NumAvaliacoesAdicionais, &it.Quantidade,
			&it.PrecoUnitario, &it.Adicionais, &detalhesJSON); err != nil {
			return nil, fmt.Errorf("erro ao ler item: %w", err)
		}

		if len(detalhesJSON) > 0 {
			var d detalhesItem
			if err := json.Unmarshal(detalhesJSON, &d); err != nil {
				return nil, fmt.Errorf("erro ao deserializar detalhes: %w", err)
			}
			it.Laboratorio = d.Laboratorio
			it.DistanciaKm = d.DistanciaKm
			it.DiasColeta = d.DiasColeta
			it.Detalhes = d.Observacao
		}
		o.Adicionar(it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// Listar retorna os orçamentos mais recentes primeiro
func (r *OrcamentoRepository) Listar(ctx context.Context, limite int) ([]orcamento.Resumo, error) {
	if limite <= 0 {
		limite = LimitePadrao
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.numero, o.empresa, o.email, o.total, o.criado_em,
			(SELECT COUNT(*) FROM itens_orcamento i WHERE i.numero_orcamento = o.numero)
		FROM orcamentos o
		ORDER BY o.criado_em DESC, o.numero DESC
		LIMIT $1
	`, limite)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar orçamentos: %w", err)
	}
	defer rows.Close()

	var resumos []orcamento.Resumo
	for rows.Next() {
		var res orcamento.Resumo
		if err := rows.Scan(&res.Numero, &res.Empresa, &res.Email, &res.Total, &res.CriadoEm, &res.Itens); err != nil {
			return nil, fmt.Errorf("erro ao ler orçamento: %w", err)
		}
		resumos = append(resumos, res)
	}
	return resumos, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/tabela"
	"github.com/lib/pq"
)

// PrecoRepository mantém a tabela de preços no PostgreSQL
type PrecoRepository struct {
	db *sql.DB
}

// NewPrecoRepository cria um novo repositório de preços
func NewPrecoRepository(db *sql.DB) *PrecoRepository {
	return &PrecoRepository{db: db}
}

// Substituir troca todas as linhas de preço numa transação
func (r *PrecoRepository) Substituir(ctx context.Context, c tabela.Conteudo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM precos_pgr"); err != nil {
		return fmt.Errorf("erro ao limpar precos_pgr: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM precos_ambientais"); err != nil {
		return fmt.Errorf("erro ao limpar precos_ambientais: %w", err)
	}

	err = copiar(ctx, tx, pq.CopyIn("precos_pgr", "servico", "regiao", "grau_risco", "num_trabalhadores", "preco"),
		len(c.PGR), func(i int) []interface{} {
			l := c.PGR[i]
			return []interface{}{l.Servico, l.Regiao, l.GrauRisco, l.Faixa, l.Preco}
		})
	if err != nil {
		return fmt.Errorf("erro ao copiar precos_pgr: %w", err)
	}

	err = copiar(ctx, tx, pq.CopyIn("precos_ambientais", "servico", "tipo_avaliacao", "adicional_ges_ghe", "regiao", "preco"),
		len(c.Ambiental), func(i int) []interface{} {
			l := c.Ambiental[i]
			return []interface{}{l.Servico, l.TipoAvaliacao, l.AdicionalGesGhe, l.Regiao, l.Preco}
		})
	if err != nil {
		return fmt.Errorf("erro ao copiar precos_ambientais: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao confirmar transação: %w", err)
	}

	logger.Get(ctx).Info().
		Int("pgr", len(c.PGR)).
		Int("ambientais", len(c.Ambiental)).
		Msg("Tabela de preços gravada no banco")
	return nil
}

func copiar(ctx context.Context, tx *sql.Tx, query string, n int, linha func(int) []interface{}) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, linha(i)...); err != nil {
			return err
		}
	}
	// Exec sem argumentos encerra o COPY
	_, err = stmt.ExecContext(ctx)
	return err
}

// Carregar lê a tabela de preços gravada
func (r *PrecoRepository) Carregar(ctx context.Context) (tabela.Conteudo, error) {
	var c tabela.Conteudo

	rows, err := r.db.QueryContext(ctx, `
		SELECT servico, regiao, grau_risco, num_trabalhadores, preco
		FROM precos_pgr ORDER BY id
	`)
	if err != nil {
		return c, fmt.Errorf("erro ao ler precos_pgr: %w", err)
	}
	for rows.Next() {
		var l tabela.LinhaPGR
		if err := rows.Scan(&l.Servico, &l.Regiao, &l.GrauRisco, &l.Faixa, &l.Preco); err != nil {
			rows.Close()
			return c, fmt.Errorf("erro ao ler linha de PGR: %w", err)
		}
		c.PGR = append(c.PGR, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return c, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT servico, tipo_avaliacao, adicional_ges_ghe, regiao, preco
		FROM precos_ambientais ORDER BY id
	`)
	if err != nil {
		return c, fmt.Errorf("erro ao ler precos_ambientais: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l tabela.LinhaAmbiental
		if err := rows.Scan(&l.Servico, &l.TipoAvaliacao, &l.AdicionalGesGhe, &l.Regiao, &l.Preco); err != nil {
			return c, fmt.Errorf("erro ao ler linha ambiental: %w", err)
		}
		c.Ambiental = append(c.Ambiental, l)
	}
	return c, rows.Err()
}

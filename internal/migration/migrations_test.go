package migration

import (
	"strings"
	"testing"
)

func TestMigracoesOrdenadasEUnicas(t *testing.T) {
	m := NewMigrator(nil)

	vistas := map[int]bool{}
	anterior := 0
	for _, mig := range m.migrations {
		if vistas[mig.Version] {
			t.Errorf("versão %d repetida", mig.Version)
		}
		vistas[mig.Version] = true
		if mig.Version <= anterior {
			t.Errorf("migração %d fora de ordem", mig.Version)
		}
		anterior = mig.Version

		if strings.TrimSpace(mig.Up) == "" || strings.TrimSpace(mig.Down) == "" {
			t.Errorf("migração %d sem Up ou Down", mig.Version)
		}
	}

	for _, tabela := range []string{"orcamentos", "itens_orcamento", "precos_pgr", "precos_ambientais"} {
		encontrada := false
		for _, mig := range m.migrations {
			if strings.Contains(mig.Up, "CREATE TABLE "+tabela+" ") {
				encontrada = true
			}
		}
		if !encontrada {
			t.Errorf("tabela %s não é criada por nenhuma migração", tabela)
		}
	}
}

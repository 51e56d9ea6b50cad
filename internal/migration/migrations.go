package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_orcamentos",
			Up: `
				CREATE TABLE orcamentos (
					numero VARCHAR(32) PRIMARY KEY,
					empresa VARCHAR(500) NOT NULL,
					email VARCHAR(320) NOT NULL,
					telefone VARCHAR(100),
					contato VARCHAR(500),
					percentual_sesi NUMERIC(5,2) NOT NULL,
					subtotal NUMERIC(14,2) NOT NULL,
					valor_sesi NUMERIC(14,2) NOT NULL,
					total NUMERIC(14,2) NOT NULL,
					criado_em TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE itens_orcamento (
					id SERIAL PRIMARY KEY,
					numero_orcamento VARCHAR(32) NOT NULL REFERENCES orcamentos(numero) ON DELETE CASCADE,
					posicao INTEGER NOT NULL,
					servico VARCHAR(500) NOT NULL,
					regiao VARCHAR(100) NOT NULL,
					variavel VARCHAR(255),
					grau_risco VARCHAR(20),
					faixa VARCHAR(50),
					num_ges_ghe INTEGER NOT NULL DEFAULT 0,
					num_avaliacoes_adicionais INTEGER NOT NULL DEFAULT 0,
					quantidade INTEGER NOT NULL CHECK (quantidade > 0),
					preco_unitario NUMERIC(14,2) NOT NULL,
					adicionais NUMERIC(14,2) NOT NULL DEFAULT 0,
					valor NUMERIC(14,2) NOT NULL,
					detalhes JSONB
				);

				CREATE INDEX idx_itens_orcamento_numero ON itens_orcamento(numero_orcamento);
				CREATE INDEX idx_orcamentos_criado_em ON orcamentos(criado_em DESC);
			`,
			Down: `
				DROP TABLE IF EXISTS itens_orcamento;
				DROP TABLE IF EXISTS orcamentos;
			`,
		},
		{
			Version: 2,
			Name:    "create_tabelas_precos",
			Up: `
				CREATE TABLE precos_pgr (
					id SERIAL PRIMARY KEY,
					servico VARCHAR(500) NOT NULL,
					regiao VARCHAR(100) NOT NULL,
					grau_risco VARCHAR(20) NOT NULL,
					num_trabalhadores VARCHAR(50) NOT NULL,
					preco NUMERIC(14,2) NOT NULL CHECK (preco >= 0)
				);

				CREATE TABLE precos_ambientais (
					id SERIAL PRIMARY KEY,
					servico VARCHAR(500) NOT NULL,
					tipo_avaliacao VARCHAR(255) NOT NULL,
					adicional_ges_ghe NUMERIC(14,2) NOT NULL DEFAULT 0,
					regiao VARCHAR(100) NOT NULL,
					preco NUMERIC(14,2) NOT NULL CHECK (preco >= 0)
				);

				CREATE INDEX idx_precos_pgr_servico ON precos_pgr(servico);
				CREATE INDEX idx_precos_ambientais_servico ON precos_ambientais(servico);
			`,
			Down: `
				DROP TABLE IF EXISTS precos_ambientais;
				DROP TABLE IF EXISTS precos_pgr;
			`,
		},
	}
}

package tabela

// Lacuna é uma combinação sem preço definido na tabela
type Lacuna struct {
	Categoria     Categoria `json:"categoria"`
	Servico       string    `json:"servico"`
	Regiao        string    `json:"regiao"`
	GrauRisco     string    `json:"grau_risco,omitempty"`
	Faixa         string    `json:"num_trabalhadores,omitempty"`
	TipoAvaliacao string    `json:"tipo_avaliacao,omitempty"`
}

// Auditar cruza os valores distintos de cada coluna e retorna as combinações
// sem linha de preço. Serviços ambientais são cruzados com todos os tipos e
// regiões da tabela ambiental; PGR com todos os graus, faixas e regiões da tabela de PGR.
func (t *Tabela) Auditar() []Lacuna {
	lacunas := []Lacuna{}

	servicos, graus, faixas, regioes := map[string]string{}, map[string]string{}, map[string]string{}, map[string]string{}
	for k, l := range t.pgr {
		servicos[k.servico] = l.Servico
		graus[k.grau] = l.GrauRisco
		faixas[k.faixa] = l.Faixa
		regioes[k.regiao] = l.Regiao
	}
	for _, s := range chavesOrdenadas(servicos) {
		for _, g := range chavesOrdenadas(graus) {
			for _, f := range chavesOrdenadas(faixas) {
				for _, r := range chavesOrdenadas(regioes) {
					if _, ok := t.pgr[chavePGR{s, r, g, f}]; ok {
						continue
					}
					lacunas = append(lacunas, Lacuna{
						Categoria: CategoriaPGR,
						Servico:   servicos[s],
						Regiao:    regioes[r],
						GrauRisco: graus[g],
						Faixa:     faixas[f],
					})
				}
			}
		}
	}

	servicos, tipos, regioes := map[string]string{}, map[string]string{}, map[string]string{}
	for k, l := range t.amb {
		servicos[k.servico] = l.Servico
		tipos[k.tipo] = l.TipoAvaliacao
		regioes[k.regiao] = l.Regiao
	}
	for _, s := range chavesOrdenadas(servicos) {
		for _, tp := range chavesOrdenadas(tipos) {
			for _, r := range chavesOrdenadas(regioes) {
				if _, ok := t.amb[chaveAmbiental{s, tp, r}]; ok {
					continue
				}
				lacunas = append(lacunas, Lacuna{
					Categoria:     CategoriaAmbiental,
					Servico:       servicos[s],
					Regiao:        regioes[r],
					TipoAvaliacao: tipos[tp],
				})
			}
		}
	}

	return lacunas
}

func chavesOrdenadas(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	ordenar(out)
	return out
}

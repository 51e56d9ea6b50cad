package metrics

import (
	"context"
	"testing"
)

func TestSnapshot(t *testing.T) {
	m := New()

	m.IncrementRequests(true, 10)
	m.IncrementRequests(false, 30)
	m.IncrementPriceLookup(LookupOK)
	m.IncrementPriceLookup(LookupMiss)
	m.IncrementPriceLookup(LookupIncomplete)
	m.IncrementQuote(true)
	m.IncrementEvent(false)
	m.RecordTableReload(true, 42)
	m.RecordTableReload(false, 0)
	m.TrackEndpoint("/orcamentos/calcular_preco", "POST", 200, 5)
	m.TrackEndpoint("/orcamentos/calcular_preco", "POST", 400, 15)

	s := m.Snapshot()
	if s.Requests.Total != 2 || s.Requests.AvgLatencyMs != 20 {
		t.Errorf("requests = %+v", s.Requests)
	}
	if s.Precos.Consultas != 3 || s.Precos.SemPreco != 1 || s.Precos.Incompletas != 1 {
		t.Errorf("precos = %+v", s.Precos)
	}
	if s.Orcamentos.Gerados != 1 || s.Orcamentos.EventosComFalha != 1 {
		t.Errorf("orcamentos = %+v", s.Orcamentos)
	}
	// recarga com falha mantém a contagem anterior de linhas
	if s.Tabela.Recargas != 2 || s.Tabela.ErrosRecarga != 1 || s.Tabela.Linhas != 42 {
		t.Errorf("tabela = %+v", s.Tabela)
	}

	ep := s.Endpoints["POST /orcamentos/calcular_preco"]
	if ep.Requests != 2 || ep.ErrorRate != 50 || ep.AvgLatencyMs != 10 {
		t.Errorf("endpoint = %+v", ep)
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		components map[string]HealthStatus
		want       string
	}{
		{map[string]HealthStatus{"a": {Status: StatusHealthy}}, StatusHealthy},
		{map[string]HealthStatus{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}}, StatusDegraded},
		{map[string]HealthStatus{"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		if got := DetermineOverallStatus(tt.components); got != tt.want {
			t.Errorf("DetermineOverallStatus(%v) = %s, esperado %s", tt.components, got, tt.want)
		}
	}

	if CheckTabelaHealth(0).Status != StatusUnhealthy || CheckTabelaHealth(3).Status != StatusHealthy {
		t.Error("CheckTabelaHealth")
	}
	if CheckDatabaseHealth(context.Background(), nil).Status != StatusUnhealthy {
		t.Error("CheckDatabaseHealth sem conexão deveria ser unhealthy")
	}
}

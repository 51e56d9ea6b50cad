package model

import "errors"

var (
	// ErrServicoNaoEncontrado indica serviço ausente da tabela de preços
	ErrServicoNaoEncontrado = errors.New("serviço não encontrado na tabela de preços")

	// ErrSelecaoIncompleta indica que um parâmetro obrigatório não foi selecionado
	ErrSelecaoIncompleta = errors.New("seleção incompleta")

	// ErrPrecoNaoEncontrado indica combinação sem preço tabelado
	ErrPrecoNaoEncontrado = errors.New("nenhum preço encontrado para a combinação informada")

	// ErrRegiaoInvalida indica região fora da lista conhecida
	ErrRegiaoInvalida = errors.New("região inválida")

	// ErrQuantidadeInvalida indica quantidade ou contagem fora do intervalo
	ErrQuantidadeInvalida = errors.New("quantidade inválida")

	// ErrDadosIncompletos indica orçamento sem os dados mínimos
	ErrDadosIncompletos = errors.New("dados incompletos para gerar orçamento")

	// ErrOrcamentoNaoEncontrado indica número de orçamento desconhecido
	ErrOrcamentoNaoEncontrado = errors.New("orçamento não encontrado")

	// ErrTabelaVazia indica que nenhuma linha de preço foi carregada
	ErrTabelaVazia = errors.New("tabela de preços vazia")

	// ErrRespostaInvalida indica resposta inválida da API de preços
	ErrRespostaInvalida = errors.New("resposta inválida da API de preços")
)

// Package cache implementa um cache em memória com expiração por TTL.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Cache guarda valores do tipo V por chave, com expiração
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]item[V]
	ttl      time.Duration
	hits     atomic.Int64
	misses   atomic.Int64
	stopOnce sync.Once
	stopChan chan struct{}
}

type item[V any] struct {
	valor    V
	expiraEm time.Time
}

// Stats resume o uso do cache
type Stats struct {
	Itens       int     `json:"itens"`
	Acertos     int64   `json:"acertos"`
	Falhas      int64   `json:"falhas"`
	TTLSegundos float64 `json:"ttl_segundos"`
}

// New cria o cache e inicia a limpeza periódica dos itens expirados
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:    make(map[string]item[V]),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go c.limpeza(intervaloLimpeza(ttl))
	return c
}

func intervaloLimpeza(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > time.Minute {
		return time.Minute
	}
	return ttl
}

// Get retorna o valor se presente e não expirado
func (c *Cache[V]) Get(chave string) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[chave]
	c.mu.RUnlock()

	if !ok || time.Now().After(it.expiraEm) {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return it.valor, true
}

// Set guarda o valor com o TTL padrão
func (c *Cache[V]) Set(chave string, valor V) {
	c.SetWithTTL(chave, valor, c.ttl)
}

// SetWithTTL guarda o valor com TTL específico
func (c *Cache[V]) SetWithTTL(chave string, valor V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[chave] = item[V]{valor: valor, expiraEm: time.Now().Add(ttl)}
}

// Delete remove a chave
func (c *Cache[V]) Delete(chave string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, chave)
}

// Clear remove todos os itens
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item[V])
}

// InvalidatePrefix remove as chaves com o prefixo informado
func (c *Cache[V]) InvalidatePrefix(prefixo string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefixo) {
			delete(c.items, k)
		}
	}
}

// Size retorna a quantidade de itens, incluindo expirados ainda não limpos
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats retorna as estatísticas de uso
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Itens:       c.Size(),
		Acertos:     c.hits.Load(),
		Falhas:      c.misses.Load(),
		TTLSegundos: c.ttl.Seconds(),
	}
}

func (c *Cache[V]) limpeza(intervalo time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removerExpirados()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Cache[V]) removerExpirados() {
	c.mu.Lock()
	defer c.mu.Unlock()

	agora := time.Now()
	for k, it := range c.items {
		if agora.After(it.expiraEm) {
			delete(c.items, k)
		}
	}
}

// Stop encerra a limpeza periódica
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

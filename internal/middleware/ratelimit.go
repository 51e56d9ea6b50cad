package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter mantém um limitador por IP de origem
type RateLimiter struct {
	mu       sync.Mutex
	porIP    map[string]*visitante
	limite   rate.Limit
	rajada   int
	expiraEm time.Duration
}

type visitante struct {
	limiter *rate.Limiter
	visto   time.Time
}

// NewRateLimiter cria um limitador de perMinute requisições por minuto por IP
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 600
	}
	rajada := perMinute / 10
	if rajada < 10 {
		rajada = 10
	}
	return &RateLimiter{
		porIP:    make(map[string]*visitante),
		limite:   rate.Every(time.Minute / time.Duration(perMinute)),
		rajada:   rajada,
		expiraEm: 10 * time.Minute,
	}
}

// Allow informa se o IP ainda tem cota
func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	agora := time.Now()
	v, ok := r.porIP[ip]
	if !ok {
		v = &visitante{limiter: rate.NewLimiter(r.limite, r.rajada)}
		r.porIP[ip] = v
	}
	v.visto = agora

	// descarta IPs inativos a cada novo visitante
	if !ok {
		for k, outro := range r.porIP {
			if agora.Sub(outro.visto) > r.expiraEm {
				delete(r.porIP, k)
			}
		}
	}

	return v.limiter.Allow()
}

// Middleware retorna 429 quando o IP excede a cota
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			metrics.Get().IncrementRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Success: false,
				Error:   "muitas requisições, tente novamente em instantes",
			})
			return
		}
		c.Next()
	}
}

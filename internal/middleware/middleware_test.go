package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func novoRouterAdmin(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	admin := router.Group("/admin", AdminAuth(cfg))
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	return router
}

func TestAdminAuth(t *testing.T) {
	hash, err := HashPassword("segredo123")
	if err != nil {
		t.Fatalf("erro ao gerar hash: %v", err)
	}
	router := novoRouterAdmin(AuthConfig{
		TokenAPI: "tok",
		Users:    map[string]string{"admin": hash},
	})

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"sem header", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer válido", func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") }, http.StatusOK},
		{"bearer inválido", func(r *http.Request) { r.Header.Set("Authorization", "Bearer outro") }, http.StatusUnauthorized},
		{"basic válido", func(r *http.Request) { r.SetBasicAuth("admin", "segredo123") }, http.StatusOK},
		{"basic senha errada", func(r *http.Request) { r.SetBasicAuth("admin", "errada") }, http.StatusUnauthorized},
		{"basic usuário desconhecido", func(r *http.Request) { r.SetBasicAuth("root", "segredo123") }, http.StatusUnauthorized},
		{"esquema desconhecido", func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, esperado %d", w.Code, tt.status)
			}
			if w.Code == http.StatusUnauthorized {
				var resp model.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Success || resp.Error == "" {
					t.Errorf("corpo de erro inesperado: %s", w.Body.String())
				}
			}
		})
	}
}

// Para qualquer senha, o hash bcrypt valida a própria senha e rejeita outra
func TestPasswordHashRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 5 // bcrypt é lento
	properties := gopter.NewProperties(parameters)

	properties.Property("hash valida apenas a senha original", prop.ForAll(
		func(senha string) bool {
			hash, err := HashPassword(senha)
			if err != nil {
				return false
			}
			cfg := AuthConfig{Users: map[string]string{"admin": hash}}
			return cfg.ValidateCredentials("admin", senha) && !cfg.ValidateCredentials("admin", senha+"x")
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) < 50 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(60) // rajada mínima de 10
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	bloqueadas := 0
	for i := 0; i < 15; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			bloqueadas++
		}
	}
	if bloqueadas == 0 {
		t.Error("nenhuma requisição foi limitada")
	}

	// outro IP tem cota própria
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d para IP novo", w.Code)
	}
}

func TestSanitizeOrcamento(t *testing.T) {
	req := model.OrcamentoRequest{
		Empresa: "  A&B <Serviços>\x00 Ltda ",
		Email:   " compras@acme.com ",
		Servicos: []model.ItemRequest{
			{Detalhes: "linha\u0007 com controle"},
		},
	}
	SanitizeOrcamento(&req)

	// sem escape de HTML: o JSON devolve o nome como foi digitado
	if req.Empresa != "A&B <Serviços> Ltda" {
		t.Errorf("empresa = %q", req.Empresa)
	}
	if req.Email != "compras@acme.com" {
		t.Errorf("email = %q", req.Email)
	}
	if req.Servicos[0].Detalhes != "linha com controle" {
		t.Errorf("detalhes = %q", req.Servicos[0].Detalhes)
	}

	longo := SanitizeString(strings.Repeat("á", 600), DefaultSanitizeConfig())
	if len([]rune(longo)) != 500 {
		t.Errorf("texto não foi truncado: %d", len([]rune(longo)))
	}
}

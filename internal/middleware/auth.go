package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig contém as credenciais aceitas nas rotas administrativas
type AuthConfig struct {
	TokenAPI string
	// Users mapeia usuário -> hash bcrypt; vazio desabilita o login por senha
	Users map[string]string
}

// AdminAuth aceita "Authorization: Bearer {TOKEN_API}" ou, quando há
// usuários configurados, "Authorization: Basic" com senha bcrypt
func AdminAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			negar(c, "header Authorization ausente")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 {
			negar(c, "formato inválido, esperado: Bearer {token}")
			return
		}

		switch strings.ToLower(parts[0]) {
		case "bearer":
			if cfg.TokenAPI == "" || subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.TokenAPI)) != 1 {
				negar(c, "token inválido")
				return
			}
			c.Set("username", "token")
		case "basic":
			usuario, senha, ok := c.Request.BasicAuth()
			if !ok || !cfg.ValidateCredentials(usuario, senha) {
				negar(c, "credenciais inválidas")
				return
			}
			c.Set("username", usuario)
			c.Request = c.Request.WithContext(logger.WithUsername(c.Request.Context(), usuario))
		default:
			negar(c, "formato inválido, esperado: Bearer {token}")
			return
		}

		c.Next()
	}
}

// ValidateCredentials confere usuário e senha contra o hash bcrypt
func (cfg AuthConfig) ValidateCredentials(usuario, senha string) bool {
	hash, ok := cfg.Users[usuario]
	if !ok || usuario == "" {
		return false
	}
	return CheckPassword(senha, hash)
}

// HashPassword gera o hash bcrypt da senha
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compara a senha com o hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func negar(c *gin.Context, motivo string) {
	metrics.Get().IncrementAdminAuthFailure()
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionAdminLoginFailed,
		Resource: "admin",
		ClientIP: c.ClientIP(),
		Path:     c.Request.URL.Path,
		Success:  false,
		Error:    motivo,
	})
	c.Header("WWW-Authenticate", `Basic realm="orcamentos-admin"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Success: false,
		Error:   motivo,
	})
}

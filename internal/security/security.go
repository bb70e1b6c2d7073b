package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxIdentifierLength int           `yaml:"max_identifier_length"`
	MaxTextLength       int           `yaml:"max_text_length"`
	AllowedOrigins      []string      `yaml:"allowed_origins"`
	TrustedProxies      []string      `yaml:"trusted_proxies"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	EnableHSTS          bool          `yaml:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxIdentifierLength: 200,
		MaxTextLength:       20000,
		AllowedOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
		TrustedProxies:      []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout:      30 * time.Second,
	}
}

// SecurityMiddleware bundles request validation and hardening middleware
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	defaults := DefaultSecurityConfig()
	if config.MaxIdentifierLength <= 0 {
		config.MaxIdentifierLength = defaults.MaxIdentifierLength
	}
	if config.MaxTextLength <= 0 {
		config.MaxTextLength = defaults.MaxTextLength
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	return &SecurityMiddleware{config: config}
}

// Config returns the effective configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateIdentifier rejects registry identifiers that cannot be safely
// placed into a registry URL. It does not decide which registry applies.
func (sm *SecurityMiddleware) ValidateIdentifier(input string) error {
	if len(input) > sm.config.MaxIdentifierLength {
		return fmt.Errorf("identifier exceeds maximum length of %d characters", sm.config.MaxIdentifierLength)
	}
	return validateText(input)
}

// MaxDescriptionLength bounds markdown descriptions in bytes. Registry
// READMEs are read up to the same size, so an ingested description is
// always accepted on submission.
const MaxDescriptionLength = 1 << 20

// ValidateDescription checks a markdown description. It is held to
// MaxDescriptionLength rather than the single-field text limit.
func (sm *SecurityMiddleware) ValidateDescription(field, input string) error {
	if len(input) > MaxDescriptionLength {
		return fmt.Errorf("%s exceeds maximum length of %d bytes", field, MaxDescriptionLength)
	}
	if err := validateText(input); err != nil {
		return fmt.Errorf("%s %w", field, err)
	}
	return nil
}

// SanitizeDescription makes registry text acceptable to ValidateDescription:
// invalid UTF-8 and control characters other than newlines and tabs are
// dropped, and the result is cut to MaxDescriptionLength on a rune boundary.
func SanitizeDescription(input string) string {
	input = strings.ToValidUTF8(input, "")
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, input)

	if len(input) <= MaxDescriptionLength {
		return input
	}
	cut := MaxDescriptionLength
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}

// ValidateText checks free-form submission text
func (sm *SecurityMiddleware) ValidateText(field, input string) error {
	if len(input) > sm.config.MaxTextLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", field, sm.config.MaxTextLength)
	}
	if err := validateText(input); err != nil {
		return fmt.Errorf("%s %w", field, err)
	}
	return nil
}

func validateText(input string) error {
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("contains invalid characters")
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("contains invalid UTF-8 encoding")
	}
	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("contains control characters")
		}
	}
	return nil
}

var modelIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(/[A-Za-z0-9][A-Za-z0-9._-]*)?$`)

// ValidModelID reports whether id is a path-safe Hugging Face model id
// ("gpt2" or "owner/name")
func ValidModelID(id string) bool {
	return modelIDPattern.MatchString(id) && !strings.Contains(id, "..")
}

var (
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizeLine strips markup and collapses whitespace in single-line fields
// such as names and taglines
func SanitizeLine(input string) string {
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = spacePattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// SecurityHeaders adds security headers to all responses. The swagger UI
// needs inline scripts so it is exempt from the strict CSP.
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

	if !strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	}

	if sm.config.EnableHSTS || c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// ValidateContentType rejects bodies that are not JSON
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if c.Request.ContentLength != 0 && contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		appErr := errors.NewValidationError("unsupported content type", contentType)
		appErr.HTTPStatus = http.StatusUnsupportedMediaType
		errors.Abort(c, appErr)
		return
	}

	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS returns the gin-contrib/cors middleware for the configured origins
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     sm.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// cors.New panics on an empty allow-list
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}

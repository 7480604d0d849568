package middleware

import (
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
)

// CORSEnv maps environment variable names for CORS configuration.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// Finalize applies defaults and loads environment overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	c.loadEnv(env)
	return nil
}

// Merge applies values from overlay configuration, including boolean and array fields.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = 300
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	if env == nil {
		return
	}
	if v := os.Getenv(env.Enabled); v != "" {
		c.Enabled = v == "true"
	}
	if v := os.Getenv(env.Origins); v != "" {
		c.Origins = strings.Split(v, ",")
	}
	if v := os.Getenv(env.AllowedMethods); v != "" {
		c.AllowedMethods = strings.Split(v, ",")
	}
	if v := os.Getenv(env.AllowedHeaders); v != "" {
		c.AllowedHeaders = strings.Split(v, ",")
	}
	if v := os.Getenv(env.AllowCredentials); v != "" {
		c.AllowCredentials = v == "true"
	}
	if v := os.Getenv(env.MaxAge); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAge = n
		}
	}
}

// CORS returns middleware applying the given CORS configuration.
// Disabled configurations pass requests through untouched.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(cfg.Origins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

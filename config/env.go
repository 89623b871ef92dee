package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL     = "http://localhost:5000/api"
	defaultStateDriver    = "local"
	defaultStateDir       = ".bookstore"
	defaultDatabaseDriver = "sqlite"
	defaultSQLiteDSN      = "bookstore.db"
	defaultRedisAddr      = "localhost:6379"
	defaultAppKey         = "change-me-in-production"
	defaultAppPort        = "8080"
	defaultAppEnv         = "local"
	defaultGeocoderURL    = "https://nominatim.openstreetmap.org"
)

// googleClientID is the federated-login client identifier baked in at build time:
//
//	go build -ldflags "-X github.com/shashiranjanraj/bookstore/config.googleClientID=xyz.apps.googleusercontent.com"
var googleClientID = ""

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, .env and the process environment over the
// built-in defaults. Later sources win. Safe to call many times.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL": defaultAPIBaseURL,
		"STATE_DRIVER": defaultStateDriver,
		"STATE_DIR":    defaultStateDir,
		"DB_DRIVER":    defaultDatabaseDriver,
		"DATABASE_DSN": "",
		"REDIS_ADDR":   defaultRedisAddr,
		"APP_KEY":      defaultAppKey,
		"APP_PORT":     defaultAppPort,
		"APP_ENV":      defaultAppEnv,
		"GEOCODER_URL": defaultGeocoderURL,
	}
}

func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

// GoogleClientID returns the build-time client id unless GOOGLE_CLIENT_ID overrides it.
func GoogleClientID() string {
	_ = Load()
	return get("GOOGLE_CLIENT_ID", googleClientID)
}

// StateDriver names the storage driver holding the session user and cart.
func StateDriver() string {
	_ = Load()

	driver := strings.ToLower(get("STATE_DRIVER", defaultStateDriver))
	switch driver {
	case "memory", "local", "redis", "sql":
		return driver
	default:
		return defaultStateDriver
	}
}

func StateDir() string {
	_ = Load()
	return get("STATE_DIR", defaultStateDir)
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func DatabaseDSN() string {
	_ = Load()
	if dsn := get("DATABASE_DSN", ""); dsn != "" {
		return dsn
	}
	return defaultSQLiteDSN
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// AppKey seeds the key used to seal the persisted HTTP cookies.
func AppKey() string {
	_ = Load()
	return get("APP_KEY", defaultAppKey)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func GeocoderURL() string {
	_ = Load()
	return strings.TrimRight(get("GEOCODER_URL", defaultGeocoderURL), "/")
}

// CORSOrigins lists the origins allowed to call the storefront with
// credentials, from the comma-separated CORS_ORIGINS.
func CORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TrustedProxies lists the CIDRs or addresses of reverse proxies whose
// X-Forwarded-For is believed, from the comma-separated TRUSTED_PROXIES.
func TrustedProxies() []string {
	_ = Load()
	var out []string
	for _, p := range strings.Split(get("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RateLimitPerMinute is the storefront allowance per client IP.
func RateLimitPerMinute() int {
	_ = Load()
	n, err := strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "200"))
	if err != nil || n <= 0 {
		return 200
	}
	return n
}

func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Object storage (payment proofs / covers referenced as s3://bucket/key) ────

func S3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func S3Key() string      { _ = Load(); return get("S3_KEY", "") }
func S3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func S3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

// mergeEnviron lets real environment variables override file values for the
// keys this package knows about.
func mergeEnviron(out map[string]string) {
	keys := make([]string, 0, len(out)+8)
	for k := range out {
		keys = append(keys, k)
	}
	keys = append(keys, "GOOGLE_CLIENT_ID", "REDIS_PASSWORD", "LOG_MONGO_URI",
		"S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT", "MAX_BODY_BYTES",
		"CORS_ORIGINS", "TRUSTED_PROXIES", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL")

	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key for the rest of the process. Tests and CLI flags use it.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "bharatid/pkg/platform/strings"
)

// Development defaults. Both must be overridden outside local runs.
const (
	DevSigningKey       = "dev-secret-key-change-in-production"
	DevEncryptionSecret = "dev-encryption-secret-change-in-production"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
// Values from the file are applied first; environment variables win.
const ConfigFileEnv = "BHARATID_CONFIG"

type Config struct {
	Server    Server      `yaml:"server"`
	Auth      Auth        `yaml:"auth"`
	Database  Database    `yaml:"database"`
	Redis     RedisConfig `yaml:"redis"`
	Storage   Storage     `yaml:"storage"`
	Audit     Audit       `yaml:"audit"`
	RateLimit RateLimit   `yaml:"rate_limit"`
	Log       Log         `yaml:"log"`
	Portal    Portal      `yaml:"portal"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `yaml:"addr"`
	MetricsAddr       string        `yaml:"metrics_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type Auth struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	Issuer        string        `yaml:"issuer"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	Admin         AdminSeed     `yaml:"admin"`
}

// AdminSeed describes the administrator account created at startup. Seeding is
// skipped when Email is empty.
type AdminSeed struct {
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email"`
	Aadhaar  string `yaml:"aadhaar"`
	Password string `yaml:"password"`
}

// Database is the Postgres connection. An empty URL selects in-memory stores.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig is the Redis connection. An empty URL selects the in-memory
// revocation list.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

const (
	StorageMemory = "memory"
	StorageLocal  = "local"
	StorageS3     = "s3"
)

type Storage struct {
	Backend          string `yaml:"backend"`
	LocalDir         string `yaml:"local_dir"`
	EncryptionSecret string `yaml:"encryption_secret"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
	S3               S3     `yaml:"s3"`
}

type S3 struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Audit configures the optional Kafka sink. No brokers means events stay in the
// local store only.
type Audit struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	BufferSize   int      `yaml:"buffer_size"`
}

type RateLimit struct {
	LoginPerMinute float64 `yaml:"login_per_minute"`
	LoginBurst     int     `yaml:"login_burst"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Portal configures the command line client.
type Portal struct {
	BaseURL        string        `yaml:"base_url"`
	CredentialFile string        `yaml:"credential_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			MetricsAddr:       ":9090",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Auth: Auth{
			JWTSigningKey: DevSigningKey,
			Issuer:        "bharatid",
			TokenTTL:      60 * time.Minute,
		},
		Database: Database{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Storage: Storage{
			Backend:          StorageMemory,
			LocalDir:         "uploads",
			EncryptionSecret: DevEncryptionSecret,
			MaxUploadBytes:   10 << 20,
			S3:               S3{Region: "ap-south-1"},
		},
		Audit: Audit{
			KafkaTopic: "bharatid.audit",
			BufferSize: 1024,
		},
		RateLimit: RateLimit{
			LoginPerMinute: 10,
			LoginBurst:     5,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Portal: Portal{
			BaseURL:        "http://localhost:8080",
			RequestTimeout: 15 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// environment variables, in that order.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(ConfigFileEnv); ok && path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	env := envReader{lookup: lookup}
	env.str("BHARATID_ADDR", &cfg.Server.Addr)
	env.str("BHARATID_METRICS_ADDR", &cfg.Server.MetricsAddr)
	env.duration("BHARATID_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	env.str("JWT_SIGNING_KEY", &cfg.Auth.JWTSigningKey)
	env.str("JWT_ISSUER", &cfg.Auth.Issuer)
	env.duration("TOKEN_TTL", &cfg.Auth.TokenTTL)
	env.str("ADMIN_FULL_NAME", &cfg.Auth.Admin.FullName)
	env.str("ADMIN_EMAIL", &cfg.Auth.Admin.Email)
	env.str("ADMIN_AADHAAR", &cfg.Auth.Admin.Aadhaar)
	env.str("ADMIN_PASSWORD", &cfg.Auth.Admin.Password)

	env.str("DATABASE_URL", &cfg.Database.URL)
	env.str("REDIS_URL", &cfg.Redis.URL)

	env.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	env.str("STORAGE_DIR", &cfg.Storage.LocalDir)
	env.str("ENCRYPTION_SECRET", &cfg.Storage.EncryptionSecret)
	env.int64("MAX_UPLOAD_BYTES", &cfg.Storage.MaxUploadBytes)
	env.str("S3_BUCKET", &cfg.Storage.S3.Bucket)
	env.str("S3_REGION", &cfg.Storage.S3.Region)
	env.str("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	env.str("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	env.str("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	env.boolean("S3_USE_PATH_STYLE", &cfg.Storage.S3.UsePathStyle)

	env.list("KAFKA_BROKERS", &cfg.Audit.KafkaBrokers)
	env.str("KAFKA_AUDIT_TOPIC", &cfg.Audit.KafkaTopic)

	env.float("LOGIN_RATE_PER_MINUTE", &cfg.RateLimit.LoginPerMinute)
	env.integer("LOGIN_RATE_BURST", &cfg.RateLimit.LoginBurst)

	env.str("LOG_LEVEL", &cfg.Log.Level)
	env.str("LOG_FORMAT", &cfg.Log.Format)

	env.str("PORTAL_BASE_URL", &cfg.Portal.BaseURL)
	env.str("PORTAL_CREDENTIAL_FILE", &cfg.Portal.CredentialFile)
	env.duration("PORTAL_REQUEST_TIMEOUT", &cfg.Portal.RequestTimeout)

	if env.err != nil {
		return Config{}, env.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("auth.jwt_signing_key is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Storage.EncryptionSecret == "" {
		return fmt.Errorf("storage.encryption_secret is required")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be positive")
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local backend")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.LoginBurst <= 0 {
		return fmt.Errorf("rate_limit values must be positive")
	}
	if c.Auth.Admin.Email != "" && c.Auth.Admin.Password == "" {
		return fmt.Errorf("auth.admin.password is required when an admin email is set")
	}
	return nil
}

// UsesDevSecrets reports whether either development default is still in place.
func (c Config) UsesDevSecrets() bool {
	return c.Auth.JWTSigningKey == DevSigningKey || c.Storage.EncryptionSecret == DevEncryptionSecret
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	*dst = pstrings.SplitList(v)
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

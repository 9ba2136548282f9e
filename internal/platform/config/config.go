package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Providers accepted by the *_PROVIDER variables.
const (
	BlobMemory = "memory"
	BlobPinata = "pinata"
	BlobS3     = "s3"

	OracleGemini = "gemini"
	OracleOpenAI = "openai"
	OracleStatic = "static"

	LedgerMemory   = "memory"
	LedgerEthereum = "ethereum"
	LedgerNone     = "none"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// TrustedProxies may set X-Forwarded-For; parsed from comma-separated CIDRs.
	TrustedProxies []netip.Prefix
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the Redis client. An empty URL selects in-memory rate limiting.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit stream. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

// BlobConfig selects and configures the content-addressed blob store.
type BlobConfig struct {
	Provider         string
	PinataAPIKey     string
	PinataSecretKey  string
	PinataJWT        string
	PinataGatewayURL string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKeyID    string
	S3SecretKey      string
}

// OracleConfig selects and configures the scoring oracle.
type OracleConfig struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	Timeout      time.Duration
}

// LedgerConfig selects the ledger reader used by the credential binder.
type LedgerConfig struct {
	Provider        string
	RPCURL          string
	ContractAddress string
}

// Config is the full process configuration.
type Config struct {
	Server             Server
	Database           DatabaseConfig
	Redis              RedisConfig
	Kafka              KafkaConfig
	Blob               BlobConfig
	Oracle             OracleConfig
	Ledger             LedgerConfig
	RateLimitEnabled   bool
	VerifyVersionCheck bool
}

// DefaultOracleTimeout bounds a single scoring oracle call.
const DefaultOracleTimeout = 45 * time.Second

// FromEnv builds the config from environment variables, after loading an
// optional .env file from the working directory.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: Server{
			Addr:          envOr("CREDVERIFY_ADDR", ":8080"),
			Environment:   envOr("CREDVERIFY_ENV", "development"),
			LogLevel:      envOr("LOG_LEVEL", "info"),
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:     envOr("JWT_ISSUER", "credverify"),
			TokenTTL:      envDuration("TOKEN_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: envOr("AUDIT_TOPIC", "credverify.audit"),
		},
		Blob: BlobConfig{
			Provider:         strings.ToLower(envOr("BLOB_PROVIDER", BlobMemory)),
			PinataAPIKey:     os.Getenv("PINATA_API_KEY"),
			PinataSecretKey:  os.Getenv("PINATA_SECRET_KEY"),
			PinataJWT:        os.Getenv("PINATA_JWT"),
			PinataGatewayURL: envOr("PINATA_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs"),
			S3Bucket:         os.Getenv("S3_BUCKET"),
			S3Region:         envOr("S3_REGION", "auto"),
			S3Endpoint:       os.Getenv("S3_ENDPOINT"),
			S3AccessKeyID:    os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretKey:      os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Oracle: OracleConfig{
			Provider:     strings.ToLower(envOr("ORACLE_PROVIDER", OracleStatic)),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:  envOr("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:      envDuration("ORACLE_TIMEOUT", DefaultOracleTimeout),
		},
		Ledger: LedgerConfig{
			Provider:        strings.ToLower(envOr("LEDGER_PROVIDER", LedgerNone)),
			RPCURL:          os.Getenv("ETH_RPC_URL"),
			ContractAddress: os.Getenv("CREDENTIAL_CONTRACT_ADDRESS"),
		},
		RateLimitEnabled:   envBool("RATE_LIMIT_ENABLED", true),
		VerifyVersionCheck: envBool("VERIFY_VERSION_CHECK", false),
	}

	if cfg.Server.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SIGNING_KEY is required in production")
		}
		cfg.Server.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	proxies, err := parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return Config{}, err
	}
	cfg.Server.TrustedProxies = proxies

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether CREDVERIFY_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c Config) validate() error {
	switch c.Blob.Provider {
	case BlobMemory:
	case BlobPinata:
		if c.Blob.PinataJWT == "" && (c.Blob.PinataAPIKey == "" || c.Blob.PinataSecretKey == "") {
			return fmt.Errorf("pinata blob store needs PINATA_JWT or PINATA_API_KEY and PINATA_SECRET_KEY")
		}
	case BlobS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("s3 blob store needs S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown BLOB_PROVIDER %q", c.Blob.Provider)
	}

	switch c.Oracle.Provider {
	case OracleStatic:
	case OracleGemini:
		if c.Oracle.GeminiAPIKey == "" {
			return fmt.Errorf("gemini oracle needs GEMINI_API_KEY")
		}
	case OracleOpenAI:
		if c.Oracle.OpenAIAPIKey == "" {
			return fmt.Errorf("openai oracle needs OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown ORACLE_PROVIDER %q", c.Oracle.Provider)
	}

	switch c.Ledger.Provider {
	case LedgerMemory, LedgerNone:
	case LedgerEthereum:
		if c.Ledger.RPCURL == "" || c.Ledger.ContractAddress == "" {
			return fmt.Errorf("ethereum ledger needs ETH_RPC_URL and CREDENTIAL_CONTRACT_ADDRESS")
		}
	default:
		return fmt.Errorf("unknown LEDGER_PROVIDER %q", c.Ledger.Provider)
	}

	if c.IsProduction() && c.Oracle.Provider == OracleStatic {
		return fmt.Errorf("static oracle is not allowed in production")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func parsePrefixes(raw string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string
	GeoIPDBPath string
	APIVersion  string
	PublicURL   string

	TokenLedger   string
	TokenDecimals int32
	FaucetEnabled bool

	// FactoryAddress seeds the custody address of every project.
	FactoryAddress common.Address
	// MinDonation is kept as a human amount ("1", "0.5") and converted with
	// TokenDecimals by the caller.
	MinDonation   string
	VoteThreshold uint64
	RequireVote   bool

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		APIVersion:         getEnv("API_VERSION", "1.0.0"),
		PublicURL:          os.Getenv("PUBLIC_BASE_URL"),
		TokenLedger:        strings.ToLower(getEnv("TOKEN_LEDGER", LedgerMemory)),
		TokenDecimals:      int32(getEnvInt("TOKEN_DECIMALS", 6)),
		FaucetEnabled:      getEnvBool("FAUCET_ENABLED", false),
		MinDonation:        getEnv("ESCROW_MIN_DONATION", "1"),
		VoteThreshold:      uint64(getEnvInt("ESCROW_VOTE_THRESHOLD_BP", 5100)),
		RequireVote:        getEnvBool("ESCROW_REQUIRE_VOTE", true),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.TokenLedger {
	case LedgerMemory:
	case LedgerPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when TOKEN_LEDGER=%s", LedgerPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported TOKEN_LEDGER %q", cfg.TokenLedger)
	}

	if cfg.TokenDecimals < 0 || cfg.TokenDecimals > 18 {
		return nil, fmt.Errorf("TOKEN_DECIMALS must be within 0..18, got %d", cfg.TokenDecimals)
	}
	if cfg.VoteThreshold == 0 || cfg.VoteThreshold > 10000 {
		return nil, fmt.Errorf("ESCROW_VOTE_THRESHOLD_BP must be within 1..10000, got %d", cfg.VoteThreshold)
	}

	factory := getEnv("ESCROW_FACTORY_ADDRESS", "0x00000000000000000000000000000000000E5C40")
	if !common.IsHexAddress(factory) {
		return nil, fmt.Errorf("ESCROW_FACTORY_ADDRESS %q is not a hex address", factory)
	}
	cfg.FactoryAddress = common.HexToAddress(factory)
	if cfg.FactoryAddress == (common.Address{}) {
		return nil, fmt.Errorf("ESCROW_FACTORY_ADDRESS must not be the zero address")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

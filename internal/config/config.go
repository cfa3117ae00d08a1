package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Chain    ChainConfig    `yaml:"chain"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Sponsor  SponsorConfig  `yaml:"sponsor"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	NATS     NATSConfig     `yaml:"nats"`
	CORS     CORSConfig     `yaml:"cors"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ChainConfig Movement fullnode and contract configuration
type ChainConfig struct {
	RPCURL          string `yaml:"rpcUrl"`          // fullnode REST endpoint, e.g. https://testnet.movementnetwork.xyz/v1
	ContractAddress string `yaml:"contractAddress"` // challenge_factory module address
	ChainID         uint8  `yaml:"chainId"`
	FinalityTimeout int    `yaml:"finalityTimeout"` // seconds to poll before reporting indeterminate
}

// OracleConfig verifier oracle service configuration
type OracleConfig struct {
	BaseURL            string `yaml:"baseUrl"`            // externally reachable oracle base URL (used by the app server)
	Port               int    `yaml:"port"`               // listen port of the oracle binary
	VerifierPrivateKey string `yaml:"verifierPrivateKey"` // ed25519 key hex, oracle service only
}

// SponsorConfig gas-sponsorship relay configuration
type SponsorConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
	Timeout int    `yaml:"timeout"` // seconds
}

// GeminiConfig generative-model configuration
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"` // default gemini-2.0-flash
}

// NATSConfig NATS event publication (optional)
type NATSConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// AdminConfig manual-review admin surface configuration
type AdminConfig struct {
	JWTSecret  string   `yaml:"jwtSecret"`
	TOTPSecret string   `yaml:"totpSecret"`
	Username   string   `yaml:"username"`
	AllowedIPs []string `yaml:"allowedIPs"`
}

var AppConfig *Config

// LoadConfig loads the YAML configuration file and applies environment
// variable overrides. Missing file is not fatal when every required value
// arrives via environment; absence of a required secret is reported by the
// component that needs it at startup.
func LoadConfig(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Printf("🔧 Using local configuration file: config.local.yaml")
		}
	}

	var config Config
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Printf("✅ Loaded configuration from %s", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	} else {
		log.Printf("📋 No config file at %s, using environment variables only", configPath)
	}

	overrideFromEnv(&config)
	applyDefaults(&config)

	AppConfig = &config
	return nil
}

// overrideFromEnv applies environment variable overrides on top of the file
func overrideFromEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	} else if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}

	if rpc := os.Getenv("RPC_URL"); rpc != "" {
		config.Chain.RPCURL = rpc
	}
	if contract := os.Getenv("CONTRACT_ADDRESS"); contract != "" {
		config.Chain.ContractAddress = contract
	}
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseUint(chainID, 10, 8); err == nil {
			config.Chain.ChainID = uint8(id)
		}
	}
	if timeout := os.Getenv("FINALITY_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Chain.FinalityTimeout = t
		}
	}

	if oracleURL := os.Getenv("AI_ORACLE_URL"); oracleURL != "" {
		config.Oracle.BaseURL = oracleURL
	}
	if port := os.Getenv("ORACLE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Oracle.Port = p
		}
	}
	if key := os.Getenv("VERIFIER_PRIVATE_KEY"); key != "" {
		config.Oracle.VerifierPrivateKey = key
	}

	if sponsorURL := os.Getenv("SPONSOR_BASE_URL"); sponsorURL != "" {
		config.Sponsor.BaseURL = sponsorURL
	}
	if key := os.Getenv("SPONSOR_API_KEY"); key != "" {
		config.Sponsor.APIKey = key
	} else if key := os.Getenv("SHINAMI_GAS_KEY"); key != "" {
		config.Sponsor.APIKey = key
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}

	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		origins := strings.Split(corsOrigins, ",")
		config.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, trimmed)
			}
		}
	}

	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		config.Admin.JWTSecret = secret
	}
	if secret := os.Getenv("ADMIN_TOTP_SECRET"); secret != "" {
		config.Admin.TOTPSecret = secret
	}
	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		config.Admin.Username = user
	}
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Chain.RPCURL == "" {
		config.Chain.RPCURL = "https://testnet.movementnetwork.xyz/v1"
	}
	if config.Chain.FinalityTimeout == 0 {
		config.Chain.FinalityTimeout = 30
	}
	if config.Oracle.BaseURL == "" {
		config.Oracle.BaseURL = "http://localhost:3001"
	}
	if config.Oracle.Port == 0 {
		config.Oracle.Port = 3001
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.0-flash"
	}
	if config.Sponsor.Timeout == 0 {
		config.Sponsor.Timeout = 30
	}
	if config.NATS.Timeout == 0 {
		config.NATS.Timeout = 10
	}
}

// GetOracleURL returns the verifier oracle service URL
func GetOracleURL() string {
	if AppConfig == nil || AppConfig.Oracle.BaseURL == "" {
		return "http://localhost:3001"
	}
	return AppConfig.Oracle.BaseURL
}

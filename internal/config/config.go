// Package config loads the service configuration from a YAML file with
// environment variable overrides. Secrets (admin credentials, signer
// private keys) are never read from the file, only from the
// environment.
package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	NATS       NATSConfig       `yaml:"nats"`
	Domain     DomainConfig     `yaml:"domain"`
	Vault      VaultConfig      `yaml:"vault"`
	Settlement SettlementConfig `yaml:"settlement"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig is the postgres connection configuration.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig is the audit event bus configuration. An empty URL
// disables publication.
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"`        // seconds
	ReconnectWait int    `yaml:"reconnect_wait"` // seconds
	MaxReconnects int    `yaml:"max_reconnects"`
}

// DomainConfig is the EIP-712 signing domain. Name and Version are
// fixed per protocol deployment; ChainID binds authorizations to one
// network.
type DomainConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	ChainID int64  `yaml:"chainId"`
}

// VaultConfig identifies the custody components.
type VaultConfig struct {
	Address        string `yaml:"address"`        // vault identity authorizations bind to
	ManagerAddress string `yaml:"managerAddress"` // authorization manager identity (EIP-712 verifyingContract)
	SignerAddress  string `yaml:"signerAddress"`  // sole accepted authorization signer
	OwnerAddress   string `yaml:"ownerAddress"`   // administrative owner, provenance only
}

// SettlementConfig points at the external settlement executor that
// performs the actual value transfer.
type SettlementConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Timeout int    `yaml:"timeout"` // seconds
}

// LogConfig controls logrus.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// AppConfig is the loaded configuration, set by LoadConfig.
var AppConfig *Config

// LoadConfig reads configPath (default config.yaml, or config.local.yaml
// when present) and applies environment overrides.
func LoadConfig(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = &cfg
	return nil
}

// Validate checks the fields the core cannot run without.
func (c *Config) Validate() error {
	if c.Domain.Name == "" || c.Domain.Version == "" {
		return fmt.Errorf("domain name and version are required")
	}
	if c.Domain.ChainID <= 0 {
		return fmt.Errorf("domain chainId must be positive")
	}
	if c.Vault.SignerAddress == "" {
		return fmt.Errorf("vault signerAddress is required")
	}
	return nil
}

// ChainID returns the configured network id.
func (c *Config) ChainID() *big.Int {
	return big.NewInt(c.Domain.ChainID)
}

func overrideFromEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATS.URL = natsURL
	}
	if natsTimeout := os.Getenv("NATS_TIMEOUT"); natsTimeout != "" {
		if t, err := strconv.Atoi(natsTimeout); err == nil {
			cfg.NATS.Timeout = t
		}
	}
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			cfg.Domain.ChainID = id
		}
	}
	if signer := os.Getenv("AUTH_SIGNER_ADDRESS"); signer != "" {
		cfg.Vault.SignerAddress = signer
	}
	if vault := os.Getenv("VAULT_ADDRESS"); vault != "" {
		cfg.Vault.Address = vault
	}
	if manager := os.Getenv("AUTH_MANAGER_ADDRESS"); manager != "" {
		cfg.Vault.ManagerAddress = manager
	}
	if owner := os.Getenv("VAULT_OWNER_ADDRESS"); owner != "" {
		cfg.Vault.OwnerAddress = owner
	}
	if settlement := os.Getenv("SETTLEMENT_BASE_URL"); settlement != "" {
		cfg.Settlement.BaseURL = settlement
	}
	if timeout := os.Getenv("SETTLEMENT_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			cfg.Settlement.Timeout = t
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
}

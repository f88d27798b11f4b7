package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"solana-token-forge/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. FORGE_STORAGE_POSTGRES_DSN.
const EnvPrefix = "FORGE"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Solana   SolanaConfig   `mapstructure:"solana"`
	Log      LogConfig      `mapstructure:"log"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig selects journal and disclosure storage.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"` // optional event log
	MaxConns      int32  `mapstructure:"max_conns"`      // postgres pool size, 0 for the driver default
}

// SolanaConfig points at a live cluster for preflight reads and log watching.
type SolanaConfig struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	WSEndpoint  string `mapstructure:"ws_endpoint"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ProtocolConfig is the text form of Protocol.
type ProtocolConfig struct {
	BaseFee         uint64 `mapstructure:"base_fee"`
	RevokeDiscount  uint64 `mapstructure:"revoke_discount"`
	ProgramID       string `mapstructure:"program_id"`
	Treasury        string `mapstructure:"treasury"`
	MetadataProgram string `mapstructure:"metadata_program"`
	TokenProgram    string `mapstructure:"token_program"`
}

// SetDefaults registers every key so environment overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.max_conns", 0)
	v.SetDefault("solana.rpc_endpoint", "https://api.devnet.solana.com")
	v.SetDefault("solana.ws_endpoint", "wss://api.devnet.solana.com")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("protocol.base_fee", DefaultBaseFee)
	v.SetDefault("protocol.revoke_discount", DefaultRevokeDiscount)
	v.SetDefault("protocol.program_id", DefaultProgramID)
	v.SetDefault("protocol.treasury", DefaultTreasury)
	v.SetDefault("protocol.metadata_program", DefaultMetadataProgramID)
	v.SetDefault("protocol.token_program", DefaultTokenProgramID)
}

// Load reads configuration from defaults, an optional file, and FORGE_* variables.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := c.Protocol.Resolve(); err != nil {
		return err
	}
	return nil
}

// Resolve parses the text form into a Protocol.
func (pc ProtocolConfig) Resolve() (Protocol, error) {
	p := DefaultProtocol()
	p.BaseFee = pc.BaseFee
	p.RevokeDiscount = pc.RevokeDiscount

	fields := []struct {
		name string
		text string
		dst  *domain.Address
	}{
		{"protocol.program_id", pc.ProgramID, &p.ProgramID},
		{"protocol.treasury", pc.Treasury, &p.Treasury},
		{"protocol.metadata_program", pc.MetadataProgram, &p.MetadataProgram},
		{"protocol.token_program", pc.TokenProgram, &p.TokenProgram},
	}
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		addr, err := domain.ParseAddress(f.text)
		if err != nil {
			return Protocol{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = addr
	}

	if err := p.Validate(); err != nil {
		return Protocol{}, err
	}
	return p, nil
}

// LoadEnvFile loads KEY=VALUE lines from path into the environment.
// Existing variables win. A missing file is not an error.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

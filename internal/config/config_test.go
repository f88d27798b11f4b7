package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)

	p, err := cfg.Protocol.Resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultProtocol(), p)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FORGE_PROTOCOL_BASE_FEE", "5000")
	t.Setenv("FORGE_SERVER_ADDR", ":9999")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, uint64(5000), cfg.Protocol.BaseFee)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forge.yaml")
	content := `
storage:
  backend: postgres
  postgres_dsn: postgres://forge@localhost/forge
protocol:
  revoke_discount: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, uint64(1000), cfg.Protocol.RevokeDiscount)
}

func TestLoad_PostgresWithoutDSN(t *testing.T) {
	t.Setenv("FORGE_STORAGE_BACKEND", "postgres")

	_, err := Load(viper.New(), "")
	assert.Error(t, err)
}

func TestProtocolConfig_ResolveRejectsBadAddress(t *testing.T) {
	pc := ProtocolConfig{BaseFee: 1, Treasury: "not-base58-0OIl"}
	_, err := pc.Resolve()
	assert.Error(t, err)
}

func TestProtocol_ValidateRequiresBaseFee(t *testing.T) {
	p := DefaultProtocol().WithFees(0, 0)
	assert.Error(t, p.Validate())
}

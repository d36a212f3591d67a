package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arithapi/internal/parser"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", cfg.HTTPAddr)
	assert.Equal(t, "", cfg.GRPCAddr)
	assert.Equal(t, parser.Permissive, cfg.ValidationMode())
	assert.True(t, cfg.EchoOperation)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ARITH_HTTP_ADDR", "0.0.0.0:5000")
	t.Setenv("ARITH_MODE", "strict")
	t.Setenv("ARITH_ECHO_OPERATION", "false")
	t.Setenv("ARITH_SHUTDOWN_TIMEOUT", "10s")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr)
	assert.Equal(t, parser.Strict, cfg.ValidationMode())
	assert.False(t, cfg.EchoOperation)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ARITH_HTTP_ADDR", "0.0.0.0:5000")
	t.Setenv("ARITH_MODE", "strict")

	cfg, err := Load([]string{"--http-addr", "127.0.0.1:8080", "--grpc-addr", ":5001", "--mode=permissive"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, ":5001", cfg.GRPCAddr)
	assert.Equal(t, parser.Permissive, cfg.ValidationMode())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "неизвестный режим", args: []string{"--mode", "lenient"}},
		{name: "адрес без порта", args: []string{"--http-addr", "localhost"}},
		{name: "неверный порт", args: []string{"--http-addr", "localhost:99999"}},
		{name: "неверный адрес gRPC", args: []string{"--grpc-addr", "nope"}},
		{name: "неизвестный уровень логов", args: []string{"--log-level", "verbose"}},
		{name: "неизвестное окружение", args: []string{"--env", "staging"}},
		{name: "нулевой таймаут", args: []string{"--shutdown-timeout", "0s"}},
		{name: "неизвестный флаг", args: []string{"--port", "5000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

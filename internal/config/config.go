package config

import (
	"net"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"arithapi/internal/parser"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	envPrefix = "ARITH"
)

// Файлы окружения ищутся так же, как при запуске из cmd/<name>
var envFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	Mode            string        `mapstructure:"mode"`
	EchoOperation   bool          `mapstructure:"echo_operation"`
	Metrics         bool          `mapstructure:"metrics"`
	LogLevel        string        `mapstructure:"log_level"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ValidationMode возвращает режим проверки операндов; Config уже прошёл Validate
func (c *Config) ValidationMode() parser.Mode {
	m, err := parser.ParseMode(c.Mode)
	if err != nil {
		return parser.Permissive
	}
	return m
}

// Flags описывает флаги командной строки сервиса
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("http-addr", "127.0.0.1:5000", "HTTP listen address (host:port)")
	fs.String("grpc-addr", "", "gRPC listen address (host:port), empty disables gRPC")
	fs.String("mode", string(parser.Permissive), "operand validation mode: permissive or strict")
	fs.Bool("echo-operation", true, "include the operation name in successful responses")
	fs.Bool("metrics", true, "expose Prometheus metrics on /metrics")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("env", EnvDev, "environment: dev or prod")
	fs.Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	return fs
}

// Load собирает конфигурацию: флаги > переменные ARITH_* > .env > значения по умолчанию
func Load(args []string) (*Config, error) {
	loadEnvFiles()

	fs := Flags("arithmetic")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
		if err := v.BindEnv(key); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errors.Wrap(bindErr, "bind flags")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

func loadEnvFiles() {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			zap.S().With("module", "config").Debugf("Загружен файл с переменными окружения: %s", file)
			return
		}
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPAddr, validation.Required, validation.By(validateHostPort)),
		validation.Field(&c.GRPCAddr, validation.By(validateHostPort)),
		validation.Field(&c.Mode, validation.Required, validation.In(string(parser.Permissive), string(parser.Strict))),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Env, validation.Required, validation.In(EnvDev, EnvProd)),
		validation.Field(&c.ShutdownTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if err := is.Port.Validate(port); err != nil {
		return validation.NewError("validation_invalid_port", "invalid port")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"go-coordinator/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Checkin     CheckinConfig
	Participant ParticipantConfig
}

type AppConfig struct {
	Name    string
	Modules []string
}

type ServerConfig struct {
	Host string
	Port int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type JWTConfig struct {
	PublicKey      string
	PublicKeyFile  string
	PrivateKey     string
	PrivateKeyFile string
	Issuer         string
	AllowedIssuers []string
	Lifespan       time.Duration
}

// AdminSeed is an administrator declared in configuration. PasswordHash is
// a bcrypt hash, never a plain password.
type AdminSeed struct {
	Username     string
	PasswordHash string
}

type AuthConfig struct {
	Admins             []AdminSeed
	MaxLoginAttempts   int
	LoginBlockDuration time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

// URL returns the connection string in URL form, as golang-migrate wants it.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type CheckinConfig struct {
	SubscriberBuffer int
	PingInterval     time.Duration
}

type ParticipantConfig struct {
	VerificationURL string
}

// Load reads configuration from .env, an optional config file and the
// environment, and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coordinator")
	v.SetDefault("app.modules", strings.Join([]string{
		constants.ModuleAuth, constants.ModuleEvent, constants.ModuleCheckin, constants.ModuleParticipant,
		constants.ModuleArticle,
	}, ","))
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("jwt.lifespan", constants.DefaultTokenLifespan)
	v.SetDefault("login.max_attempts", constants.DefaultLoginMaxAttempt)
	v.SetDefault("login.block_duration", constants.DefaultLoginBlock)
	v.SetDefault("db.enabled", true)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "coordinator")
	v.SetDefault("db.name", "coordinator")
	v.SetDefault("db.sslmode", constants.DatabaseSSLMode)
	v.SetDefault("db.migrate", true)
	v.SetDefault("redis.db", 0)
	v.SetDefault("checkin.subscriber_buffer", constants.DefaultSubscriberQueue)
	v.SetDefault("checkin.ping_interval", constants.DefaultPingInterval)
}

// FromViper maps viper keys onto Config and validates the result.
func FromViper(v *viper.Viper) (*Config, error) {
	admins, err := parseAdmins(v.Get("auth.admins"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Modules: stringList(v.Get("app.modules")),
		},
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		CORS: CORSConfig{
			AllowedOrigins: stringList(v.Get("cors.allowed_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		JWT: JWTConfig{
			PublicKey:      v.GetString("jwt.public_key"),
			PublicKeyFile:  v.GetString("jwt.public_key_file"),
			PrivateKey:     v.GetString("jwt.private_key"),
			PrivateKeyFile: v.GetString("jwt.private_key_file"),
			Issuer:         v.GetString("jwt.issuer"),
			AllowedIssuers: stringList(v.Get("jwt.allowed_issuers")),
			Lifespan:       seconds(v, "jwt.lifespan"),
		},
		Auth: AuthConfig{
			Admins:             admins,
			MaxLoginAttempts:   v.GetInt("login.max_attempts"),
			LoginBlockDuration: seconds(v, "login.block_duration"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("db.enabled"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
			Migrate:  v.GetBool("db.migrate"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Checkin: CheckinConfig{
			SubscriberBuffer: v.GetInt("checkin.subscriber_buffer"),
			PingInterval:     seconds(v, "checkin.ping_interval"),
		},
		Participant: ParticipantConfig{
			VerificationURL: v.GetString("participant.verification_url"),
		},
	}

	if cfg.HasModule(constants.ModuleAuth) && len(cfg.JWT.AllowedIssuers) == 0 && cfg.JWT.Issuer != "" {
		cfg.JWT.AllowedIssuers = []string{cfg.JWT.Issuer}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HasModule(name string) bool {
	return slices.Contains(c.App.Modules, name)
}

// Validate checks the requirements of every mounted module. Any failure
// prevents the service from starting.
func (c *Config) Validate() error {
	var errs []error

	if len(c.App.Modules) == 0 {
		errs = append(errs, errors.New("APP_MODULES must name at least one module"))
	}
	for _, m := range c.App.Modules {
		switch m {
		case constants.ModuleAuth, constants.ModuleEvent, constants.ModuleCheckin, constants.ModuleParticipant,
			constants.ModuleArticle:
		default:
			errs = append(errs, fmt.Errorf("unknown module %q", m))
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port))
	}

	if c.JWT.PublicKey == "" && c.JWT.PublicKeyFile == "" {
		errs = append(errs, errors.New("JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE is required"))
	}
	if len(c.JWT.AllowedIssuers) == 0 {
		errs = append(errs, errors.New("JWT_ALLOWED_ISSUERS must list at least one issuer"))
	}

	if c.HasModule(constants.ModuleAuth) {
		if c.JWT.PrivateKey == "" && c.JWT.PrivateKeyFile == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_FILE is required by the auth module"))
		}
		if strings.TrimSpace(c.JWT.Issuer) == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required by the auth module"))
		}
		if c.JWT.Lifespan <= 0 {
			errs = append(errs, errors.New("JWT_LIFESPAN must be positive"))
		}
	}

	if c.HasModule(constants.ModuleCheckin) {
		if c.Checkin.SubscriberBuffer <= 0 {
			errs = append(errs, errors.New("CHECKIN_SUBSCRIBER_BUFFER must be positive"))
		}
		if c.Checkin.PingInterval <= 0 {
			errs = append(errs, errors.New("CHECKIN_PING_INTERVAL must be positive"))
		}
	}

	if c.HasModule(constants.ModuleEvent) && !c.HasModule(constants.ModuleParticipant) && c.Participant.VerificationURL == "" {
		errs = append(errs, errors.New("PARTICIPANT_VERIFICATION_URL is required when the participant module is not mounted"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// stringList accepts either a YAML list or a comma separated string.
func stringList(raw any) []string {
	var items []string
	switch value := raw.(type) {
	case nil:
		return nil
	case []string:
		items = value
	case []any:
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = strings.Split(fmt.Sprint(value), ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseAdmins reads "user:bcrypt-hash" entries. bcrypt hashes never contain
// ':' or ',' so both separators are unambiguous.
func parseAdmins(raw any) ([]AdminSeed, error) {
	var admins []AdminSeed
	for _, entry := range stringList(raw) {
		username, hash, ok := strings.Cut(entry, ":")
		username = strings.TrimSpace(username)
		hash = strings.TrimSpace(hash)
		if !ok || username == "" || hash == "" {
			return nil, fmt.Errorf("config: AUTH_ADMINS entry %q must be username:bcrypt-hash", entry)
		}
		admins = append(admins, AdminSeed{Username: username, PasswordHash: hash})
	}
	return admins, nil
}

// seconds reads a duration that may be given either as a Go duration string
// ("30m") or as a bare number of seconds ("1800").
func seconds(v *viper.Viper, key string) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return time.Duration(v.GetInt64(key)) * time.Second
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Media         MediaConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FULLREST_APP_ENV" required:"true"`
	Port         string `envconfig:"FULLREST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FULLREST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FULLREST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"FULLREST_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"FULLREST_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"FULLREST_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"FULLREST_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	DSN    string `envconfig:"FULLREST_DB_DSN"`
	Driver string `envconfig:"FULLREST_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FULLREST_DB_HOST"`
	Port     int    `envconfig:"FULLREST_DB_PORT" default:"5432"`
	User     string `envconfig:"FULLREST_DB_USER"`
	Password string `envconfig:"FULLREST_DB_PASSWORD"`
	Name     string `envconfig:"FULLREST_DB_NAME"`
	SSLMode  string `envconfig:"FULLREST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FULLREST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FULLREST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FULLREST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FULLREST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"FULLREST_REDIS_URL"`
	Address      string        `envconfig:"FULLREST_REDIS_ADDR"`
	Password     string        `envconfig:"FULLREST_REDIS_PASSWORD"`
	DB           int           `envconfig:"FULLREST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FULLREST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FULLREST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FULLREST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FULLREST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FULLREST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret     string        `envconfig:"FULLREST_JWT_SECRET" required:"true"`
	Issuer     string        `envconfig:"FULLREST_JWT_ISSUER" default:"fullrest"`
	AccessTTL  time.Duration `envconfig:"FULLREST_JWT_ACCESS_TTL" default:"24h"`
	RefreshTTL time.Duration `envconfig:"FULLREST_JWT_REFRESH_TTL" default:"168h"`
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"FULLREST_BCRYPT_COST" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"FULLREST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"FULLREST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"FULLREST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"FULLREST_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"FULLREST_AUTO_MIGRATE" default:"false"`
	MetricsEnabled bool `envconfig:"FULLREST_METRICS_ENABLED" default:"true"`
}

type MediaConfig struct {
	UploadDir   string `envconfig:"FULLREST_UPLOAD_DIR" default:"uploads/productos"`
	MaxUploadMB int    `envconfig:"FULLREST_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the configured upload ceiling in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FULLREST_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"`
	MaxAge         int      `envconfig:"FULLREST_CORS_MAX_AGE" default:"3600"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "fullrest.db"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

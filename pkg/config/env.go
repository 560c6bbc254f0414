package config

// EnvPrefix is passed to envconfig; every field carries an explicit key.
const EnvPrefix = "FULLREST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "FULLREST_APP_ENV"
	EnvPort     = "FULLREST_APP_PORT"
	EnvLogLevel = "FULLREST_LOG_LEVEL"

	EnvDBDSN    = "FULLREST_DB_DSN"
	EnvDBDriver = "FULLREST_DB_DRIVER"
	EnvDBHost   = "FULLREST_DB_HOST"
	EnvDBPort   = "FULLREST_DB_PORT"
	EnvDBUser   = "FULLREST_DB_USER"
	EnvDBName   = "FULLREST_DB_NAME"

	EnvRedisURL = "FULLREST_REDIS_URL"

	EnvJWTSecret     = "FULLREST_JWT_SECRET"
	EnvJWTIssuer     = "FULLREST_JWT_ISSUER"
	EnvJWTAccessTTL  = "FULLREST_JWT_ACCESS_TTL"
	EnvJWTRefreshTTL = "FULLREST_JWT_REFRESH_TTL"

	EnvBcryptCost = "FULLREST_BCRYPT_COST"

	EnvUseSQLite   = "FULLREST_USE_SQLITE"
	EnvAutoMigrate = "FULLREST_AUTO_MIGRATE"

	EnvUploadDir   = "FULLREST_UPLOAD_DIR"
	EnvCORSOrigins = "FULLREST_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

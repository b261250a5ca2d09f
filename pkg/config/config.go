package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	HTTP         HTTPConfig
	Security     SecurityConfig
	Registration RegistrationConfig
	Uploads      UploadConfig
	MinIO        MinIOConfig
	Seed         SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	TimeZone string // zona IANA de los filtros de fecha; vacío = hora local del proceso
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Render).
type DBConfig struct {
	Driver      string // postgres | memory (datos en memoria, solo desarrollo)
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	ForceIPv4   bool // marca el dial en tcp4; para hosts que publican AAAA en redes sin IPv6
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
// A DATABASE_URL sin sslmode se le agrega sslmode=require.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL == "" {
		return c.DSN()
	}
	raw := c.DatabaseURL
	if strings.HasPrefix(raw, "postgresql+psycopg2://") {
		raw = "postgres://" + strings.TrimPrefix(raw, "postgresql+psycopg2://")
	}
	if strings.Contains(raw, "sslmode=") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "sslmode=require"
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig firma de la sesión.
type SecurityConfig struct {
	SecretKey    string
	SessionHours int
	Issuer       string
}

// RegistrationConfig claves de registro por rol. Vacío = no configurada (el registro de ese rol falla).
type RegistrationConfig struct {
	AdminKey  string
	SellerKey string
}

// UploadConfig persistencia de imágenes subidas.
type UploadConfig struct {
	SaveToDisk bool   // bandera legacy: además del base64 embebido, guardar el archivo
	Backend    string // disk | minio
	Folder     string
	MaxBytes   int
}

// MinIOConfig credenciales del bucket de imágenes (Backend = minio).
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SeedConfig administrador inicial para cmd/seed_admin.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DATABASE_URL, SECRET_KEY, ADMIN_REG_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "sistema-ventas"),
			TimeZone: getString(v, "APP_TIMEZONE", ""),
		},
		DB: DBConfig{
			Driver:      strings.ToLower(getString(v, "DB_DRIVER", "postgres")),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ventas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
			ForceIPv4:   getBool(v, "DB_FORCE_IPV4", false),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		Security: SecurityConfig{
			SecretKey:    getString(v, "SECRET_KEY", ""),
			SessionHours: getInt(v, "SESSION_HOURS", 12),
			Issuer:       getString(v, "SESSION_ISSUER", "sistema-ventas"),
		},
		Registration: RegistrationConfig{
			AdminKey:  getString(v, "ADMIN_REG_KEY", ""),
			SellerKey: getString(v, "VENDEDOR_REG_KEY", ""),
		},
		Uploads: UploadConfig{
			SaveToDisk: getBool(v, "SAVE_UPLOADS_TO_DISK", false),
			Backend:    strings.ToLower(getString(v, "UPLOAD_BACKEND", "disk")),
			Folder:     getString(v, "UPLOAD_FOLDER", "./static/uploads"),
			MaxBytes:   getInt(v, "MAX_CONTENT_LENGTH", 16*1024*1024),
		},
		MinIO: MinIOConfig{
			Endpoint:  getString(v, "MINIO_ENDPOINT", ""),
			AccessKey: getString(v, "MINIO_ACCESS_KEY", ""),
			SecretKey: getString(v, "MINIO_SECRET_KEY", ""),
			Bucket:    getString(v, "MINIO_BUCKET", "productos"),
			UseSSL:    getBool(v, "MINIO_USE_SSL", false),
		},
		Seed: SeedConfig{
			AdminEmail:    getString(v, "SEED_ADMIN_EMAIL", "admin@mail.com"),
			AdminPassword: getString(v, "SEED_ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Security.SecretKey == "" {
		return nil, fmt.Errorf("config: SECRET_KEY es obligatoria")
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "memory" {
		return nil, fmt.Errorf("config: DB_DRIVER inválido %q (postgres|memory)", cfg.DB.Driver)
	}
	if cfg.Uploads.Backend != "disk" && cfg.Uploads.Backend != "minio" {
		return nil, fmt.Errorf("config: UPLOAD_BACKEND inválido %q (disk|minio)", cfg.Uploads.Backend)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

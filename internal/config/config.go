package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/avc/logistics-backoffice/internal/utils/password"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config содержит конфигурацию приложения
type Config struct {
	RunAddress  string // Адрес и порт запуска сервиса
	DatabaseURI string // URI подключения к БД или путь к файлу SQLite

	// Хранилище
	StoreDriver      string // postgres или sqlite
	StoreTablePrefix string // Префикс имен таблиц коллекций
	StoreAtomicTx    bool   // Транзакции базы с блокировкой строк; false включает режим совместимости

	JWTSecret   string        // Секретный ключ для JWT
	JWTTokenTTL time.Duration // Время жизни JWT токена
	LogLevel    string        // Уровень логирования

	// Администратор
	AdminUsername     string
	AdminPasswordHash string // bcrypt хеш, см. команду hash-password

	// Worker Pool конфигурация
	WorkerPoolSize     int           // Количество воркеров пересчета
	WorkerQueueSize    int           // Размер очереди устаревших агрегатов
	WorkerScanInterval time.Duration // Интервал полной сверки агрегатов; 0 отключает
}

// Load загружает конфигурацию из флагов, переменных окружения и файла .env
// Приоритет: env переменные (включая .env) > флаги > дефолтные значения
func Load(args []string) (*Config, error) {
	cfg := &Config{
		StoreDriver:        DriverPostgres,
		StoreAtomicTx:      true,
		JWTTokenTTL:        24 * time.Hour,
		LogLevel:           "info",
		AdminUsername:      "admin",
		WorkerPoolSize:     3,
		WorkerQueueSize:    100,
		WorkerScanInterval: 10 * time.Minute,
	}

	// Определяем флаги
	flags := flag.NewFlagSet("backoffice", flag.ContinueOnError)
	flags.StringVar(&cfg.RunAddress, "a", ":8080", "address and port to run server")
	flags.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flags.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "store driver: postgres or sqlite")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("config: failed to parse flags: %w", err)
	}

	// .env не перезаписывает уже выставленные переменные окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	// Переменные окружения имеют приоритет над флагами
	if envRunAddr, ok := os.LookupEnv("RUN_ADDRESS"); ok {
		cfg.RunAddress = envRunAddr
	}

	if envDBURI, ok := os.LookupEnv("DATABASE_URI"); ok {
		cfg.DatabaseURI = envDBURI
	}

	if envDriver, ok := os.LookupEnv("STORE_DRIVER"); ok {
		cfg.StoreDriver = envDriver
	}

	if envPrefix, ok := os.LookupEnv("STORE_TABLE_PREFIX"); ok {
		cfg.StoreTablePrefix = envPrefix
	}

	if envAtomic, ok := os.LookupEnv("STORE_ATOMIC_TX"); ok {
		atomic, err := strconv.ParseBool(envAtomic)
		if err != nil {
			return nil, fmt.Errorf("config: invalid STORE_ATOMIC_TX %q: %w", envAtomic, err)
		}
		cfg.StoreAtomicTx = atomic
	}

	// JWT секрет (только из env, не из флагов для безопасности)
	if envJWTSecret, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = envJWTSecret
	} else {
		cfg.JWTSecret = "default-secret-key-change-in-production"
	}

	if envTTL, ok := os.LookupEnv("JWT_TOKEN_TTL"); ok {
		if ttl, err := time.ParseDuration(envTTL); err == nil && ttl > 0 {
			cfg.JWTTokenTTL = ttl
		}
	}

	// Уровень логирования
	if envLogLevel, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = envLogLevel
	}

	if envAdmin, ok := os.LookupEnv("ADMIN_USERNAME"); ok {
		cfg.AdminUsername = envAdmin
	}

	if envAdminHash, ok := os.LookupEnv("ADMIN_PASSWORD_HASH"); ok {
		cfg.AdminPasswordHash = envAdminHash
	}

	// Worker Pool конфигурация из env
	if envWorkerPoolSize, ok := os.LookupEnv("WORKER_POOL_SIZE"); ok {
		if size, err := strconv.Atoi(envWorkerPoolSize); err == nil && size > 0 {
			cfg.WorkerPoolSize = size
		}
	}

	if envWorkerQueueSize, ok := os.LookupEnv("WORKER_QUEUE_SIZE"); ok {
		if size, err := strconv.Atoi(envWorkerQueueSize); err == nil && size > 0 {
			cfg.WorkerQueueSize = size
		}
	}

	if envScanInterval, ok := os.LookupEnv("WORKER_SCAN_INTERVAL"); ok {
		if interval, err := time.ParseDuration(envScanInterval); err == nil && interval >= 0 {
			cfg.WorkerScanInterval = interval
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("config: database URI is required (use -d flag or DATABASE_URI env)")
		}
	case DriverSQLite:
		if c.DatabaseURI == "" {
			c.DatabaseURI = "backoffice.db"
		}
	default:
		return fmt.Errorf("config: unknown store driver %q (expected %s or %s)", c.StoreDriver, DriverPostgres, DriverSQLite)
	}

	// Без хеша вход администратора отключен
	if c.AdminPasswordHash != "" && !password.IsHash(c.AdminPasswordHash) {
		return fmt.Errorf("config: ADMIN_PASSWORD_HASH is not a bcrypt hash")
	}

	return nil
}

// config предоставляет структуру конфигурации harvest-service
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/morozovaek/harvest-service/internal/models"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Harvest  HarvestConfig `yaml:"harvest"`
	Cache    CacheConfig   `yaml:"cache"`
	Dedup    DedupConfig   `yaml:"dedup"`
	Queue    QueueConfig   `yaml:"queue"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — сетевые настройки служебного HTTP-сервера (liveness/metrics).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50083"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки необязательного зеркала чекпоинтов.
// Пустой URL отключает зеркало.
type RedisConfig struct {
	URL       string        `yaml:"url"        env:"REDIS_URL"`
	KeyPrefix string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"harvest:cp:"`
	TTL       time.Duration `yaml:"ttl"        env:"REDIS_TTL"        env-default:"720h"`
}

// HarvestConfig — параметры периодического сбора постов.
type HarvestConfig struct {
	// Ключевые слова с весами в формате "text:weight".
	// Вес можно опустить ("text"), тогда применяется 0.5.
	// Источник весов — внешний сервис взвешивания; статический список
	// в конфиге — его замена для автономного запуска.
	Keywords []string `yaml:"keywords" env:"HARVEST_KEYWORDS" env-separator:","`
	// Interval - период между прогонами сбора.
	Interval time.Duration `yaml:"interval" env:"HARVEST_INTERVAL" env-default:"15m"`
	// TargetCount - сколько свежих постов добирать за прогон.
	TargetCount int `yaml:"target_count" env:"HARVEST_TARGET_COUNT" env-default:"50"`
	// MaxAPICalls - бюджет вызовов внешнего API на прогон.
	MaxAPICalls int `yaml:"max_api_calls" env:"HARVEST_MAX_API_CALLS" env-default:"10"`
	// SearchWindowDays - окно поиска в днях.
	SearchWindowDays int `yaml:"search_window_days" env:"HARVEST_SEARCH_WINDOW_DAYS" env-default:"7"`
	// CheckpointStaleDays - через сколько дней простоя чекпоинт удаляется.
	CheckpointStaleDays int `yaml:"checkpoint_stale_days" env:"HARVEST_CHECKPOINT_STALE_DAYS" env-default:"30"`
	// RatePerSecond - проактивный тротлинг вызовов источника.
	RatePerSecond float64 `yaml:"rate_per_second" env:"HARVEST_RATE_PER_SECOND" env-default:"1.0"`
	// CleanupInterval - период фоновой чистки кэша и чекпоинтов.
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"HARVEST_CLEANUP_INTERVAL" env-default:"6h"`
}

// CacheConfig — параметры кэша результатов поиска.
type CacheConfig struct {
	// TTL - срок валидности записи кэша.
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"96h"`
}

// DedupConfig — параметры шлюза дедупликации.
type DedupConfig struct {
	// Enabled - выключатель шлюза (fetcher работает и без него).
	Enabled bool `yaml:"enabled" env:"DEDUP_ENABLED" env-default:"true"`
	// SkipThreshold - доля уже известных постов, при которой внешний
	// вызов можно пропустить, [0.0, 1.0].
	SkipThreshold float64 `yaml:"skip_threshold" env:"DEDUP_SKIP_THRESHOLD" env-default:"0.8"`
	// AvgItemsPerCall - эвристика «постов на вызов» для оценки экономии.
	AvgItemsPerCall int `yaml:"avg_items_per_call" env:"DEDUP_AVG_ITEMS_PER_CALL" env-default:"80"`
}

// QueueConfig — параметры очереди задач.
type QueueConfig struct {
	// MaxRetries - бюджет повторов до терминального failed.
	MaxRetries int `yaml:"max_retries" env:"QUEUE_MAX_RETRIES" env-default:"3"`
	// ClaimLimit - размер пачки claim_batch по умолчанию.
	ClaimLimit int `yaml:"claim_limit" env:"QUEUE_CLAIM_LIMIT" env-default:"10"`
}

// ParsedKeywords разбирает Harvest.Keywords в доменные пары {text, weight}.
// Некорректные веса отсекаются валидацией конфига.
func (c *Config) ParsedKeywords() []models.Keyword {
	result := make([]models.Keyword, 0, len(c.Harvest.Keywords))
	for _, raw := range c.Harvest.Keywords {
		text, weight := splitKeyword(raw)
		if text == "" {
			continue
		}
		result = append(result, models.Keyword{Text: text, Weight: weight})
	}

	return result
}

// splitKeyword разбирает "text:weight"; без веса возвращает 0.5.
func splitKeyword(raw string) (string, float64) {
	raw = strings.TrimSpace(raw)

	idx := strings.LastIndex(raw, ":")
	if idx < 0 {
		return raw, 0.5
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(raw[idx+1:]), 64)
	if err != nil {
		return raw, 0.5
	}

	return strings.TrimSpace(raw[:idx]), weight
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}
	if len(c.Harvest.Keywords) == 0 {
		return fmt.Errorf("harvest.keywords must contain at least one keyword")
	}
	for _, raw := range c.Harvest.Keywords {
		text, weight := splitKeyword(raw)
		if text == "" {
			return fmt.Errorf("harvest.keywords: empty keyword in %q", raw)
		}
		if weight < 0 || weight > 1 {
			return fmt.Errorf("harvest.keywords: weight out of [0,1] in %q", raw)
		}
	}
	if c.Harvest.Interval < time.Minute {
		return fmt.Errorf("harvest.interval must be at least 1m")
	}
	if c.Harvest.TargetCount <= 0 {
		return fmt.Errorf("harvest.target_count must be > 0")
	}
	if c.Harvest.MaxAPICalls <= 0 {
		return fmt.Errorf("harvest.max_api_calls must be > 0")
	}
	if c.Harvest.SearchWindowDays <= 0 {
		return fmt.Errorf("harvest.search_window_days must be > 0")
	}
	if c.Harvest.RatePerSecond <= 0 {
		return fmt.Errorf("harvest.rate_per_second must be > 0")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}
	if c.Dedup.SkipThreshold < 0 || c.Dedup.SkipThreshold > 1 {
		return fmt.Errorf("dedup.skip_threshold must be in [0,1]")
	}
	if c.Dedup.AvgItemsPerCall <= 0 {
		return fmt.Errorf("dedup.avg_items_per_call must be > 0")
	}
	if c.Queue.MaxRetries <= 0 {
		return fmt.Errorf("queue.max_retries must be > 0")
	}
	if c.Queue.ClaimLimit <= 0 {
		return fmt.Errorf("queue.claim_limit must be > 0")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/funnel"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/insight"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Pipeline     Pipeline     `mapstructure:",squash"`
	SnapshotSync SnapshotSync `mapstructure:",squash"`
	Cache        Cache        `mapstructure:",squash"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN             string        `mapstructure:"-"`
	Driver          string        `mapstructure:"database_driver"`
	Password        string        `mapstructure:"database_password"`
	URL             string        `mapstructure:"database_url"`
	User            string        `mapstructure:"database_user"`
	MaxOpenConns    int           `mapstructure:"database_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"database_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"database_conn_max_lifetime"`
}

type App struct {
	LogLevel          string `mapstructure:"log_level"`
	ReportingCurrency string `mapstructure:"reporting_currency"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Pipeline struct {
	RawStageProbabilities string                    `mapstructure:"pipeline_stage_probabilities"`
	StageProbabilities    funnel.StageProbabilities `mapstructure:"-"`
	MRRGoal               float64                   `mapstructure:"pipeline_mrr_goal"`
	WinRateFloor          float64                   `mapstructure:"pipeline_win_rate_floor"`
	ChurnRateCeiling      float64                   `mapstructure:"pipeline_churn_rate_ceiling"`
	CoverageFloor         float64                   `mapstructure:"pipeline_pipeline_coverage_floor"`
	DefaultBucketSize     string                    `mapstructure:"pipeline_default_bucket_size"`
	DefaultBucketCount    int                       `mapstructure:"pipeline_default_bucket_count"`
}

// Thresholds retorna os limites usados pelas regras padrão de insight
func (p Pipeline) Thresholds() insight.Thresholds {
	return insight.Thresholds{
		WinRateFloor:          p.WinRateFloor,
		ChurnRateCeiling:      p.ChurnRateCeiling,
		PipelineCoverageFloor: p.CoverageFloor,
	}
}

type SnapshotSync struct {
	CronSchedule      string `mapstructure:"snapshot_sync_cron"`
	Enabled           bool   `mapstructure:"snapshot_sync_enabled"`
	MonthLookBack     int    `mapstructure:"snapshot_sync_month_lookback"`
	MaxConcurrentJobs int    `mapstructure:"snapshot_sync_max_concurrent_jobs"`
	RetentionMonths   int    `mapstructure:"snapshot_sync_retention_months"`
}

type Cache struct {
	RedisAddr string        `mapstructure:"cache_redis_addr"`
	TTL       time.Duration `mapstructure:"cache_ttl"`
	Enabled   bool          `mapstructure:"cache_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/pipeline?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	viper.SetDefault("AUTH_SECRET", "your_secret_key")
	viper.SetDefault("REPORTING_CURRENCY", string(domain.ReportingCurrency))

	viper.SetDefault("PIPELINE_STAGE_PROBABILITIES", "")
	viper.SetDefault("PIPELINE_MRR_GOAL", 0)
	viper.SetDefault("PIPELINE_WIN_RATE_FLOOR", 20)
	viper.SetDefault("PIPELINE_CHURN_RATE_CEILING", 5)
	viper.SetDefault("PIPELINE_PIPELINE_COVERAGE_FLOOR", 3)
	viper.SetDefault("PIPELINE_DEFAULT_BUCKET_SIZE", string(domain.BucketMonth))
	viper.SetDefault("PIPELINE_DEFAULT_BUCKET_COUNT", 12)

	viper.SetDefault("SNAPSHOT_SYNC_CRON", "0 5 1 * *")      // No primeiro dia de cada mês às 5h da manhã
	viper.SetDefault("SNAPSHOT_SYNC_ENABLED", false)         // Habilitar snapshots mensais
	viper.SetDefault("SNAPSHOT_SYNC_MONTH_LOOKBACK", 1)      // 1 mês para calcular
	viper.SetDefault("SNAPSHOT_SYNC_MAX_CONCURRENT_JOBS", 3) // 3 jobs concorrentes
	viper.SetDefault("SNAPSHOT_SYNC_RETENTION_MONTHS", 24)   // 0 mantém todos os snapshots

	viper.SetDefault("CACHE_REDIS_ADDR", "")
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("CACHE_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.finalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// finalize deriva os campos calculados e valida os valores carregados
func (c *Config) finalize() error {
	if !strings.EqualFold(c.App.ReportingCurrency, string(domain.ReportingCurrency)) {
		return fmt.Errorf("reporting currency %q não suportada, apenas %s", c.App.ReportingCurrency, domain.ReportingCurrency)
	}

	probs := funnel.DefaultStageProbabilities()
	if strings.TrimSpace(c.Pipeline.RawStageProbabilities) != "" {
		parsed, err := funnel.ParseStageProbabilities(c.Pipeline.RawStageProbabilities)
		if err != nil {
			return fmt.Errorf("PIPELINE_STAGE_PROBABILITIES inválido: %w", err)
		}
		probs = parsed
	}
	if err := probs.Validate(); err != nil {
		return fmt.Errorf("PIPELINE_STAGE_PROBABILITIES inválido: %w", err)
	}
	c.Pipeline.StageProbabilities = probs

	if _, err := domain.ParseBucketSize(c.Pipeline.DefaultBucketSize); err != nil {
		return err
	}
	if c.Pipeline.DefaultBucketCount <= 0 {
		c.Pipeline.DefaultBucketCount = 12
	}
	if err := domain.ValidateBucketCount(c.Pipeline.DefaultBucketCount); err != nil {
		return fmt.Errorf("PIPELINE_DEFAULT_BUCKET_COUNT inválido: %w", err)
	}
	if c.SnapshotSync.MaxConcurrentJobs <= 0 {
		c.SnapshotSync.MaxConcurrentJobs = 1
	}

	c.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		c.Database.Driver,
		c.Database.User,
		c.Database.Password,
		c.Database.URL,
	)

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}

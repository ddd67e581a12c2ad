package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vsinha/prodsched/pkg/application/services/priority"
	"github.com/vsinha/prodsched/pkg/domain/entities"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Lock       LockConfig       `mapstructure:"lock"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Priority   PriorityConfig   `mapstructure:"priority"`
	Events     EventsConfig     `mapstructure:"events"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig is optional; an empty Host selects the in-memory store
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// Enabled reports whether a Postgres connection is configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN renders the lib/pq-style connection string accepted by the pgx driver
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json | console
	Output     string `mapstructure:"output"` // stdout | file | both
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type LockConfig struct {
	Backend string        `mapstructure:"backend"` // local | redis
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
	Retry   time.Duration `mapstructure:"retry"`
}

// EventsConfig bounds the in-process event journal; Retention <= 0 keeps every event
type EventsConfig struct {
	Retention int  `mapstructure:"retention"`
	Audit     bool `mapstructure:"audit"`
}

type SchedulingConfig struct {
	Department       string   `mapstructure:"department"`
	Pipeline         []string `mapstructure:"pipeline"`
	WorkDays         []int    `mapstructure:"work_days"`
	ScheduleDays     int      `mapstructure:"schedule_days"`
	CapacityOverride int      `mapstructure:"capacity_override"`
}

type PriorityConfig struct {
	HighWithinDays       int     `mapstructure:"high_within_days"`
	MediumWithinDays     int     `mapstructure:"medium_within_days"`
	ProductionBase       float64 `mapstructure:"production_base"`
	NeedsInformationBase float64 `mapstructure:"needs_information_base"`
	DueDateWeight        float64 `mapstructure:"due_date_weight"`
	CriticalBonus        float64 `mapstructure:"critical_bonus"`
	HighBonus            float64 `mapstructure:"high_bonus"`
	MediumBonus          float64 `mapstructure:"medium_bonus"`
	LowBonus             float64 `mapstructure:"low_bonus"`
}

// Rules converts the priority section into queue builder rules
func (p PriorityConfig) Rules() priority.Rules {
	return priority.Rules{
		HighWithinDays:       p.HighWithinDays,
		MediumWithinDays:     p.MediumWithinDays,
		ProductionBase:       p.ProductionBase,
		NeedsInformationBase: p.NeedsInformationBase,
		DueDateWeight:        p.DueDateWeight,
		UrgencyBonus: map[entities.UrgencyLevel]float64{
			entities.Critical: p.CriticalBonus,
			entities.High:     p.HighBonus,
			entities.Medium:   p.MediumBonus,
			entities.Low:      p.LowBonus,
		},
	}
}

// PipelineDepartments returns the configured pipeline as departments
func (s SchedulingConfig) PipelineDepartments() []entities.Department {
	out := make([]entities.Department, len(s.Pipeline))
	for i, d := range s.Pipeline {
		out[i] = entities.Department(d)
	}
	return out
}

// Load reads config.yaml from ./configs or the working directory, then applies .env and environment overrides.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SCHED")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "prodsched")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "prodsched")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/prodsched.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.prefix", "prodsched:commit:")
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("lock.retry", 100*time.Millisecond)

	v.SetDefault("events.retention", 10000)
	v.SetDefault("events.audit", true)

	pipeline := make([]string, len(entities.DefaultPipeline))
	for i, d := range entities.DefaultPipeline {
		pipeline[i] = string(d)
	}
	v.SetDefault("scheduling.department", string(entities.Cutting))
	v.SetDefault("scheduling.pipeline", pipeline)
	v.SetDefault("scheduling.work_days", []int{1, 2, 3, 4})
	v.SetDefault("scheduling.schedule_days", entities.DefaultScheduleDays)
	v.SetDefault("scheduling.capacity_override", 0)

	rules := priority.DefaultRules()
	v.SetDefault("priority.high_within_days", rules.HighWithinDays)
	v.SetDefault("priority.medium_within_days", rules.MediumWithinDays)
	v.SetDefault("priority.production_base", rules.ProductionBase)
	v.SetDefault("priority.needs_information_base", rules.NeedsInformationBase)
	v.SetDefault("priority.due_date_weight", rules.DueDateWeight)
	v.SetDefault("priority.critical_bonus", rules.UrgencyBonus[entities.Critical])
	v.SetDefault("priority.high_bonus", rules.UrgencyBonus[entities.High])
	v.SetDefault("priority.medium_bonus", rules.UrgencyBonus[entities.Medium])
	v.SetDefault("priority.low_bonus", rules.UrgencyBonus[entities.Low])
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.mode", "SERVER_MODE")

	// Database
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.dbname", "DB_NAME")
	_ = v.BindEnv("database.sslmode", "DB_SSLMODE")

	// Redis
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Log
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

// Validate rejects configurations the scheduler cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch c.Lock.Backend {
	case "local", "redis":
	default:
		return fmt.Errorf("unknown lock backend %q", c.Lock.Backend)
	}
	if c.Lock.Backend == "redis" && c.Lock.TTL <= 0 {
		return fmt.Errorf("redis lock ttl must be positive")
	}

	pipeline, err := entities.NewPipeline(c.Scheduling.PipelineDepartments())
	if err != nil {
		return fmt.Errorf("invalid scheduling pipeline: %w", err)
	}
	dept := entities.Department(c.Scheduling.Department)
	if !pipeline.Contains(dept) {
		return fmt.Errorf("scheduling department %q is not in the pipeline", dept)
	}
	if dept == pipeline.Terminal() {
		return fmt.Errorf("scheduling department %q is terminal", dept)
	}

	week := entities.WorkWeekConfig{
		WeekStart:        entities.MondayOf(time.Now()),
		SelectedWorkDays: c.Scheduling.WorkDays,
		ScheduleDays:     c.Scheduling.ScheduleDays,
		CapacityOverride: c.Scheduling.CapacityOverride,
	}
	if err := week.Validate(); err != nil {
		return fmt.Errorf("invalid scheduling defaults: %w", err)
	}

	if err := c.Priority.Rules().Validate(); err != nil {
		return fmt.Errorf("invalid priority rules: %w", err)
	}
	return nil
}

// Week builds a WorkWeekConfig for weekStart using the configured defaults
func (c *Config) Week(weekStart time.Time) (*entities.WorkWeekConfig, error) {
	week, err := entities.NewWorkWeekConfig(weekStart, c.Scheduling.WorkDays, c.Scheduling.ScheduleDays)
	if err != nil {
		return nil, err
	}
	week.CapacityOverride = c.Scheduling.CapacityOverride
	return week, nil
}

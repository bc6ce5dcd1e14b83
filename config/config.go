package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"onduty"`

	// PostgreSQL 配置
	PostgreSQLHost       string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort       string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser       string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword   string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase   string `env:"POSTGRESQL_DATABASE" envDefault:"onduty"`
	PostgreSQLSchema     string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode    string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle    int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen    int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicaDSN string `env:"POSTGRESQL_REPLICA_DSN"` // 只读副本，历史/汇总查询走这里

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"onduty"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 动态条码配置
	BarcodeRotationSeconds int    `env:"BARCODE_ROTATION_SECONDS" envDefault:"300"`
	BarcodeSecretKey       string `env:"BARCODE_SECRET_KEY"` // 必填，HMAC 签名密钥
	BarcodeSlotTolerance   int    `env:"BARCODE_SLOT_TOLERANCE" envDefault:"1"`

	// GPS 配置
	GPSMaxAccuracyMeters float64 `env:"GPS_MAX_ACCURACY_METERS" envDefault:"100"`

	// 设备注册配置
	DeviceRegistrationEnabled bool `env:"DEVICE_REGISTRATION_ENABLED" envDefault:"false"`
	MaxDevicesPerUser         int  `env:"MAX_DEVICES_PER_USER" envDefault:"2"`

	// IP 白名单配置，逗号或换行分隔，支持 IPv4 CIDR
	IPWhitelistEnabled bool   `env:"IP_WHITELIST_ENABLED" envDefault:"false"`
	IPWhitelist        string `env:"IP_WHITELIST"`

	// 加班配置
	WeekendOvertimeEnabled bool    `env:"WEEKEND_OVERTIME_ENABLED" envDefault:"true"`
	SaturdayMultiplier     float64 `env:"SATURDAY_MULTIPLIER" envDefault:"1.5"`
	SundayMultiplier       float64 `env:"SUNDAY_MULTIPLIER" envDefault:"2.0"`

	// 缺勤扫描配置，每天跑一次
	AbsenceSweepAt string `env:"ABSENCE_SWEEP_AT" envDefault:"23:30:00"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// 链路追踪配置
	OTLPEndpoint string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	TraceSample  float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"0.1"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if Cfg.BarcodeSecretKey == "" {
		log.Fatal("BARCODE_SECRET_KEY is required")
	}

	if Cfg.BarcodeRotationSeconds <= 0 {
		log.Fatal("BARCODE_ROTATION_SECONDS must be positive")
	}

	if Cfg.BarcodeSlotTolerance < 0 {
		log.Fatal("BARCODE_SLOT_TOLERANCE cannot be negative")
	}

	if Cfg.IPWhitelistEnabled && Cfg.IPWhitelist == "" {
		log.Printf("WARN: IP_WHITELIST_ENABLED is set but IP_WHITELIST is empty, all IPs will be allowed")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

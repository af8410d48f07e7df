package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 单请求超时 / 最大并发 / 请求体上限
	RequestTimeoutSec int
	MaxInFlight       int64
	MaxBodyMB         int64
}

type CORS struct {
	AllowOrigins []string
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
	CORS CORS
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret string
	Issuer string
	// 0 = 不过期（令牌仅在登出 / 重新登录时失效）
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// 令牌缓存 TTL（秒）
	TokenCacheTTLSec int `mapstructure:"tokencachettlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowQueryMs        int
}

type Todo struct {
	PerPage    int
	MaxPerPage int
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
	Todo  Todo
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "todo-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.http.maxbodymb", 16)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "todo-api")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "todo.db")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.slowqueryms", 200)
	v.SetDefault("redis.tokencachettlsec", 300)
	v.SetDefault("todo.perpage", 15)
	v.SetDefault("todo.maxperpage", 100)
}

// Read 读取 yaml + APP_ 前缀环境变量（如 APP_DB_DSN 覆盖 db.dsn）
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt.secret is required")
	}
	return &c, nil
}

// Load 启动期使用：失败直接退出
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken     string   `env:"TOKEN"`
		TestTelegramAPIToken string   `env:"TEST_TOKEN"`
		AdminID              int64    `env:"ADMIN_ID,required"`
		AdminUserName        string   `env:"ADMIN_USERNAME"`
		DefaultLanguage      string   `env:"LANG,default=ru"`
		EnabledHandlers      []string `env:"HANDLERS,default=commands,inline,moderation"`
		LogLevel             int      `env:"LOG_LEVEL,default=4"`
		DotPath              string   `env:"DOT_PATH,default=~/.kindbot"`
		MetricsAddr          string   `env:"METRICS_ADDR,default=:2112"`
		Notify               Notify

		// TestMode is driven by the -test CLI flag, not the environment.
		TestMode bool
	}

	Notify struct {
		CronSpec  string        `env:"NOTIFY_CRON,default=0 10 * * *"`
		OnceDelay time.Duration `env:"NOTIFY_ONCE_DELAY,default=5s"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
	testMode     bool
)

// SetTestMode must be called before the first Load, i.e. right after flag parsing.
func SetTestMode(v bool) {
	testMode = v
}

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("KP_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DotPath = strings.Replace(cfg.DotPath, "~", home, 1)
		cfg.TestMode = testMode
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}

// Token returns the credential pair member selected by test mode.
func (c Config) Token() string {
	if c.TestMode {
		return c.TestTelegramAPIToken
	}
	return c.TelegramAPIToken
}

// LogFileName returns the log file name selected by test mode.
func (c Config) LogFileName() string {
	if c.TestMode {
		return "kindbot-test.log"
	}
	return "kindbot.log"
}

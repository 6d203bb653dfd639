// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/session"
)

var ErrInvalid = errors.New("config: invalid value")

// Config is the full server configuration.
type Config struct {
	Port        string
	DatabaseURL string // PostgreSQL; takes precedence over SQLitePath
	RedisURL    string // cache in front of the primary store
	SQLitePath  string // local file store when DatabaseURL is empty
	CatalogPath string // YAML overriding the embedded catalog
	CacheTTL    time.Duration

	DecisionDelay time.Duration
	Engine        game.Config
	Seed          int64 // 0 seeds from the clock
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return Parse(os.Getenv)
}

// Parse reads the configuration through getenv. Unset variables take
// their defaults; malformed ones are errors.
func Parse(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:          "8080",
		CacheTTL:      30 * time.Second,
		DecisionDelay: session.DefaultDecisionDelay,
		Engine:        game.DefaultConfig(),
	}
	p := parser{getenv: getenv}

	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	cfg.DatabaseURL = getenv("DATABASE_URL")
	cfg.RedisURL = getenv("REDIS_URL")
	cfg.SQLitePath = getenv("SQLITE_PATH")
	cfg.CatalogPath = getenv("CATALOG_PATH")

	p.duration("CACHE_TTL", &cfg.CacheTTL)
	p.duration("DECISION_DELAY", &cfg.DecisionDelay)
	p.positiveInt("MAX_TURNS", &cfg.Engine.MaxTurns)
	p.rate("REVENUE_RATE", &cfg.Engine.Rates.RevenueRate)
	p.rate("INFRA_RATE", &cfg.Engine.Rates.InfraRate)
	p.rate("PER_EMPLOYEE_COST", &cfg.Engine.Rates.PerEmployeeCost)
	if v := getenv("RNG_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		} else {
			p.fail("RNG_SEED", v)
		}
	}

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) fail(key, value string) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, value))
}

func (p *parser) duration(key string, dst *time.Duration) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.fail(key, v)
		return
	}
	*dst = d
}

func (p *parser) positiveInt(key string, dst *int) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		p.fail(key, v)
		return
	}
	*dst = n
}

func (p *parser) rate(key string, dst *decimal.Decimal) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		p.fail(key, v)
		return
	}
	*dst = d
}

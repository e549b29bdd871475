// Package config holds the server configuration. Values come from defaults,
// STOREFRONT_* environment variables and command-line flags, in that order of
// precedence from lowest to highest.
package config

import (
	"fmt"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const Prefix = "STOREFRONT"

const (
	StorageFile  = "file"
	StorageRedis = "redis"

	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogMySQL    = "mysql"

	SinkLog   = "log"
	SinkMySQL = "mysql"
	SinkKafka = "kafka"
)

type Config struct {
	conf.Version
	Log struct {
		Level  string `conf:"default:info"`
		Format string `conf:"default:json,help:json|text"`
	}
	Web struct {
		Address         string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:10s"`
		CheckoutRPS     float64       `conf:"default:1"`
		CheckoutBurst   int           `conf:"default:5"`
		TrustProxy      bool          `conf:"default:false,help:honour X-Forwarded-For from a fronting proxy"`
	}
	Pricing struct {
		TaxRate               string `conf:"default:0.10"`
		FreeShippingThreshold string `conf:"default:4150"`
		FlatShippingFee       string `conf:"default:497"`
	}
	Cart struct {
		Storage         string        `conf:"default:file,help:file|redis"`
		Key             string        `conf:"default:cart"`
		Dir             string        `conf:"default:./data"`
		SaveTimeout     time.Duration `conf:"default:2s"`
		BreakerFailures uint32        `conf:"default:5"`
		BreakerOpen     time.Duration `conf:"default:30s"`
	}
	Redis struct {
		Addr     string        `conf:"default:localhost:6379"`
		Password string        `conf:"mask"`
		DB       int           `conf:"default:0"`
		TTL      time.Duration `conf:"default:0s"`
	}
	Catalog struct {
		Source string `conf:"default:embedded,help:embedded|file|mysql"`
		Path   string
	}
	MySQL struct {
		DSN     string `conf:"default:root:root@tcp(localhost:3306)/storefront?parseTime=true&multiStatements=true,mask"`
		Migrate bool   `conf:"default:true"`
	}
	Orders struct {
		Sink      string `conf:"default:log,help:log|mysql|kafka"`
		Workers   int    `conf:"default:2"`
		QueueSize int    `conf:"default:100"`
	}
	Kafka struct {
		Brokers []string `conf:"default:localhost:9092"`
		Topic   string   `conf:"default:storefront.orders"`
	}
}

// Parse loads the configuration. When help is requested the returned string
// holds the usage text and err is conf.ErrHelpWanted.
func Parse(build string) (Config, string, error) {
	var cfg Config
	cfg.Version = conf.Version{
		Build: build,
		Desc:  "storefront cart service",
	}

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		return cfg, help, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, "", err
	}
	return cfg, "", nil
}

func (c Config) validate() error {
	switch c.Cart.Storage {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("cart storage %q: want %s or %s", c.Cart.Storage, StorageFile, StorageRedis)
	}
	switch c.Catalog.Source {
	case CatalogEmbedded, CatalogMySQL:
	case CatalogFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog source %q needs a path", CatalogFile)
		}
	default:
		return fmt.Errorf("catalog source %q: want %s, %s or %s", c.Catalog.Source, CatalogEmbedded, CatalogFile, CatalogMySQL)
	}
	switch c.Orders.Sink {
	case SinkLog, SinkMySQL, SinkKafka:
	default:
		return fmt.Errorf("order sink %q: want %s, %s or %s", c.Orders.Sink, SinkLog, SinkMySQL, SinkKafka)
	}
	if c.Orders.Workers < 1 {
		return fmt.Errorf("order workers must be at least 1, got %d", c.Orders.Workers)
	}
	if _, err := c.PricingPolicy(); err != nil {
		return err
	}
	return nil
}

// PricingPolicy builds the single policy every totals view uses.
func (c Config) PricingPolicy() (domain.PricingPolicy, error) {
	var policy domain.PricingPolicy
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"tax rate", c.Pricing.TaxRate, &policy.TaxRate},
		{"free shipping threshold", c.Pricing.FreeShippingThreshold, &policy.FreeShippingThreshold},
		{"flat shipping fee", c.Pricing.FlatShippingFee, &policy.FlatShippingFee},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return domain.PricingPolicy{}, fmt.Errorf("pricing %s %q: %w", f.name, f.raw, err)
		}
		if d.IsNegative() {
			return domain.PricingPolicy{}, fmt.Errorf("pricing %s %q: must not be negative", f.name, f.raw)
		}
		*f.dst = d
	}
	return policy, nil
}

// NeedsMySQL reports whether any component is configured to use MySQL.
func (c Config) NeedsMySQL() bool {
	return c.Catalog.Source == CatalogMySQL || c.Orders.Sink == SinkMySQL
}

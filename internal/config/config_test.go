package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs hides the test binary's own flags from conf.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"storefront"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestParse_Defaults(t *testing.T) {
	withArgs(t)

	cfg, _, err := Parse("test")
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.Cart.Storage)
	assert.Equal(t, "cart", cfg.Cart.Key)
	assert.Equal(t, 2*time.Second, cfg.Cart.SaveTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.NeedsMySQL())
	assert.False(t, cfg.Web.TrustProxy)

	policy, err := cfg.PricingPolicy()
	require.NoError(t, err)
	assert.Equal(t, "0.10", policy.TaxRate.StringFixed(2))
	assert.Equal(t, "4150", policy.FreeShippingThreshold.String())
	assert.Equal(t, "497", policy.FlatShippingFee.String())
}

func TestParse_Environment(t *testing.T) {
	withArgs(t)
	t.Setenv("STOREFRONT_CART_STORAGE", "redis")
	t.Setenv("STOREFRONT_PRICING_FREE_SHIPPING_THRESHOLD", "50")
	t.Setenv("STOREFRONT_PRICING_FLAT_SHIPPING_FEE", "5.99")
	t.Setenv("STOREFRONT_ORDERS_SINK", "mysql")
	t.Setenv("STOREFRONT_WEB_TRUST_PROXY", "true")

	cfg, _, err := Parse("test")
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Cart.Storage)
	assert.True(t, cfg.NeedsMySQL())
	assert.True(t, cfg.Web.TrustProxy)
	policy, err := cfg.PricingPolicy()
	require.NoError(t, err)
	assert.Equal(t, "5.99", policy.FlatShippingFee.String())
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"storage":  {"STOREFRONT_CART_STORAGE", "floppy"},
		"sink":     {"STOREFRONT_ORDERS_SINK", "fax"},
		"tax":      {"STOREFRONT_PRICING_TAX_RATE", "ten percent"},
		"negative": {"STOREFRONT_PRICING_FLAT_SHIPPING_FEE", "-1"},
		"workers":  {"STOREFRONT_ORDERS_WORKERS", "0"},
		"catalog":  {"STOREFRONT_CATALOG_SOURCE", "file"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			withArgs(t)
			t.Setenv(env[0], env[1])

			_, _, err := Parse("test")
			assert.Error(t, err)
		})
	}
}

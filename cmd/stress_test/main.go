package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	cartKey       = "stress-cart"
	shoppers      = 50
	opsPerShopper = 200
)

func main() {
	ctx := context.Background()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	// Initialize Redis, falling back to an in-process server
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		mr, err := miniredis.Run()
		if err != nil {
			log.WithError(err).Fatal("failed to start miniredis")
		}
		defer mr.Close()
		rdb.Close()
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		addr = "miniredis " + mr.Addr()
	}
	defer rdb.Close()

	slot := storage.NewRedisSlot(rdb, 0)
	if err := slot.Set(ctx, cartKey, []byte("[]")); err != nil {
		log.WithError(err).Fatal("failed to reset cart")
	}

	products, err := storage.NewJSONCatalog("").LoadProducts(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to load catalog")
	}
	catalog, err := service.NewCatalog(products)
	if err != nil {
		log.WithError(err).Fatal("invalid catalog")
	}
	products = catalog.Products()

	ledger := service.NewLedger(ctx, storage.NewCartStore(slot, cartKey, log), 2*time.Second, log)

	var notifications atomic.Int64
	ledger.Subscribe(func(domain.Snapshot) { notifications.Add(1) })

	// Counters
	var adds, rejected, updates, removes atomic.Int64

	// Spawn concurrent shoppers
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for j := 0; j < opsPerShopper; j++ {
				p := products[rng.Intn(len(products))]
				switch n := rng.Intn(10); {
				case n < 6:
					if _, err := ledger.AddLine(p, 1+rng.Intn(3), pick(rng, p.Sizes), pick(rng, p.Colors)); err != nil {
						rejected.Add(1)
					} else {
						adds.Add(1)
					}
				case n < 9:
					ledger.SetQuantity(p.ID, rng.Intn(5))
					updates.Add(1)
				default:
					ledger.RemoveLine(p.ID)
					removes.Add(1)
				}
			}
		}(int64(i))
	}

	wg.Wait()
	elapsed := time.Since(start)

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ledger.Flush(flushCtx); err != nil {
		log.WithError(err).Fatal("flush failed")
	}

	final := ledger.Snapshot()
	reloaded := storage.NewCartStore(slot, cartKey, log).Load(ctx)

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Redis:            %s\n", addr)
	fmt.Printf("Operations:       %d\n", shoppers*opsPerShopper)
	fmt.Printf("Adds:             %d\n", adds.Load())
	fmt.Printf("Rejected Adds:    %d\n", rejected.Load())
	fmt.Printf("Quantity Updates: %d\n", updates.Load())
	fmt.Printf("Removals:         %d\n", removes.Load())
	fmt.Printf("Notifications:    %d\n", notifications.Load())
	fmt.Printf("Final Lines:      %d\n", len(final))
	fmt.Printf("Final Items:      %d\n", final.ItemCount())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	failed := false
	if err := checkInvariants(final); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		failed = true
	} else {
		fmt.Println("PASS: Line keys unique and quantities positive")
	}

	diff := cmp.Diff(final, reloaded,
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
		cmpopts.EquateEmpty(),
	)
	if diff != "" {
		fmt.Printf("FAIL: Persisted cart differs from memory (-memory +stored):\n%s", diff)
		failed = true
	} else {
		fmt.Println("PASS: Persisted cart matches memory")
	}

	if err := ledger.Close(flushCtx); err != nil {
		log.WithError(err).Warn("close ledger")
	}
	if failed {
		os.Exit(1)
	}
}

func pick(rng *rand.Rand, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[rng.Intn(len(options))]
}

func checkInvariants(s domain.Snapshot) error {
	seen := make(map[domain.LineKey]bool, len(s))
	for _, line := range s {
		if seen[line.Key()] {
			return fmt.Errorf("duplicate line %+v", line.Key())
		}
		seen[line.Key()] = true
		if line.Quantity < 1 {
			return fmt.Errorf("line %+v has quantity %d", line.Key(), line.Quantity)
		}
	}
	return nil
}

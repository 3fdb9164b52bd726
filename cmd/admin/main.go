// Admin tooling for the execution pipeline: sweep expired cache
// entries and inspect cache state without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/execpipe/backend/conf"
	"github.com/execpipe/backend/rescache"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		panic("Error loading .env file")
	}

	batchSize := flag.Int("batch", rescache.DefaultSweepBatchSize, "delete batch size")
	dryRun := flag.Bool("dry-run", false, "count expired entries without deleting")
	persistTTL := flag.Duration("ttl", rescache.DefaultPersistTTL, "persistent entry time to live")
	flag.Parse()

	logger := slog.Default()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		fmt.Printf("Error loading AWS config: %v\n", err)
		os.Exit(1)
	}
	ddbClient := dynamodb.NewFromConfig(awsCfg)
	repo := rescache.NewDdbCacheRepo(logger, ddbClient, conf.GetCacheTableNameFromEnv())

	ctx := context.Background()

	if *dryRun {
		n, err := countExpired(ctx, repo, *persistTTL, *batchSize)
		if err != nil {
			fmt.Printf("Error counting expired entries: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d expired entries (nothing deleted)\n", n)
		return
	}

	cache := rescache.NewCache(logger, repo, rescache.Config{PersistTTL: *persistTTL})
	removed, err := cache.Sweep(ctx, *batchSize)
	if err != nil {
		fmt.Printf("Error sweeping cache: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("removed %d expired entries\n", removed)
}

// countExpired pages through expired fingerprints the same way a
// sweep would, but never issues deletes. Entries expiring while the
// count runs make the number approximate.
func countExpired(ctx context.Context, repo rescache.PersistRepo, ttl time.Duration, pageSize int) (int, error) {
	cutoff := time.Now().Add(-ttl)
	total := 0
	seen := make(map[string]struct{})
	for {
		expired, err := repo.ListExpired(ctx, cutoff, pageSize)
		if err != nil {
			return total, err
		}
		newKeys := 0
		for _, fp := range expired {
			if _, dup := seen[fp]; !dup {
				seen[fp] = struct{}{}
				newKeys++
			}
		}
		total += newKeys
		// without deletes the listing repeats itself once the
		// whole table has been seen
		if len(expired) < pageSize || newKeys == 0 {
			return total, nil
		}
	}
}

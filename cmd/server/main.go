package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/execpipe/backend/conf"
	"github.com/execpipe/backend/engine"
	"github.com/execpipe/backend/execsrvc"
	"github.com/execpipe/backend/http"
	"github.com/execpipe/backend/planglist"
	"github.com/execpipe/backend/ratelimit"
	"github.com/execpipe/backend/rescache"
	"github.com/execpipe/backend/screener"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		panic("Error loading .env file")
	}

	logger := slog.Default()

	if path := conf.GetLangTomlPathFromEnv(); path != "" {
		if err := planglist.LoadFromTomlFile(path); err != nil {
			slog.Error("failed to load language list", "path", path, "error", err)
			os.Exit(1)
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		slog.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	ddbClient := dynamodb.NewFromConfig(awsCfg)

	cache := rescache.NewCache(logger,
		rescache.NewDdbCacheRepo(logger, ddbClient, conf.GetCacheTableNameFromEnv()),
		rescache.Config{
			MemMaxEntries: conf.IntFromEnv("CACHE_MEM_MAX_ENTRIES", rescache.DefaultMemMaxEntries),
			MemTTL:        conf.DurationFromEnv("CACHE_MEM_TTL", rescache.DefaultMemTTL),
			PersistTTL:    conf.DurationFromEnv("CACHE_PERSIST_TTL", rescache.DefaultPersistTTL),
			StoreFailures: os.Getenv("CACHE_STORE_FAILURES") == "true",
		})

	limiter := ratelimit.NewLimiter(logger,
		ratelimit.NewDdbWindowRepo(logger, ddbClient, conf.GetRateLimitTableNameFromEnv()),
		ratelimit.Config{
			SingleMax:  conf.IntFromEnv("RATE_LIMIT_SINGLE_MAX", ratelimit.DefaultSingleMax),
			BatchMax:   conf.IntFromEnv("RATE_LIMIT_BATCH_MAX", ratelimit.DefaultBatchMax),
			FailClosed: os.Getenv("RATE_LIMIT_FAIL_CLOSED") == "true",
		})

	runner := engine.NewClient(logger, engine.Config{
		BaseURL: conf.GetEngineBaseURLFromEnv(),
		ApiKey:  conf.GetEngineApiKeyFromEnv(),
	})

	var execLog execsrvc.ExecLogRepo
	if bucket := conf.GetExecLogBucketFromEnv(); bucket != "" {
		execLog = execsrvc.NewS3ExecLogRepo(logger, s3.NewFromConfig(awsCfg), bucket)
	}

	execSrvc := execsrvc.NewExecSrvc(
		logger,
		screener.NewScreener(0),
		limiter,
		cache,
		runner,
		execLog,
		execsrvc.Config{},
	)

	httpServer := http.NewHttpServer(execSrvc, conf.GetJwtKeyFromEnv())

	address := ":8080"
	log.Printf("Starting server on %s", address)
	err = httpServer.Start(address)
	log.Printf("Server stopped with error: %v", err)
}

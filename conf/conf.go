// Package conf reads process configuration from the environment.
// Secrets that must not live in env files are fetched from AWS
// Secrets Manager when the corresponding *_SECRET_NAME variable is
// set.
package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetEngineBaseURLFromEnv returns the execution engine endpoint.
func GetEngineBaseURLFromEnv() string {
	url := os.Getenv("ENGINE_BASE_URL")
	if url == "" {
		panic("ENGINE_BASE_URL environment variable is not set")
	}
	return url
}

// GetEngineApiKeyFromEnv returns the engine API key. Local setups
// put the key directly in ENGINE_API_KEY; deployed environments
// name a Secrets Manager secret holding {"api_key": "..."} instead.
func GetEngineApiKeyFromEnv() string {
	if key := os.Getenv("ENGINE_API_KEY"); key != "" {
		return key
	}
	secretName := os.Getenv("ENGINE_API_KEY_SECRET_NAME")
	if secretName == "" {
		panic("neither ENGINE_API_KEY nor ENGINE_API_KEY_SECRET_NAME is set")
	}
	secretValue, err := getSecretFromAWS(secretName)
	if err != nil {
		panic(fmt.Sprintf("failed to get engine api key from AWS: %v", err))
	}
	var secret struct {
		ApiKey string `json:"api_key"`
	}
	if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
		panic(fmt.Sprintf("failed to parse engine api key secret: %v", err))
	}
	return secret.ApiKey
}

// GetJwtKeyFromEnv returns the HMAC key used to verify bearer
// tokens, following the same env-or-secret convention.
func GetJwtKeyFromEnv() []byte {
	if key := os.Getenv("JWT_KEY"); key != "" {
		return []byte(key)
	}
	secretName := os.Getenv("JWT_KEY_SECRET_NAME")
	if secretName == "" {
		panic("neither JWT_KEY nor JWT_KEY_SECRET_NAME is set")
	}
	secretValue, err := getSecretFromAWS(secretName)
	if err != nil {
		panic(fmt.Sprintf("failed to get jwt key from AWS: %v", err))
	}
	var secret struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
		panic(fmt.Sprintf("failed to parse jwt key secret: %v", err))
	}
	return []byte(secret.Key)
}

func GetCacheTableNameFromEnv() string {
	table := os.Getenv("RESULT_CACHE_DDB_TABLE_NAME")
	if table == "" {
		panic("RESULT_CACHE_DDB_TABLE_NAME environment variable is not set")
	}
	return table
}

func GetRateLimitTableNameFromEnv() string {
	table := os.Getenv("RATE_LIMIT_DDB_TABLE_NAME")
	if table == "" {
		panic("RATE_LIMIT_DDB_TABLE_NAME environment variable is not set")
	}
	return table
}

// GetExecLogBucketFromEnv returns the S3 bucket for execution audit
// logs. Empty means audit logging is disabled.
func GetExecLogBucketFromEnv() string {
	return os.Getenv("EXEC_LOG_S3_BUCKET")
}

// GetLangTomlPathFromEnv returns the optional path to a TOML file
// overriding the built-in programming language list.
func GetLangTomlPathFromEnv() string {
	return os.Getenv("LANG_TOML_PATH")
}

// IntFromEnv reads an integer variable, falling back to def when the
// variable is unset. A set-but-unparsable value panics so typos fail
// fast at startup.
func IntFromEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		panic(fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return v
}

// DurationFromEnv reads a time.Duration variable ("90s", "1h", ...),
// falling back to def when unset.
func DurationFromEnv(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		panic(fmt.Sprintf("%s must be a duration, got %q", name, raw))
	}
	return v
}

func getSecretFromAWS(secretName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return "", err
	}
	svc := secretsmanager.NewFromConfig(cfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	return *result.SecretString, nil
}

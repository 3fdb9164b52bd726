package rescache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/execpipe/backend/engine"
)

// ddbCacheRow is the persisted shape of a cache entry. The result is
// stored as a zstd-compressed JSON blob since stdout can be large.
type ddbCacheRow struct {
	Fingerprint string `dynamo:"fingerprint,hash"`
	CreatedAt   int64  `dynamo:"created_at"` // unix seconds
	Success     bool   `dynamo:"success"`
	Payload     []byte `dynamo:"payload"`
}

// ddbAPI is the slice of the raw DynamoDB client the repo uses
// directly, next to the guregu table wrapper.
type ddbAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DdbCacheRepo is the DynamoDB-backed persistent tier.
type DdbCacheRepo struct {
	logger    *slog.Logger
	ddbClient ddbAPI
	tableName string
	table     *dynamo.Table

	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
}

func NewDdbCacheRepo(
	logger *slog.Logger,
	ddbClient *dynamodb.Client,
	tableName string,
) *DdbCacheRepo {
	db := dynamo.NewFromIface(ddbClient)
	table := db.Table(tableName)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create zstd encoder: %w", err))
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create zstd decoder: %w", err))
	}

	return &DdbCacheRepo{
		logger:    logger.With("module", "rescache"),
		ddbClient: ddbClient,
		tableName: tableName,
		table:     &table,
		zstdEnc:   enc,
		zstdDec:   dec,
	}
}

func (r *DdbCacheRepo) Get(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	var row ddbCacheRow
	err := r.table.Get("fingerprint", fingerprint).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	decompressed, err := r.zstdDec.DecodeAll(row.Payload, nil)
	if err != nil {
		// unreadable entry, treat as a miss rather than failing
		// the request
		r.logger.Warn("failed to decompress cache entry",
			"fingerprint", fingerprint, "error", err)
		return nil, nil
	}
	var result engine.Result
	if err := json.Unmarshal(decompressed, &result); err != nil {
		r.logger.Warn("failed to unmarshal cache entry",
			"fingerprint", fingerprint, "error", err)
		return nil, nil
	}

	return &CacheEntry{
		Fingerprint: row.Fingerprint,
		Result:      result,
		CreatedAt:   time.Unix(row.CreatedAt, 0),
	}, nil
}

func (r *DdbCacheRepo) Put(ctx context.Context, entry CacheEntry) error {
	data, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	compressed := r.zstdEnc.EncodeAll(data, make([]byte, 0, len(data)))

	row := ddbCacheRow{
		Fingerprint: entry.Fingerprint,
		CreatedAt:   entry.CreatedAt.Unix(),
		Success:     entry.Result.Success,
		Payload:     compressed,
	}
	if err := r.table.Put(row).Run(ctx); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// ListExpired scans for entries created before the cutoff,
// following LastEvaluatedKey across pages until it has collected up
// to limit matches or exhausted the table. The per-page Limit bounds
// items evaluated, not items matched, so a single unpaginated scan
// would miss expired rows behind a prefix of fresh ones.
func (r *DdbCacheRepo) ListExpired(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]string, error) {
	filt := expression.Name("created_at").LessThan(expression.Value(cutoff.Unix()))
	proj := expression.NamesList(expression.Name("fingerprint"))
	expr, err := expression.NewBuilder().
		WithFilter(filt).
		WithProjection(proj).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	fps := make([]string, 0, limit)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddbClient.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 &r.tableName,
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(int32(limit)),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan for expired entries: %w", err)
		}

		var rows []struct {
			Fingerprint string `dynamodbav:"fingerprint"`
		}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan result: %w", err)
		}
		for _, row := range rows {
			fps = append(fps, row.Fingerprint)
		}

		if len(fps) >= limit || out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	if len(fps) > limit {
		fps = fps[:limit]
	}
	return fps, nil
}

// DeleteBatch removes entries via BatchWriteItem in chunks of 25,
// retrying unprocessed items with exponential backoff. Deleting an
// already-deleted key is a no-op.
func (r *DdbCacheRepo) DeleteBatch(ctx context.Context, fingerprints []string) error {
	const batchSize = 25 // DynamoDB BatchWriteItem limit

	for i := 0; i < len(fingerprints); i += batchSize {
		end := i + batchSize
		if end > len(fingerprints) {
			end = len(fingerprints)
		}
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, fp := range fingerprints[i:end] {
			writeRequests = append(writeRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"fingerprint": &types.AttributeValueMemberS{Value: fp},
					},
				},
			})
		}
		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: writeRequests,
			},
		}
		if err := r.batchWriteWithRetry(ctx, input, 5); err != nil {
			return fmt.Errorf("failed to batch delete cache entries: %w", err)
		}
	}
	return nil
}

func (r *DdbCacheRepo) batchWriteWithRetry(
	ctx context.Context,
	input *dynamodb.BatchWriteItemInput,
	maxRetries int,
) error {
	currentRetry := 0
	for {
		resp, err := r.ddbClient.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		unprocessed, exists := resp.UnprocessedItems[r.tableName]
		if !exists || len(unprocessed) == 0 {
			return nil
		}
		if currentRetry >= maxRetries {
			return fmt.Errorf("max retries reached with %d unprocessed items",
				len(unprocessed))
		}

		wait := time.Duration(1<<currentRetry) * 100 * time.Millisecond
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		input = &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: unprocessed,
			},
		}
		currentRetry++
	}
}

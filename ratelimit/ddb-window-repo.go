package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
)

// ddbWindowRow stores one user's request window. Timestamps are unix
// milliseconds so pruning survives clock formatting differences.
type ddbWindowRow struct {
	Key        string  `dynamo:"key,hash"`
	Timestamps []int64 `dynamo:"timestamps,omitempty"`
	UpdatedAt  int64   `dynamo:"updated_at"`
}

type DdbWindowRepo struct {
	logger *slog.Logger
	table  *dynamo.Table
}

func NewDdbWindowRepo(
	logger *slog.Logger,
	ddbClient *dynamodb.Client,
	tableName string,
) *DdbWindowRepo {
	db := dynamo.NewFromIface(ddbClient)
	table := db.Table(tableName)
	return &DdbWindowRepo{
		logger: logger.With("module", "ratelimit"),
		table:  &table,
	}
}

func (r *DdbWindowRepo) Get(ctx context.Context, key string) ([]time.Time, error) {
	var row ddbWindowRow
	err := r.table.Get("key", key).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate window: %w", err)
	}
	stamps := make([]time.Time, 0, len(row.Timestamps))
	for _, ms := range row.Timestamps {
		stamps = append(stamps, time.UnixMilli(ms))
	}
	return stamps, nil
}

func (r *DdbWindowRepo) Put(ctx context.Context, key string, timestamps []time.Time) error {
	row := ddbWindowRow{
		Key:       key,
		UpdatedAt: time.Now().Unix(),
	}
	for _, ts := range timestamps {
		row.Timestamps = append(row.Timestamps, ts.UnixMilli())
	}
	if err := r.table.Put(row).Run(ctx); err != nil {
		return fmt.Errorf("failed to put rate window: %w", err)
	}
	return nil
}

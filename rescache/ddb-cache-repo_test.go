package rescache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// fakeDdb replays a fixed sequence of scan pages and records the
// inputs it was called with.
type fakeDdb struct {
	pages      []*dynamodb.ScanOutput
	scanInputs []*dynamodb.ScanInput
}

func (f *fakeDdb) Scan(
	ctx context.Context,
	params *dynamodb.ScanInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, params)
	return f.pages[len(f.scanInputs)-1], nil
}

func (f *fakeDdb) BatchWriteItem(
	ctx context.Context,
	params *dynamodb.BatchWriteItemInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.BatchWriteItemOutput, error) {
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func fingerprintItem(fp string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"fingerprint": &types.AttributeValueMemberS{Value: fp},
	}
}

func TestListExpiredFollowsScanCursor(t *testing.T) {
	// first page evaluates only fresh rows: zero matches, but the
	// table is not exhausted yet
	cursor := fingerprintItem("fp-fresh-25")
	fake := &fakeDdb{pages: []*dynamodb.ScanOutput{
		{Items: nil, LastEvaluatedKey: cursor},
		{Items: []map[string]types.AttributeValue{
			fingerprintItem("fp-old-1"),
			fingerprintItem("fp-old-2"),
		}},
	}}
	repo := &DdbCacheRepo{
		logger:    slog.Default(),
		ddbClient: fake,
		tableName: "result-cache",
	}

	fps, err := repo.ListExpired(context.Background(), time.Now(), 25)
	require.NoError(t, err)
	require.Equal(t, []string{"fp-old-1", "fp-old-2"}, fps)

	require.Len(t, fake.scanInputs, 2)
	require.Nil(t, fake.scanInputs[0].ExclusiveStartKey)
	require.Equal(t, cursor, fake.scanInputs[1].ExclusiveStartKey)
}

func TestListExpiredStopsAtLimit(t *testing.T) {
	fake := &fakeDdb{pages: []*dynamodb.ScanOutput{
		{
			Items: []map[string]types.AttributeValue{
				fingerprintItem("fp-old-1"),
				fingerprintItem("fp-old-2"),
			},
			LastEvaluatedKey: fingerprintItem("fp-old-2"),
		},
	}}
	repo := &DdbCacheRepo{
		logger:    slog.Default(),
		ddbClient: fake,
		tableName: "result-cache",
	}

	fps, err := repo.ListExpired(context.Background(), time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, fps, 2)
	require.Len(t, fake.scanInputs, 1, "no further pages once limit is reached")
}

package sentimentdao

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/savaki/ddb/v2"
	"github.com/savaki/ddb/v2/ddbtest"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
)

type Data struct {
	DAO *DAO
}

func setup(t *testing.T) (ctx context.Context, data Data, cleanup func()) {
	ctx = context.Background()

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("us-west-2"),
		config.WithBaseEndpoint("http://localhost:8000"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("blah", "blah", ""),
		),
	)
	assert.NoError(t, err)

	var (
		client    = dynamodb.NewFromConfig(cfg)
		db        = ddb.New(client)
		tableName = fmt.Sprintf("sentiment-test-%v", ksuid.New().String())
		table     = db.MustTable(tableName, Record{})
		dao       = New(client, tableName)
	)

	err = table.CreateTableIfNotExists(ctx)
	assert.NoError(t, err)

	return ctx, Data{DAO: dao}, func() {
		_ = table.DeleteTableIfExists(ctx)
	}
}

func TestDAO(t *testing.T) {
	ddbtest.WithTable[Data](t, setup, func(t *testing.T, ctx context.Context, data Data) {
		dao := data.DAO

		t.Run("Save_Find", func(t *testing.T) {
			record := &Record{
				UID:           ksuid.New().String(),
				Name:          "alice",
				Type:          "chat",
				Message:       "I love this",
				Timestamp:     "2024-01-02T03:04:05Z",
				Sentiment:     "POSITIVE",
				PositiveScore: 0.97,
				NegativeScore: 0.01,
				NeutralScore:  0.015,
				MixedScore:    0.005,
			}

			err := dao.Save(ctx, record)
			assert.NoError(t, err)

			got, err := dao.Find(ctx, record.UID)
			assert.NoError(t, err)
			assert.Equal(t, record, got)
		})

		t.Run("Save_Overwrites", func(t *testing.T) {
			uid := ksuid.New().String()
			assert.NoError(t, dao.Save(ctx, &Record{UID: uid, Sentiment: "NEUTRAL"}))
			assert.NoError(t, dao.Save(ctx, &Record{UID: uid, Sentiment: "MIXED"}))

			got, err := dao.Find(ctx, uid)
			assert.NoError(t, err)
			assert.Equal(t, "MIXED", got.Sentiment)
		})

		t.Run("Save_RequiresUID", func(t *testing.T) {
			assert.Error(t, dao.Save(ctx, &Record{}))
		})

		t.Run("Find_NotFound", func(t *testing.T) {
			got, err := dao.Find(ctx, "missing")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("FindAll", func(t *testing.T) {
			records, err := dao.FindAll(ctx)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, len(records), 2)
		})
	})
}

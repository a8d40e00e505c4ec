package transcriptiondao

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
		tableName = fmt.Sprintf("transcription-test-%v", ksuid.New().String())
		table     = db.MustTable(tableName, Record{})
		dao       = New(client, tableName)
	)

	err = table.CreateTableIfNotExists(ctx)
	assert.NoError(t, err)

	return ctx, Data{DAO: dao}, func() {
		_ = table.DeleteTableIfExists(ctx)
	}
}

func TestNewRecord(t *testing.T) {
	a := NewRecord("job", "hello", "2024-01-01T00:00:00Z")
	b := NewRecord("job", "hello", "2024-01-01T00:00:00Z")

	assert.NotEmpty(t, a.GUID)
	assert.NotEqual(t, a.GUID, b.GUID)
	assert.Equal(t, "job", a.JobName)
}

func TestDAO(t *testing.T) {
	ddbtest.WithTable[Data](t, setup, func(t *testing.T, ctx context.Context, data Data) {
		dao := data.DAO

		t.Run("Save_Find", func(t *testing.T) {
			record := NewRecord("job-1", "hello world", "2024-01-02T03:04:05Z")

			err := dao.Save(ctx, record)
			assert.NoError(t, err)

			got, err := dao.Find(ctx, record.GUID)
			assert.NoError(t, err)
			assert.Equal(t, record, got)
		})

		t.Run("FindByJob", func(t *testing.T) {
			jobName := "job-" + ksuid.New().String()
			assert.NoError(t, dao.Save(ctx, NewRecord(jobName, "one", "t1")))
			assert.NoError(t, dao.Save(ctx, NewRecord(jobName, "two", "t2")))
			assert.NoError(t, dao.Save(ctx, NewRecord("other", "three", "t3")))

			records, err := dao.FindByJob(ctx, jobName)
			assert.NoError(t, err)
			assert.Len(t, records, 2)
		})

		t.Run("Find_NotFound", func(t *testing.T) {
			got, err := dao.Find(ctx, "missing")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	})
}

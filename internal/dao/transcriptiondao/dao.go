package transcriptiondao

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/savaki/ddb/v2"
	"github.com/segmentio/ksuid"
)

// Record is one saved transcription result
type Record struct {
	GUID       string `ddb:"hash" dynamodbav:"guid"`
	JobName    string `dynamodbav:"jobName"`
	Transcript string `dynamodbav:"transcript"`
	Timestamp  string `dynamodbav:"timestamp"`
}

// NewRecord builds a record with a fresh guid
func NewRecord(jobName, transcript, timestamp string) *Record {
	return &Record{
		GUID:       ksuid.New().String(),
		JobName:    jobName,
		Transcript: transcript,
		Timestamp:  timestamp,
	}
}

// DAO provides data access operations for transcription records
type DAO struct {
	db    *ddb.DDB
	table *ddb.Table
}

// New creates a new DAO instance
func New(client *dynamodb.Client, tableName string) *DAO {
	db := ddb.New(client)
	table := db.MustTable(tableName, &Record{})
	return &DAO{
		db:    db,
		table: table,
	}
}

// Save writes record
func (d *DAO) Save(ctx context.Context, record *Record) error {
	if err := d.table.Put(record).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to save transcription %s: %w", record.JobName, err)
	}
	return nil
}

// Find retrieves a transcription by guid
// Returns nil if not found
func (d *DAO) Find(ctx context.Context, guid string) (*Record, error) {
	var record Record
	err := d.table.Get(guid).
		ConsistentRead(true).
		ScanWithContext(ctx, &record)
	if err != nil {
		s := err.Error()
		if strings.Contains(s, "item not found") || strings.Contains(s, "ItemNotFound") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transcription %s: %w", guid, err)
	}

	if record.GUID == "" {
		return nil, nil
	}
	return &record, nil
}

// FindByJob returns every transcription saved for jobName
func (d *DAO) FindByJob(ctx context.Context, jobName string) ([]*Record, error) {
	var records []*Record
	err := d.table.Scan().ConsistentRead(true).EachWithContext(ctx, func(item ddb.Item) (bool, error) {
		var record Record
		if err := item.Unmarshal(&record); err != nil {
			return false, err
		}
		if record.JobName == jobName {
			records = append(records, &record)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan transcriptions: %w", err)
	}
	return records, nil
}

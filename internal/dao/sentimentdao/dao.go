package sentimentdao

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/savaki/ddb/v2"
)

// Record is the sentiment analysis of one chat message
type Record struct {
	UID           string  `ddb:"hash" dynamodbav:"uid"`
	Name          string  `dynamodbav:"name"`
	Type          string  `dynamodbav:"type"`
	Message       string  `dynamodbav:"message"`
	Timestamp     string  `dynamodbav:"timestamp"`
	Sentiment     string  `dynamodbav:"sentiment"`
	PositiveScore float64 `dynamodbav:"positiveValue"`
	NegativeScore float64 `dynamodbav:"negativeScore"`
	NeutralScore  float64 `dynamodbav:"neutralScore"`
	MixedScore    float64 `dynamodbav:"mixedScore"`
}

// DAO provides data access operations for sentiment records
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

// Save writes record, replacing any previous analysis of the same message
func (d *DAO) Save(ctx context.Context, record *Record) error {
	if record.UID == "" {
		return fmt.Errorf("failed to save sentiment: uid is required")
	}

	if err := d.table.Put(record).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to save sentiment for %s: %w", record.UID, err)
	}
	return nil
}

// Find retrieves the analysis of message uid
// Returns nil if not found
func (d *DAO) Find(ctx context.Context, uid string) (*Record, error) {
	var record Record
	err := d.table.Get(uid).
		ConsistentRead(true).
		ScanWithContext(ctx, &record)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sentiment %s: %w", uid, err)
	}

	if record.UID == "" {
		return nil, nil
	}
	return &record, nil
}

// FindAll scans every sentiment record
func (d *DAO) FindAll(ctx context.Context) ([]*Record, error) {
	var records []*Record
	err := d.table.Scan().ConsistentRead(false).EachWithContext(ctx, func(item ddb.Item) (bool, error) {
		var record Record
		if err := item.Unmarshal(&record); err != nil {
			return false, err
		}
		records = append(records, &record)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sentiments: %w", err)
	}
	return records, nil
}

func isNotFound(err error) bool {
	s := err.Error()
	return strings.Contains(s, "item not found") || strings.Contains(s, "ItemNotFound")
}

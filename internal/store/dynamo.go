package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/worklens/worklens/internal/analysis"
)

// Key prefixes for the composite-key tables.
const (
	ledgerPKPrefix   = "EMP#"
	eventLogPKPrefix = "CASE#"
)

// dynamoAPI is the subset of the DynamoDB client used here, seamed out so
// tests can run against a fake.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoLedger implements Ledger on a DynamoDB table keyed
// PK=EMP#{employeeID}, SK={fileName}.
type DynamoLedger struct {
	client    dynamoAPI
	tableName string
}

var _ Ledger = (*DynamoLedger)(nil)

// NewDynamoLedger creates a DynamoLedger for the given table.
func NewDynamoLedger(client *dynamodb.Client, tableName string) *DynamoLedger {
	return &DynamoLedger{client: client, tableName: tableName}
}

func ledgerPK(employeeID string) string {
	return ledgerPKPrefix + employeeID
}

func ledgerKey(employeeID, fileName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: ledgerPK(employeeID)},
		"SK": &types.AttributeValueMemberS{Value: fileName},
	}
}

// IsProcessed checks for the existence of the (employeeID, fileName) entry.
func (l *DynamoLedger) IsProcessed(ctx context.Context, employeeID, fileName string) (bool, error) {
	result, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            &l.tableName,
		Key:                  ledgerKey(employeeID, fileName),
		ProjectionExpression: aws.String("SK"),
	})
	if err != nil {
		return false, fmt.Errorf("GetItem ledger %s/%s: %w", employeeID, fileName, err)
	}
	return result.Item != nil, nil
}

// MarkProcessed upserts the ledger entry with a fresh processedAt timestamp.
// PutItem replaces the whole item, so concurrent marks for the same key
// cannot create duplicate rows.
func (l *DynamoLedger) MarkProcessed(ctx context.Context, employeeID, fileName string) error {
	start := time.Now()
	item := ledgerKey(employeeID, fileName)
	item["employeeId"] = &types.AttributeValueMemberS{Value: employeeID}
	item["processedAt"] = &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)}

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &l.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem ledger %s/%s: %w", employeeID, fileName, err)
	}
	log.Debug().
		Str("employeeId", employeeID).
		Str("fileName", fileName).
		Dur("duration", time.Since(start)).
		Msg("Ledger entry marked")
	return nil
}

// UnmarkProcessed deletes the entry. DeleteItem on an absent key succeeds,
// so retracting an entry that was never written is a no-op.
func (l *DynamoLedger) UnmarkProcessed(ctx context.Context, employeeID, fileName string) error {
	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &l.tableName,
		Key:       ledgerKey(employeeID, fileName),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem ledger %s/%s: %w", employeeID, fileName, err)
	}
	log.Debug().
		Str("employeeId", employeeID).
		Str("fileName", fileName).
		Msg("Ledger entry retracted")
	return nil
}

// ProcessedFiles queries all ledger entries under the employee's partition,
// following pagination until exhausted.
func (l *DynamoLedger) ProcessedFiles(ctx context.Context, employeeID string) (map[string]bool, error) {
	input := &dynamodb.QueryInput{
		TableName:              &l.tableName,
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ledgerPK(employeeID)},
		},
		ProjectionExpression: aws.String("SK"),
	}

	files := make(map[string]bool)
	for {
		result, err := l.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query ledger %s: %w", employeeID, err)
		}
		for _, item := range result.Items {
			if sk, ok := item["SK"].(*types.AttributeValueMemberS); ok {
				files[sk.Value] = true
			}
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return files, nil
}

// DynamoEventStore implements EventStore on a DynamoDB table keyed
// PK=CASE#{caseID}, SK={fileName}. Documents are written once per processed
// recording; a forced reprocess overwrites the whole document.
type DynamoEventStore struct {
	client    dynamoAPI
	tableName string
}

var _ EventStore = (*DynamoEventStore)(nil)

// NewDynamoEventStore creates a DynamoEventStore for the given table.
func NewDynamoEventStore(client *dynamodb.Client, tableName string) *DynamoEventStore {
	return &DynamoEventStore{client: client, tableName: tableName}
}

// SaveEventLog persists one event-log document, stamping processedAt.
func (s *DynamoEventStore) SaveEventLog(ctx context.Context, doc *analysis.EventLog) error {
	doc.ProcessedAt = time.Now().UTC()

	start := time.Now()
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("marshal event log: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: eventLogPKPrefix + doc.CaseID}
	item["SK"] = &types.AttributeValueMemberS{Value: doc.FileName}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem event log %s/%s: %w", doc.CaseID, doc.FileName, err)
	}
	log.Debug().
		Str("caseId", doc.CaseID).
		Str("fileName", doc.FileName).
		Int("events", len(doc.Events)).
		Dur("duration", time.Since(start)).
		Msg("Event log persisted")
	return nil
}

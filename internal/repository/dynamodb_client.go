package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"health-wizard/internal/domain"
)

const (
	skRecord   = "RECORD"
	defaultTTL = 24 * time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// RecordStore defines the session accumulator operations consumed by the
// wizard service. Load returns a zero record for unknown session ids.
type RecordStore interface {
	Load(ctx context.Context, sessionID string) (domain.SessionRecord, error)
	Save(ctx context.Context, sessionID string, rec domain.SessionRecord) error
}

// Client wraps a DynamoDB table holding one item per wizard session.
// Records expire via the table's TTL attribute; the wizard never deletes a
// record mid-traversal.
type Client struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
}

// New creates a new session record store. ttl <= 0 selects the 24h default.
func New(api dynamodbAPI, tableName string, ttl time.Duration) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Client{api: api, tableName: tableName, ttl: ttl}, nil
}

// sessionPK returns the DynamoDB partition key for a session.
func sessionPK(sessionID string) string {
	return "SESS#" + sessionID
}

// ttlValue returns the item expiry as a Unix timestamp.
func (c *Client) ttlValue() int64 {
	return time.Now().Add(c.ttl).Unix()
}

// Load fetches the session record, returning a zero record when none exists.
func (c *Client) Load(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.SessionRecord{}, errors.New("repository: Load: session id is required")
	}

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			"SK": &types.AttributeValueMemberS{Value: skRecord},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("repository: Load get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.SessionRecord{}, nil
	}

	rec, err := itemToRecord(out.Item)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("repository: Load decode: %w", err)
	}
	return rec, nil
}

// Save writes the full session record, replacing any prior item. Concurrent
// writers for the same session resolve last-write-wins.
func (c *Client) Save(ctx context.Context, sessionID string, rec domain.SessionRecord) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("repository: Save: session id is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      recordItem(sessionID, rec, c.ttlValue()),
	})
	if err != nil {
		return fmt.Errorf("repository: Save: %w", err)
	}
	return nil
}

func recordItem(sessionID string, rec domain.SessionRecord, ttl int64) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK":          &types.AttributeValueMemberS{Value: skRecord},
		"age":         &types.AttributeValueMemberS{Value: rec.Age},
		"sex":         &types.AttributeValueMemberS{Value: rec.Sex},
		"weight":      &types.AttributeValueMemberS{Value: rec.Weight},
		"breakfast":   &types.AttributeValueMemberS{Value: rec.Breakfast},
		"sleepResult": &types.AttributeValueMemberS{Value: rec.SleepResult},
		"sleepAdvice": &types.AttributeValueMemberS{Value: rec.SleepAdvice},
		"ttl":         &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
	// sleepHours is absent until the Sleep step has validated a value.
	if rec.SleepHours != nil {
		item["sleepHours"] = &types.AttributeValueMemberN{
			Value: strconv.FormatFloat(*rec.SleepHours, 'f', -1, 64),
		}
	}
	return item
}

func itemToRecord(item map[string]types.AttributeValue) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var err error

	if rec.Age, err = strAttr(item, "age"); err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.Sex, err = strAttr(item, "sex"); err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.Weight, err = strAttr(item, "weight"); err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.Breakfast, err = strAttr(item, "breakfast"); err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.SleepResult, err = strAttr(item, "sleepResult"); err != nil {
		return domain.SessionRecord{}, err
	}
	if rec.SleepAdvice, err = strAttr(item, "sleepAdvice"); err != nil {
		return domain.SessionRecord{}, err
	}

	if _, ok := item["sleepHours"]; ok {
		hours, err := numAttr(item, "sleepHours")
		if err != nil {
			return domain.SessionRecord{}, err
		}
		rec.SleepHours = &hours
	}
	return rec, nil
}

// strAttr reads a string attribute. A missing attribute reads as empty:
// absent fields follow the accumulator's default-on-missing contract.
func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func numAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

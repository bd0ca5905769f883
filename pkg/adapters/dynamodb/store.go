// Package dynamodb implements ports.KeyValueStore on an Amazon DynamoDB table.
//
// The table needs a single string partition key named "pk". When a TTL is
// configured, the "ttl" attribute holds the expiry as Unix seconds and reads
// treat expired items as missing, since DynamoDB deletes them lazily.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of *dynamodb.Client used by the Store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// item is the persisted record.
type item struct {
	PK    string `dynamodbav:"pk"`
	Value string `dynamodbav:"value"`
	TTL   int64  `dynamodbav:"ttl,omitempty"`
}

// Store implements ports.KeyValueStore using DynamoDB.
type Store struct {
	client API
	table  string
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration written to the "ttl" attribute.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the partition key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store backed by the given table.
func New(client API, table string, opts ...Option) *Store {
	s := &Store{
		client: client,
		table:  table,
		prefix: "cartsync#",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(k string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: s.prefix + k},
	}
}

// Get retrieves the value, treating expired items as missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get item from dynamodb: %w", err)
	}
	if out.Item == nil {
		return "", domain.ErrKeyNotFound
	}

	var rec item
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return "", fmt.Errorf("failed to unmarshal item: %w", err)
	}
	if rec.TTL > 0 && rec.TTL <= s.now().Unix() {
		return "", domain.ErrKeyNotFound
	}
	return rec.Value, nil
}

// Set overwrites the value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	rec := item{PK: s.prefix + key, Value: value}
	if s.ttl > 0 {
		rec.TTL = s.now().Add(s.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item to dynamodb: %w", err)
	}
	return nil
}

// Delete removes the item. DynamoDB deletes are idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from dynamodb: %w", err)
	}
	return nil
}

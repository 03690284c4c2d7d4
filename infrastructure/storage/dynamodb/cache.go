package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

const (
	attrKey       = "key"
	attrExpiresAt = "expires_at"

	// batchSize is the BatchWriteItem request limit.
	batchSize = 25
)

// cacheItem is one cache entry. ExpiresAt is epoch seconds so DynamoDB's
// native TTL can reap expired items.
type cacheItem struct {
	Key       string `dynamodbav:"key"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at,omitempty"`
}

// Cache is a DynamoDB-backed implementation of cache.Cache.
type Cache struct {
	client       api
	tableName    string
	keyPrefix    string
	queryTimeout time.Duration
	now          func() time.Time
	closed       atomic.Bool
	hits         atomic.Int64
	misses       atomic.Int64
}

// NewCache creates a DynamoDB cache using the default AWS configuration.
func NewCache(ctx context.Context, cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := newAPI(ctx, cfg)
	if err != nil {
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}
	return newCache(client, cfg), nil
}

func newCache(client api, cfg Config) *Cache {
	return &Cache{
		client:       client,
		tableName:    cfg.TableName,
		keyPrefix:    cfg.KeyPrefix,
		queryTimeout: cfg.QueryTimeout,
		now:          time.Now,
	}
}

func (c *Cache) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: c.keyPrefix + key},
	}
}

// begin checks state and applies the query timeout.
func (c *Cache) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.closed.Load() {
		return ctx, func() {}, cache.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return ctx, func() {}, err
	}
	if _, ok := ctx.Deadline(); ok || c.queryTimeout <= 0 {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	return ctx, cancel, nil
}

func (c *Cache) expired(expiresAt int64) bool {
	return expiresAt > 0 && c.now().Unix() >= expiresAt
}

// Get retrieves a cached value by key. DynamoDB TTL deletion lags, so
// expiry is also checked on read.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return nil, false, err
	}

	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            c.keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, c.wrapError(err)
	}
	if out.Item == nil {
		c.misses.Add(1)
		return nil, false, nil
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, err
	}
	if c.expired(item.ExpiresAt) {
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	return item.Value, true, nil
}

// Set stores a value in the cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	item := cacheItem{Key: c.keyPrefix + key, Value: value}
	if item.Value == nil {
		item.Value = []byte{}
	}
	if opts.TTL > 0 {
		item.ExpiresAt = c.now().Add(opts.TTL).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	})
	return c.wrapError(err)
}

// Delete removes a cached entry by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	_, err = c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.keyAttr(key),
	})
	return c.wrapError(err)
}

// Exists checks if a live key exists in the cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return false, err
	}

	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(c.tableName),
		Key:                      c.keyAttr(key),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#k, " + attrExpiresAt),
		ExpressionAttributeNames: map[string]string{"#k": attrKey},
	})
	if err != nil {
		return false, c.wrapError(err)
	}
	if out.Item == nil {
		return false, nil
	}

	if n, ok := out.Item[attrExpiresAt].(*types.AttributeValueMemberN); ok {
		exp, _ := strconv.ParseInt(n.Value, 10, 64)
		if c.expired(exp) {
			return false, nil
		}
	}
	return true, nil
}

// Clear deletes every item whose key starts with the prefix.
func (c *Cache) Clear(ctx context.Context) error {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	var lastKey map[string]types.AttributeValue
	for {
		out, err := c.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(c.tableName),
			ExclusiveStartKey:        lastKey,
			ProjectionExpression:     aws.String("#k"),
			FilterExpression:         aws.String("begins_with(#k, :prefix)"),
			ExpressionAttributeNames: map[string]string{"#k": attrKey},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: c.keyPrefix},
			},
		})
		if err != nil {
			return c.wrapError(err)
		}

		for start := 0; start < len(out.Items); start += batchSize {
			end := min(start+batchSize, len(out.Items))
			requests := make([]types.WriteRequest, 0, end-start)
			for _, item := range out.Items[start:end] {
				requests = append(requests, types.WriteRequest{
					DeleteRequest: &types.DeleteRequest{
						Key: map[string]types.AttributeValue{attrKey: item[attrKey]},
					},
				})
			}
			if _, err := c.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{c.tableName: requests},
			}); err != nil {
				return c.wrapError(err)
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

// Stats returns hit and miss counts. Size would require a full scan.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close marks the cache closed. The AWS client holds no connections that
// need releasing.
func (c *Cache) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Cache) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}

	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return errors.Join(cache.ErrConnectionFailed, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)

// Package dynamo implements store.Store on a DynamoDB table.
//
// Each record is one item holding a codec frame. Items of one record kind
// share a partition, so FetchAll is a single paginated Query. Uniqueness is
// enforced by conditional writes, which makes the store safe for several
// processes sharing one table.
//
// Table schema:
//   - Partition key: ns (string) - the record namespace, e.g. "students"
//   - Sort key: id (string) - the record key
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name roster-records \
//	  --attribute-definitions AttributeName=ns,AttributeType=S AttributeName=id,AttributeType=S \
//	  --key-schema AttributeName=ns,KeyType=HASH AttributeName=id,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/roster/codec"
	"github.com/hupe1980/roster/store"
)

// Attribute names.
const (
	AttrNamespace = "ns"
	AttrID        = "id"
	AttrPayload   = "payload"
	AttrUpdatedAt = "updated_at"
)

const (
	condNotExists = "attribute_not_exists(id)"
	condExists    = "attribute_exists(id)"
)

// Client is the subset of the DynamoDB API the store uses.
type Client interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Options configures a Store.
type Options struct {
	// Codec encodes records. Default: codec.Default.
	Codec codec.Codec

	// Compression is applied to each payload. Default: none.
	Compression codec.Compression

	// PageSize limits items per Query page. 0 lets DynamoDB decide.
	PageSize int32

	// Now stamps updated_at. Default: time.Now.
	Now func() time.Time
}

// Store keeps one item per entity under a namespace partition.
type Store[K comparable, E any] struct {
	client    Client
	table     string
	namespace string
	keyOf     func(E) K
	frame     *codec.Frame
	pageSize  int32
	now       func() time.Time
}

var _ store.Store[int, struct{}] = (*Store[int, struct{}])(nil)

// New creates a Store for the records of namespace in table.
func New[K comparable, E any](client Client, table, namespace string, keyOf func(E) K, optFns ...func(*Options)) *Store[K, E] {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store[K, E]{
		client:    client,
		table:     table,
		namespace: namespace,
		keyOf:     keyOf,
		frame:     codec.NewFrame(opts.Codec, opts.Compression),
		pageSize:  opts.PageSize,
		now:       opts.Now,
	}
}

func (s *Store[K, E]) itemKey(key K) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrNamespace: &types.AttributeValueMemberS{Value: s.namespace},
		AttrID:        &types.AttributeValueMemberS{Value: fmt.Sprint(key)},
	}
}

// FetchAll queries the namespace partition with strongly consistent reads.
// Items arrive in sort key order.
func (s *Store[K, E]) FetchAll(ctx context.Context) ([]E, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("ns = :ns"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: s.namespace},
		},
		ConsistentRead: aws.Bool(true),
	}
	if s.pageSize > 0 {
		input.Limit = aws.Int32(s.pageSize)
	}

	var out []E
	p := dynamodb.NewQueryPaginator(s.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			payload, ok := item[AttrPayload].(*types.AttributeValueMemberB)
			if !ok {
				return nil, fmt.Errorf("invalid %s attribute in DynamoDB", AttrPayload)
			}
			var e E
			if err := codec.Decode(payload.Value, &e); err != nil {
				return nil, fmt.Errorf("decode %v: %w", item[AttrID], err)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// Insert puts e unless an item with its key exists.
func (s *Store[K, E]) Insert(ctx context.Context, e E) error {
	return s.put(ctx, e, condNotExists, store.ErrAlreadyExists)
}

// Update overwrites e only if an item with its key exists.
func (s *Store[K, E]) Update(ctx context.Context, e E) error {
	return s.put(ctx, e, condExists, store.ErrNotFound)
}

func (s *Store[K, E]) put(ctx context.Context, e E, cond string, condErr error) error {
	data, err := s.frame.Encode(e)
	if err != nil {
		return err
	}

	item := s.itemKey(s.keyOf(e))
	item[AttrPayload] = &types.AttributeValueMemberB{Value: data}
	item[AttrUpdatedAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(s.now().UnixMilli(), 10)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String(cond),
	})
	return mapConditionError(err, condErr)
}

// Delete removes key's item only if it exists.
func (s *Store[K, E]) Delete(ctx context.Context, key K) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 s.itemKey(key),
		ConditionExpression: aws.String(condExists),
	})
	return mapConditionError(err, store.ErrNotFound)
}

func mapConditionError(err, condErr error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return condErr
	}
	return fmt.Errorf("DynamoDB write failed: %w", err)
}

package dynamo

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// Attribute names mirror Go struct field names; attributevalue encodes
// uuid.UUID and time.Time as strings via their text marshalers.

func encoderOpts(o *attributevalue.EncoderOptions) {
	o.UseEncodingMarshalers = true
	o.OmitNullAttributeValues = true
}

func decoderOpts(o *attributevalue.DecoderOptions) {
	o.UseEncodingUnmarshalers = true
}

func marshalItem(obj any) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMapWithOptions(obj, encoderOpts)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal item failed")
	}
	return item, nil
}

func unmarshalItem[T any](item map[string]types.AttributeValue) (*T, error) {
	var out T
	if err := attributevalue.UnmarshalMapWithOptions(item, &out, decoderOpts); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "unmarshal item failed")
	}
	return &out, nil
}

// touch fills ID and timestamps the way the SQL backend's column defaults do.
func touch(obj any, isNew bool) {
	v := reflect.ValueOf(obj).Elem()
	now := time.Now().UTC()

	if f := v.FieldByName("ID"); f.IsValid() && f.Type() == reflect.TypeOf(uuid.UUID{}) {
		if isNew && f.Interface().(uuid.UUID) == uuid.Nil {
			f.Set(reflect.ValueOf(uuid.New()))
		}
	}
	if f := v.FieldByName("CreatedAt"); f.IsValid() && f.Type() == reflect.TypeOf(time.Time{}) {
		if isNew && f.Interface().(time.Time).IsZero() {
			f.Set(reflect.ValueOf(now))
		}
	}
	if f := v.FieldByName("UpdatedAt"); f.IsValid() && f.Type() == reflect.TypeOf(time.Time{}) {
		f.Set(reflect.ValueOf(now))
	}
}

// store implements the shared CRUD surface for one table.
type store[T any] struct {
	client *dynamodb.Client
	table  string
}

func newStore[T any](client *dynamodb.Client, table string) store[T] {
	return store[T]{client: client, table: table}
}

func (s store[T]) Create(ctx context.Context, obj *T) error {
	touch(obj, true)
	item, err := marshalItem(obj)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ID)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return appErr.New(appErr.CodeAlreadyExists, "entity already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "put item failed")
	}
	return nil
}

func (s store[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get item failed")
	}
	if len(out.Item) == 0 {
		return nil, appErr.New(appErr.CodeNotFound, "entity not found")
	}
	return unmarshalItem[T](out.Item)
}

func (s store[T]) Update(ctx context.Context, obj *T) error {
	touch(obj, false)
	item, err := marshalItem(obj)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(ID)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return appErr.New(appErr.CodeNotFound, "entity not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "put item failed")
	}
	return nil
}

func (s store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(ID)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return appErr.New(appErr.CodeNotFound, "entity not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "delete item failed")
	}
	return nil
}

func (s store[T]) List(ctx context.Context) ([]T, error) {
	return s.scan(ctx, "", nil)
}

func (s store[T]) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, "", nil)
}

func (s store[T]) countEnabled(ctx context.Context) (int64, error) {
	return s.count(ctx, "#f = :v", map[string]any{"#f": "Enabled", ":v": true})
}

// scan pages through the table, applying an optional filter expression.
// params maps "#name" placeholders to attribute names and ":value"
// placeholders to values.
func (s store[T]) scan(ctx context.Context, filter string, params map[string]any) ([]T, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.table)}
	if filter != "" {
		names, values, err := splitParams(params)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var out []T
	for {
		resp, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "scan failed")
		}
		for _, item := range resp.Items {
			obj, err := unmarshalItem[T](item)
			if err != nil {
				return nil, err
			}
			out = append(out, *obj)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
	return out, nil
}

func (s store[T]) count(ctx context.Context, filter string, params map[string]any) (int64, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
		Select:    types.SelectCount,
	}
	if filter != "" {
		names, values, err := splitParams(params)
		if err != nil {
			return 0, err
		}
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var n int64
	for {
		resp, err := s.client.Scan(ctx, input)
		if err != nil {
			return 0, appErr.Wrap(err, appErr.CodeInternal, "count scan failed")
		}
		n += int64(resp.Count)
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
	return n, nil
}

// queryIndex pages a GSI by key equality, with an optional extra filter.
func (s store[T]) queryIndex(ctx context.Context, index, keyAttr string, keyValue any, filter string, params map[string]any) ([]T, error) {
	if params == nil {
		params = map[string]any{}
	}
	params["#pk"] = keyAttr
	params[":pk"] = keyValue
	names, values, err := splitParams(params)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
	}

	var out []T
	for {
		resp, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "query failed")
		}
		for _, item := range resp.Items {
			obj, err := unmarshalItem[T](item)
			if err != nil {
				return nil, err
			}
			out = append(out, *obj)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
	return out, nil
}

// getOneByIndex returns the single item matching a GSI key, or not_found.
func (s store[T]) getOneByIndex(ctx context.Context, index, keyAttr string, keyValue any) (*T, error) {
	items, err := s.queryIndex(ctx, index, keyAttr, keyValue, "", nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErr.New(appErr.CodeNotFound, "entity not found")
	}
	return &items[0], nil
}

func notFound() error {
	return appErr.New(appErr.CodeNotFound, "entity not found")
}

func idKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ID": &types.AttributeValueMemberS{Value: id.String()},
	}
}

// splitParams separates "#" name placeholders from ":" value placeholders
// and marshals the values.
func splitParams(params map[string]any) (map[string]string, map[string]types.AttributeValue, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	for k, v := range params {
		if len(k) > 0 && k[0] == '#' {
			names[k] = v.(string)
			continue
		}
		av, err := attributevalue.MarshalWithOptions(v, encoderOpts)
		if err != nil {
			return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "marshal expression value failed")
		}
		values[k] = av
	}
	if len(names) == 0 {
		names = nil
	}
	return names, values, nil
}

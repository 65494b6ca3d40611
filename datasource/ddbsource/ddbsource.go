/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddbsource

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/dashboard/datasource"
	dserrors "github.com/suparena/dashboard/errors"
)

// Source streams the items matched by a DynamoDB Query.
type Source[T any] struct {
	client  sdk.QueryAPIClient
	params  QueryParams
	options StreamOptions
}

var _ datasource.Datasource[map[string]any] = (*Source[map[string]any])(nil)

// New creates a Source. The client is usually a *dynamodb.Client from NewClient.
func New[T any](client sdk.QueryAPIClient, params QueryParams, opts ...StreamOption) (*Source[T], error) {
	if client == nil {
		return nil, dserrors.NewValidationError("client", "dynamodb source requires a client")
	}
	if params.TableName == "" || params.KeyConditionExpression == "" {
		return nil, dserrors.NewValidationError("params", "table name and key condition are required")
	}

	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Source[T]{client: client, params: params, options: options}, nil
}

// Capabilities declares streaming only. A total would require reading the whole
// partition, so no count is ever reported.
func (s *Source[T]) Capabilities() datasource.Capability {
	return datasource.Streaming
}

// GetItems returns a lazy iterator fetching one page at a time. Query filters are
// evaluated client-side against string, number and boolean attributes.
func (s *Source[T]) GetItems(ctx context.Context, q *datasource.Query) (*datasource.Result[T], error) {
	if q == nil {
		q = &datasource.Query{}
	}
	if err := datasource.Check(s.params.TableName, s, q); err != nil {
		return nil, err
	}

	it := &pageIterator[T]{
		source:  s,
		query:   q,
		started: time.Now(),
	}
	return datasource.NewUncountedResult[T](it), nil
}

func (s *Source[T]) input(startKey map[string]types.AttributeValue) *sdk.QueryInput {
	return &sdk.QueryInput{
		TableName:                 aws.String(s.params.TableName),
		KeyConditionExpression:    aws.String(s.params.KeyConditionExpression),
		ExpressionAttributeNames:  s.params.ExpressionAttributeNames,
		ExpressionAttributeValues: s.params.ExpressionAttributeValues,
		FilterExpression:          s.params.FilterExpression,
		IndexName:                 s.params.IndexName,
		ScanIndexForward:          s.params.ScanIndexForward,
		Limit:                     aws.Int32(s.options.PageSize),
		ExclusiveStartKey:         startKey,
	}
}

// queryWithRetry executes a query with configurable retry logic
func (s *Source[T]) queryWithRetry(ctx context.Context, input *sdk.QueryInput) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= s.options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := s.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		// Don't sleep after last attempt
		if attempt < s.options.MaxRetries {
			backoff := time.Duration(attempt+1) * s.options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", s.options.MaxRetries, lastErr)
}

// pageIterator buffers one DynamoDB page at a time.
type pageIterator[T any] struct {
	source  *Source[T]
	query   *datasource.Query
	buffer  []map[string]types.AttributeValue
	lastKey map[string]types.AttributeValue
	fetched bool
	done    bool

	items   int64
	pages   int
	started time.Time
}

func (p *pageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		if p.done && len(p.buffer) == 0 {
			return zero, false, nil
		}
		if len(p.buffer) == 0 {
			if err := p.fetch(ctx); err != nil {
				p.done = true
				return zero, false, err
			}
			continue
		}

		raw := p.buffer[0]
		p.buffer = p.buffer[1:]
		if !matchesFilters(raw, p.query) {
			continue
		}

		var item T
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			p.done = true
			p.buffer = nil
			return zero, false, fmt.Errorf("failed to unmarshal item to type %T: %w", item, err)
		}
		return item, true, nil
	}
}

func (p *pageIterator[T]) fetch(ctx context.Context) error {
	if p.fetched && len(p.lastKey) == 0 {
		p.done = true
		return nil
	}

	out, err := p.source.queryWithRetry(ctx, p.source.input(p.lastKey))
	if err != nil {
		return fmt.Errorf("query %q: %w", p.source.params.TableName, err)
	}

	p.fetched = true
	p.pages++
	p.items += int64(len(out.Items))
	p.buffer = out.Items
	p.lastKey = out.LastEvaluatedKey
	if len(p.lastKey) == 0 {
		p.done = true
	}
	p.reportProgress()
	return nil
}

func (p *pageIterator[T]) reportProgress() {
	handler := p.source.options.ProgressHandler
	if handler == nil {
		return
	}
	progress := StreamProgress{
		ItemsProcessed: p.items,
		PagesProcessed: p.pages,
		StartTime:      p.started,
	}
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		progress.CurrentRate = float64(p.items) / elapsed
	}
	handler(progress)
}

// Close drops buffered items. Nothing is held open between pages.
func (p *pageIterator[T]) Close() error {
	p.done = true
	p.buffer = nil
	return nil
}

func matchesFilters(item map[string]types.AttributeValue, q *datasource.Query) bool {
	for field := range q.Filters {
		if !q.Matches(field, attributeString(item[field])) {
			return false
		}
	}
	return true
}

// attributeString converts scalar attribute values to their text form. Sets,
// binaries and documents convert to the empty string.
func attributeString(av types.AttributeValue) string {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value
	case *types.AttributeValueMemberN:
		return tv.Value
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(tv.Value)
	default:
		return ""
	}
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

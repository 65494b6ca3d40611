/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddbsource

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/dashboard/datasource"
	"github.com/suparena/dashboard/errors"
)

type event struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	Kind   string `dynamodbav:"kind"`
	Points int    `dynamodbav:"points"`
}

// fakeClient serves pre-built pages keyed by the SK of the exclusive start key.
type fakeClient struct {
	pages    [][]map[string]types.AttributeValue
	failures []error
	calls    int
	inputs   []*sdk.QueryInput
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.calls++
	f.inputs = append(f.inputs, in)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}

	page := 0
	if in.ExclusiveStartKey != nil {
		n, _ := strconv.Atoi(in.ExclusiveStartKey["page"].(*types.AttributeValueMemberN).Value)
		page = n
	}
	out := &sdk.QueryOutput{Items: f.pages[page]}
	if page+1 < len(f.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}

func item(sk, kind string, points int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: "TENANT#1"},
		"SK":     &types.AttributeValueMemberS{Value: sk},
		"kind":   &types.AttributeValueMemberS{Value: kind},
		"points": &types.AttributeValueMemberN{Value: strconv.Itoa(points)},
	}
}

func testParams() QueryParams {
	return QueryParams{
		TableName:              "events",
		KeyConditionExpression: "PK = :pk",
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "TENANT#1"},
		},
	}
}

func threePages() *fakeClient {
	return &fakeClient{pages: [][]map[string]types.AttributeValue{
		{item("E1", "match", 3), item("E2", "training", 1)},
		{item("E3", "match", 5)},
		{item("E4", "league", 2), item("E5", "match", 1)},
	}}
}

func TestCapabilities(t *testing.T) {
	src, err := New[event](threePages(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if src.Capabilities() != datasource.Streaming {
		t.Errorf("Capabilities = %v, want streaming", src.Capabilities())
	}
}

func TestGetItemsPagesLazily(t *testing.T) {
	ctx := context.Background()
	client := threePages()
	var progress []StreamProgress
	src, err := New[event](client, testParams(),
		WithPageSize(2),
		WithProgressHandler(func(p StreamProgress) { progress = append(progress, p) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := src.GetItems(ctx, &datasource.Query{})
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}
	if _, ok := res.Count(); ok {
		t.Error("dynamodb source must not report a count")
	}
	if client.calls != 0 {
		t.Errorf("GetItems issued %d queries before iteration", client.calls)
	}

	events, err := datasource.Collect(ctx, res.Items())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, want := range []string{"E1", "E2", "E3", "E4", "E5"} {
		if events[i].SK != want {
			t.Errorf("events[%d].SK = %q, want %q", i, events[i].SK, want)
		}
	}
	if events[2].Points != 5 {
		t.Errorf("events[2].Points = %d, want 5", events[2].Points)
	}

	if client.calls != 3 {
		t.Errorf("issued %d queries, want 3", client.calls)
	}
	if got := aws.ToInt32(client.inputs[0].Limit); got != 2 {
		t.Errorf("Limit = %d, want 2", got)
	}
	if client.inputs[0].ExclusiveStartKey != nil {
		t.Error("first query must not carry a start key")
	}
	if client.inputs[1].ExclusiveStartKey == nil {
		t.Error("second query must continue from the last evaluated key")
	}

	if len(progress) != 3 {
		t.Fatalf("progress reported %d times, want 3", len(progress))
	}
	if last := progress[2]; last.ItemsProcessed != 5 || last.PagesProcessed != 3 {
		t.Errorf("final progress = %+v", last)
	}
}

func TestGetItemsFilters(t *testing.T) {
	ctx := context.Background()
	src, err := New[map[string]any](threePages(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := src.GetItems(ctx, &datasource.Query{
		Filters: map[string][]string{"kind": {"match"}, "points": {"1", "5"}},
	})
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}

	var keys []string
	for ev, err := range res.All(ctx) {
		if err != nil {
			t.Fatalf("iteration failed: %v", err)
		}
		keys = append(keys, ev["SK"].(string))
	}
	if len(keys) != 2 || keys[0] != "E3" || keys[1] != "E5" {
		t.Errorf("filtered keys = %v, want [E3 E5]", keys)
	}
}

func TestGetItemsRejectsUnsupportedQueries(t *testing.T) {
	src, err := New[event](threePages(), testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for name, q := range map[string]*datasource.Query{
		"pagination": {Limit: 10},
		"search":     {Search: "match"},
		"sorting":    {SortField: "SK"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := src.GetItems(context.Background(), q)
			if !errors.IsUnsupported(err) {
				t.Errorf("expected unsupported error, got %v", err)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriesThrottling", func(t *testing.T) {
		client := threePages()
		client.failures = []error{
			&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
			&types.InternalServerError{Message: aws.String("oops")},
		}
		src, err := New[event](client, testParams(), WithRetryBackoff(time.Millisecond))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		res, err := src.GetItems(ctx, nil)
		if err != nil {
			t.Fatalf("GetItems failed: %v", err)
		}
		events, err := datasource.Collect(ctx, res.Items())
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(events) != 5 {
			t.Errorf("got %d events, want 5", len(events))
		}
		if client.calls != 5 {
			t.Errorf("issued %d queries, want 5", client.calls)
		}
	})

	t.Run("GivesUp", func(t *testing.T) {
		client := threePages()
		throttled := &types.RequestLimitExceeded{Message: aws.String("limit")}
		client.failures = []error{throttled, throttled, throttled}
		src, err := New[event](client, testParams(), WithMaxRetries(2), WithRetryBackoff(time.Millisecond))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		res, err := src.GetItems(ctx, nil)
		if err != nil {
			t.Fatalf("GetItems failed: %v", err)
		}
		_, err = datasource.Collect(ctx, res.Items())
		var limit *types.RequestLimitExceeded
		if !stderrors.As(err, &limit) {
			t.Errorf("expected RequestLimitExceeded, got %v", err)
		}
		if client.calls != 3 {
			t.Errorf("issued %d queries, want 3", client.calls)
		}
	})

	t.Run("DoesNotRetryValidation", func(t *testing.T) {
		client := threePages()
		client.failures = []error{stderrors.New("ValidationException: bad key")}
		src, err := New[event](client, testParams(), WithRetryBackoff(time.Millisecond))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		res, err := src.GetItems(ctx, nil)
		if err != nil {
			t.Fatalf("GetItems failed: %v", err)
		}
		if _, err := datasource.Collect(ctx, res.Items()); err == nil {
			t.Error("expected query error")
		}
		if client.calls != 1 {
			t.Errorf("issued %d queries, want 1", client.calls)
		}
	})
}

func TestEarlyClose(t *testing.T) {
	ctx := context.Background()
	client := threePages()
	src, err := New[event](client, testParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := src.GetItems(ctx, nil)
	if err != nil {
		t.Fatalf("GetItems failed: %v", err)
	}
	for ev, err := range res.All(ctx) {
		if err != nil {
			t.Fatalf("iteration failed: %v", err)
		}
		if ev.SK == "E1" {
			break
		}
	}
	if client.calls != 1 {
		t.Errorf("issued %d queries after early close, want 1", client.calls)
	}
	if _, ok, _ := res.Items().Next(ctx); ok {
		t.Error("closed iterator yielded an item")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New[event](nil, testParams()); !errors.IsValidationError(err) {
		t.Errorf("nil client: expected validation error, got %v", err)
	}
	if _, err := New[event](threePages(), QueryParams{TableName: "events"}); !errors.IsValidationError(err) {
		t.Errorf("missing key condition: expected validation error, got %v", err)
	}
}

func TestAttributeString(t *testing.T) {
	cases := []struct {
		av   types.AttributeValue
		want string
	}{
		{&types.AttributeValueMemberS{Value: "x"}, "x"},
		{&types.AttributeValueMemberN{Value: "42"}, "42"},
		{&types.AttributeValueMemberBOOL{Value: true}, "true"},
		{&types.AttributeValueMemberSS{Value: []string{"a"}}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := attributeString(tc.av); got != tc.want {
			t.Errorf("attributeString(%T) = %q, want %q", tc.av, got, tc.want)
		}
	}
}

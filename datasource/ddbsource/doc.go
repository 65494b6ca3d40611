/*
Package ddbsource lists the items of a DynamoDB Query.

A Source declares streaming only: DynamoDB pages through a partition with
ExclusiveStartKey, which does not map to numbered pages, and a total would require
reading the whole partition, so the count is always unknown.

	client, err := ddbsource.NewClient(ctx, ddbsource.AWSConfig{Region: "eu-west-1"})
	events, err := ddbsource.New[map[string]any](client, ddbsource.QueryParams{
	    TableName:              "events",
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "TENANT#42"},
	    },
	},
	    ddbsource.WithPageSize(50),
	    ddbsource.WithMaxRetries(3),
	    ddbsource.WithProgressHandler(func(p ddbsource.StreamProgress) {
	        log.Printf("read %d items", p.ItemsProcessed)
	    }),
	)

Pages are fetched lazily as the iterator advances. Throttling and internal errors
are retried with a linear backoff.
*/
package ddbsource

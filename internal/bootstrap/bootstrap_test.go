/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glebarez/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/suparena/dashboard/errors"
	"github.com/suparena/dashboard/internal/config"
	"github.com/suparena/dashboard/internal/metrics"
	"github.com/suparena/dashboard/render"
)

const pagesYAML = `
pages:
  - name: imports
    datasource: imports
    columns:
      - {name: sku, label: SKU}
      - {name: qty}
  - name: products
    datasource: products
    pager: true
    limit: 2
    search: true
    columns:
      - {name: name}
      - {name: price}
    sorts:
      - {field: price}
    default_sort: price
  - name: events
    datasource: events
    columns:
      - {name: SK}
      - {name: kind}
`

type fakeDynamo struct {
	inputs []*sdk.QueryInput
}

func (f *fakeDynamo) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sdk.QueryOutput{Items: []map[string]types.AttributeValue{
		{"SK": &types.AttributeValueMemberS{Value: "E1"}, "kind": &types.AttributeValueMemberS{Value: "match"}},
		{"SK": &types.AttributeValueMemberS{Value: "E2"}, "kind": &types.AttributeValueMemberS{Value: "league"}},
	}}, nil
}

type fixture struct {
	cfg   *config.Config
	deps  Deps
	redis *miniredis.Miniredis
	ddb   *fakeDynamo
}

func newFixture(t *testing.T, pages string) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/imports.csv", []byte("sku;qty\nA1;3\nB2;5\nC3;7\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/etc/dashboard/pages.yaml", []byte(pages), 0o644))

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "shop.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, price INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO products (name, price) VALUES ('Keyboard', 49), ('Mouse', 19), ('Monitor', 249)").Error)

	srv := miniredis.RunT(t)
	ddb := &fakeDynamo{}

	cfg := &config.Config{
		PagesFile: "/etc/dashboard/pages.yaml",
		Redis:     config.RedisConfig{Addr: srv.Addr(), Prefix: "test:"},
		AWS:       config.AWSConfig{Region: "eu-west-1"},
		Sources: []config.SourceConfig{
			{Name: "imports", Type: config.SourceCSV, CSV: config.CSVConfig{
				Path: "/data/imports.csv", Delimiter: ";", HasHeader: true, CountMaxSize: 1 << 20,
			}},
			{Name: "products", Type: config.SourceSQL, SQL: config.SQLConfig{
				Table: "products", SearchColumns: []string{"name"}, SortColumns: []string{"price"},
			}},
			{Name: "events", Type: config.SourceDynamoDB, DynamoDB: config.DynamoDBConfig{
				Table: "events", KeyCondition: "PK = :pk", Values: map[string]string{":pk": "TENANT#1"}, PageSize: 10,
			}},
		},
	}

	return &fixture{
		cfg:   cfg,
		deps:  Deps{Fs: fs, DB: db, DynamoDB: ddb, Metrics: metrics.New("test")},
		redis: srv,
		ddb:   ddb,
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, pagesYAML)

	app, err := Build(ctx, f.cfg, f.deps)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	d := app.Dashboard
	assert.Equal(t, []string{"events", "imports", "products"}, d.Sources.Names())
	assert.Len(t, d.Pages.List(), 3)

	t.Run("CSV", func(t *testing.T) {
		resp, err := d.Render(ctx, "imports", nil)
		require.NoError(t, err)
		rows := resp.Blocks.ItemList.Rows
		require.Len(t, rows, 3)
		assert.Equal(t, "7", rows[2].Values["qty"])

		keys := f.redis.Keys()
		require.Len(t, keys, 1, "the csv count is cached in redis")
		assert.Contains(t, keys[0], "test:")
	})

	t.Run("SQL", func(t *testing.T) {
		resp, err := d.Render(ctx, "products", &render.Request{Search: "o"})
		require.NoError(t, err)
		rows := resp.Blocks.ItemList.Rows
		require.Len(t, rows, 2)
		assert.Equal(t, "Mouse", rows[0].Values["name"])
		assert.Equal(t, "Keyboard", rows[1].Values["name"])
		assert.EqualValues(t, 3, *resp.Blocks.Pager.Total)
	})

	t.Run("DynamoDB", func(t *testing.T) {
		resp, err := d.Render(ctx, "events", nil)
		require.NoError(t, err)
		require.Len(t, resp.Blocks.ItemList.Rows, 2)
		assert.Equal(t, "league", resp.Blocks.ItemList.Rows[1].Values["kind"])

		require.NotEmpty(t, f.ddb.inputs)
		in := f.ddb.inputs[0]
		assert.Equal(t, "events", *in.TableName)
		assert.EqualValues(t, 10, *in.Limit)
		assert.Equal(t, &types.AttributeValueMemberS{Value: "TENANT#1"}, in.ExpressionAttributeValues[":pk"])
	})
}

func TestBuildRejectsInvalidPages(t *testing.T) {
	f := newFixture(t, `
pages:
  - name: imports
    datasource: imports
    pager: true
    columns: [{name: sku}]
`)
	_, err := Build(context.Background(), f.cfg, f.deps)
	assert.True(t, errors.IsUnsupported(err), "got %v", err)
}

func TestBuildUnknownPageSource(t *testing.T) {
	f := newFixture(t, "pages:\n  - {name: orders, datasource: orders, columns: [{name: id}]}\n")
	_, err := Build(context.Background(), f.cfg, f.deps)
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}

func TestBuildMissingPagesFile(t *testing.T) {
	f := newFixture(t, pagesYAML)
	f.cfg.PagesFile = "/etc/dashboard/missing.yaml"

	_, err := Build(context.Background(), f.cfg, f.deps)
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}

func TestBuildMemoryCacheWithoutRedis(t *testing.T) {
	f := newFixture(t, pagesYAML)
	f.cfg.Redis.Addr = ""

	app, err := Build(context.Background(), f.cfg, f.deps)
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Dashboard.Render(context.Background(), "imports", nil)
	require.NoError(t, err)
	assert.Len(t, resp.Blocks.ItemList.Rows, 3)
	assert.Empty(t, f.redis.Keys())
}

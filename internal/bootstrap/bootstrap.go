/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package bootstrap assembles a Dashboard from configuration.
package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	dashboard "github.com/suparena/dashboard"
	"github.com/suparena/dashboard/countcache"
	"github.com/suparena/dashboard/datasource/csvsource"
	"github.com/suparena/dashboard/datasource/ddbsource"
	"github.com/suparena/dashboard/datasource/sqlsource"
	"github.com/suparena/dashboard/internal/config"
	"github.com/suparena/dashboard/internal/logger"
	"github.com/suparena/dashboard/internal/metrics"
	"github.com/suparena/dashboard/page"
)

// Deps are the collaborators Build uses. Zero fields are created from the config.
type Deps struct {
	Fs      afero.Fs
	Log     logger.Logger
	Metrics *metrics.Metrics
	// DB replaces the MySQL connection opened from mysql.dsn.
	DB *gorm.DB
	// DynamoDB replaces the client created from the aws section.
	DynamoDB sdk.QueryAPIClient
	// Cache replaces the redis or in-memory count cache.
	Cache countcache.Cache
}

// App is a built Dashboard plus the connections it owns.
type App struct {
	Dashboard *dashboard.Dashboard
	closers   []func() error
}

// Close releases the connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

type builder struct {
	cfg  *config.Config
	deps Deps
	app  *App
}

// Build registers every configured source, then loads the pages file and adds
// each page, validating it against its source's capabilities.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}

	app := &App{Dashboard: dashboard.New(nil)}
	if deps.Metrics != nil {
		app.Dashboard.Renderer.Observer = deps.Metrics
	}
	b := &builder{cfg: cfg, deps: deps, app: app}

	if err := b.sources(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := b.pages(); err != nil {
		_ = app.Close()
		return nil, err
	}

	deps.Log.Infof(ctx, "dashboard ready: %d sources, %d pages",
		len(app.Dashboard.Sources.Names()), len(app.Dashboard.Pages.List()))
	return app, nil
}

func (b *builder) sources(ctx context.Context) error {
	for _, sc := range b.cfg.Sources {
		var err error
		switch sc.Type {
		case config.SourceCSV:
			err = b.csv(ctx, sc)
		case config.SourceSQL:
			err = b.sql(sc)
		case config.SourceDynamoDB:
			err = b.dynamodb(ctx, sc)
		default:
			err = fmt.Errorf("unknown source type %q", sc.Type)
		}
		if err != nil {
			return fmt.Errorf("source %q: %w", sc.Name, err)
		}
		b.deps.Log.Debugf(ctx, "registered %s source %q", sc.Type, sc.Name)
	}
	return nil
}

func (b *builder) pages() error {
	pages, err := page.Load(b.deps.Fs, b.cfg.PagesFile)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := b.app.Dashboard.AddPage(p); err != nil {
			return fmt.Errorf("page %q: %w", p.Name, err)
		}
	}
	return nil
}

func (b *builder) countCache(ctx context.Context) (countcache.Cache, error) {
	if b.deps.Cache != nil {
		return b.deps.Cache, nil
	}

	rc := b.cfg.Redis
	if rc.Addr == "" {
		b.deps.Cache = countcache.NewMemory()
		return b.deps.Cache, nil
	}
	client, err := countcache.NewRedisClient(ctx, rc.Addr, rc.Password, rc.DB)
	if err != nil {
		return nil, err
	}
	b.app.closers = append(b.app.closers, client.Close)
	b.deps.Cache = countcache.NewRedis(client, rc.Prefix)
	return b.deps.Cache, nil
}

func (b *builder) csv(ctx context.Context, sc config.SourceConfig) error {
	opts := csvsource.Options{
		Path:      sc.CSV.Path,
		Fs:        b.deps.Fs,
		Encoding:  sc.CSV.Encoding,
		HasHeader: sc.CSV.HasHeader,
		Columns:   sc.CSV.Columns,
	}
	if sc.CSV.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(sc.CSV.Delimiter)
	}
	if sc.CSV.Comment != "" {
		opts.Comment, _ = utf8.DecodeRuneInString(sc.CSV.Comment)
	}

	if sc.CSV.CountMaxSize > 0 {
		cache, err := b.countCache(ctx)
		if err != nil {
			return err
		}
		policy := csvsource.Cached(csvsource.MaxSize(sc.CSV.CountMaxSize), cache, sc.CSV.CountTTL)
		policy.OnError = func(err error) {
			b.deps.Log.Warnf(context.Background(), "count cache for %q: %v", sc.Name, err)
		}
		opts.CountPolicy = policy
	}

	src, err := csvsource.New(opts)
	if err != nil {
		return err
	}
	return dashboard.Register[csvsource.Row](b.app.Dashboard.Sources, sc.Name, src)
}

func (b *builder) db() (*gorm.DB, error) {
	if b.deps.DB != nil {
		return b.deps.DB, nil
	}
	db, err := sqlsource.Open(b.cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	b.app.closers = append(b.app.closers, sqlDB.Close)
	b.deps.DB = db
	return db, nil
}

func (b *builder) sql(sc config.SourceConfig) error {
	db, err := b.db()
	if err != nil {
		return err
	}
	src, err := sqlsource.New[map[string]any](db, sqlsource.Options{
		Table:         sc.SQL.Table,
		SearchColumns: sc.SQL.SearchColumns,
		FilterColumns: sc.SQL.FilterColumns,
		SortColumns:   sc.SQL.SortColumns,
		DefaultOrder:  sc.SQL.DefaultOrder,
		SkipCount:     sc.SQL.SkipCount,
	})
	if err != nil {
		return err
	}
	return dashboard.Register[map[string]any](b.app.Dashboard.Sources, sc.Name, src)
}

func (b *builder) dynamoClient(ctx context.Context) (sdk.QueryAPIClient, error) {
	if b.deps.DynamoDB != nil {
		return b.deps.DynamoDB, nil
	}
	client, err := ddbsource.NewClient(ctx, ddbsource.AWSConfig{
		Region:    b.cfg.AWS.Region,
		AccessKey: b.cfg.AWS.AccessKey,
		SecretKey: b.cfg.AWS.SecretKey,
		Endpoint:  b.cfg.AWS.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	b.deps.DynamoDB = client
	return client, nil
}

func (b *builder) dynamodb(ctx context.Context, sc config.SourceConfig) error {
	client, err := b.dynamoClient(ctx)
	if err != nil {
		return err
	}

	dc := sc.DynamoDB
	params := ddbsource.QueryParams{
		TableName:                 dc.Table,
		KeyConditionExpression:    dc.KeyCondition,
		ExpressionAttributeValues: make(map[string]types.AttributeValue, len(dc.Values)),
	}
	for placeholder, value := range dc.Values {
		params.ExpressionAttributeValues[placeholder] = &types.AttributeValueMemberS{Value: value}
	}
	if dc.IndexName != "" {
		params.IndexName = aws.String(dc.IndexName)
	}

	opts := []ddbsource.StreamOption{
		ddbsource.WithProgressHandler(func(p ddbsource.StreamProgress) {
			b.deps.Log.Debugf(context.Background(), "%s: read %d items in %d pages (%.1f items/s)",
				sc.Name, p.ItemsProcessed, p.PagesProcessed, p.CurrentRate)
		}),
	}
	if dc.PageSize > 0 {
		opts = append(opts, ddbsource.WithPageSize(dc.PageSize))
	}
	if dc.MaxRetries > 0 {
		opts = append(opts, ddbsource.WithMaxRetries(dc.MaxRetries))
	}
	if dc.RetryBackoff > 0 {
		opts = append(opts, ddbsource.WithRetryBackoff(dc.RetryBackoff))
	}

	src, err := ddbsource.New[map[string]any](client, params, opts...)
	if err != nil {
		return err
	}
	return dashboard.Register[map[string]any](b.app.Dashboard.Sources, sc.Name, src)
}

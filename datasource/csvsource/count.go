/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package csvsource

import (
	"context"
	"time"

	"github.com/suparena/dashboard/countcache"
)

// FileStat describes the file a count is requested for.
type FileStat struct {
	Path    string
	Size    int64
	ModTime time.Time
	// Key identifies the file version and the parser settings that affect the count.
	Key string
}

// Scanner counts the data records of the file by reading it entirely.
type Scanner func(ctx context.Context) (int64, error)

// CountPolicy decides whether a CSV file's row count is cheap enough to report.
// Returning ok=false leaves the count unknown.
type CountPolicy interface {
	Count(ctx context.Context, stat FileStat, scan Scanner) (n int64, ok bool, err error)
}

// CountPolicyFunc adapts a function to CountPolicy.
type CountPolicyFunc func(ctx context.Context, stat FileStat, scan Scanner) (int64, bool, error)

func (f CountPolicyFunc) Count(ctx context.Context, stat FileStat, scan Scanner) (int64, bool, error) {
	return f(ctx, stat, scan)
}

// Never never reports a count.
func Never() CountPolicy {
	return CountPolicyFunc(func(context.Context, FileStat, Scanner) (int64, bool, error) {
		return 0, false, nil
	})
}

// Always scans every file.
func Always() CountPolicy {
	return CountPolicyFunc(func(ctx context.Context, _ FileStat, scan Scanner) (int64, bool, error) {
		n, err := scan(ctx)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	})
}

// MaxSize scans files no larger than maxBytes.
func MaxSize(maxBytes int64) CountPolicy {
	return CountPolicyFunc(func(ctx context.Context, stat FileStat, scan Scanner) (int64, bool, error) {
		if stat.Size > maxBytes {
			return 0, false, nil
		}
		return Always().Count(ctx, stat, scan)
	})
}

// CachedPolicy memoizes the counts produced by Policy.
type CachedPolicy struct {
	Policy CountPolicy
	Cache  countcache.Cache
	TTL    time.Duration
	// OnError receives cache failures, which are otherwise treated as misses.
	OnError func(error)
}

// Cached wraps p so its counts are stored in cache under the file's Key.
func Cached(p CountPolicy, cache countcache.Cache, ttl time.Duration) *CachedPolicy {
	return &CachedPolicy{Policy: p, Cache: cache, TTL: ttl}
}

func (c *CachedPolicy) Count(ctx context.Context, stat FileStat, scan Scanner) (int64, bool, error) {
	n, hit, err := c.Cache.Get(ctx, stat.Key)
	if err != nil {
		c.report(err)
	} else if hit {
		return n, true, nil
	}

	n, ok, err := c.Policy.Count(ctx, stat, scan)
	if err != nil || !ok {
		return n, ok, err
	}
	if err := c.Cache.Set(ctx, stat.Key, n, c.TTL); err != nil {
		c.report(err)
	}
	return n, true, nil
}

func (c *CachedPolicy) report(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

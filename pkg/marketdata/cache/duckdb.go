// Package cache persists fetched daily bars in a local DuckDB file so
// repeated backtests over the same range never hit the upstream provider
// twice.
package cache

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// DuckDBCache stores daily bars keyed by symbol and day, plus the closed
// date ranges known to be fully fetched. A range row is what distinguishes
// "no bars because market closed" from "never fetched".
type DuckDBCache struct {
	db *sql.DB
}

// NewDuckDBCache opens or creates the cache database at path and ensures the
// schema exists. Pass ":memory:" for an ephemeral cache.
func NewDuckDBCache(path string) (*DuckDBCache, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to open cache database at %s", path)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_bars (
			symbol TEXT,
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			PRIMARY KEY (symbol, time)
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create cache schema", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fetched_ranges (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			range_start TIMESTAMP,
			range_end TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create cache schema", err)
	}

	return &DuckDBCache{db: db}, nil
}

// Get returns the cached bars for the range if some fetched range fully
// covers it. The second return value reports a cache hit; a hit with zero
// bars is valid (the market was closed for the whole range).
func (c *DuckDBCache) Get(ctx context.Context, ticker string, start time.Time, end time.Time) ([]types.MarketData, bool, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("fetched_ranges").
		Where(sq.Eq{"symbol": ticker}).
		Where(sq.LtOrEq{"range_start": start}).
		Where(sq.GtOrEq{"range_end": end}).
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage query", err)
	}

	var covered int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&covered); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to check cache coverage", err)
	}

	if covered == 0 {
		return nil, false, nil
	}

	query, args, err = sq.Select("symbol", "time", "open", "high", "low", "close", "volume").
		From("daily_bars").
		Where(sq.Eq{"symbol": ticker}).
		Where(sq.GtOrEq{"time": start}).
		Where(sq.LtOrEq{"time": end}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bars query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query cached bars", err)
	}
	defer rows.Close()

	bars := []types.MarketData{}

	for rows.Next() {
		var bar types.MarketData
		if err := rows.Scan(&bar.Symbol, &bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan cached bar", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate cached bars", err)
	}

	return bars, true, nil
}

// Put stores the bars and records the range as fetched, in one transaction.
func (c *DuckDBCache) Put(ctx context.Context, ticker string, start time.Time, end time.Time, bars []types.MarketData) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin cache transaction", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO daily_bars (symbol, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare cache insert", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err = stmt.ExecContext(ctx, bar.Symbol, bar.Time, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert cached bar", err)
		}
	}

	query, args, err := sq.Insert("fetched_ranges").
		Columns("id", "symbol", "range_start", "range_end").
		Values(uuid.New().String(), ticker, start, end).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to build range insert", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to record fetched range", err)
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit cache transaction", err)
	}

	return nil
}

// Close closes the underlying database.
func (c *DuckDBCache) Close() error {
	return c.db.Close()
}

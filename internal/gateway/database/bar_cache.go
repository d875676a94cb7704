package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stockview/internal/market"
)

// BarCache 把拉取到的日 K 落盘到 SQLite，供上游不可用时降级读取，
// 也让重复打开同一只股票的图表不必每次都走网络。
type BarCache struct {
	mu sync.Mutex
	db *sql.DB
}

// Open 打开（或创建）指定路径的缓存库并完成建表。
func Open(path string) (*BarCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开日K缓存库失败: %w", err)
	}
	c := &BarCache{db: db}
	if err := c.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化日K缓存表失败: %w", err)
	}
	return c, nil
}

// Close 关闭底层连接。
func (c *BarCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// SaveBars 以 (code, trade_date) 为键整批写入，已有记录被覆盖。
func (c *BarCache) SaveBars(ctx context.Context, code string, bars []market.DailyBar) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("code 不能为空")
	}
	if len(bars) == 0 {
		return nil
	}
	c.mu.Lock()
	db := c.db
	c.mu.Unlock()
	if db == nil {
		return fmt.Errorf("bar cache 未初始化")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	for _, b := range bars {
		_, err := tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO daily_bars
                (code, trade_date, open, close, high, low, volume, amount, change_pct, turnover_rate, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			code, b.TradeDate, b.Open, b.Close, b.High, b.Low, b.Volume, b.Amount,
			nullableFloat(b.ChangePct), nullableFloat(b.TurnoverRate), now)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadBars 读取最近 lookbackDays 条日 K，按日期升序返回。
func (c *BarCache) LoadBars(ctx context.Context, code string, lookbackDays int) ([]market.DailyBar, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code 不能为空")
	}
	if lookbackDays <= 0 {
		lookbackDays = 120
	}
	c.mu.Lock()
	db := c.db
	c.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("bar cache 未初始化")
	}
	rows, err := db.QueryContext(ctx, `
        SELECT trade_date, open, close, high, low, volume, amount, change_pct, turnover_rate
        FROM daily_bars
        WHERE code = ?
        ORDER BY trade_date DESC
        LIMIT ?`, code, lookbackDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.DailyBar
	for rows.Next() {
		var b market.DailyBar
		var pct, rate sql.NullFloat64
		if err := rows.Scan(&b.TradeDate, &b.Open, &b.Close, &b.High, &b.Low,
			&b.Volume, &b.Amount, &pct, &rate); err != nil {
			return nil, err
		}
		if pct.Valid {
			v := pct.Float64
			b.ChangePct = &v
		}
		if rate.Valid {
			v := rate.Float64
			b.TurnoverRate = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TradeDate < out[j].TradeDate })
	return out, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

package database

import "context"

// migrate 建表（幂等）。
func (c *BarCache) migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
            code          TEXT NOT NULL,
            trade_date    TEXT NOT NULL,
            open          REAL NOT NULL,
            close         REAL NOT NULL,
            high          REAL NOT NULL,
            low           REAL NOT NULL,
            volume        INTEGER NOT NULL,
            amount        REAL NOT NULL,
            change_pct    REAL,
            turnover_rate REAL,
            updated_at    INTEGER NOT NULL,
            PRIMARY KEY (code, trade_date)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_daily_bars_code_date ON daily_bars (code, trade_date)`,
	}
	for _, q := range queries {
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

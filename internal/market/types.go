package market

import "context"

// DailyBar 表示某只股票一个交易日的 OHLCV 数据。
// TradeDate 使用 YYYY-MM-DD 字符串，同一只股票内唯一且序列按日期升序。
type DailyBar struct {
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open"`
	Close     float64 `json:"close"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	// Volume 单位为股，Amount 为成交额（元）。
	Volume int64   `json:"volume"`
	Amount float64 `json:"amount"`
	// ChangePct/TurnoverRate 数据源可能缺失，缺失时为 nil 而非 0。
	ChangePct    *float64 `json:"change_pct,omitempty"`
	TurnoverRate *float64 `json:"turnover_rate,omitempty"`
}

// FlowRecord 表示某只股票一个交易日的资金净流向（元，带符号）。
// 资金流与 K 线的覆盖范围允许不一致：某日可以只有其一。
type FlowRecord struct {
	TradeDate string  `json:"trade_date"`
	MainNet   float64 `json:"main_net"`
	SuperNet  float64 `json:"super_net,omitempty"`
	LargeNet  float64 `json:"large_net,omitempty"`
}

// Source 统一对接外部行情服务。
type Source interface {
	// FetchDailyBars 拉取最近 lookbackDays 个交易日的日 K，按日期升序返回。
	FetchDailyBars(ctx context.Context, code string, lookbackDays int) ([]DailyBar, error)
	// FetchCapitalFlow 拉取资金流向序列，按日期升序返回；空序列是合法结果而非错误。
	FetchCapitalFlow(ctx context.Context, code string, lookbackDays int) ([]FlowRecord, error)
}

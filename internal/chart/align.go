package chart

import "stockview/internal/market"

// Align 以交易日为键把资金流记录左连接到 K 线序列上。
// K 线序列决定行数与顺序：每根 K 线恰好产出一行，缺少匹配资金流的行
// 使用零值占位；没有对应 K 线的资金流记录被静默丢弃（不能凭空造出
// 一行没有价格的数据）。
func Align(bars []market.DailyBar, flows []market.FlowRecord) []AlignedRow {
	byDate := make(map[string]market.FlowRecord, len(flows))
	for _, f := range flows {
		byDate[f.TradeDate] = f
	}
	rows := make([]AlignedRow, 0, len(bars))
	for _, b := range bars {
		row := AlignedRow{Bar: b, MA: make(map[int]float64)}
		if f, ok := byDate[b.TradeDate]; ok {
			row.Flow = f
		} else {
			row.Flow = market.FlowRecord{TradeDate: b.TradeDate}
		}
		rows = append(rows, row)
	}
	return rows
}

package chart

import (
	"math"

	"stockview/internal/market"
)

// AlignedRow 是一条按交易日对齐后的图表行：K 线 + 当日资金流 + 各周期均线值。
// Flow 为零值表示当日没有匹配的资金流记录。
type AlignedRow struct {
	Bar  market.DailyBar   `json:"bar"`
	Flow market.FlowRecord `json:"flow"`
	// MA 按周期索引，窗口不足的位置为 NaN。
	MA map[int]float64 `json:"-"`
}

// Model 是渲染层消费的多窗格图表模型。
// 它是纯派生值：底层窗口（股票、回看长度）变化时整体重建，从不原地修改。
type Model struct {
	Code           string       `json:"code"`
	Rows           []AlignedRow `json:"rows"`
	Periods        []int        `json:"periods"`
	HasCapitalFlow bool         `json:"has_capital_flow"`
}

// PaneKind 标识多窗格图中的一个横向窗格。
type PaneKind string

const (
	PanePrice  PaneKind = "price"
	PaneVolume PaneKind = "volume"
	PaneFlow   PaneKind = "flow"
)

// Panes 返回应当渲染的窗格：价格与成交量恒有，资金流窗格仅当窗口内
// 存在资金流数据时出现。窗格从不渲染为空。
func (m *Model) Panes() []PaneKind {
	panes := []PaneKind{PanePrice, PaneVolume}
	if m.HasCapitalFlow {
		panes = append(panes, PaneFlow)
	}
	return panes
}

// RowCount 返回对齐后的行数。
func (m *Model) RowCount() int {
	return len(m.Rows)
}

// Empty 为真表示该窗口内没有任何数据，消费方应渲染"无数据"状态。
func (m *Model) Empty() bool {
	return len(m.Rows) == 0
}

// MASeries 提取指定周期的均线序列；该周期未计算时返回 nil。
func (m *Model) MASeries(period int) []float64 {
	found := false
	for _, p := range m.Periods {
		if p == period {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		v, ok := row.MA[period]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// CandleUp 判断蜡烛实体颜色：当日收盘不低于开盘即为阳线，与前一日无关。
func CandleUp(bar market.DailyBar) bool {
	return bar.Close >= bar.Open
}

// VolumeUp 判断成交量柱颜色：当日收盘高于前一日收盘用阳色。
// 注意与蜡烛规则不同：比较对象是前收而非当日开盘；首根无前收，取阴色。
func VolumeUp(rows []AlignedRow, i int) bool {
	if i <= 0 || i >= len(rows) {
		return false
	}
	return rows[i].Bar.Close > rows[i-1].Bar.Close
}

// CandleUpAt / VolumeUpAt 是模型上的便捷形式。
func (m *Model) CandleUpAt(i int) bool {
	if i < 0 || i >= len(m.Rows) {
		return false
	}
	return CandleUp(m.Rows[i].Bar)
}

func (m *Model) VolumeUpAt(i int) bool {
	return VolumeUp(m.Rows, i)
}

package chart

import (
	"fmt"
	"math"
)

// ChangeInfo 表示涨跌幅；首行没有前收、或前收为 0 时 Available 为假，
// 明确表示"不可得"而不是退化成 0%。
type ChangeInfo struct {
	Available bool    `json:"available"`
	Pct       float64 `json:"pct"`
	Text      string  `json:"text"`
}

// FlowInfo 表示当日主力资金净流向，带方向标签。
type FlowInfo struct {
	Inflow bool    `json:"inflow"`
	Value  float64 `json:"value"`
	Text   string  `json:"text"`
}

// MAValue 是某个周期在该行的均线值，仅包含有值的周期。
type MAValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Summary 是十字光标悬停时的跨窗格摘要。
type Summary struct {
	TradeDate  string     `json:"trade_date"`
	Open       float64    `json:"open"`
	High       float64    `json:"high"`
	Low        float64    `json:"low"`
	Close      float64    `json:"close"`
	Change     ChangeInfo `json:"change"`
	VolumeText string     `json:"volume_text"`
	AmountText string     `json:"amount_text"`
	Flow       *FlowInfo  `json:"flow,omitempty"`
	MAs        []MAValue  `json:"mas,omitempty"`
}

// Format 组装模型中 rowIndex 处的摘要。下标越界返回 ok=false。
// 对合法模型它是全函数：均线无值、资金流缺失都表现为字段缺省而非失败。
func Format(m *Model, rowIndex int) (Summary, bool) {
	if m == nil || rowIndex < 0 || rowIndex >= len(m.Rows) {
		return Summary{}, false
	}
	row := m.Rows[rowIndex]
	out := Summary{
		TradeDate:  row.Bar.TradeDate,
		Open:       row.Bar.Open,
		High:       row.Bar.High,
		Low:        row.Bar.Low,
		Close:      row.Bar.Close,
		Change:     deriveChange(m, rowIndex),
		VolumeText: FormatVolume(row.Bar.Volume),
		AmountText: FormatAmount(row.Bar.Amount),
	}
	if m.HasCapitalFlow {
		flow := &FlowInfo{Inflow: row.Flow.MainNet >= 0, Value: row.Flow.MainNet}
		if flow.Inflow {
			flow.Text = "主力流入 " + FormatAmount(row.Flow.MainNet)
		} else {
			flow.Text = "主力流出 " + FormatAmount(-row.Flow.MainNet)
		}
		out.Flow = flow
	}
	for _, p := range m.Periods {
		v, ok := row.MA[p]
		if !ok || math.IsNaN(v) {
			continue
		}
		out.MAs = append(out.MAs, MAValue{Name: fmt.Sprintf("MA%d", p), Value: v})
	}
	return out, true
}

// deriveChange 优先采用数据源自带的涨跌幅，缺失时用前收推导。
func deriveChange(m *Model, i int) ChangeInfo {
	bar := m.Rows[i].Bar
	if bar.ChangePct != nil {
		return changeOf(*bar.ChangePct)
	}
	if i == 0 {
		return ChangeInfo{Available: false, Text: "--"}
	}
	prev := m.Rows[i-1].Bar.Close
	if prev == 0 {
		return ChangeInfo{Available: false, Text: "--"}
	}
	return changeOf((bar.Close - prev) / prev * 100)
}

func changeOf(pct float64) ChangeInfo {
	pct = math.Round(pct*100) / 100
	return ChangeInfo{Available: true, Pct: pct, Text: fmt.Sprintf("%+.2f%%", pct)}
}

// FormatVolume 把成交量（股）换算为手并压缩到万/亿量级。
func FormatVolume(shares int64) string {
	lots := float64(shares) / 100
	switch {
	case lots >= 1e8:
		return fmt.Sprintf("%.2f亿手", lots/1e8)
	case lots >= 1e4:
		return fmt.Sprintf("%.2f万手", lots/1e4)
	default:
		return fmt.Sprintf("%.0f手", lots)
	}
}

// FormatAmount 把金额（元）压缩到万/亿量级。
func FormatAmount(yuan float64) string {
	abs := math.Abs(yuan)
	switch {
	case abs >= 1e8:
		return fmt.Sprintf("%.2f亿", yuan/1e8)
	case abs >= 1e4:
		return fmt.Sprintf("%.2f万", yuan/1e4)
	default:
		return fmt.Sprintf("%.2f元", yuan)
	}
}

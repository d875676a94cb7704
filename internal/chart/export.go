package chart

import (
	"math"
	"strconv"
	"strings"
)

// CSVOptions 控制导出的精度与可选列。
type CSVOptions struct {
	// PricePrecision 为 PrecisionAuto 时按价格区间自动决定小数位。
	PricePrecision int
	// WithFlow 为真且模型带资金流时追加主力净流入列。
	WithFlow bool
}

const (
	// PrecisionAuto 根据序列最大价格自动决定精度。
	PrecisionAuto = math.MinInt32
	// PrecisionRaw 保留原始精度。
	PrecisionRaw = -1
)

// BuildCSV 把图表模型导出为 CSV 文本，首行为列头；空模型返回空串。
func BuildCSV(m *Model, opts CSVOptions) string {
	if m == nil || m.Empty() {
		return ""
	}
	precision := opts.PricePrecision
	if precision == PrecisionAuto {
		precision = autoPrecision(m.Rows)
	}
	withFlow := opts.WithFlow && m.HasCapitalFlow

	var b strings.Builder
	b.WriteString("Date,O,H,L,C,V")
	if withFlow {
		b.WriteString(",MainNet")
	}
	b.WriteByte('\n')
	for i := range m.Rows {
		bar := m.Rows[i].Bar
		b.WriteString(bar.TradeDate)
		b.WriteByte(',')
		b.WriteString(formatPrice(bar.Open, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(bar.High, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(bar.Low, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(bar.Close, precision))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(bar.Volume, 10))
		if withFlow {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(m.Rows[i].Flow.MainNet, 'f', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func autoPrecision(rows []AlignedRow) int {
	maxVal := 0.0
	for i := range rows {
		bar := rows[i].Bar
		for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close} {
			if abs := math.Abs(v); abs > maxVal {
				maxVal = abs
			}
		}
	}
	switch {
	case maxVal >= 1000:
		return 1
	case maxVal >= 100:
		return 2
	default:
		return PrecisionRaw
	}
}

func formatPrice(value float64, precision int) string {
	if precision == PrecisionRaw {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if precision > 0 {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"stockview/internal/market"
)

// DefaultPeriods 是日 K 图默认叠加的均线周期。
var DefaultPeriods = []int{5, 10, 20, 30, 60}

// Series 是与 K 线序列按下标对齐的均线序列。
// 窗口不足（下标 < period-1）的位置取 NaN，表示"无值"而非 0。
type Series struct {
	Name   string    `json:"name"`
	Period int       `json:"period"`
	Values []float64 `json:"values"`
}

// Defined 判断下标 i 处是否有有效值。
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s.Values) && !math.IsNaN(s.Values[i])
}

// At 返回下标 i 处的值；无效位置返回 NaN。
func (s Series) At(i int) float64 {
	if i < 0 || i >= len(s.Values) {
		return math.NaN()
	}
	return s.Values[i]
}

// MovingAverage 计算收盘价的简单移动平均，保留两位小数。
// 空 K 线序列返回空序列；输出长度恒等于输入长度。
func MovingAverage(bars []market.DailyBar, period int) Series {
	out := Series{Name: fmt.Sprintf("MA%d", period), Period: period}
	if len(bars) == 0 || period <= 0 {
		out.Values = []float64{}
		return out
	}
	if period > len(bars) {
		// talib 不接受超过序列长度的周期；整列都没有足够窗口。
		values := make([]float64, len(bars))
		for i := range values {
			values[i] = math.NaN()
		}
		out.Values = values
		return out
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	values := talib.Sma(closes, period)
	for i := range values {
		if i < period-1 {
			values[i] = math.NaN()
			continue
		}
		values[i] = round2(values[i])
	}
	out.Values = values
	return out
}

// MovingAverages 按给定周期逐一计算，跳过非法周期。
func MovingAverages(bars []market.DailyBar, periods []int) []Series {
	out := make([]Series, 0, len(periods))
	for _, p := range periods {
		if p <= 0 {
			continue
		}
		out = append(out, MovingAverage(bars, p))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package chart

import (
	"stockview/internal/analysis/indicator"
	"stockview/internal/market"
)

// Build 把日 K、资金流与均线周期组装成一个新的图表模型。
// HasCapitalFlow 仅由"窗口内是否提供了资金流序列"决定，与逐行匹配成功
// 多少无关。重复以相同输入调用产出结构相等的模型，彼此不共享可变状态。
func Build(code string, bars []market.DailyBar, flows []market.FlowRecord, periods []int) *Model {
	rows := Align(bars, flows)
	series := indicator.MovingAverages(bars, periods)
	computed := make([]int, 0, len(series))
	for _, s := range series {
		computed = append(computed, s.Period)
		for i := range rows {
			rows[i].MA[s.Period] = s.At(i)
		}
	}
	return &Model{
		Code:           code,
		Rows:           rows,
		Periods:        computed,
		HasCapitalFlow: len(flows) > 0,
	}
}

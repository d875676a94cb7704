package chart

import (
	"math"
	"testing"

	"stockview/internal/market"
)

func buildInput() ([]market.DailyBar, []market.FlowRecord) {
	dates := []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-08"}
	closes := []float64{10, 11, 12, 13, 14}
	bars := make([]market.DailyBar, len(dates))
	for i := range dates {
		bars[i] = market.DailyBar{TradeDate: dates[i], Open: closes[i] - 0.2, Close: closes[i], High: closes[i] + 0.3, Low: closes[i] - 0.5, Volume: 1000}
	}
	flows := []market.FlowRecord{{TradeDate: "2024-01-03", MainNet: 8_000_000}}
	return bars, flows
}

func TestBuildHasCapitalFlowFlag(t *testing.T) {
	bars, flows := buildInput()

	withFlow := Build("sh600000", bars, flows, []int{3})
	if !withFlow.HasCapitalFlow {
		t.Fatal("提供了资金流序列时标志应为真")
	}
	if got := withFlow.Panes(); len(got) != 3 || got[2] != PaneFlow {
		t.Fatalf("应有三个窗格且末位为资金流: %v", got)
	}

	// 标志只看输入序列是否为空，与逐行匹配多少无关。
	orphanOnly := Build("sh600000", bars, []market.FlowRecord{{TradeDate: "2019-01-01", MainNet: 1}}, []int{3})
	if !orphanOnly.HasCapitalFlow {
		t.Fatal("即使没有任何行匹配，非空资金流输入也应置位")
	}

	noFlow := Build("sh600000", bars, nil, []int{3})
	if noFlow.HasCapitalFlow {
		t.Fatal("空资金流输入不应置位")
	}
	if got := noFlow.Panes(); len(got) != 2 {
		t.Fatalf("无资金流时只应有价格与成交量窗格: %v", got)
	}
}

func TestBuildComputesIndicators(t *testing.T) {
	bars, flows := buildInput()
	m := Build("sh600000", bars, flows, []int{3, 99})

	if len(m.Periods) != 2 {
		t.Fatalf("计算过的周期应记录在模型里: %v", m.Periods)
	}
	if v := m.Rows[2].MA[3]; v != 11 {
		t.Fatalf("MA3 下标 2 应为 11, got %v", v)
	}
	if !math.IsNaN(m.Rows[1].MA[3]) {
		t.Fatal("窗口不足的均线值应为 NaN")
	}
	if !math.IsNaN(m.Rows[4].MA[99]) {
		t.Fatal("周期超过窗口长度时整列应为 NaN")
	}
	series := m.MASeries(3)
	if len(series) != m.RowCount() {
		t.Fatalf("均线序列长度应等于行数: %d", len(series))
	}
	if m.MASeries(7) != nil {
		t.Fatal("未计算的周期应返回 nil")
	}
}

func TestBuildIdempotent(t *testing.T) {
	bars, flows := buildInput()
	a := Build("sh600000", bars, flows, []int{3})
	b := Build("sh600000", bars, flows, []int{3})

	if a == b {
		t.Fatal("两次构建应是独立的模型值")
	}
	assertModelEqual(t, a, b)

	// 修改其中一个模型的行不应影响另一个。
	a.Rows[0].Bar.Close = 999
	if b.Rows[0].Bar.Close == 999 {
		t.Fatal("两次构建共享了底层存储")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	m := Build("sh600000", nil, nil, []int{5})
	if !m.Empty() || m.RowCount() != 0 {
		t.Fatalf("空输入应产出空模型: %+v", m)
	}
	if m.HasCapitalFlow {
		t.Fatal("空输入不应有资金流窗格")
	}
}

// assertModelEqual 逐字段比较两个模型；NaN 视为相等。
func assertModelEqual(t *testing.T, a, b *Model) {
	t.Helper()
	if a.Code != b.Code || a.HasCapitalFlow != b.HasCapitalFlow || len(a.Rows) != len(b.Rows) || len(a.Periods) != len(b.Periods) {
		t.Fatalf("模型元数据不一致: %+v vs %+v", a, b)
	}
	for i := range a.Rows {
		if a.Rows[i].Bar != b.Rows[i].Bar || a.Rows[i].Flow != b.Rows[i].Flow {
			t.Fatalf("第 %d 行不一致", i)
		}
		for _, p := range a.Periods {
			av, bv := a.Rows[i].MA[p], b.Rows[i].MA[p]
			if math.IsNaN(av) && math.IsNaN(bv) {
				continue
			}
			if av != bv {
				t.Fatalf("第 %d 行 MA%d 不一致: %v vs %v", i, p, av, bv)
			}
		}
	}
}

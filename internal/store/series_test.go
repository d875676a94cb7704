package store

import (
	"testing"

	"stockview/internal/market"
)

func TestReplaceSwapsWholeWindow(t *testing.T) {
	s := NewSeriesStore()
	s.Replace("600519", 120,
		[]market.DailyBar{{TradeDate: "2024-01-02", Close: 10}},
		[]market.FlowRecord{{TradeDate: "2024-01-02", MainNet: 1}})

	s.Replace("000001", 250,
		[]market.DailyBar{{TradeDate: "2024-01-03", Close: 11}},
		nil)

	code, lookback := s.Window()
	if code != "000001" || lookback != 250 {
		t.Fatalf("窗口未整体替换: %s %d", code, lookback)
	}
	if bars := s.Bars(); len(bars) != 1 || bars[0].TradeDate != "2024-01-03" {
		t.Fatalf("K 线未替换: %+v", bars)
	}
	if flows := s.Flows(); len(flows) != 0 {
		t.Fatalf("旧窗口的资金流不应残留: %+v", flows)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewSeriesStore()
	in := []market.DailyBar{{TradeDate: "2024-01-02", Close: 10}}
	s.Replace("600519", 120, in, nil)

	in[0].Close = 99
	if got := s.Bars()[0].Close; got != 10 {
		t.Fatalf("Replace 应拷贝入参: %v", got)
	}

	out := s.Bars()
	out[0].Close = 77
	if got := s.Bars()[0].Close; got != 10 {
		t.Fatalf("读取应返回拷贝: %v", got)
	}
}

func TestEmptyStore(t *testing.T) {
	s := NewSeriesStore()
	if code, lookback := s.Window(); code != "" || lookback != 0 {
		t.Fatalf("空存储不应有窗口: %s %d", code, lookback)
	}
	if len(s.Bars()) != 0 || len(s.Flows()) != 0 {
		t.Fatal("空存储读取应为空序列")
	}
}

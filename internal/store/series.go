package store

import (
	"sync"

	"stockview/internal/market"
)

// SeriesStore 持有一只股票一个回看窗口内已拉取的日 K 与资金流序列。
// 两个序列一起整体替换：外部永远看不到"K 线已换、资金流还是旧窗口"的
// 中间状态。读取返回拷贝，调用方可以任意持有。
type SeriesStore struct {
	mu       sync.RWMutex
	code     string
	lookback int
	bars     []market.DailyBar
	flows    []market.FlowRecord
}

func NewSeriesStore() *SeriesStore {
	return &SeriesStore{}
}

// Replace 原子替换当前窗口的全部内容，丢弃之前的序列。
func (s *SeriesStore) Replace(code string, lookback int, bars []market.DailyBar, flows []market.FlowRecord) {
	barsCopy := make([]market.DailyBar, len(bars))
	copy(barsCopy, bars)
	flowsCopy := make([]market.FlowRecord, len(flows))
	copy(flowsCopy, flows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	s.lookback = lookback
	s.bars = barsCopy
	s.flows = flowsCopy
}

// Window 返回当前窗口标识。
func (s *SeriesStore) Window() (code string, lookback int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code, s.lookback
}

// Bars 返回日 K 序列的拷贝（按日期升序）。
func (s *SeriesStore) Bars() []market.DailyBar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]market.DailyBar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Flows 返回资金流序列的拷贝（按日期升序）。
func (s *SeriesStore) Flows() []market.FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]market.FlowRecord, len(s.flows))
	copy(out, s.flows)
	return out
}

package chart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stockview/internal/market"
)

// fakeSource 以回调伪造 market.Source，回调拿到的是第几次调用。
type fakeSource struct {
	mu        sync.Mutex
	barCalls  int
	flowCalls int

	fetchBars  func(ctx context.Context, call int) ([]market.DailyBar, error)
	fetchFlows func(ctx context.Context, call int) ([]market.FlowRecord, error)
}

func (f *fakeSource) FetchDailyBars(ctx context.Context, code string, lookbackDays int) ([]market.DailyBar, error) {
	f.mu.Lock()
	f.barCalls++
	call := f.barCalls
	f.mu.Unlock()
	if f.fetchBars == nil {
		return nil, nil
	}
	return f.fetchBars(ctx, call)
}

func (f *fakeSource) FetchCapitalFlow(ctx context.Context, code string, lookbackDays int) ([]market.FlowRecord, error) {
	f.mu.Lock()
	f.flowCalls++
	call := f.flowCalls
	f.mu.Unlock()
	if f.fetchFlows == nil {
		return nil, nil
	}
	return f.fetchFlows(ctx, call)
}

func (f *fakeSource) barCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.barCalls
}

func singleBar(date string, closePx float64) []market.DailyBar {
	return []market.DailyBar{{TradeDate: date, Open: closePx, Close: closePx, High: closePx, Low: closePx}}
}

func TestSessionLoadBuildsModelAndViewport(t *testing.T) {
	src := &fakeSource{
		fetchBars: func(ctx context.Context, call int) ([]market.DailyBar, error) {
			return singleBar("2024-01-02", 10), nil
		},
		fetchFlows: func(ctx context.Context, call int) ([]market.FlowRecord, error) {
			return []market.FlowRecord{{TradeDate: "2024-01-02", MainNet: 1}}, nil
		},
	}
	s := NewSession(src, []int{5})
	defer s.Close()

	model, err := s.Load(context.Background(), "600519", 120)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if model.RowCount() != 1 || !model.HasCapitalFlow {
		t.Fatalf("模型不符合预期: %+v", model)
	}
	if got := s.Viewport(); got != DefaultViewport(1) {
		t.Fatalf("加载后应重置视口: %+v", got)
	}
}

func TestSessionFlowFailureDegrades(t *testing.T) {
	src := &fakeSource{
		fetchBars: func(ctx context.Context, call int) ([]market.DailyBar, error) {
			return singleBar("2024-01-02", 10), nil
		},
		fetchFlows: func(ctx context.Context, call int) ([]market.FlowRecord, error) {
			return nil, errors.New("fflow 接口超时")
		},
	}
	s := NewSession(src, nil)
	defer s.Close()

	model, err := s.Load(context.Background(), "600519", 120)
	if err != nil {
		t.Fatalf("资金流失败不应让整体失败: %v", err)
	}
	if model.HasCapitalFlow {
		t.Fatal("资金流失败应降级为无资金流窗格")
	}
}

func TestSessionBarFailureKeepsPreviousState(t *testing.T) {
	src := &fakeSource{
		fetchBars: func(ctx context.Context, call int) ([]market.DailyBar, error) {
			if call == 1 {
				return singleBar("2024-01-02", 10), nil
			}
			return nil, errors.New("kline 接口 502")
		},
	}
	s := NewSession(src, nil)
	defer s.Close()

	if _, err := s.Load(context.Background(), "600519", 120); err != nil {
		t.Fatalf("首次加载失败: %v", err)
	}
	before := s.Model()

	if _, err := s.Load(context.Background(), "600519", 250); err == nil {
		t.Fatal("日K失败应向上暴露")
	}
	if s.Model() != before {
		t.Fatal("失败的加载不应替换已有模型")
	}
}

func TestSessionStaleLoadDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		fetchBars: func(ctx context.Context, call int) ([]market.DailyBar, error) {
			if call == 1 {
				<-gate
				return singleBar("2024-01-02", 1), nil
			}
			return singleBar("2024-01-02", 2), nil
		},
	}
	s := NewSession(src, nil)
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background(), "600519", 120)
		errCh <- err
	}()
	waitFor(t, func() bool { return src.barCallCount() == 1 })

	// 第二次请求先完成。
	model, err := s.Load(context.Background(), "600519", 120)
	if err != nil {
		t.Fatalf("新请求失败: %v", err)
	}
	if model.Rows[0].Bar.Close != 2 {
		t.Fatalf("应展示新请求的数据: %v", model.Rows[0].Bar.Close)
	}

	// 放行旧请求：结果必须被丢弃。
	close(gate)
	if err := <-errCh; !errors.Is(err, ErrStale) {
		t.Fatalf("晚到的旧响应应返回 ErrStale, got %v", err)
	}
	if got := s.Model().Rows[0].Bar.Close; got != 2 {
		t.Fatalf("旧响应不应覆盖新数据: %v", got)
	}
}

func TestSessionCloseStopsLateArrivals(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{
		fetchBars: func(ctx context.Context, call int) ([]market.DailyBar, error) {
			<-gate
			return singleBar("2024-01-02", 1), nil
		},
	}
	s := NewSession(src, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background(), "600519", 120)
		errCh <- err
	}()
	waitFor(t, func() bool { return src.barCallCount() == 1 })

	s.Close()
	close(gate)
	if err := <-errCh; !errors.Is(err, ErrClosed) {
		t.Fatalf("会话销毁后晚到结果应被拒绝, got %v", err)
	}
	if _, err := s.Load(context.Background(), "600519", 120); !errors.Is(err, ErrClosed) {
		t.Fatalf("已关闭会话不应再接受加载, got %v", err)
	}
}

func TestSessionApplyViewport(t *testing.T) {
	s := NewSession(&fakeSource{}, nil)
	defer s.Close()

	vp, err := s.ApplyViewport(ViewportUpdate{Op: "set", Start: 20, End: 80})
	if err != nil {
		t.Fatalf("set 失败: %v", err)
	}
	if vp != (Viewport{Start: 20, End: 80}) {
		t.Fatalf("set 结果不对: %+v", vp)
	}
	if _, err := s.ApplyViewport(ViewportUpdate{Op: "fly"}); err == nil {
		t.Fatal("未知操作应报错")
	}
}

func TestSessionRefreshRequiresWindow(t *testing.T) {
	s := NewSession(&fakeSource{}, nil)
	defer s.Close()
	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("尚未加载过的会话不能刷新")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("等待条件超时")
}

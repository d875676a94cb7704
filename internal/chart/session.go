package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockview/internal/analysis/indicator"
	"stockview/internal/logger"
	"stockview/internal/market"
	"stockview/internal/store"
)

var (
	// ErrStale 表示本次加载完成前已有更新的加载请求，结果被丢弃。
	ErrStale = errors.New("加载结果已过期")
	// ErrClosed 表示会话已销毁。
	ErrClosed = errors.New("会话已关闭")
)

// Session 是一个图表实例：独占自己的序列存储、图表模型与视口，
// 不同会话之间没有共享可变状态。
type Session struct {
	ID string

	source  market.Source
	series  *store.SeriesStore
	periods []int

	mu       sync.Mutex
	gen      uint64
	closed   bool
	model    *Model
	viewport Viewport
}

// NewSession 创建一个空会话；periods 为空时采用默认均线周期。
func NewSession(source market.Source, periods []int) *Session {
	if len(periods) == 0 {
		periods = indicator.DefaultPeriods
	}
	ps := make([]int, len(periods))
	copy(ps, periods)
	return &Session{
		ID:       uuid.NewString(),
		source:   source,
		series:   store.NewSeriesStore(),
		periods:  ps,
		viewport: DefaultViewport(0),
	}
}

// Load 拉取指定窗口的数据并重建模型。K 线与资金流并发拉取；
// 资金流失败只降级（模型无资金流窗格），K 线失败则整体失败且
// 保留之前的存储与模型。并发 Load 之间以代数判定新旧：晚到的
// 旧响应不会覆盖更新请求的结果。
func (s *Session) Load(ctx context.Context, code string, lookbackDays int) (*Model, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	var (
		bars  []market.DailyBar
		flows []market.FlowRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.source.FetchDailyBars(gctx, code, lookbackDays)
		if err != nil {
			return fmt.Errorf("拉取 %s 日K失败: %w", code, err)
		}
		bars = out
		return nil
	})
	g.Go(func() error {
		out, err := s.source.FetchCapitalFlow(gctx, code, lookbackDays)
		if err != nil {
			// 资金流缺失不阻断图表，仅丢掉资金流窗格。
			logger.Warnf("[chart] 拉取 %s 资金流失败，降级为无资金流: %v", code, err)
			return nil
		}
		flows = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if report := market.CheckBars(bars); !report.Clean() {
		logger.Warnf("[chart] %s 日K存在 %d 处数据异常，首处: 第 %d 条 %s",
			code, len(report.Issues), report.Issues[0].Index, report.Issues[0].Reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if gen != s.gen {
		return nil, ErrStale
	}
	s.series.Replace(code, lookbackDays, bars, flows)
	model := Build(code, bars, flows, s.periods)
	s.model = model
	s.viewport = DefaultViewport(model.RowCount())
	return model, nil
}

// Refresh 按当前窗口重新加载。
func (s *Session) Refresh(ctx context.Context) (*Model, error) {
	code, lookback := s.series.Window()
	if code == "" {
		return nil, errors.New("会话尚未加载任何窗口")
	}
	return s.Load(ctx, code, lookback)
}

// Model 返回最近一次成功构建的模型；尚未加载时为 nil。
func (s *Session) Model() *Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Viewport 返回当前视口。
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// ViewportUpdate 描述一次视口操作，来源可以是按钮、快捷键，
// 也可以是渲染层拖拽回报的区间（op=set）。
type ViewportUpdate struct {
	Op     string  `json:"op"`
	Step   float64 `json:"step,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Start  float64 `json:"start,omitempty"`
	End    float64 `json:"end,omitempty"`
}

// ApplyViewport 应用一次视口操作并返回结果；所有入口共用同一套钳制逻辑。
func (s *Session) ApplyViewport(update ViewportUpdate) (Viewport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Viewport{}, ErrClosed
	}
	switch update.Op {
	case "pan_left":
		s.viewport = s.viewport.PanLeft(update.Step)
	case "pan_right":
		s.viewport = s.viewport.PanRight(update.Step)
	case "zoom_in":
		s.viewport = s.viewport.ZoomIn(update.Factor)
	case "zoom_out":
		s.viewport = s.viewport.ZoomOut(update.Factor)
	case "reset":
		rows := 0
		if s.model != nil {
			rows = s.model.RowCount()
		}
		s.viewport = DefaultViewport(rows)
	case "set":
		s.viewport = s.viewport.Set(update.Start, update.End)
	default:
		return s.viewport, fmt.Errorf("未知视口操作: %q", update.Op)
	}
	return s.viewport, nil
}

// Close 销毁会话。之后任何晚到的加载结果都不再落盘（no-op）。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.model = nil
}

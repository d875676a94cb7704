package chart

// Viewport 描述图表模型行序列上的可见百分比窗口。
// 不变量：0 <= Start < End <= 100，且在每次操作之后都重新强制，而不是
// 只在初始化时检查一次。所有操作都是纯变换：输入旧窗口，返回新窗口。
type Viewport struct {
	Start float64 `json:"start_percent"`
	End   float64 `json:"end_percent"`
}

const (
	// DefaultPanStep 是单次平移的默认步长（百分点）。
	DefaultPanStep = 10.0
	// DefaultZoomInFactor / DefaultZoomOutFactor 是缩放的默认倍率。
	DefaultZoomInFactor  = 0.7
	DefaultZoomOutFactor = 1.4
	// MinWindowPercent 是放大操作的最小窗口宽度。
	MinWindowPercent = 10.0

	defaultWindowPercent = 30.0
	// 行数不超过该值时默认显示全量，避免 30% 窗口只剩十几根 K 线。
	smallWindowRows = 60
)

// DefaultViewport 为给定行数推导默认窗口：默认看最近 30%，行数较少时看全量。
func DefaultViewport(rowCount int) Viewport {
	if rowCount <= smallWindowRows {
		return Viewport{Start: 0, End: 100}
	}
	return Viewport{Start: 100 - defaultWindowPercent, End: 100}
}

// Width 返回窗口宽度（百分点）。
func (v Viewport) Width() float64 {
	return v.End - v.Start
}

// PanLeft 将窗口左移 step 个百分点；到达左边界时贴边滑动，宽度保持不变。
func (v Viewport) PanLeft(step float64) Viewport {
	if step <= 0 {
		step = DefaultPanStep
	}
	width := v.Width()
	start := v.Start - step
	if start < 0 {
		start = 0
	}
	return clampViewport(Viewport{Start: start, End: start + width})
}

// PanRight 将窗口右移 step 个百分点；到达右边界时贴边滑动，宽度保持不变。
func (v Viewport) PanRight(step float64) Viewport {
	if step <= 0 {
		step = DefaultPanStep
	}
	width := v.Width()
	end := v.End + step
	if end > 100 {
		end = 100
	}
	return clampViewport(Viewport{Start: end - width, End: end})
}

// ZoomIn 围绕窗口中心缩小宽度，最小不低于 MinWindowPercent。
func (v Viewport) ZoomIn(factor float64) Viewport {
	if factor <= 0 || factor >= 1 {
		factor = DefaultZoomInFactor
	}
	width := v.Width() * factor
	if width < MinWindowPercent {
		width = MinWindowPercent
	}
	if cur := v.Width(); width > cur {
		width = cur
	}
	return v.resizeAroundCenter(width)
}

// ZoomOut 围绕窗口中心放大宽度，最大不超过全量。
func (v Viewport) ZoomOut(factor float64) Viewport {
	if factor <= 1 {
		factor = DefaultZoomOutFactor
	}
	width := v.Width() * factor
	if width > 100 {
		width = 100
	}
	return v.resizeAroundCenter(width)
}

// Set 接受外部来源（例如渲染层拖拽回报）的窗口更新，经同一套钳制逻辑
// 重新校验；非法区间回退为当前窗口。
func (v Viewport) Set(start, end float64) Viewport {
	if start < 0 {
		start = 0
	}
	if end > 100 {
		end = 100
	}
	if start >= end {
		return clampViewport(v)
	}
	return clampViewport(Viewport{Start: start, End: end})
}

func (v Viewport) resizeAroundCenter(width float64) Viewport {
	center := (v.Start + v.End) / 2
	half := width / 2
	out := Viewport{Start: center - half, End: center + half}
	if out.Start < 0 {
		out.End -= out.Start
		out.Start = 0
	}
	if out.End > 100 {
		out.Start -= out.End - 100
		out.End = 100
	}
	return clampViewport(out)
}

func clampViewport(v Viewport) Viewport {
	if v.Start < 0 {
		v.Start = 0
	}
	if v.End > 100 {
		v.End = 100
	}
	if v.End <= v.Start {
		// 退化区间兜底，保证 Start < End 恒成立。
		v = Viewport{Start: 0, End: 100}
	}
	return v
}

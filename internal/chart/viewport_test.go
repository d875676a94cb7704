package chart

import (
	"math/rand"
	"testing"
)

func checkInvariant(t *testing.T, v Viewport) {
	t.Helper()
	if !(0 <= v.Start && v.Start < v.End && v.End <= 100) {
		t.Fatalf("视口不变量被破坏: %+v", v)
	}
}

func TestDefaultViewport(t *testing.T) {
	if v := DefaultViewport(0); v != (Viewport{Start: 0, End: 100}) {
		t.Fatalf("空模型应显示全量: %+v", v)
	}
	if v := DefaultViewport(40); v != (Viewport{Start: 0, End: 100}) {
		t.Fatalf("行数较少时应显示全量: %+v", v)
	}
	if v := DefaultViewport(250); v != (Viewport{Start: 70, End: 100}) {
		t.Fatalf("默认应显示最近 30%%: %+v", v)
	}
}

func TestPanPreservesWidthAtEdges(t *testing.T) {
	v := Viewport{Start: 5, End: 35}
	left := v.PanLeft(10)
	if left.Width() != 30 {
		t.Fatalf("贴左边界时宽度应保持: %+v", left)
	}
	if left.Start != 0 || left.End != 30 {
		t.Fatalf("应贴边滑动而不是缩窄: %+v", left)
	}

	v = Viewport{Start: 65, End: 95}
	right := v.PanRight(10)
	if right.Width() != 30 || right.End != 100 || right.Start != 70 {
		t.Fatalf("贴右边界时应滑动到 {70,100}: %+v", right)
	}
}

func TestZoomInFloor(t *testing.T) {
	v := Viewport{Start: 40, End: 52}
	zoomed := v.ZoomIn(0.7)
	if zoomed.Width() != MinWindowPercent {
		t.Fatalf("缩放不应低于最小宽度: %+v", zoomed)
	}
	center := (zoomed.Start + zoomed.End) / 2
	if center < 45.9 || center > 46.1 {
		t.Fatalf("缩放应围绕中心: center=%v", center)
	}
}

func TestZoomOutClamped(t *testing.T) {
	v := Viewport{Start: 0, End: 90}
	zoomed := v.ZoomOut(1.4)
	if zoomed != (Viewport{Start: 0, End: 100}) {
		t.Fatalf("放大不能超过全量: %+v", zoomed)
	}
}

func TestSetRejectsInvalidRange(t *testing.T) {
	v := Viewport{Start: 30, End: 60}
	if got := v.Set(80, 20); got != v {
		t.Fatalf("非法区间应回退当前视口: %+v", got)
	}
	if got := v.Set(-10, 150); got != (Viewport{Start: 0, End: 100}) {
		t.Fatalf("越界区间应钳制到边界: %+v", got)
	}
}

// 随机操作序列下不变量恒成立。
func TestViewportInvariantUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := DefaultViewport(300)
	for i := 0; i < 2000; i++ {
		switch rng.Intn(6) {
		case 0:
			v = v.PanLeft(float64(rng.Intn(40)))
		case 1:
			v = v.PanRight(float64(rng.Intn(40)))
		case 2:
			v = v.ZoomIn(rng.Float64())
		case 3:
			v = v.ZoomOut(1 + rng.Float64())
		case 4:
			v = v.Set(rng.Float64()*120-10, rng.Float64()*120-10)
		case 5:
			v = DefaultViewport(rng.Intn(500))
		}
		checkInvariant(t, v)
	}
}

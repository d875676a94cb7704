package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Capturer 用无头浏览器打开图表页面并截取整页 PNG，供导出/报告使用。
type Capturer struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Capturer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Capturer{timeout: timeout}
}

// CapturePNG 渲染 url 指向的图表页面并返回 PNG 字节。
func (c *Capturer) CapturePNG(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var buf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		// 等待 echarts 首帧渲染完成。
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("截取图表页面失败: %w", err)
	}
	return buf, nil
}

package echarts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"stockview/internal/chart"
	"stockview/internal/market"
)

// 红涨绿跌。蜡烛颜色与成交量柱颜色遵循模型里的两套规则。
const (
	upColor   = "#ef232a"
	downColor = "#14b143"
)

// RenderPage 把图表模型投影为 go-echarts 页面：价格 + 均线窗格、
// 成交量窗格，以及仅当窗口内存在资金流数据时的资金流窗格。
// 模型为空时输出显式的"暂无数据"页面而不是一张空图。
func RenderPage(w io.Writer, m *chart.Model, vp chart.Viewport) error {
	if m == nil || m.Empty() {
		_, err := io.WriteString(w, `<html><body><p style="text-align:center;margin-top:4em">暂无数据</p></body></html>`)
		return err
	}
	page := components.NewPage()
	page.PageTitle = m.Code
	page.AddCharts(klineChart(m, vp), volumeChart(m, vp))
	if m.HasCapitalFlow {
		page.AddCharts(flowChart(m, vp))
	}
	return page.Render(w)
}

func dates(m *chart.Model) []string {
	out := make([]string, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row.Bar.TradeDate
	}
	return out
}

func klineChart(m *chart.Model, vp chart.Viewport) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: m.Code}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Start:      float32(vp.Start),
			End:        float32(vp.End),
			XAxisIndex: []int{0},
		}),
	)

	klineData := make([]opts.KlineData, len(m.Rows))
	for i, row := range m.Rows {
		b := row.Bar
		klineData[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(dates(m)).AddSeries("日K", klineData,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        upColor,
			Color0:       downColor,
			BorderColor:  upColor,
			BorderColor0: downColor,
		}),
	)

	for _, period := range m.Periods {
		series := m.MASeries(period)
		if series == nil {
			continue
		}
		line := charts.NewLine()
		lineData := make([]opts.LineData, len(series))
		for i, v := range series {
			if math.IsNaN(v) {
				// echarts 用 "-" 表示空洞，而不是 0。
				lineData[i] = opts.LineData{Value: "-"}
				continue
			}
			lineData[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(dates(m)).AddSeries(fmt.Sprintf("MA%d", period), lineData,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), Symbol: "none"}),
		)
		kline.Overlap(line)
	}
	return kline
}

func volumeChart(m *chart.Model, vp chart.Viewport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "成交量"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Start:      float32(vp.Start),
			End:        float32(vp.End),
			XAxisIndex: []int{0},
		}),
	)
	data := make([]opts.BarData, len(m.Rows))
	for i, row := range m.Rows {
		color := downColor
		if m.VolumeUpAt(i) {
			color = upColor
		}
		data[i] = opts.BarData{
			Value:     row.Bar.Volume,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}
	bar.SetXAxis(dates(m)).AddSeries("成交量", data)
	return bar
}

func flowChart(m *chart.Model, vp chart.Viewport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "主力资金净流入"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Start:      float32(vp.Start),
			End:        float32(vp.End),
			XAxisIndex: []int{0},
		}),
	)
	flows := make([]market.FlowRecord, len(m.Rows))
	data := make([]opts.BarData, len(m.Rows))
	for i, row := range m.Rows {
		flows[i] = row.Flow
		color := downColor
		if row.Flow.MainNet >= 0 {
			color = upColor
		}
		data[i] = opts.BarData{
			Value:     row.Flow.MainNet,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}
	bar.SetXAxis(dates(m)).AddSeries("净流入", data)

	if metrics, ok := market.ComputeFlowMetrics(flows); ok {
		line := charts.NewLine()
		lineData := make([]opts.LineData, len(metrics.Cumulative))
		for i, v := range metrics.Cumulative {
			lineData[i] = opts.LineData{Value: v.InexactFloat64()}
		}
		line.SetXAxis(dates(m)).AddSeries("累计净流入", lineData,
			charts.WithLineChartOpts(opts.LineChart{Symbol: "none"}),
		)
		bar.Overlap(line)
	}
	return bar
}

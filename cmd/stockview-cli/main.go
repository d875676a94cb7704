package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"stockview/internal/chart"
	"stockview/internal/gateway/eastmoney"
	"stockview/internal/logger"
)

// 终端一次性查询：拉取日 K 与资金流，打印最近若干行的对齐表格
// 和最后一行的悬停摘要，便于不开浏览器快速看一眼。
func main() {
	code := flag.String("code", "", "股票代码，例如 600519 或 sz000001")
	days := flag.Int("days", 120, "回看交易日数")
	rows := flag.Int("rows", 15, "表格展示的行数")
	asCSV := flag.Bool("csv", false, "以 CSV 输出整个窗口而非表格")
	flag.Parse()
	if *code == "" {
		fmt.Fprintln(os.Stderr, "用法: stockview-cli -code 600519 [-days 120] [-rows 15] [-csv]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := chart.NewSession(eastmoney.New(eastmoney.Config{}), nil)
	defer session.Close()
	model, err := session.Load(ctx, *code, *days)
	if err != nil {
		logger.Errorf("加载 %s 失败: %v", *code, err)
		os.Exit(1)
	}
	if model.Empty() {
		fmt.Println("暂无数据")
		return
	}
	if *asCSV {
		fmt.Print(chart.BuildCSV(model, chart.CSVOptions{
			PricePrecision: chart.PrecisionAuto,
			WithFlow:       true,
		}))
		return
	}

	start := model.RowCount() - *rows
	if start < 0 {
		start = 0
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	header := table.Row{"日期", "开盘", "收盘", "最高", "最低", "涨跌", "成交量"}
	if model.HasCapitalFlow {
		header = append(header, "主力净流入")
	}
	t.AppendHeader(header)
	for i := start; i < model.RowCount(); i++ {
		summary, ok := chart.Format(model, i)
		if !ok {
			continue
		}
		row := table.Row{
			summary.TradeDate,
			fmt.Sprintf("%.2f", summary.Open),
			fmt.Sprintf("%.2f", summary.Close),
			fmt.Sprintf("%.2f", summary.High),
			fmt.Sprintf("%.2f", summary.Low),
			summary.Change.Text,
			summary.VolumeText,
		}
		if model.HasCapitalFlow && summary.Flow != nil {
			row = append(row, summary.Flow.Text)
		}
		t.AppendRow(row)
	}
	t.Render()

	if summary, ok := chart.Format(model, model.RowCount()-1); ok && len(summary.MAs) > 0 {
		fmt.Print("均线: ")
		for i, ma := range summary.MAs {
			if i > 0 {
				fmt.Print("  ")
			}
			fmt.Printf("%s=%.2f", ma.Name, ma.Value)
		}
		fmt.Println()
	}
}

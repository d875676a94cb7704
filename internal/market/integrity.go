package market

import "fmt"

// Issue 是日 K 序列中的一处数据异常。
type Issue struct {
	Index  int    `json:"index"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// IntegrityReport 描述一段日 K 序列的数据质量。
type IntegrityReport struct {
	Total  int     `json:"total"`
	Issues []Issue `json:"issues,omitempty"`
}

func (r IntegrityReport) Clean() bool { return len(r.Issues) == 0 }

// CheckBars 检查日 K 序列的基本约束：日期升序且不重复、价格为正、
// 最高价与最低价能包住开收盘。异常只记录不修复，由调用方决定取舍。
func CheckBars(bars []DailyBar) IntegrityReport {
	report := IntegrityReport{Total: len(bars)}
	for i, b := range bars {
		if b.TradeDate == "" {
			report.Issues = append(report.Issues, Issue{Index: i, Reason: "交易日为空"})
			continue
		}
		if i > 0 {
			prev := bars[i-1].TradeDate
			if b.TradeDate == prev {
				report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate, Reason: "交易日重复"})
			} else if b.TradeDate < prev {
				report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate,
					Reason: fmt.Sprintf("交易日乱序（前一条为 %s）", prev)})
			}
		}
		if b.Open <= 0 || b.Close <= 0 || b.High <= 0 || b.Low <= 0 {
			report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate, Reason: "存在非正价格"})
			continue
		}
		if b.High < b.Low {
			report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate, Reason: "最高价低于最低价"})
			continue
		}
		if b.Open > b.High || b.Open < b.Low || b.Close > b.High || b.Close < b.Low {
			report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate, Reason: "开收盘越出高低价区间"})
		}
		if b.Volume < 0 {
			report.Issues = append(report.Issues, Issue{Index: i, Date: b.TradeDate, Reason: "成交量为负"})
		}
	}
	return report
}

package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"stockview/internal/logger"
	"stockview/internal/market"
)

const maxLookbackDays = 1000

// Source 实现 market.Source，对接东财风格的行情 HTTP 接口。
// 日 K 与资金流都以逗号拼接的按日记录返回，这里负责解析与单位换算。
type Source struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	return &Source{
		cfg:        final,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
	}
}

type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDailyBars 拉取最近 lookbackDays 个交易日的日 K，按日期升序返回。
func (s *Source) FetchDailyBars(ctx context.Context, code string, lookbackDays int) ([]market.DailyBar, error) {
	secID, err := secIDOf(code)
	if err != nil {
		return nil, err
	}
	lookbackDays = clampLookback(lookbackDays)
	url := fmt.Sprintf(
		"%s/api/qt/stock/kline/get?secid=%s&klt=101&fqt=1&lmt=%d&fields1=f1,f2,f3&fields2=f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61",
		s.cfg.BaseURL, secID, lookbackDays)
	lines, err := s.fetchKlines(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("拉取日K失败: %w", err)
	}
	out := make([]market.DailyBar, 0, len(lines))
	for _, line := range lines {
		bar, ok := parseBarLine(line)
		if !ok {
			logger.Debugf("[eastmoney] 跳过无法解析的日K记录: %q", line)
			continue
		}
		out = append(out, bar)
	}
	return out, nil
}

// FetchCapitalFlow 拉取主力资金净流向序列；空序列是合法结果。
func (s *Source) FetchCapitalFlow(ctx context.Context, code string, lookbackDays int) ([]market.FlowRecord, error) {
	secID, err := secIDOf(code)
	if err != nil {
		return nil, err
	}
	lookbackDays = clampLookback(lookbackDays)
	url := fmt.Sprintf(
		"%s/api/qt/stock/fflow/daykline/get?secid=%s&lmt=%d&fields1=f1,f2,f3,f7&fields2=f51,f52,f53,f54,f55,f56",
		s.cfg.BaseURL, secID, lookbackDays)
	lines, err := s.fetchKlines(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("拉取资金流失败: %w", err)
	}
	out := make([]market.FlowRecord, 0, len(lines))
	for _, line := range lines {
		rec, ok := parseFlowLine(line)
		if !ok {
			logger.Debugf("[eastmoney] 跳过无法解析的资金流记录: %q", line)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Source) fetchKlines(ctx context.Context, url string) ([]string, error) {
	logger.Debugf("[eastmoney] GET %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("上游返回 %s", resp.Status)
	}
	var payload klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, nil
	}
	return payload.Data.Klines, nil
}

// parseBarLine 解析 "date,open,close,high,low,volume,amount,振幅,涨跌幅,涨跌额,换手率"。
// 成交量上游单位为手，这里换算为股。
func parseBarLine(line string) (market.DailyBar, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return market.DailyBar{}, false
	}
	open, err1 := strconv.ParseFloat(fields[1], 64)
	closePx, err2 := strconv.ParseFloat(fields[2], 64)
	high, err3 := strconv.ParseFloat(fields[3], 64)
	low, err4 := strconv.ParseFloat(fields[4], 64)
	lots, err5 := strconv.ParseFloat(fields[5], 64)
	amount, err6 := strconv.ParseFloat(fields[6], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return market.DailyBar{}, false
	}
	bar := market.DailyBar{
		TradeDate: fields[0],
		Open:      open,
		Close:     closePx,
		High:      high,
		Low:       low,
		Volume:    int64(lots * 100),
		Amount:    amount,
	}
	if len(fields) > 8 {
		if pct, err := strconv.ParseFloat(fields[8], 64); err == nil {
			bar.ChangePct = &pct
		}
	}
	if len(fields) > 10 {
		if rate, err := strconv.ParseFloat(fields[10], 64); err == nil {
			bar.TurnoverRate = &rate
		}
	}
	return bar, true
}

// parseFlowLine 解析 "date,主力净流入,小单,中单,大单,超大单"（单位：元）。
func parseFlowLine(line string) (market.FlowRecord, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return market.FlowRecord{}, false
	}
	mainNet, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return market.FlowRecord{}, false
	}
	rec := market.FlowRecord{TradeDate: fields[0], MainNet: mainNet}
	if len(fields) > 4 {
		if v, err := strconv.ParseFloat(fields[4], 64); err == nil {
			rec.LargeNet = v
		}
	}
	if len(fields) > 5 {
		if v, err := strconv.ParseFloat(fields[5], 64); err == nil {
			rec.SuperNet = v
		}
	}
	return rec, true
}

// secIDOf 把股票代码映射为接口的 secid：沪市前缀 1，深市前缀 0。
func secIDOf(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "sh"):
		return "1." + code[2:], nil
	case strings.HasPrefix(code, "sz"):
		return "0." + code[2:], nil
	}
	if len(code) != 6 {
		return "", fmt.Errorf("非法股票代码 %q", code)
	}
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		return "1." + code, nil
	}
	return "0." + code, nil
}

func clampLookback(days int) int {
	if days <= 0 {
		return 120
	}
	if days > maxLookbackDays {
		return maxLookbackDays
	}
	return days
}

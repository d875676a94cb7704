package eastmoney

import "time"

// Config 描述行情网关运行所需的参数。
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	UserAgent   string
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = "https://push2his.eastmoney.com"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 10 * time.Second
	}
	if out.UserAgent == "" {
		out.UserAgent = "stockview/1.0"
	}
	return out
}

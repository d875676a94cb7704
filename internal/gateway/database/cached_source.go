package database

import (
	"context"

	"stockview/internal/logger"
	"stockview/internal/market"
)

// CachedSource 在 market.Source 外面套一层日 K 缓存：
// 上游成功时回填缓存，上游失败时回落到缓存里最近的数据。
// 资金流不缓存，直接透传（缺失本来就是可降级的）。
type CachedSource struct {
	upstream market.Source
	cache    *BarCache
}

func NewCachedSource(upstream market.Source, cache *BarCache) *CachedSource {
	return &CachedSource{upstream: upstream, cache: cache}
}

func (s *CachedSource) FetchDailyBars(ctx context.Context, code string, lookbackDays int) ([]market.DailyBar, error) {
	bars, err := s.upstream.FetchDailyBars(ctx, code, lookbackDays)
	if err == nil {
		if saveErr := s.cache.SaveBars(ctx, code, bars); saveErr != nil {
			logger.Warnf("[cache] 回填 %s 日K缓存失败: %v", code, saveErr)
		}
		return bars, nil
	}
	cached, cacheErr := s.cache.LoadBars(ctx, code, lookbackDays)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	logger.Warnf("[cache] 上游不可用，%s 使用缓存日K（%d 条）: %v", code, len(cached), err)
	return cached, nil
}

func (s *CachedSource) FetchCapitalFlow(ctx context.Context, code string, lookbackDays int) ([]market.FlowRecord, error) {
	return s.upstream.FetchCapitalFlow(ctx, code, lookbackDays)
}

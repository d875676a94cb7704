package market

import "github.com/shopspring/decimal"

type FlowMetrics struct {
	Cumulative []decimal.Decimal
	Total      decimal.Decimal
	InflowDays int
	MaxInflow  decimal.Decimal
	MaxOutflow decimal.Decimal
}

// ComputeFlowMetrics aggregates a capital-flow window with exact arithmetic.
// Output meanings:
//   - Cumulative: running sum of main net inflow across the window, one value per record.
//   - Total: the final cumulative value.
//   - InflowDays: count of records with positive main net inflow.
//   - MaxInflow / MaxOutflow: largest single-day inflow and outflow (outflow kept negative).
func ComputeFlowMetrics(flows []FlowRecord) (FlowMetrics, bool) {
	if len(flows) == 0 {
		return FlowMetrics{}, false
	}
	out := FlowMetrics{Cumulative: make([]decimal.Decimal, 0, len(flows))}
	running := decimal.Zero
	for i, f := range flows {
		v := decimal.NewFromFloat(f.MainNet)
		running = running.Add(v)
		out.Cumulative = append(out.Cumulative, running)
		if v.IsPositive() {
			out.InflowDays++
		}
		if i == 0 {
			out.MaxInflow = v
			out.MaxOutflow = v
			continue
		}
		if v.GreaterThan(out.MaxInflow) {
			out.MaxInflow = v
		}
		if v.LessThan(out.MaxOutflow) {
			out.MaxOutflow = v
		}
	}
	out.Total = running
	if out.MaxInflow.IsNegative() {
		out.MaxInflow = decimal.Zero
	}
	if out.MaxOutflow.IsPositive() {
		out.MaxOutflow = decimal.Zero
	}
	return out, true
}

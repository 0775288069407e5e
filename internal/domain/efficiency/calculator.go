package efficiency

import (
	"math"

	"github.com/xptrack-lab/backend/internal/entity"
)

// hoursPrecision is the fixed rounding applied to every computed hours
// value. It matches entity.VirtualMetricScale so scaled integral storage
// is lossless.
const hoursPrecision = float64(entity.VirtualMetricScale)

// Calculator turns a player's current metric values into effective-hours
// scores: EHP over skills, EHB over bosses. Rate tables are loaded once
// and immutable afterwards.
type Calculator struct {
	ehp *RateTable
	ehb *RateTable
}

func NewCalculator(ehp, ehb *RateTable) *Calculator {
	return &Calculator{ehp: ehp, ehb: ehb}
}

// Hours computes the effective hours of every metric covered by either
// table.
func (c *Calculator) Hours(values entity.MetricValues) map[entity.Metric]float64 {
	result := make(map[entity.Metric]float64)
	for _, table := range []*RateTable{c.ehp, c.ehb} {
		adjusted := adjustedValues(table, values)
		for _, metric := range table.Metrics() {
			entry, _ := table.Entry(metric)
			result[metric] = methodHours(entry.Methods, adjusted[metric])
		}
	}

	return result
}

// EHP is the sum of effective hours over all skills.
func (c *Calculator) EHP(values entity.MetricValues) float64 {
	return c.total(c.ehp, values)
}

// EHB is the sum of effective hours over all bosses.
func (c *Calculator) EHB(values entity.MetricValues) float64 {
	return c.total(c.ehb, values)
}

func (c *Calculator) total(table *RateTable, values entity.MetricValues) float64 {
	total := 0.0
	adjusted := adjustedValues(table, values)
	for _, metric := range table.Metrics() {
		entry, _ := table.Entry(metric)
		total += methodHours(entry.Methods, adjusted[metric])
	}

	return round(total)
}

// adjustedValues resolves each entry's bonus pool before the range walk.
// Bonuses draw from raw measured origin values only; an origin's own
// bonuses never flow through (no recursive compounding). Entries are
// walked in topological order so a validated table never reads an origin
// before it is resolved.
func adjustedValues(table *RateTable, values entity.MetricValues) map[entity.Metric]int64 {
	adjusted := make(map[entity.Metric]int64, len(table.Metrics()))
	for _, metric := range table.Metrics() {
		entry, _ := table.Entry(metric)

		value := values[metric].Value
		if value < 0 {
			// Unranked counts as zero progress for efficiency purposes.
			value = 0
		}

		for _, bonus := range entry.Bonuses {
			origin := values[bonus.OriginMetric].Value
			if origin < 0 {
				continue
			}

			value += int64(float64(origin) * bonus.Ratio)
		}

		if entity.IsSkill(metric) && value > entity.MaxSkillExperience {
			value = entity.MaxSkillExperience
		}

		adjusted[metric] = value
	}

	return adjusted
}

// methodHours walks the ordered methods of one entry. Each method
// contributes overlap/rate where overlap is the part of [0, value) inside
// the method's range; value past the last closed method keeps accruing at
// that method's rate.
func methodHours(methods []Method, value int64) float64 {
	hours := 0.0
	consumed := int64(0)

	for _, method := range methods {
		start := method.Start
		if start < consumed {
			start = consumed
		}

		end := method.End
		if end == 0 || end > value {
			end = value
		}

		if end <= start {
			if method.End != 0 && method.End <= value {
				consumed = method.End
			}
			continue
		}

		if method.Rate > 0 {
			hours += float64(end-start) / method.Rate
		}

		consumed = end
	}

	// No extrapolation table: remaining value past the last closed method
	// accrues at the last method's rate.
	last := methods[len(methods)-1]
	if last.End != 0 && value > last.End && last.Rate > 0 {
		hours += float64(value-last.End) / last.Rate
	}

	return round(hours)
}

func round(hours float64) float64 {
	return math.Round(hours*hoursPrecision) / hoursPrecision
}

// ScaledHours returns hours as the integral fixed-point representation
// used by snapshot values and record columns.
func ScaledHours(hours float64) int64 {
	return int64(math.Round(hours * float64(entity.VirtualMetricScale)))
}

// UnscaledHours is the inverse of ScaledHours.
func UnscaledHours(scaled int64) float64 {
	return float64(scaled) / float64(entity.VirtualMetricScale)
}

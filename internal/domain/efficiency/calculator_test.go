package efficiency

import (
	"testing"

	"github.com/xptrack-lab/backend/internal/entity"

	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, entries []Entry) *RateTable {
	table, err := New(entries)
	require.NoError(t, err)
	return table
}

func Test_Calculator_Hours_bracketWalk(t *testing.T) {
	ehp := mustTable(t, []Entry{
		{
			Metric: entity.MetricFishing,
			Methods: []Method{
				{Start: 0, End: 100_000, Rate: 50_000},
				{Start: 100_000, End: 0, Rate: 200_000},
			},
		},
	})
	calculator := NewCalculator(ehp, mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 100}}},
	}))

	hours := calculator.Hours(entity.MetricValues{
		entity.MetricFishing: {Rank: 10_000, Value: 500_000},
		entity.MetricZulrah:  {Rank: 5_000, Value: 250},
	})

	// 100k at 50k/h, then the remaining 400k at 200k/h.
	require.InDelta(t, 4.0, hours[entity.MetricFishing], 1e-9)
	require.InDelta(t, 2.5, hours[entity.MetricZulrah], 1e-9)

	// Exactly at the boundary the first method is fully consumed and the
	// second contributes nothing: no gap, no double count.
	hours = calculator.Hours(entity.MetricValues{
		entity.MetricFishing: {Rank: 10_000, Value: 100_000},
	})
	require.InDelta(t, 2.0, hours[entity.MetricFishing], 1e-9)
}

func Test_Calculator_Hours_pastLastClosedMethod(t *testing.T) {
	// A table whose last method is closed keeps accruing at that method's
	// rate past its end.
	ehp := mustTable(t, []Entry{
		{
			Metric:  entity.MetricCooking,
			Methods: []Method{{Start: 0, End: 100_000, Rate: 50_000}},
		},
	})
	calculator := NewCalculator(ehp, mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 100}}},
	}))

	hours := calculator.Hours(entity.MetricValues{
		entity.MetricCooking: {Rank: 10_000, Value: 150_000},
	})
	require.InDelta(t, 3.0, hours[entity.MetricCooking], 1e-9)
}

func Test_Calculator_Hours_unrankedAndZeroRate(t *testing.T) {
	ehp := mustTable(t, []Entry{
		{Metric: entity.MetricCooking, Methods: []Method{{Start: 0, End: 0, Rate: 100_000}}},
		{Metric: entity.MetricHitpoints, Methods: []Method{{Start: 0, End: 0, Rate: 0}}},
	})
	calculator := NewCalculator(ehp, mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 100}}},
	}))

	hours := calculator.Hours(entity.MetricValues{
		entity.MetricCooking:   {Rank: -1, Value: entity.UnrankedValue},
		entity.MetricHitpoints: {Rank: 1_000, Value: 5_000_000},
	})

	// Unranked counts as zero progress; zero-rate methods take no time.
	require.InDelta(t, 0.0, hours[entity.MetricCooking], 1e-9)
	require.InDelta(t, 0.0, hours[entity.MetricHitpoints], 1e-9)
}

func Test_Calculator_Hours_bonuses(t *testing.T) {
	ehp := mustTable(t, []Entry{
		{
			Metric:  entity.MetricFishing,
			Methods: []Method{{Start: 0, End: 0, Rate: 100_000}},
		},
		{
			Metric:  entity.MetricCooking,
			Methods: []Method{{Start: 0, End: 0, Rate: 100_000}},
			Bonuses: []Bonus{{OriginMetric: entity.MetricFishing, Ratio: 0.5}},
		},
	})
	calculator := NewCalculator(ehp, mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 100}}},
	}))

	hours := calculator.Hours(entity.MetricValues{
		entity.MetricFishing: {Rank: 10_000, Value: 200_000},
		entity.MetricCooking: {Rank: 10_000, Value: 100_000},
	})

	// Cooking receives half the raw fishing experience on top of its own;
	// fishing itself is unaffected.
	require.InDelta(t, 2.0, hours[entity.MetricFishing], 1e-9)
	require.InDelta(t, 2.0, hours[entity.MetricCooking], 1e-9)

	// A bonus from an unranked origin contributes nothing.
	hours = calculator.Hours(entity.MetricValues{
		entity.MetricFishing: {Rank: -1, Value: entity.UnrankedValue},
		entity.MetricCooking: {Rank: 10_000, Value: 100_000},
	})
	require.InDelta(t, 1.0, hours[entity.MetricCooking], 1e-9)
}

func Test_Calculator_Hours_skillCap(t *testing.T) {
	ehp := mustTable(t, []Entry{
		{
			Metric:  entity.MetricFishing,
			Methods: []Method{{Start: 0, End: 0, Rate: 1_000_000}},
		},
		{
			Metric:  entity.MetricCooking,
			Methods: []Method{{Start: 0, End: 0, Rate: 1_000_000}},
			Bonuses: []Bonus{{OriginMetric: entity.MetricFishing, Ratio: 1}},
		},
	})
	calculator := NewCalculator(ehp, mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 100}}},
	}))

	// The bonus would push cooking past the maximum skill experience; the
	// adjusted value is capped before the range walk.
	hours := calculator.Hours(entity.MetricValues{
		entity.MetricFishing: {Rank: 1, Value: entity.MaxSkillExperience},
		entity.MetricCooking: {Rank: 1, Value: entity.MaxSkillExperience},
	})
	require.InDelta(t, 200.0, hours[entity.MetricCooking], 1e-9)
}

func Test_Calculator_totals(t *testing.T) {
	ehp := mustTable(t, []Entry{
		{Metric: entity.MetricFishing, Methods: []Method{{Start: 0, End: 0, Rate: 100_000}}},
		{Metric: entity.MetricCooking, Methods: []Method{{Start: 0, End: 0, Rate: 200_000}}},
	})
	ehb := mustTable(t, []Entry{
		{Metric: entity.MetricZulrah, Methods: []Method{{Start: 0, End: 0, Rate: 40}}},
		{Metric: entity.MetricCerberus, Methods: []Method{{Start: 0, End: 0, Rate: 60}}},
	})
	calculator := NewCalculator(ehp, ehb)

	values := entity.MetricValues{
		entity.MetricFishing:  {Rank: 1, Value: 300_000},
		entity.MetricCooking:  {Rank: 1, Value: 400_000},
		entity.MetricZulrah:   {Rank: 1, Value: 100},
		entity.MetricCerberus: {Rank: 1, Value: 30},
	}

	require.InDelta(t, 5.0, calculator.EHP(values), 1e-9)
	require.InDelta(t, 3.0, calculator.EHB(values), 1e-9)
}

func Test_ScaledHours_roundtrip(t *testing.T) {
	require.EqualValues(t, 122_782, ScaledHours(12.27818))
	require.InDelta(t, 12.2782, UnscaledHours(122_782), 1e-9)
	require.EqualValues(t, 0, ScaledHours(0))
}

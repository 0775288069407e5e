package efficiency

import (
	"testing"

	"github.com/xptrack-lab/backend/internal/entity"

	"github.com/stretchr/testify/require"
)

func Test_RateTable_New_rejectsInvalidEntries(t *testing.T) {
	valid := []Method{{Start: 0, End: 0, Rate: 100}}

	_, err := New([]Entry{{Metric: entity.Metric("not_a_metric"), Methods: valid}})
	require.ErrorContains(t, err, "unknown metric")

	_, err = New([]Entry{
		{Metric: entity.MetricCooking, Methods: valid},
		{Metric: entity.MetricCooking, Methods: valid},
	})
	require.ErrorContains(t, err, "duplicated")

	_, err = New([]Entry{{Metric: entity.MetricCooking}})
	require.ErrorContains(t, err, "no methods")
}

func Test_RateTable_New_rejectsInvalidMethods(t *testing.T) {
	_, err := New([]Entry{{
		Metric:  entity.MetricCooking,
		Methods: []Method{{Start: 2_000, End: 1_000, Rate: 100}},
	}})
	require.ErrorContains(t, err, "empty range")

	_, err = New([]Entry{{
		Metric: entity.MetricCooking,
		Methods: []Method{
			{Start: 0, End: 0, Rate: 100},
			{Start: 5_000, End: 10_000, Rate: 100},
		},
	}})
	require.ErrorContains(t, err, "open-ended but not last")

	_, err = New([]Entry{{
		Metric: entity.MetricCooking,
		Methods: []Method{
			{Start: 0, End: 10_000, Rate: 100},
			{Start: 5_000, End: 0, Rate: 100},
		},
	}})
	require.ErrorContains(t, err, "overlaps")

	_, err = New([]Entry{{
		Metric:  entity.MetricCooking,
		Methods: []Method{{Start: 0, End: 0, Rate: -1}},
	}})
	require.ErrorContains(t, err, "negative rate")
}

func Test_RateTable_New_rejectsBonusCycles(t *testing.T) {
	methods := []Method{{Start: 0, End: 0, Rate: 100}}

	_, err := New([]Entry{
		{
			Metric:  entity.MetricCooking,
			Methods: methods,
			Bonuses: []Bonus{{OriginMetric: entity.MetricFishing, Ratio: 0.1}},
		},
		{
			Metric:  entity.MetricFishing,
			Methods: methods,
			Bonuses: []Bonus{{OriginMetric: entity.MetricCooking, Ratio: 0.1}},
		},
	})
	require.ErrorContains(t, err, "cyclic bonus dependency")
}

func Test_RateTable_Metrics_topologicalOrder(t *testing.T) {
	methods := []Method{{Start: 0, End: 0, Rate: 100}}

	// Cooking depends on fishing, which depends on agility: origins must
	// come out before their dependents regardless of catalog order.
	table := mustTable(t, []Entry{
		{
			Metric:  entity.MetricCooking,
			Methods: methods,
			Bonuses: []Bonus{{OriginMetric: entity.MetricFishing, Ratio: 0.1}},
		},
		{
			Metric:  entity.MetricFishing,
			Methods: methods,
			Bonuses: []Bonus{{OriginMetric: entity.MetricAgility, Ratio: 0.1}},
		},
		{Metric: entity.MetricAgility, Methods: methods},
	})

	order := table.Metrics()
	require.Len(t, order, 3)

	position := make(map[entity.Metric]int, len(order))
	for i, metric := range order {
		position[metric] = i
	}
	require.Less(t, position[entity.MetricAgility], position[entity.MetricFishing])
	require.Less(t, position[entity.MetricFishing], position[entity.MetricCooking])
}

func Test_RateTable_New_sortsMethodsByStart(t *testing.T) {
	table := mustTable(t, []Entry{{
		Metric: entity.MetricCooking,
		Methods: []Method{
			{Start: 10_000, End: 0, Rate: 200},
			{Start: 0, End: 10_000, Rate: 100},
		},
	}})

	entry, ok := table.Entry(entity.MetricCooking)
	require.True(t, ok)
	require.EqualValues(t, 0, entry.Methods[0].Start)
	require.EqualValues(t, 10_000, entry.Methods[1].Start)
}

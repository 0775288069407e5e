package efficiency

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/xptrack-lab/backend/internal/entity"
)

// Method is one training method of a metric: between Start (inclusive) and
// End (exclusive) value, progress accrues at Rate value-per-hour. An End of
// zero marks the method open-ended.
type Method struct {
	Start       int64   `json:"start"`
	End         int64   `json:"end"`
	Rate        float64 `json:"rate"`
	Description string  `json:"description"`
}

// Bonus grants extra value to this entry's metric proportional to the
// current raw value of another metric. Bonuses are applied once, from
// measured values only, never compounded through other bonuses.
type Bonus struct {
	OriginMetric entity.Metric `json:"origin_metric"`
	Ratio        float64       `json:"ratio"`
}

// Entry is the full rate configuration of one metric.
type Entry struct {
	Metric  entity.Metric `json:"metric"`
	Methods []Method      `json:"methods"`
	Bonuses []Bonus       `json:"bonuses"`
}

// RateTable is an immutable, validated set of entries of one efficiency
// family (EHP over skills, EHB over bosses). Entries are kept in a
// topological order of their bonus dependencies so origin metrics resolve
// before dependents.
type RateTable struct {
	entries map[entity.Metric]*Entry
	order   []entity.Metric
}

type rateTableFile struct {
	Entries []Entry `json:"entries"`
}

// LoadFile reads and validates a rate table document.
func LoadFile(path string) (*RateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read rate table %s: %w", path, err)
	}

	var file rateTableFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("cannot parse rate table %s: %w", path, err)
	}

	return New(file.Entries)
}

// New builds a validated rate table from entries.
func New(entries []Entry) (*RateTable, error) {
	table := &RateTable{entries: make(map[entity.Metric]*Entry, len(entries))}

	for i := range entries {
		entry := entries[i]
		if _, ok := entity.KindOf(entry.Metric); !ok {
			return nil, fmt.Errorf("rate table entry for unknown metric %s", entry.Metric)
		}

		if _, ok := table.entries[entry.Metric]; ok {
			return nil, fmt.Errorf("duplicated rate table entry for %s", entry.Metric)
		}

		if len(entry.Methods) == 0 {
			return nil, fmt.Errorf("rate table entry for %s has no methods", entry.Metric)
		}

		sort.Slice(entry.Methods, func(a, b int) bool {
			return entry.Methods[a].Start < entry.Methods[b].Start
		})

		for j, method := range entry.Methods {
			open := method.End == 0
			if !open && method.End <= method.Start {
				return nil, fmt.Errorf("method %d of %s has an empty range", j, entry.Metric)
			}

			if open && j != len(entry.Methods)-1 {
				return nil, fmt.Errorf("method %d of %s is open-ended but not last", j, entry.Metric)
			}

			if j > 0 && entry.Methods[j-1].End != 0 && method.Start < entry.Methods[j-1].End {
				return nil, fmt.Errorf("method %d of %s overlaps its predecessor", j, entry.Metric)
			}

			if method.Rate < 0 {
				return nil, fmt.Errorf("method %d of %s has a negative rate", j, entry.Metric)
			}
		}

		table.entries[entry.Metric] = &entry
	}

	order, err := table.topologicalOrder()
	if err != nil {
		return nil, err
	}

	table.order = order
	return table, nil
}

// topologicalOrder orders entries so every bonus origin precedes its
// dependents, rejecting cyclic bonus definitions.
func (t *RateTable) topologicalOrder() ([]entity.Metric, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	states := make(map[entity.Metric]int, len(t.entries))
	order := make([]entity.Metric, 0, len(t.entries))

	var visit func(metric entity.Metric) error
	visit = func(metric entity.Metric) error {
		switch states[metric] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("cyclic bonus dependency through %s", metric)
		}

		states[metric] = visiting
		if entry, ok := t.entries[metric]; ok {
			for _, bonus := range entry.Bonuses {
				if err := visit(bonus.OriginMetric); err != nil {
					return err
				}
			}
		}

		states[metric] = visited
		if _, ok := t.entries[metric]; ok {
			order = append(order, metric)
		}

		return nil
	}

	// Iterate the catalog rather than the entry map for a stable order.
	for _, metric := range entity.AllMetrics() {
		if _, ok := t.entries[metric]; !ok {
			continue
		}

		if err := visit(metric); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// Entry returns the configuration of a metric, if the table has one.
func (t *RateTable) Entry(metric entity.Metric) (*Entry, bool) {
	entry, ok := t.entries[metric]
	return entry, ok
}

// Metrics returns the covered metrics in topological bonus order.
func (t *RateTable) Metrics() []entity.Metric {
	return t.order
}

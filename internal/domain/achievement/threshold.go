package achievement

import "github.com/xptrack-lab/backend/internal/entity"

// Threshold is a closed set of predicate variants a definition can use.
// Keeping the set closed lets a single dispatcher evaluate every
// definition instead of matching on strings.
type Threshold interface {
	isThreshold()
}

// ExperienceThreshold requires a single skill to reach an experience value.
type ExperienceThreshold struct {
	Metric entity.Metric
	Value  int64
}

// AllSkillsThreshold requires every non-overall skill to reach an
// experience value.
type AllSkillsThreshold struct {
	Value int64
}

// CombatSkillsThreshold requires every combat skill to reach an experience
// value.
type CombatSkillsThreshold struct {
	Value int64
}

// KillCountThreshold requires a boss kill count.
type KillCountThreshold struct {
	Metric entity.Metric
	Value  int64
}

// ScoreThreshold requires an activity score.
type ScoreThreshold struct {
	Metric entity.Metric
	Value  int64
}

func (ExperienceThreshold) isThreshold()   {}
func (AllSkillsThreshold) isThreshold()    {}
func (CombatSkillsThreshold) isThreshold() {}
func (KillCountThreshold) isThreshold()    {}
func (ScoreThreshold) isThreshold()        {}

// Satisfies evaluates a threshold against one snapshot.
func Satisfies(snapshot *entity.Snapshot, threshold Threshold) bool {
	switch t := threshold.(type) {
	case ExperienceThreshold:
		return snapshot.Get(t.Metric).Value >= t.Value

	case AllSkillsThreshold:
		for _, skill := range entity.SkillMetrics {
			if skill == entity.MetricOverall {
				continue
			}
			if snapshot.Get(skill).Value < t.Value {
				return false
			}
		}
		return true

	case CombatSkillsThreshold:
		for _, skill := range entity.CombatSkillMetrics {
			if snapshot.Get(skill).Value < t.Value {
				return false
			}
		}
		return true

	case KillCountThreshold:
		return snapshot.Get(t.Metric).Value >= t.Value

	case ScoreThreshold:
		return snapshot.Get(t.Metric).Value >= t.Value
	}

	return false
}

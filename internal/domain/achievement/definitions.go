package achievement

import (
	"fmt"

	"github.com/xptrack-lab/backend/internal/entity"
)

// Definition pairs an achievement name with the threshold that awards it.
// The list is fixed and ordered; names are unique per player.
type Definition struct {
	Name      string
	Metric    entity.Metric
	Threshold Threshold
}

var bossMilestones = []int64{500, 1_000, 5_000, 10_000}

var clueScrollMilestones = []int64{100, 500, 1_000}

// Definitions returns the full ordered definition list.
func Definitions() []Definition {
	var defs []Definition

	for _, skill := range entity.SkillMetrics {
		if skill == entity.MetricOverall {
			continue
		}

		defs = append(defs, Definition{
			Name:      fmt.Sprintf("99 %s", skill),
			Metric:    skill,
			Threshold: ExperienceThreshold{Metric: skill, Value: entity.Level99Experience},
		})

		defs = append(defs, Definition{
			Name:      fmt.Sprintf("200m %s", skill),
			Metric:    skill,
			Threshold: ExperienceThreshold{Metric: skill, Value: entity.MaxSkillExperience},
		})
	}

	for _, value := range []int64{500_000_000, 1_000_000_000, 2_000_000_000} {
		defs = append(defs, Definition{
			Name:      fmt.Sprintf("%s overall", formatBillions(value)),
			Metric:    entity.MetricOverall,
			Threshold: ExperienceThreshold{Metric: entity.MetricOverall, Value: value},
		})
	}

	defs = append(defs, Definition{
		Name:      "maxed combat",
		Threshold: CombatSkillsThreshold{Value: entity.Level99Experience},
	})

	defs = append(defs, Definition{
		Name:      "maxed overall",
		Threshold: AllSkillsThreshold{Value: entity.Level99Experience},
	})

	defs = append(defs, Definition{
		Name:      "200m all",
		Threshold: AllSkillsThreshold{Value: entity.MaxSkillExperience},
	})

	for _, boss := range entity.BossMetrics {
		for _, milestone := range bossMilestones {
			defs = append(defs, Definition{
				Name:      fmt.Sprintf("%s %s", formatThousands(milestone), boss),
				Metric:    boss,
				Threshold: KillCountThreshold{Metric: boss, Value: milestone},
			})
		}
	}

	for _, milestone := range clueScrollMilestones {
		defs = append(defs, Definition{
			Name:      fmt.Sprintf("%s %s", formatThousands(milestone), entity.MetricClueScrollsAll),
			Metric:    entity.MetricClueScrollsAll,
			Threshold: ScoreThreshold{Metric: entity.MetricClueScrollsAll, Value: milestone},
		})
	}

	return defs
}

func formatThousands(value int64) string {
	if value < 1_000 {
		return fmt.Sprintf("%d", value)
	}

	return fmt.Sprintf("%dk", value/1_000)
}

func formatBillions(value int64) string {
	if value >= 1_000_000_000 {
		return fmt.Sprintf("%db", value/1_000_000_000)
	}

	return fmt.Sprintf("%dm", value/1_000_000)
}

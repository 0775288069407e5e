package entity

import "math"

// levelExperiences[l-1] is the minimum experience required for level l, so
// levelExperiences[0] = 0 and levelExperiences[98] is the level 99 threshold.
var levelExperiences [MaxSkillLevel]int64

// Level99Experience is the experience threshold of level 99.
var Level99Experience int64

func init() {
	points := int64(0)
	for level := 1; level < MaxSkillLevel; level++ {
		points += int64(float64(level) + 300*math.Pow(2, float64(level)/7))
		levelExperiences[level] = points / 4
	}

	Level99Experience = levelExperiences[MaxSkillLevel-1]
}

// ExperienceAtLevel returns the minimum experience for the given level,
// clamped to the valid 1..99 range.
func ExperienceAtLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxSkillLevel {
		level = MaxSkillLevel
	}
	return levelExperiences[level-1]
}

// LevelAtExperience returns the level reached at the given experience.
func LevelAtExperience(experience int64) int {
	if experience <= 0 {
		return 1
	}

	for level := MaxSkillLevel; level > 1; level-- {
		if experience >= levelExperiences[level-1] {
			return level
		}
	}

	return 1
}

package common

import "fmt"

func RedisKeyCompetitionScoreboard(competitionID string) string {
	return fmt.Sprintf("competition:%s:scoreboard", competitionID)
}

package common

import "fmt"

func RedisKeyFactionLeaderboard(factionID string) string {
	return fmt.Sprintf("faction:%s:points", factionID)
}

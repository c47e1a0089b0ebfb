package leaderboard

import (
	"sort"

	"github.com/pointdrop/leaderboard/internal/db"
)

// AssignRanks orders the full user set by total points descending and assigns
// positional ranks 1..N. Ties do not share a rank: users with equal totals are
// ordered by ascending id (creation order), so repeated runs over the same
// data always produce the same assignment. The input slice is not modified.
func AssignRanks(users []db.User) []db.User {
	ranked := make([]db.User, len(users))
	copy(ranked, users)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].ID < ranked[j].ID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

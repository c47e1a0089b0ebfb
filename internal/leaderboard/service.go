package leaderboard

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/pointdrop/leaderboard/internal/db"
	"github.com/pointdrop/leaderboard/internal/errors"
	"github.com/pointdrop/leaderboard/pkg/logger"
)

// Reward bounds for a single claim, inclusive.
const (
	MinReward = 1
	MaxReward = 10
)

// RewardFunc produces the points granted by one claim. Injectable so tests
// can pin the reward instead of asserting on a random range.
type RewardFunc func() int

// RandomReward returns a uniform random reward in [MinReward, MaxReward]
func RandomReward() int {
	return rand.IntN(MaxReward-MinReward+1) + MinReward
}

// ClaimResult is what a successful claim reports back to the caller
type ClaimResult struct {
	Points      int   `json:"points"`
	TotalPoints int64 `json:"totalPoints"`
	Rank        int   `json:"rank"`
}

// Broadcaster pushes live updates to connected clients. Claims never fail on
// a broadcast error.
type Broadcaster interface {
	BroadcastClaimEvent(user db.User, points int) error
	BroadcastLeaderboardUpdate(users []db.User) error
}

// Service is the leaderboard core exposed to the API layer
type Service interface {
	CreateUser(name string) (db.User, error)
	ListUsersRanked() ([]db.User, error)
	Claim(userID int) (ClaimResult, error)
	GetPointsHistory(userID int) ([]db.PointsHistory, error)
}

// ServiceImpl implements Service on top of a DBService
type ServiceImpl struct {
	db          db.DBService
	reward      RewardFunc
	broadcaster Broadcaster
}

// NewService creates a leaderboard service. A nil reward falls back to
// RandomReward; a nil broadcaster disables live updates.
func NewService(dbService db.DBService, reward RewardFunc, broadcaster Broadcaster) *ServiceImpl {
	if reward == nil {
		reward = RandomReward
	}
	return &ServiceImpl{
		db:          dbService,
		reward:      reward,
		broadcaster: broadcaster,
	}
}

// CreateUser creates a user with zero points. The name must be non-empty and
// not already taken.
func (s *ServiceImpl) CreateUser(name string) (db.User, error) {
	if strings.TrimSpace(name) == "" {
		return db.User{}, &errors.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return s.db.CreateUser(name)
}

// ListUsersRanked returns every user ordered by total points descending, with
// freshly computed ranks. Ranks are persisted on every listing, matching the
// claim path, so a user created since the last claim picks up a rank here too.
func (s *ServiceImpl) ListUsersRanked() ([]db.User, error) {
	users, err := s.db.GetAllUsers()
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []db.User{}, nil
	}

	ranked := AssignRanks(users)
	if err := s.db.UpdateUserRanks(ranked); err != nil {
		return nil, err
	}

	return ranked, nil
}

// Claim awards a random number of points to the given user: one ledger entry
// is appended and the user's total incremented in a single transaction, then
// every user's rank is recomputed and persisted.
//
// A failure after the claim transaction committed leaves correct totals with
// stale ranks; the next claim or listing repairs them. Totals are the source
// of truth, ranks are derived.
func (s *ServiceImpl) Claim(userID int) (ClaimResult, error) {
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return ClaimResult{}, err
	}

	points := s.reward()
	if points < MinReward || points > MaxReward {
		return ClaimResult{}, fmt.Errorf("reward %d outside [%d, %d]", points, MinReward, MaxReward)
	}

	_, newTotal, err := s.db.RecordClaim(user.ID, points)
	if err != nil {
		return ClaimResult{}, err
	}

	users, err := s.db.GetAllUsers()
	if err != nil {
		return ClaimResult{}, err
	}

	ranked := AssignRanks(users)
	if err := s.db.UpdateUserRanks(ranked); err != nil {
		return ClaimResult{}, err
	}

	result := ClaimResult{Points: points, TotalPoints: newTotal}
	for _, u := range ranked {
		if u.ID == user.ID {
			result.Rank = u.Rank
			user = u
			break
		}
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastClaimEvent(user, points); err != nil {
			logger.LogError(err)
		}
		if err := s.broadcaster.BroadcastLeaderboardUpdate(ranked); err != nil {
			logger.LogError(err)
		}
	}

	logger.Info("User %d claimed %d points (total %d, rank %d)", user.ID, points, newTotal, result.Rank)
	return result, nil
}

// GetPointsHistory returns the user's ledger entries, newest first
func (s *ServiceImpl) GetPointsHistory(userID int) ([]db.PointsHistory, error) {
	if _, err := s.db.GetUserByID(userID); err != nil {
		return nil, err
	}

	history, err := s.db.GetPointsHistory(userID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []db.PointsHistory{}
	}
	return history, nil
}

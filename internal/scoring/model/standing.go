// Package model provides leaderboard DTOs and ranking primitives for the scoring module.
package model

// Kind selects a leaderboard.
type Kind string

// Leaderboard kinds accepted by GET /rank/:type.
const (
	KindUsers Kind = "users"
	KindTeams Kind = "teams"
)

// ParseKind validates a leaderboard selector.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUsers, KindTeams:
		return Kind(s), nil
	default:
		return "", ErrUnknownKind
	}
}

// RankFunc is the SQL window function used to assign ranks.
type RankFunc string

// Supported window functions.
const (
	// RankCompetition skips ranks after ties (1,1,3).
	RankCompetition RankFunc = "RANK"
	// RankDense does not skip ranks after ties (1,1,2).
	RankDense RankFunc = "DENSE_RANK"
)

// RankFuncFor maps a configured rank mode to its window function.
// Anything other than "dense" yields competition ranking.
func RankFuncFor(mode string) RankFunc {
	if mode == "dense" {
		return RankDense
	}
	return RankCompetition
}

// UserStanding is one row of the user leaderboard.
type UserStanding struct {
	Rank   *int    `json:"rank" gorm:"column:rank"`
	Name   string  `json:"name" gorm:"column:name"`
	Points int     `json:"points" gorm:"column:points"`
	Team   *string `json:"team" gorm:"column:team_name"`
}

// TeamStanding is one row of the team leaderboard.
type TeamStanding struct {
	Rank   *int   `json:"rank" gorm:"column:rank"`
	Name   string `json:"name" gorm:"column:name"`
	Points int    `json:"points" gorm:"column:points"`
	Num    int    `json:"num" gorm:"column:num"`
}

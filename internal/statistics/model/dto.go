// Package model provides data transfer objects for statistics module.
package model

// ProblemStatistics counts how a problem has been answered. Attempts is the
// number of users that submitted at least one flag for it.
type ProblemStatistics struct {
	WID      uint   `gorm:"column:wid" json:"wid"`
	Name     string `gorm:"column:name" json:"name"`
	Tag      string `gorm:"column:tag" json:"tag"`
	Points   int    `gorm:"column:points" json:"points"`
	Solves   int    `gorm:"column:solves" json:"solves"`
	Attempts int    `gorm:"column:attempts" json:"attempts"`
}

// ProblemsStatisticsResponse represents response for problem statistics.
type ProblemsStatisticsResponse struct {
	Problems []ProblemStatistics `json:"problems"`
	Total    int                 `json:"total"`
}

// Overview holds competition-wide totals.
type Overview struct {
	Users         int `json:"users"`
	VerifiedUsers int `json:"verified_users"`
	Teams         int `json:"teams"`
	Problems      int `json:"problems"`
	CorrectSolves int `json:"correct_solves"`
}

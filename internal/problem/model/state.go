package model

import "time"

// Status is a user's progress on one problem.
type Status string

// Problem states. A state never leaves StatusCorrect.
const (
	StatusUnanswered Status = "UNANSWERED"
	StatusIncorrect  Status = "INCORRECT"
	StatusCorrect    Status = "CORRECT"
)

// UserProblemState records a user's progress on a problem.
type UserProblemState struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:uq_user_problem,priority:1"`
	ProblemID uint      `gorm:"column:problem_id;not null;uniqueIndex:uq_user_problem,priority:2;index"`
	Status    Status    `gorm:"column:status;type:varchar(16);not null;default:UNANSWERED"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (UserProblemState) TableName() string {
	return "user_problem_states"
}

// Package model provides the outcomes of flag submissions.
package model

import "github.com/festy23/ctf_platform/internal/apperr"

// Outcome is the result of evaluating a flag.
type Outcome string

// Submission outcomes.
const (
	OutcomeCorrect        Outcome = "CORRECT"
	OutcomeIncorrect      Outcome = "INCORRECT"
	OutcomeAlreadyCorrect Outcome = "ALREADY_CORRECT"
)

// ErrWrongFlag is reported to the client for an incorrect submission.
var ErrWrongFlag = apperr.New(apperr.KindParam, apperr.ParamErr, "wrong flag")

// Result is returned for accepted submissions.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Points  int     `json:"points"`
}

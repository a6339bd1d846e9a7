package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/ctf_platform/internal/database/dbtest"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

func setState(t *testing.T, db *gorm.DB, userID, problemID uint, status problemModel.Status) {
	t.Helper()
	require.NoError(t, db.Create(&problemModel.UserProblemState{UserID: userID, ProblemID: problemID, Status: status}).Error)
}

func TestRepository_GetProblemsStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		repo := New(dbtest.New(t), zap.NewNop().Sugar())

		stats, err := repo.GetProblemsStatistics(ctx)

		require.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})

	t.Run("counts solves and attempts", func(t *testing.T) {
		db := dbtest.New(t)
		repo := New(db, zap.NewNop().Sugar())

		alice := dbtest.CreateUser(t, db, "alice", 0)
		bob := dbtest.CreateUser(t, db, "bob", 0)
		carol := dbtest.CreateUser(t, db, "carol", 0)
		rop := dbtest.CreateProblem(t, db, "baby-rop", "flag{rop}", 100)
		sqli := dbtest.CreateProblem(t, db, "sqli", "flag{sqli}", 200)
		heap := dbtest.CreateProblem(t, db, "heap", "flag{heap}", 300)

		setState(t, db, alice.ID, rop.ID, problemModel.StatusCorrect)
		setState(t, db, bob.ID, rop.ID, problemModel.StatusIncorrect)
		setState(t, db, carol.ID, rop.ID, problemModel.StatusUnanswered)
		setState(t, db, alice.ID, sqli.ID, problemModel.StatusCorrect)
		setState(t, db, bob.ID, sqli.ID, problemModel.StatusCorrect)

		stats, err := repo.GetProblemsStatistics(ctx)

		require.NoError(t, err)
		require.Len(t, stats, 3)

		assert.Equal(t, sqli.ID, stats[0].WID)
		assert.Equal(t, 2, stats[0].Solves)
		assert.Equal(t, 2, stats[0].Attempts)
		assert.Equal(t, 200, stats[0].Points)

		assert.Equal(t, rop.ID, stats[1].WID)
		assert.Equal(t, "baby-rop", stats[1].Name)
		assert.Equal(t, "misc", stats[1].Tag)
		assert.Equal(t, 1, stats[1].Solves)
		assert.Equal(t, 2, stats[1].Attempts)

		assert.Equal(t, heap.ID, stats[2].WID)
		assert.Zero(t, stats[2].Solves)
		assert.Zero(t, stats[2].Attempts)
	})
}

func TestRepository_GetOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		repo := New(dbtest.New(t), zap.NewNop().Sugar())

		overview, err := repo.GetOverview(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, overview.Users)
		assert.Equal(t, 0, overview.CorrectSolves)
	})

	t.Run("with data", func(t *testing.T) {
		db := dbtest.New(t)
		repo := New(db, zap.NewNop().Sugar())

		alice := dbtest.CreateUser(t, db, "alice", 100)
		bob := dbtest.CreateUser(t, db, "bob", 0)
		require.NoError(t, db.Model(&userModel.User{}).Where("id = ?", bob.ID).Update("is_verified", false).Error)
		require.NoError(t, db.Create(&teamModel.Team{Name: "red", Code: "x", Num: 1, Points: 100, CaptainID: alice.ID}).Error)
		rop := dbtest.CreateProblem(t, db, "baby-rop", "flag{rop}", 100)
		dbtest.CreateProblem(t, db, "sqli", "flag{sqli}", 100)
		setState(t, db, alice.ID, rop.ID, problemModel.StatusCorrect)
		setState(t, db, bob.ID, rop.ID, problemModel.StatusIncorrect)

		overview, err := repo.GetOverview(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, overview.Users)
		assert.Equal(t, 1, overview.VerifiedUsers)
		assert.Equal(t, 1, overview.Teams)
		assert.Equal(t, 2, overview.Problems)
		assert.Equal(t, 1, overview.CorrectSolves)
	})
}

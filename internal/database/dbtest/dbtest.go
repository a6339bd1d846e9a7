// Package dbtest opens an in-memory SQLite database with the full schema for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authModel "github.com/festy23/ctf_platform/internal/auth/model"
	"github.com/festy23/ctf_platform/internal/credential"
	"github.com/festy23/ctf_platform/internal/database/database"
	problemModel "github.com/festy23/ctf_platform/internal/problem/model"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
	writeupModel "github.com/festy23/ctf_platform/internal/writeup/model"
)

var seq atomic.Int64

// New returns a migrated database that is closed when the test ends.
// All operations share one connection so every goroutine sees the same
// in-memory database; concurrent transactions therefore serialize.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	credential.Cost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:ctf%d?mode=memory&cache=private", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(zap.NewNop().Sugar()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&authModel.Admin{},
		&userModel.User{},
		&teamModel.Team{},
		&problemModel.Problem{},
		&problemModel.UserProblemState{},
		&writeupModel.Writeup{},
	))
	return db
}

// CreateUser inserts a verified user with the given name and points.
func CreateUser(t testing.TB, db *gorm.DB, name string, points int) *userModel.User {
	t.Helper()
	u := &userModel.User{
		Name:       name,
		Email:      name + "@example.com",
		RealName:   name,
		IDCard:     "110105194912310021",
		Points:     points,
		IsVerified: true,
	}
	require.NoError(t, u.Password.Set("password"))
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateProblem inserts a problem with the given name, flag and points.
func CreateProblem(t testing.TB, db *gorm.DB, name, flag string, points int) *problemModel.Problem {
	t.Helper()
	p := &problemModel.Problem{
		Tag:     "misc",
		Name:    name,
		Flag:    flag,
		Content: "solve " + name,
		Points:  points,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// ReloadUser reads a user back from the database.
func ReloadUser(t testing.TB, db *gorm.DB, id uint) *userModel.User {
	t.Helper()
	var u userModel.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

// ReloadTeam reads a team back from the database.
func ReloadTeam(t testing.TB, db *gorm.DB, id uint) *teamModel.Team {
	t.Helper()
	var team teamModel.Team
	require.NoError(t, db.First(&team, id).Error)
	return &team
}

// Package service provides business logic layer for team module.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	scoring "github.com/festy23/ctf_platform/internal/scoring/service"
	teamModel "github.com/festy23/ctf_platform/internal/team/model"
	"github.com/festy23/ctf_platform/internal/team/repository"
	userModel "github.com/festy23/ctf_platform/internal/user/model"
)

// Service defines the interface for team business logic operations.
//
// Every mutation runs in one transaction that locks the scoring state, then
// the acting user, then the team, and re-derives the team's points and
// member count from its roster before commit.
type Service interface {
	// Get returns the caller's team.
	Get(ctx context.Context, userID uint) (*teamModel.TeamResponse, error)

	// Create founds a team with the caller as captain.
	Create(ctx context.Context, userID uint, req *teamModel.CreateRequest) error

	// Join adds the caller to a team after checking its code.
	Join(ctx context.Context, userID uint, req *teamModel.JoinRequest) error

	// Leave takes a non-captain member off its team.
	Leave(ctx context.Context, userID uint) error

	// Dissolve deletes the caller's team when the caller is its only member.
	Dissolve(ctx context.Context, userID uint) error

	// Quit leaves the team, or dissolves it when the caller is its only member.
	Quit(ctx context.Context, userID uint) (*teamModel.LeaveResult, error)

	// TransferCaptaincy hands captaincy to another member.
	TransferCaptaincy(ctx context.Context, userID uint, req *teamModel.TransferRequest) error

	// Rename renames the caller's team.
	Rename(ctx context.Context, userID uint, req *teamModel.RenameRequest) error

	// Detach removes a user from its team inside an engine transaction
	// already opened by the caller. It does nothing for users without a team.
	Detach(ctx context.Context, tx *gorm.DB, eng scoring.Engine, userID uint) error
}

type service struct {
	engine      scoring.Engine
	leaderboard scoring.Invalidator
	repo        repository.Repository
	logger      *zap.SugaredLogger
}

// New creates a new team service instance.
func New(db *gorm.DB, engine scoring.Engine, leaderboard scoring.Invalidator, logger *zap.SugaredLogger) Service {
	return &service{
		engine:      engine,
		leaderboard: leaderboard,
		repo:        repository.New(db, logger),
		logger:      logger,
	}
}

// run executes fn under the scoring lock and invalidates cached
// leaderboards after a successful commit.
func (s *service) run(ctx context.Context, fn func(repo repository.Repository, eng scoring.Engine) error) error {
	err := s.engine.Run(ctx, func(tx *gorm.DB, eng scoring.Engine) error {
		return fn(repository.New(tx, s.logger), eng)
	})
	if err != nil {
		return err
	}
	s.leaderboard.Invalidate(ctx)
	return nil
}

// Get returns the caller's team with its roster.
func (s *service) Get(ctx context.Context, userID uint) (*teamModel.TeamResponse, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.OnTeam() {
		return nil, teamModel.ErrNotOnTeam
	}

	team, err := s.repo.GetByID(ctx, *user.TeamID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.Members(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	return &teamModel.TeamResponse{
		Name:      team.Name,
		Num:       team.Num,
		Points:    team.Points,
		Rank:      team.Rank,
		IsCaptain: user.IsCaptain,
		Members:   members,
	}, nil
}

// Create founds a team. The new team starts with the founder's points.
func (s *service) Create(ctx context.Context, userID uint, req *teamModel.CreateRequest) error {
	var teamID uint
	err := s.run(ctx, func(repo repository.Repository, eng scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.OnTeam() {
			return teamModel.ErrAlreadyOnTeam
		}

		taken, err := repo.NameTaken(ctx, req.Name)
		if err != nil {
			return err
		}
		if taken {
			return teamModel.ErrDuplicateName
		}

		team := &teamModel.Team{Name: req.Name, Code: req.Code, CaptainID: user.ID}
		if err := repo.Create(ctx, team); err != nil {
			return err
		}
		teamID = team.ID

		if err := repo.Join(ctx, user.ID, team, true); err != nil {
			return err
		}
		return eng.AdjustTeam(ctx, team.ID, user.Points)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("team created", "team_id", teamID, "name", req.Name, "captain_id", userID)
	return nil
}

// Join adds the caller to a team. The member count and points are recounted
// while the team row is locked, so concurrent joins never lose an update.
func (s *service) Join(ctx context.Context, userID uint, req *teamModel.JoinRequest) error {
	var teamID uint
	err := s.run(ctx, func(repo repository.Repository, eng scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.OnTeam() {
			return teamModel.ErrAlreadyOnTeam
		}

		team, err := repo.LockTeamByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if team.Code != req.Code {
			return teamModel.ErrWrongCode
		}
		teamID = team.ID

		if err := repo.Join(ctx, user.ID, team, false); err != nil {
			return err
		}
		return eng.AdjustTeam(ctx, team.ID, user.Points)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("team joined", "team_id", teamID, "user_id", userID)
	return nil
}

// Leave takes a non-captain member off its team.
func (s *service) Leave(ctx context.Context, userID uint) error {
	var teamID uint
	err := s.run(ctx, func(repo repository.Repository, eng scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.OnTeam() {
			return teamModel.ErrNotOnTeam
		}
		if user.IsCaptain {
			return teamModel.ErrMustTransferOrDissolve
		}
		teamID = *user.TeamID
		return s.leave(ctx, repo, eng, user)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("team left", "team_id", teamID, "user_id", userID)
	return nil
}

// Dissolve deletes the caller's team. Only a captain without other members
// may dissolve.
func (s *service) Dissolve(ctx context.Context, userID uint) error {
	var teamID uint
	err := s.run(ctx, func(repo repository.Repository, eng scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.OnTeam() {
			return teamModel.ErrNotOnTeam
		}
		if !user.IsCaptain {
			return teamModel.ErrNotCaptain
		}
		teamID = *user.TeamID

		team, err := repo.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		num, err := repo.CountMembers(ctx, team.ID)
		if err != nil {
			return err
		}
		if num > 1 {
			return teamModel.ErrTeamNotEmpty
		}
		return s.dissolve(ctx, repo, eng, user, team)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("team dissolved", "team_id", teamID, "user_id", userID)
	return nil
}

// Quit leaves the caller's team, or dissolves it when the caller is the
// captain and only member.
func (s *service) Quit(ctx context.Context, userID uint) (*teamModel.LeaveResult, error) {
	result := &teamModel.LeaveResult{}
	err := s.run(ctx, func(repo repository.Repository, eng scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.OnTeam() {
			return teamModel.ErrNotOnTeam
		}

		dissolved, err := s.quit(ctx, repo, eng, user)
		result.Dissolved = dissolved
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("team quit", "user_id", userID, "dissolved", result.Dissolved)
	return result, nil
}

// Detach removes a user from its team inside the caller's transaction.
func (s *service) Detach(ctx context.Context, tx *gorm.DB, eng scoring.Engine, userID uint) error {
	repo := repository.New(tx, s.logger)

	user, err := repo.LockUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.OnTeam() {
		return nil
	}

	_, err = s.quit(ctx, repo, eng, user)
	return err
}

func (s *service) quit(ctx context.Context, repo repository.Repository, eng scoring.Engine, user *userModel.User) (bool, error) {
	if !user.IsCaptain {
		return false, s.leave(ctx, repo, eng, user)
	}

	team, err := repo.LockTeam(ctx, *user.TeamID)
	if err != nil {
		return false, err
	}
	num, err := repo.CountMembers(ctx, team.ID)
	if err != nil {
		return false, err
	}
	if num > 1 {
		return false, teamModel.ErrMustTransferOrDissolve
	}
	return true, s.dissolve(ctx, repo, eng, user, team)
}

func (s *service) leave(ctx context.Context, repo repository.Repository, eng scoring.Engine, user *userModel.User) error {
	teamID := *user.TeamID
	if _, err := repo.LockTeam(ctx, teamID); err != nil {
		return err
	}
	if err := repo.Clear(ctx, user.ID); err != nil {
		return err
	}
	return eng.AdjustTeam(ctx, teamID, -user.Points)
}

func (s *service) dissolve(ctx context.Context, repo repository.Repository, eng scoring.Engine, user *userModel.User, team *teamModel.Team) error {
	if err := repo.Clear(ctx, user.ID); err != nil {
		return err
	}
	if err := repo.Delete(ctx, team.ID); err != nil {
		return err
	}
	return eng.RecomputeTeamRanks(ctx)
}

// TransferCaptaincy hands captaincy to another member of the caller's team.
func (s *service) TransferCaptaincy(ctx context.Context, userID uint, req *teamModel.TransferRequest) error {
	var teamID, targetID uint
	err := s.engine.Run(ctx, func(tx *gorm.DB, _ scoring.Engine) error {
		repo := repository.New(tx, s.logger)

		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.OnTeam() {
			return teamModel.ErrNotOnTeam
		}
		if !user.IsCaptain {
			return teamModel.ErrNotCaptain
		}
		teamID = *user.TeamID

		target, err := repo.LockUserByName(ctx, req.CaptainName)
		if err != nil {
			if errors.Is(err, userModel.ErrUserNotFound) {
				return teamModel.ErrNotAMember
			}
			return err
		}
		if target.TeamID == nil || *target.TeamID != teamID {
			return teamModel.ErrNotAMember
		}
		targetID = target.ID
		if target.ID == user.ID {
			return nil
		}

		if _, err := repo.LockTeam(ctx, teamID); err != nil {
			return err
		}
		return repo.SetCaptain(ctx, teamID, target.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("captaincy transferred", "team_id", teamID, "from", userID, "to", targetID)
	return nil
}

// Rename renames the caller's team. Only the captain may rename.
func (s *service) Rename(ctx context.Context, userID uint, req *teamModel.RenameRequest) error {
	var teamID uint
	err := s.run(ctx, func(repo repository.Repository, _ scoring.Engine) error {
		user, err := repo.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !user.OnTeam() {
			return teamModel.ErrNotOnTeam
		}
		if !user.IsCaptain {
			return teamModel.ErrNotCaptain
		}
		teamID = *user.TeamID

		team, err := repo.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.Name == req.Name {
			return nil
		}

		taken, err := repo.NameTaken(ctx, req.Name)
		if err != nil {
			return err
		}
		if taken {
			return teamModel.ErrDuplicateName
		}
		return repo.Rename(ctx, teamID, req.Name)
	})
	if err != nil {
		return err
	}

	s.logger.Infow("team renamed", "team_id", teamID, "name", req.Name)
	return nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/scoring/cache"
	"github.com/festy23/ctf_platform/internal/scoring/model"
	"github.com/festy23/ctf_platform/internal/scoring/repository"
)

// Invalidator drops cached leaderboards after a committed score change.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Leaderboard serves the user and team standings.
type Leaderboard interface {
	Invalidator

	// Users returns verified users ordered by points.
	Users(ctx context.Context) ([]model.UserStanding, error)

	// Teams returns teams ordered by points.
	Teams(ctx context.Context) ([]model.TeamStanding, error)

	// Export renders a leaderboard as an xlsx workbook.
	Export(ctx context.Context, kind model.Kind) ([]byte, error)
}

type leaderboard struct {
	repo   repository.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewLeaderboard creates a leaderboard reading through c.
func NewLeaderboard(repo repository.Repository, c cache.Cache, ttl time.Duration, logger *zap.SugaredLogger) Leaderboard {
	if c == nil {
		c = cache.Nop()
	}
	return &leaderboard{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (l *leaderboard) Users(ctx context.Context) ([]model.UserStanding, error) {
	var standings []model.UserStanding
	if l.cached(ctx, model.KindUsers, &standings) {
		return standings, nil
	}

	standings, err := l.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	l.store(ctx, model.KindUsers, standings)
	return standings, nil
}

func (l *leaderboard) Teams(ctx context.Context) ([]model.TeamStanding, error) {
	var standings []model.TeamStanding
	if l.cached(ctx, model.KindTeams, &standings) {
		return standings, nil
	}

	standings, err := l.repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	l.store(ctx, model.KindTeams, standings)
	return standings, nil
}

// Invalidate drops both cached leaderboards. Failures are logged; a stale
// entry still expires after the cache TTL.
func (l *leaderboard) Invalidate(ctx context.Context) {
	if err := l.cache.Delete(ctx, string(model.KindUsers), string(model.KindTeams)); err != nil {
		l.logger.Warnw("failed to invalidate leaderboard cache", "error", err)
	}
}

func (l *leaderboard) cached(ctx context.Context, kind model.Kind, dst interface{}) bool {
	found, err := l.cache.Get(ctx, string(kind), dst)
	if err != nil {
		l.logger.Warnw("leaderboard cache read failed", "kind", kind, "error", err)
		return false
	}
	return found
}

func (l *leaderboard) store(ctx context.Context, kind model.Kind, v interface{}) {
	if err := l.cache.Set(ctx, string(kind), v, l.ttl); err != nil {
		l.logger.Warnw("leaderboard cache write failed", "kind", kind, "error", err)
	}
}

// Export renders a leaderboard as an xlsx workbook. It always reads the
// database so the export reflects committed state.
func (l *leaderboard) Export(ctx context.Context, kind model.Kind) ([]byte, error) {
	var (
		header []interface{}
		rows   [][]interface{}
	)

	switch kind {
	case model.KindUsers:
		standings, err := l.repo.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		header = []interface{}{"Rank", "Name", "Points", "Team"}
		for _, s := range standings {
			team := ""
			if s.Team != nil {
				team = *s.Team
			}
			rows = append(rows, []interface{}{rankCell(s.Rank), s.Name, s.Points, team})
		}
	case model.KindTeams:
		standings, err := l.repo.ListTeams(ctx)
		if err != nil {
			return nil, err
		}
		header = []interface{}{"Rank", "Name", "Points", "Members"}
		for _, s := range standings {
			rows = append(rows, []interface{}{rankCell(s.Rank), s.Name, s.Points, s.Num})
		}
	default:
		return nil, model.ErrUnknownKind
	}

	buf, err := renderSheet(string(kind), header, rows)
	if err != nil {
		l.logger.Errorw("failed to render leaderboard export", "kind", kind, "error", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func rankCell(rank *int) interface{} {
	if rank == nil {
		return ""
	}
	return *rank
}

func renderSheet(sheet string, header []interface{}, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "D", "D", 24)

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.WriteToBuffer()
}

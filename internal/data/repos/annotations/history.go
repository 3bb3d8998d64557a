package annotations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type HistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entry *types.HistoryEntry) error

	// FullByInspection returns every entry for the inspection, newest first,
	// including the previous/new state snapshots.
	FullByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.HistoryEntry, error)

	// RecentByInspection returns at most limit entries, newest first, with
	// the state snapshots omitted to keep the payload small.
	RecentByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, limit int) ([]*types.HistoryEntry, error)

	// ByBox returns the entries for one box number of the inspection,
	// newest first.
	ByBox(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, boxNumber int) ([]*types.HistoryEntry, error)

	Statistics(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (*types.HistoryStatistics, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{db: db, log: baseLog.With("repo", "HistoryRepo")}
}

func (r *historyRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *historyRepo) Append(ctx context.Context, tx *gorm.DB, entry *types.HistoryEntry) error {
	t := r.resolve(tx)
	if entry == nil {
		return apperr.Validation("history entry is nil")
	}
	if entry.InspectionID == uuid.Nil {
		return apperr.Validation("history entry missing inspection id")
	}
	if entry.ActionType == "" {
		return apperr.Validation("history entry missing action type")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrAuditWriteFailed, err)
	}
	return nil
}

func (r *historyRepo) FullByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) ([]*types.HistoryEntry, error) {
	t := r.resolve(tx)
	var out []*types.HistoryEntry
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Order("seq DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *historyRepo) RecentByInspection(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, limit int) ([]*types.HistoryEntry, error) {
	t := r.resolve(tx)
	if limit <= 0 {
		limit = 50
	}
	var out []*types.HistoryEntry
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Omit("previous_data", "new_data").
		Where("inspection_id = ?", inspectionID).
		Order("seq DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *historyRepo) ByBox(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID, boxNumber int) ([]*types.HistoryEntry, error) {
	t := r.resolve(tx)
	var out []*types.HistoryEntry
	if inspectionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("inspection_id = ? AND box_number = ?", inspectionID, boxNumber).
		Order("seq DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *historyRepo) Statistics(ctx context.Context, tx *gorm.DB, inspectionID uuid.UUID) (*types.HistoryStatistics, error) {
	t := r.resolve(tx)
	var rows []*types.HistoryEntry
	if err := t.WithContext(ctx).
		Omit("previous_data", "new_data").
		Where("inspection_id = ?", inspectionID).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	stats := &types.HistoryStatistics{
		TotalActions: len(rows),
		ActionCounts: map[string]int{},
		UserActivity: map[string]int{},
	}
	for _, row := range rows {
		stats.ActionCounts[row.ActionType]++
		if _, seen := stats.UserActivity[row.UserName]; !seen {
			stats.ContributingUsers = append(stats.ContributingUsers, row.UserName)
		}
		stats.UserActivity[row.UserName]++
	}
	if len(rows) > 0 {
		first := rows[0].CreatedAt
		last := rows[len(rows)-1].CreatedAt
		stats.FirstAction = &first
		stats.LastAction = &last
	}
	return stats, nil
}

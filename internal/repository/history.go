package repository

import (
	"time"
	"treesync/internal/db"
	"treesync/internal/logger"
	"treesync/internal/model"
	"treesync/internal/queue"

	"go.uber.org/zap"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

var _ queue.Recorder = (*HistoryRepository)(nil)

func (r *HistoryRepository) Save(result queue.Result) error {
	status := model.StatusSuccess
	errMsg := ""
	if result.Err != nil {
		status = model.StatusFailed
		errMsg = result.Err.Error()
	}

	history := model.History{
		TaskID:      result.TaskID.String(),
		Kind:        result.Kind,
		Description: result.Description,
		Status:      status,
		ErrMsg:      errMsg,
		Duration:    result.Duration,
		SyncedAt:    result.StartedAt.Add(result.Duration),
	}

	return db.DB.Create(&history).Error
}

// Record saves result and logs instead of failing; a history write must not
// change the outcome of a task.
func (r *HistoryRepository) Record(result queue.Result) {
	if err := r.Save(result); err != nil {
		logger.Log.Warn("failed to save history",
			zap.String("task", result.Description),
			zap.Error(err))
	}
}

func (r *HistoryRepository) RecordConflict(item *model.RemoteItem, entry model.LocalEntry) {
	history := model.History{
		TaskID:      "-",
		Kind:        "conflict",
		Description: item.FullName() + " <-> " + entry.Path,
		Status:      model.StatusConflict,
		ErrMsg:      "remote " + string(item.Kind) + " vs local " + string(entry.Kind),
		SyncedAt:    time.Now(),
	}

	if err := db.DB.Create(&history).Error; err != nil {
		logger.Log.Warn("failed to save conflict",
			zap.String("remote", item.FullName()),
			zap.Error(err))
	}
}

type Stats struct {
	Total     int64 `json:"total"`
	Success   int64 `json:"success"`
	Failed    int64 `json:"failed"`
	Conflicts int64 `json:"conflicts"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	counts := map[model.SyncStatus]*int64{
		model.StatusSuccess:  &stats.Success,
		model.StatusFailed:   &stats.Failed,
		model.StatusConflict: &stats.Conflicts,
	}
	for status, dst := range counts {
		if err := db.DB.Model(&model.History{}).
			Where("status = ?", status).
			Count(dst).Error; err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Order("synced_at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed() ([]model.History, error) {
	return r.getByStatus(model.StatusFailed)
}

func (r *HistoryRepository) GetConflicts() ([]model.History, error) {
	return r.getByStatus(model.StatusConflict)
}

func (r *HistoryRepository) getByStatus(status model.SyncStatus) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Where("status = ?", status).
		Order("synced_at desc").
		Find(&histories)

	return histories, result.Error
}

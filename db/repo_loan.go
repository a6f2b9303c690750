// db/repo_loan.go
package db

import (
	"context"
	"errors"
	"time"

	"github.com/SiriusLupin/deive-borrow/models"

	"gorm.io/gorm"
)

// Repo 借用紀錄表的存取層，實作 ledger.RecordStore
type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

func (r *Repo) Append(ctx context.Context, rec *models.LoanRecord) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

// All 依寫入順序回傳全部紀錄
func (r *Repo) All(ctx context.Context) ([]models.LoanRecord, error) {
	var recs []models.LoanRecord
	err := r.DB.WithContext(ctx).
		Order("borrowed_at ASC, created_at ASC").
		Find(&recs).Error
	return recs, err
}

// FindOpenByDevice 該設備最近一筆借出中的紀錄；沒有時回傳 (nil, nil)
func (r *Repo) FindOpenByDevice(ctx context.Context, deviceID string) (*models.LoanRecord, error) {
	var rec models.LoanRecord
	err := r.DB.WithContext(ctx).
		Where("device_id = ? AND status = ?", deviceID, models.StatusBorrowed).
		Order("borrowed_at DESC, created_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close 只更新狀態、歸還時間與備註，其餘欄位不動
func (r *Repo) Close(ctx context.Context, id string, returnedAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.LoanRecord{}).
		Where("id = ? AND status = ?", id, models.StatusBorrowed).
		Updates(map[string]interface{}{
			"status":      models.StatusReturned,
			"returned_at": returnedAt,
			"note":        "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// History 借還紀錄列表，新的在前；deviceID 可為空
func (r *Repo) History(ctx context.Context, deviceID string) ([]models.LoanRecord, error) {
	q := r.DB.WithContext(ctx).Model(&models.LoanRecord{}).
		Order("borrowed_at DESC, created_at DESC")
	if deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	var recs []models.LoanRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

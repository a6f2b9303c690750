package ledger

import (
	"context"
	"time"

	"github.com/SiriusLupin/deive-borrow/catalog"
	"github.com/SiriusLupin/deive-borrow/models"
)

// ActiveLoan 借出中的紀錄加上逾期判定
type ActiveLoan struct {
	Borrower         string     `json:"borrower"`
	Purpose          string     `json:"purpose"`
	DeviceID         string     `json:"deviceId"`
	DeviceType       string     `json:"deviceType"`
	BorrowedAt       time.Time  `json:"borrowedAt"`
	ExpectedDuration string     `json:"expectedDuration,omitempty"`
	Note             string     `json:"note,omitempty"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
	Overdue          *bool      `json:"overdue"` // nil = 借出時間異常，無法判定
}

// dueOffset 預計借用時間 → 到期日偏移；未填或不認得一律 7 天
func dueOffset(bucket string) time.Duration {
	switch bucket {
	case models.DurationShort:
		return 3 * 24 * time.Hour
	case models.DurationMedium:
		return 7 * 24 * time.Hour
	case models.DurationLong:
		return 14 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// annotate 單筆紀錄的逾期判定；借出時間為零值時跳過判定，不影響其他紀錄
func (l *Ledger) annotate(rec models.LoanRecord) ActiveLoan {
	a := ActiveLoan{
		Borrower:         rec.Borrower,
		Purpose:          rec.Purpose,
		DeviceID:         rec.DeviceID,
		DeviceType:       rec.DeviceType,
		BorrowedAt:       rec.BorrowedAt,
		ExpectedDuration: rec.ExpectedDuration,
		Note:             rec.Note,
	}
	if rec.BorrowedAt.IsZero() {
		return a
	}
	due := rec.BorrowedAt.Add(dueOffset(rec.ExpectedDuration))
	overdue := l.now().After(due)
	a.DueAt = &due
	a.Overdue = &overdue
	return a
}

// ListActive 目前借出中的紀錄，依設備種類分組，組內維持寫入順序
func (l *Ledger) ListActive(ctx context.Context) (map[string][]ActiveLoan, error) {
	recs, err := l.store.All(ctx)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]ActiveLoan)
	for _, rec := range recs {
		if !rec.Open() {
			continue
		}
		groups[rec.DeviceType] = append(groups[rec.DeviceType], l.annotate(rec))
	}
	return groups, nil
}

// ListOverdue 借出中且已逾期的紀錄，維持寫入順序
func (l *Ledger) ListOverdue(ctx context.Context) ([]ActiveLoan, error) {
	recs, err := l.store.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []ActiveLoan
	for _, rec := range recs {
		if !rec.Open() {
			continue
		}
		a := l.annotate(rec)
		if a.Overdue != nil && *a.Overdue {
			out = append(out, a)
		}
	}
	return out, nil
}

// History 借還紀錄列表，新的在前；deviceID 可為空表示全部
func (l *Ledger) History(ctx context.Context, deviceID string) ([]models.LoanRecord, error) {
	if deviceID != "" {
		deviceID = catalog.CanonicalDeviceID(deviceID)
	}
	return l.store.History(ctx, deviceID)
}

// Package ledger 借還業務規則：資格檢查、借出、歸還與狀態查詢。
// 紀錄本身存放在外部的 RecordStore，這裡只負責規則。
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SiriusLupin/deive-borrow/catalog"
	"github.com/SiriusLupin/deive-borrow/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound 查無該設備的借出紀錄（正常結果，不是故障）
	ErrNotFound = errors.New("no open loan for this device")
	// ErrAlreadyBorrowed 該設備已有未歸還的借出紀錄
	ErrAlreadyBorrowed = errors.New("device already borrowed")
	// ErrStoreUnavailable 儲存層未就緒，借還與查詢一律拒絕
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// ValidationError 欄位缺漏或不合法，未觸及儲存層
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// EligibilityError 設備與用途不符，未觸及儲存層
type EligibilityError struct {
	DeviceID  string
	Dedicated string
	Purpose   string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s 為 %s 專用，不能用於 %s", e.DeviceID, e.Dedicated, e.Purpose)
}

// RecordStore 借用紀錄的外部儲存：新增、全部讀取、就地結案
type RecordStore interface {
	// Append 新增一筆紀錄
	Append(ctx context.Context, rec *models.LoanRecord) error
	// All 依寫入順序回傳全部紀錄
	All(ctx context.Context) ([]models.LoanRecord, error)
	// FindOpenByDevice 回傳該設備最近一筆借出中的紀錄；沒有則 (nil, nil)
	FindOpenByDevice(ctx context.Context, deviceID string) (*models.LoanRecord, error)
	// Close 就地更新：狀態改已歸還、寫入歸還時間、清空備註，其餘欄位不動
	Close(ctx context.Context, id string, returnedAt time.Time) error
	// History 借用紀錄列表，新的在前；deviceID 可為空
	History(ctx context.Context, deviceID string) ([]models.LoanRecord, error)
}

// DeviceLocker 設備層級的 advisory lock，避免同一設備同時被操作
type DeviceLocker interface {
	Acquire(ctx context.Context, deviceID string) (release func(), err error)
}

// Ledger 無狀態的規則層；locks 可為 nil（不加鎖）
type Ledger struct {
	store RecordStore
	locks DeviceLocker
	log   *zap.Logger
	now   func() time.Time
}

func New(store RecordStore, locks DeviceLocker, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, locks: locks, log: log, now: time.Now}
}

// BorrowRequest 借用表單輸入
type BorrowRequest struct {
	Borrower         string
	DeviceType       string
	Purpose          string
	OtherExplanation string // 用途為「其他」時必填
	DeviceID         string
	ExpectedDuration string
	Note             string
}

// Borrow 驗證輸入與資格後新增一筆借出紀錄。
// 同一設備已有未歸還紀錄時回傳 ErrAlreadyBorrowed（相對原始行為是新增的防呆）。
func (l *Ledger) Borrow(ctx context.Context, req BorrowRequest) (*models.LoanRecord, error) {
	borrower := strings.TrimSpace(req.Borrower)
	if borrower == "" {
		return nil, &ValidationError{Field: "borrower", Reason: "請填寫借用人姓名"}
	}
	deviceID := catalog.CanonicalDeviceID(req.DeviceID)
	if deviceID == "" {
		return nil, &ValidationError{Field: "deviceId", Reason: "請輸入設備編號"}
	}
	if !catalog.KnownDeviceType(req.DeviceType) {
		return nil, &ValidationError{Field: "deviceType", Reason: "不支援的設備種類"}
	}
	if !catalog.KnownPurpose(req.DeviceType, req.Purpose) {
		return nil, &ValidationError{Field: "purpose", Reason: "不在用途選單內"}
	}

	purpose := req.Purpose
	if req.Purpose == catalog.OtherPurpose {
		explanation := strings.TrimSpace(req.OtherExplanation)
		if explanation == "" {
			return nil, &ValidationError{Field: "otherExplanation", Reason: "用途為其他時請填寫具體用途"}
		}
		purpose = explanation
	}

	if err := CheckEligibility(deviceID, req.Purpose); err != nil {
		return nil, err
	}

	if l.locks != nil {
		release, err := l.locks.Acquire(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	open, err := l.store.FindOpenByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyBorrowed
	}

	rec := &models.LoanRecord{
		ID:               uuid.NewString(),
		BorrowedAt:       l.now(),
		Borrower:         borrower,
		DeviceType:       req.DeviceType,
		Purpose:          purpose,
		DeviceID:         deviceID,
		Status:           models.StatusBorrowed,
		ExpectedDuration: req.ExpectedDuration,
		Note:             req.Note,
	}
	if err := l.store.Append(ctx, rec); err != nil {
		return nil, err
	}
	l.log.Info("device borrowed",
		zap.String("deviceId", deviceID),
		zap.String("borrower", borrower),
		zap.String("purpose", purpose))
	return rec, nil
}

// Return 結案該設備最近一筆借出中的紀錄。
// 查無紀錄回傳 ErrNotFound；有多筆歷史紀錄時只關最近的一筆。
func (l *Ledger) Return(ctx context.Context, deviceID string) (*models.LoanRecord, error) {
	id := catalog.CanonicalDeviceID(deviceID)
	if id == "" {
		return nil, &ValidationError{Field: "deviceId", Reason: "請輸入設備編號"}
	}

	if l.locks != nil {
		release, err := l.locks.Acquire(ctx, id)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	open, err := l.store.FindOpenByDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNotFound
	}

	now := l.now()
	if err := l.store.Close(ctx, open.ID, now); err != nil {
		return nil, err
	}
	open.Status = models.StatusReturned
	open.ReturnedAt = &now
	open.Note = ""
	l.log.Info("device returned", zap.String("deviceId", id), zap.String("loanId", open.ID))
	return open, nil
}

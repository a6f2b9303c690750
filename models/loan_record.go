// models/loan_record.go
package models

import "time"

const LoanRecordTable = "borrow_records"

// 紀錄狀態，沿用既有借用紀錄表的中文值
const (
	StatusBorrowed = "借出"
	StatusReturned = "已歸還"
)

// 預計借用時間選項
const (
	DurationShort  = "3天內"
	DurationMedium = "3-7天"
	DurationLong   = "7天以上"
)

// LoanRecord 一筆設備借用紀錄；只新增與就地更新，不刪除
type LoanRecord struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowedAt       time.Time  `gorm:"index;not null" json:"borrowedAt"`
	Borrower         string     `gorm:"size:120;not null" json:"borrower"`
	DeviceType       string     `gorm:"size:60;not null" json:"deviceType"`
	Purpose          string     `gorm:"size:200;not null" json:"purpose"`
	DeviceID         string     `gorm:"size:60;index;not null" json:"deviceId"` // 一律大寫
	Status           string     `gorm:"size:20;not null" json:"status"`
	ExpectedDuration string     `gorm:"size:20" json:"expectedDuration"`
	Note             string     `gorm:"size:255" json:"note,omitempty"`
	ReturnedAt       *time.Time `gorm:"index" json:"returnedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (LoanRecord) TableName() string { return LoanRecordTable }

// Open 是否仍在借出中
func (r *LoanRecord) Open() bool { return r.Status == StatusBorrowed }

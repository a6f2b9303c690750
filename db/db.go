package db

import (
	"fmt"

	"github.com/SiriusLupin/deive-borrow/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect 建立 Postgres 連線並跑 migration。失敗交由呼叫端決定
// 是否進入降級模式，這裡不直接結束程式。
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.LoanRecord{}); err != nil {
		return err
	}

	// 同一設備最多一筆「借出」
	if err := gdb.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_device
	  ON %s (device_id)
	  WHERE status = '%s';
	`, models.LoanRecordTable, models.LoanRecordTable, models.StatusBorrowed)).Error; err != nil {
		return err
	}

	// 歸還時找最近一筆借出中紀錄用
	if err := gdb.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_device_borrowedat_desc
	  ON %s (device_id, borrowed_at DESC)
	  WHERE status = '%s';
	`, models.LoanRecordTable, models.LoanRecordTable, models.StatusBorrowed)).Error; err != nil {
		return err
	}

	return nil
}

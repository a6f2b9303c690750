// controllers/srv.go
package controllers

import (
	"github.com/SiriusLupin/deive-borrow/app"
	"github.com/SiriusLupin/deive-borrow/db"
	"github.com/SiriusLupin/deive-borrow/ledger"
	"github.com/SiriusLupin/deive-borrow/lock"

	"go.uber.org/zap"
)

// Srv 聚合 handlers 需要的依賴。
// Ledger 為 nil 表示儲存層未就緒（降級模式），借還與查詢一律回 503。
type Srv struct {
	App    *app.App
	Ledger *ledger.Ledger
	Log    *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	s := &Srv{App: a, Log: a.Log}
	if a.StoreReady() {
		var locks ledger.DeviceLocker
		if a.RDB != nil {
			locks = lock.New(a.RDB, a.Config.LockTTL)
		}
		s.Ledger = ledger.New(db.NewRepo(a.DB), locks, a.Log)
	}
	return s
}

// storeUnavailable 降級模式的統一回覆
func (s *Srv) storeUnavailable(c *app.Ctx) bool {
	if s.Ledger != nil {
		return false
	}
	c.JSON(503, app.H{"error": "紀錄表尚未連線，暫停借還與查詢"})
	return true
}

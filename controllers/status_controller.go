// controllers/status_controller.go
package controllers

import (
	"net/http"

	"github.com/SiriusLupin/deive-borrow/app"

	"github.com/gin-gonic/gin"
)

type StatusController struct{ *Srv }

func NewStatusController(s *Srv) *StatusController { return &StatusController{Srv: s} }

// Status 系統狀態檢查：連線資訊是否設定、紀錄表是否連得上、設備鎖是否啟用。
// 兩個布林各自獨立回報，降級模式下本端點仍可用。
func (sc *StatusController) Status(c *gin.Context) {
	out := app.H{
		"credentialPresent": sc.App.CredentialPresent(),
		"storeReachable":    sc.App.StoreReachable(c.Request.Context()),
		"lockReady":         sc.App.RDB != nil,
	}
	if err := sc.App.StoreError(); err != nil {
		out["storeError"] = err.Error()
	}
	c.JSON(http.StatusOK, out)
}

package routes

import (
	"github.com/SiriusLupin/deive-borrow/app"
	"github.com/SiriusLupin/deive-borrow/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器與依賴
	s := controllers.GetSrv(a)
	loanCtl := controllers.NewLoanController(s)
	statusCtl := controllers.NewStatusController(s)

	// ------------------------------
	// 狀態檢測
	// ------------------------------
	r.GET("/api/status", statusCtl.Status)

	// ------------------------------
	// 借還
	// ------------------------------
	loans := r.Group("/api/loans")
	{
		loans.POST("", loanCtl.Borrow)
		loans.POST("/return", loanCtl.Return)
		loans.GET("", loanCtl.History) // ?deviceId=
		loans.GET("/active", loanCtl.ListActive)
		loans.GET("/overdue", loanCtl.ListOverdue)
	}

	// 借用表單的靜態選單
	r.GET("/api/catalog", loanCtl.Catalog)
}

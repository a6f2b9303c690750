// controllers/loan_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/SiriusLupin/deive-borrow/app"
	"github.com/SiriusLupin/deive-borrow/catalog"
	"github.com/SiriusLupin/deive-borrow/ledger"
	"github.com/SiriusLupin/deive-borrow/lock"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

type borrowReq struct {
	Borrower         string `json:"borrower" binding:"required"`
	DeviceType       string `json:"deviceType" binding:"required"`
	Purpose          string `json:"purpose" binding:"required"`
	OtherExplanation string `json:"otherExplanation"`
	DeviceID         string `json:"deviceId" binding:"required"`
	ExpectedDuration string `json:"expectedDuration"`
	Note             string `json:"note"`
}

// Borrow 借用
func (lc *LoanController) Borrow(c *gin.Context) {
	if lc.storeUnavailable(c) {
		return
	}
	var in borrowReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "請填寫完整資料: " + err.Error()})
		return
	}

	rec, err := lc.Ledger.Borrow(c.Request.Context(), ledger.BorrowRequest{
		Borrower:         in.Borrower,
		DeviceType:       in.DeviceType,
		Purpose:          in.Purpose,
		OtherExplanation: in.OtherExplanation,
		DeviceID:         in.DeviceID,
		ExpectedDuration: in.ExpectedDuration,
		Note:             in.Note,
	})
	if err != nil {
		lc.renderLoanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type returnReq struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

// Return 歸還
func (lc *LoanController) Return(c *gin.Context) {
	if lc.storeUnavailable(c) {
		return
	}
	var in returnReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "請輸入設備編號"})
		return
	}

	rec, err := lc.Ledger.Return(c.Request.Context(), in.DeviceID)
	if err != nil {
		lc.renderLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "record": rec})
}

// ListActive 目前借出中的設備，依設備種類分組
func (lc *LoanController) ListActive(c *gin.Context) {
	if lc.storeUnavailable(c) {
		return
	}
	groups, err := lc.Ledger.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": groups})
}

// ListOverdue 已逾期未歸還的設備
func (lc *LoanController) ListOverdue(c *gin.Context) {
	if lc.storeUnavailable(c) {
		return
	}
	items, err := lc.Ledger.ListOverdue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// History 借還紀錄 ?deviceId=
func (lc *LoanController) History(c *gin.Context) {
	if lc.storeUnavailable(c) {
		return
	}
	recs, err := lc.Ledger.History(c.Request.Context(), c.Query("deviceId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": recs})
}

// Catalog 借用表單需要的靜態設定：設備種類與各種類的用途選單
func (lc *LoanController) Catalog(c *gin.Context) {
	menus := make(map[string][]catalog.PurposeEntry, len(catalog.DeviceTypes))
	for _, t := range catalog.DeviceTypes {
		menus[t] = catalog.PurposesFor(t)
	}
	c.JSON(http.StatusOK, app.H{
		"deviceTypes": catalog.DeviceTypes,
		"purposes":    menus,
	})
}

// renderLoanError ledger 錯誤 → HTTP 狀態
func (lc *LoanController) renderLoanError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	var ee *ledger.EligibilityError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, app.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ee):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": ee.Error()})
	case errors.Is(err, ledger.ErrAlreadyBorrowed):
		c.JSON(http.StatusConflict, app.H{"error": "該設備尚未歸還，不能重複借出"})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "查無此設備的借出紀錄"})
	case errors.Is(err, lock.ErrDeviceBusy):
		c.JSON(http.StatusConflict, app.H{"error": "該設備正在處理中，請稍後再試"})
	default:
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
	}
}

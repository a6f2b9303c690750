package app

import (
	"context"
	"errors"
	"time"

	"github.com/SiriusLupin/deive-borrow/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 簡化別名，便於 handlers 調用
type Ctx = gin.Context
type H = gin.H

// ErrNoCredential 未設定儲存層連線資訊
var ErrNoCredential = errors.New("DATABASE_URL not set")

// App 聚合各依賴。儲存層或 Redis 起不來時不結束程式，
// 改為記下錯誤進入降級模式，由 handlers 拒絕對應操作。
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Log    *zap.Logger
	Config Config

	storeErr error
}

func New(cfg Config, log *zap.Logger) *App {
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	a := &App{Router: r, Config: cfg, Log: log}

	// --- DB: Postgres ---
	if cfg.DatabaseURL == "" {
		a.storeErr = ErrNoCredential
		log.Warn("record store disabled: DATABASE_URL not set")
	} else if gdb, err := db.Connect(cfg.DatabaseURL); err != nil {
		a.storeErr = err
		log.Warn("record store unavailable", zap.Error(err))
	} else {
		a.DB = gdb
	}

	// --- Redis（設備鎖）---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, device locks disabled", zap.Error(err))
		_ = rdb.Close()
	} else {
		a.RDB = rdb
	}

	return a
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}

// CredentialPresent 是否設定了儲存層連線資訊
func (a *App) CredentialPresent() bool { return a.Config.DatabaseURL != "" }

// StoreReady 儲存層是否可用
func (a *App) StoreReady() bool { return a.DB != nil }

// StoreError 啟動時儲存層的錯誤；正常時為 nil
func (a *App) StoreError() error { return a.storeErr }

// StoreReachable 即時確認儲存層連線
func (a *App) StoreReachable(ctx context.Context) bool {
	if a.DB == nil {
		return false
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

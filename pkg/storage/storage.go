// Package storage 在 SQL 数据库中保存已完成跑图的历史
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/logging"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrClosed 对已关闭的 Manager 操作时返回
var ErrClosed = errors.New("storage: manager is closed")

// RunRecord 一次已完成的跑图
type RunRecord struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	LevelID   string    `gorm:"index;size:64"`
	Seed      uint64
	Score     int
	Armor     int
	Outcome   string `gorm:"size:16"`
	Elapsed   float64
	Officers  int

	// Collected 道具类型名到拾取次数的映射
	Collected datatypes.JSONMap
}

// Run RecordRun 的输入
type Run struct {
	LevelID   string
	Seed      uint64
	Score     int
	Armor     int
	Outcome   string
	Elapsed   float64
	Officers  int
	Collected map[string]int
}

// Manager 持有数据库连接
type Manager struct {
	DB         *gorm.DB
	SqlDB      *sql.DB
	IsLocal    bool
	SqlitePath string
	logger     zerolog.Logger
	closed     bool
}

// Open 按 cfg 连接。cfg.Enabled 时先尝试 Postgres;
// Postgres 失败或未启用时回退到 cfg.SQLitePath 的 SQLite 文件。
// 路径为空时打开内存数据库
func Open(cfg config.DBConfig) (*Manager, error) {
	m := &Manager{
		SqlitePath: cfg.SQLitePath,
		logger:     logging.For("Storage"),
	}

	if cfg.Enabled {
		db, err := m.openPostgres(cfg)
		if err == nil {
			m.DB = db
		} else {
			m.logger.Error().Err(err).Msg("failed to connect to Postgres, trying SQLite")
		}
	}
	if m.DB == nil {
		if err := m.useSqlite(); err != nil {
			return nil, err
		}
	}

	sqlDB, err := m.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	m.SqlDB = sqlDB

	if err := m.SqlDB.Ping(); err != nil {
		if m.IsLocal {
			return nil, fmt.Errorf("failed to ping SQLite DB: %w", err)
		}
		m.logger.Error().Err(err).Msg("failed to validate connection, trying SQLite")
		_ = m.SqlDB.Close()
		if err := m.useSqlite(); err != nil {
			return nil, err
		}
		if m.SqlDB, err = m.DB.DB(); err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
	}

	if m.IsLocal {
		// SQLite 只允许一个写入者
		m.SqlDB.SetMaxOpenConns(1)
	} else {
		m.SqlDB.SetMaxOpenConns(10)
	}

	if err := m.DB.AutoMigrate(&RunRecord{}); err != nil {
		_ = m.SqlDB.Close()
		return nil, fmt.Errorf("failed to migrate run history: %w", err)
	}
	m.logger.Info().Bool("local", m.IsLocal).Msg("run history ready")
	return m, nil
}

func (m *Manager) openPostgres(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	m.logger.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("connecting to Postgres")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func (m *Manager) useSqlite() error {
	path := m.SqlitePath
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to get local SQLite DB: %w", err)
	}
	m.DB = db
	m.IsLocal = true
	m.logger.Info().Str("path", path).Msg("using local SQLite DB")
	return nil
}

// RecordRun 保存一次完成的跑图并返回保存的行
func (m *Manager) RecordRun(r Run) (*RunRecord, error) {
	if m.closed {
		return nil, ErrClosed
	}
	collected := datatypes.JSONMap{}
	for k, v := range r.Collected {
		collected[k] = v
	}
	rec := &RunRecord{
		LevelID:   r.LevelID,
		Seed:      r.Seed,
		Score:     r.Score,
		Armor:     r.Armor,
		Outcome:   r.Outcome,
		Elapsed:   r.Elapsed,
		Officers:  r.Officers,
		Collected: collected,
	}
	if err := m.DB.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	m.logger.Debug().Uint("id", rec.ID).Str("level", r.LevelID).Int("score", r.Score).Msg("run recorded")
	return rec, nil
}

// TopRuns 按分数从高到低返回关卡最多 n 次跑图。
// 同分时较早的跑图在前。level 为空时选择所有关卡
func (m *Manager) TopRuns(levelID string, n int) ([]RunRecord, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}
	q := m.DB.Model(&RunRecord{})
	if levelID != "" {
		q = q.Where("level_id = ?", levelID)
	}
	var runs []RunRecord
	if err := q.Order("score DESC").Order("id ASC").Limit(n).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return runs, nil
}

// CountRuns 返回关卡已保存的跑图数量,
// levelID 为空时统计所有关卡
func (m *Manager) CountRuns(levelID string) (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	q := m.DB.Model(&RunRecord{})
	if levelID != "" {
		q = q.Where("level_id = ?", levelID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Close 释放连接, 可以重复调用
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.SqlDB == nil {
		return nil
	}
	return m.SqlDB.Close()
}

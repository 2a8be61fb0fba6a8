package game

import (
	"fmt"

	"github.com/decker502/courier/pkg/logging"
	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// LevelRecord 单个关卡所有跑图的持久化汇总
type LevelRecord struct {
	BestScore  int     `yaml:"bestScore"`
	Runs       int     `yaml:"runs"`
	Busts      int     `yaml:"busts"`
	Timeouts   int     `yaml:"timeouts"`
	LongestRun float64 `yaml:"longestRun"`
}

// RecordsManager 在 gdata 存储中保存每个关卡的最高分。
// gdata 管理器为 nil 时只保存在内存中
type RecordsManager struct {
	gdataManager *gdata.Manager
	records      map[string]*LevelRecord
	logger       zerolog.Logger
}

const (
	recordsObject   = "records"
	recordsProperty = "levels"
)

// NewRecordsManager 创建管理器并加载已保存的记录。
// 加载失败会记录日志并保留空记录
func NewRecordsManager(gdataManager *gdata.Manager) *RecordsManager {
	rm := &RecordsManager{
		gdataManager: gdataManager,
		records:      make(map[string]*LevelRecord),
		logger:       logging.For("RecordsManager"),
	}
	if err := rm.Load(); err != nil {
		rm.logger.Warn().Err(err).Msg("failed to load records, starting empty")
	}
	return rm
}

// Load 从存储读取记录
func (rm *RecordsManager) Load() error {
	rm.records = make(map[string]*LevelRecord)
	if rm.gdataManager == nil {
		return nil
	}
	if !rm.gdataManager.ObjectPropExists(recordsObject, recordsProperty) {
		return nil
	}
	data, err := rm.gdataManager.LoadObjectProp(recordsObject, recordsProperty)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	var loaded map[string]*LevelRecord
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal records: %w", err)
	}
	for id, r := range loaded {
		if r != nil {
			rm.records[id] = r
		}
	}
	return nil
}

// Save 将记录写入存储
func (rm *RecordsManager) Save() error {
	if rm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(rm.records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := rm.gdataManager.SaveObjectProp(recordsObject, recordsProperty, data); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// Record 添加一次完成的跑图, 返回是否刷新了最高分
func (rm *RecordsManager) Record(levelID string, score int, outcome Outcome, elapsed float64) bool {
	r, ok := rm.records[levelID]
	if !ok {
		r = &LevelRecord{}
		rm.records[levelID] = r
	}
	r.Runs++
	switch outcome {
	case OutcomeBusted:
		r.Busts++
	case OutcomeTimeout:
		r.Timeouts++
	}
	if elapsed > r.LongestRun {
		r.LongestRun = elapsed
	}
	newBest := score > r.BestScore
	if newBest {
		r.BestScore = score
		rm.logger.Info().Str("level", levelID).Int("score", score).Msg("new best score")
	}
	return newBest
}

// Get 返回关卡记录的副本
func (rm *RecordsManager) Get(levelID string) LevelRecord {
	if r, ok := rm.records[levelID]; ok {
		return *r
	}
	return LevelRecord{}
}

package main

import (
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/scenes"
	"github.com/decker502/courier/pkg/storage"
	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
)

// runRecorder 持久化已结束的跑图: 最高分写入 gdata,
// 数据库打开时完整记录写入跑图历史库
type runRecorder struct {
	records *game.RecordsManager
	store   *storage.Manager
	logger  zerolog.Logger
}

func newRunRecorder(appName string, store *storage.Manager) *runRecorder {
	logger := logging.For("Records")
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Warn().Err(err).Msg("save data unavailable, records kept in memory")
		gm = nil
	}
	return &runRecorder{
		records: game.NewRecordsManager(gm),
		store:   store,
		logger:  logger,
	}
}

func (r *runRecorder) logBest(levelID string) {
	rec := r.records.Get(levelID)
	r.logger.Info().Str("level", levelID).Int("best", rec.BestScore).Int("runs", rec.Runs).Msg("level record")
	if r.store == nil {
		return
	}
	if top, err := r.store.TopRuns(levelID, 1); err == nil && len(top) > 0 {
		r.logger.Info().Str("level", levelID).Int("score", top[0].Score).Time("at", top[0].CreatedAt).Msg("best stored run")
	}
}

// Record 作为场景的 OnSessionEnd 回调
func (r *runRecorder) Record(sum scenes.RunSummary) {
	r.records.Record(sum.LevelID, sum.Score, sum.Outcome, sum.Elapsed)
	if err := r.records.Save(); err != nil {
		r.logger.Error().Err(err).Msg("failed to save records")
	}
	if r.store == nil {
		return
	}
	if _, err := r.store.RecordRun(toStorageRun(sum)); err != nil {
		r.logger.Error().Err(err).Msg("failed to store run")
	}
}

func toStorageRun(sum scenes.RunSummary) storage.Run {
	collected := make(map[string]int, len(sum.Collected))
	for kind, n := range sum.Collected {
		collected[kind.String()] = n
	}
	return storage.Run{
		LevelID:   sum.LevelID,
		Seed:      sum.Seed,
		Score:     sum.Score,
		Armor:     sum.Armor,
		Outcome:   sum.Outcome.String(),
		Elapsed:   sum.Elapsed,
		Officers:  sum.Officers,
		Collected: collected,
	}
}

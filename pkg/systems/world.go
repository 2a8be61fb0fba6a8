// Package systems 包含每帧运行的玩法系统。每个系统都作用于
// 同一个 World 并提供 Update, 执行顺序由场景决定
package systems

import (
	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/utils"
)

// World 一帧内所有系统读写的状态
type World struct {
	EntityManager *ecs.EntityManager
	Session       *game.SessionState
	Tuning        *config.TuningConfig
	Classifier    *surface.Classifier
	Rand          *utils.Rand
	Metrics       *Metrics

	// LevelID 用于标记指标和记录
	LevelID string
	// Surfaces 在关卡加载时整体替换, 帧中途不会修改
	Surfaces *surface.Set

	Player ecs.EntityID
	Beacon ecs.EntityID
	Camera ecs.EntityID
}

// NewWorld 基于调参配置构建世界。分类器与所有放置随机
// 共用 rng, 同一种子可以复现整个会话
func NewWorld(em *ecs.EntityManager, tuning *config.TuningConfig, seed uint64) *World {
	if tuning == nil {
		tuning = config.DefaultTuning()
	}
	rng := utils.NewRand(seed)
	return &World{
		EntityManager: em,
		Session:       game.NewSessionState(tuning.Session, tuning.Powerups.SpawnInterval),
		Tuning:        tuning,
		Classifier:    surface.NewClassifier(tuning.Classifier, rng),
		Rand:          rng,
		Metrics:       NewMetrics(nil),
		Surfaces:      surface.NewSet(nil),
	}
}

// Now 用于给动画请求打时间戳的会话时钟
func (w *World) Now() float64 {
	return w.Session.Elapsed
}

// Position 返回带 transform 的实体位置
func (w *World) Position(id ecs.EntityID) (utils.Vec3, bool) {
	tr, ok := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
	if !ok {
		return utils.Vec3{}, false
	}
	return tr.Position, true
}

// PlayerPosition 玩家位置, 玩家创建前为原点
func (w *World) PlayerPosition() utils.Vec3 {
	p, _ := w.Position(w.Player)
	return p
}

// BeaconPosition 信标位置, 信标创建前为原点
func (w *World) BeaconPosition() utils.Vec3 {
	p, _ := w.Position(w.Beacon)
	return p
}

// Officers 按生成顺序返回所有警察
func (w *World) Officers() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.EnemyComponent, *components.TransformComponent](w.EntityManager)
}

// ClearEntities 删除所有实体, 用于关卡加载和重置
func (w *World) ClearEntities() {
	w.EntityManager.Clear()
	w.Player, w.Beacon, w.Camera = 0, 0, 0
}

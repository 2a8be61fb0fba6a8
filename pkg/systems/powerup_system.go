package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/types"
)

// PowerupSystem 按会话计时生成道具, 让道具旋转,
// 并在玩家经过时生效
type PowerupSystem struct {
	world     *World
	placement *PlacementSystem
	logger    zerolog.Logger
}

// NewPowerupSystem 创建道具系统
func NewPowerupSystem(w *World, placement *PlacementSystem) *PowerupSystem {
	return &PowerupSystem{
		world:     w,
		placement: placement,
		logger:    logging.For("PowerupSystem"),
	}
}

// Update 在 spawnDue 时生成随机道具, 然后旋转并检测拾取。
// 返回本帧拾取的类型。被拾取的道具失效,
// 并在帧末标记删除
func (s *PowerupSystem) Update(dt float64, spawnDue bool) []types.PowerupKind {
	w := s.world
	if !w.Session.GameActive {
		return nil
	}
	if spawnDue {
		s.placement.SpawnRandomPowerup()
	}

	player := w.PlayerPosition()
	radius := w.Tuning.Powerups.PickupRadius
	var collected []types.PowerupKind
	for _, id := range ecs.GetEntitiesWith2[*components.PowerupComponent, *components.TransformComponent](w.EntityManager) {
		p, _ := ecs.GetComponent[*components.PowerupComponent](w.EntityManager, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)

		if !p.Active {
			if !w.EntityManager.IsMarked(id) {
				w.EntityManager.DestroyEntity(id)
			}
			continue
		}
		if p.Kind != types.PowerupBike {
			p.Spin += w.Tuning.Powerups.SpinRate * dt
			tr.Heading = p.Spin
		}
		if tr.Position.Dist(player) >= radius {
			continue
		}

		w.Session.ApplyPowerup(p.Kind)
		p.Active = false
		w.EntityManager.DestroyEntity(id)
		w.Metrics.Pickup(p.Kind.String())
		s.logger.Debug().Stringer("kind", p.Kind).Int("armor", w.Session.Armor).Msg("powerup collected")
		collected = append(collected, p.Kind)
	}
	return collected
}

// Count 返回有效道具数量
func (s *PowerupSystem) Count() int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.PowerupComponent](s.world.EntityManager) {
		if p, _ := ecs.GetComponent[*components.PowerupComponent](s.world.EntityManager, id); p.Active {
			n++
		}
	}
	return n
}

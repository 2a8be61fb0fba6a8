package systems

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// PursuitSystem 运行每个警察的 PATROL/CHASE 状态机
type PursuitSystem struct {
	world  *World
	logger zerolog.Logger
}

// NewPursuitSystem 为 w 创建警察 AI
func NewPursuitSystem(w *World) *PursuitSystem {
	return &PursuitSystem{
		world:  w,
		logger: logging.For("PursuitSystem"),
	}
}

// Detect 检查位于 pos、朝向 heading 的警察能否察觉 target。
// 听觉半径内与朝向无关; 视觉半径内
// 目标必须位于视野内
func Detect(pos utils.Vec3, heading float64, target utils.Vec3, t config.PursuitTuning) bool {
	dist := pos.Dist(target)
	if dist < t.HearingRadius {
		return true
	}
	if dist >= t.VisionRadius {
		return false
	}
	angle := utils.HeadingVector(heading).AngleTo(target.Sub(pos))
	return angle*180/math.Pi < t.FOVDegrees/2
}

// Update 将每个警察推进 dt, 追踪帧开始时记录的玩家位置 player。
// 本次调用中有警察抓到玩家时返回 true。
// 会话结束后不做任何事
func (s *PursuitSystem) Update(dt float64, player utils.Vec3) bool {
	w := s.world
	if !w.Session.GameActive {
		return false
	}
	t := w.Tuning.Pursuit

	for _, id := range w.Officers() {
		tr, _ := ecs.GetComponent[*components.TransformComponent](w.EntityManager, id)
		pursuit, ok := ecs.GetComponent[*components.PursuitComponent](w.EntityManager, id)
		if !ok {
			continue
		}
		anim, _ := ecs.GetComponent[*components.AnimationCommandComponent](w.EntityManager, id)

		dist := tr.Position.Dist(player)
		if Detect(tr.Position, tr.Heading, player, t) {
			if pursuit.State != components.StateChase {
				s.logger.Debug().Uint64("officer", uint64(id)).Float64("dist", dist).Msg("player spotted")
			}
			pursuit.State = components.StateChase
		} else if pursuit.State == components.StateChase && dist > t.VisionRadius*t.LoseFactor {
			pursuit.State = components.StatePatrol
			pursuit.ClearTarget()
			s.logger.Debug().Uint64("officer", uint64(id)).Msg("lost the player")
		}

		caught := false
		switch pursuit.State {
		case components.StateChase:
			tr.Heading = headingToward(tr.Position, player, tr.Heading)
			tr.Position = advance(tr.Position, player, t.RunSpeed*dt)
			if dist < t.CatchRadius && w.Session.Bust() {
				caught = true
				w.Metrics.Bust(w.LevelID)
				s.logger.Info().Uint64("officer", uint64(id)).Int("score", w.Session.Score).Msg("busted")
				request(anim, types.AnimHook, false, w.Now())
			} else {
				request(anim, types.AnimChase, true, w.Now())
			}
		case components.StatePatrol:
			s.patrol(tr, pursuit, anim, dt)
		}

		s.followGround(tr, dt)
		if caught {
			return true
		}
	}
	return false
}

func (s *PursuitSystem) patrol(tr *components.TransformComponent, pursuit *components.PursuitComponent, anim *components.AnimationCommandComponent, dt float64) {
	w := s.world
	t := w.Tuning.Pursuit
	if !pursuit.HasTarget {
		target, ok := w.Classifier.FindGroundPoint(surface.Query{
			Center:    tr.Position,
			MinRadius: t.PatrolBand.Min,
			MaxRadius: t.PatrolBand.Max,
		}, w.Surfaces)
		if !ok {
			// 原地等待, 下一帧重试
			request(anim, types.AnimIdle, true, w.Now())
			return
		}
		pursuit.SetTarget(target)
	}

	if tr.Position.HorizontalDist(pursuit.PatrolTarget) < t.ArrivalRadius {
		pursuit.IdleTime += dt
		if pursuit.IdleTime > t.IdleThreshold {
			pursuit.ClearTarget()
		}
		request(anim, types.AnimIdle, true, w.Now())
		return
	}
	tr.Heading = headingToward(tr.Position, pursuit.PatrolTarget, tr.Heading)
	tr.Position = advance(tr.Position, pursuit.PatrolTarget, t.WalkSpeed*dt)
	request(anim, types.AnimPatrol, true, w.Now())
}

// followGround 将警察高度向其下方地面缓动
func (s *PursuitSystem) followGround(tr *components.TransformComponent, dt float64) {
	t := s.world.Tuning.Pursuit
	ground, ok := surface.GroundHeight(tr.Position.X, tr.Position.Z, t.GroundRayHeight, s.world.Surfaces.Colliders())
	if !ok {
		return
	}
	tr.Position.Y = utils.Lerp(tr.Position.Y, ground, math.Min(1, t.GroundLerpRate*dt))
}

// advance 在地面平面上将 pos 向 target 移动最多 step。
// 高度由地面跟随处理
func advance(pos, target utils.Vec3, step float64) utils.Vec3 {
	delta := target.Sub(pos).Flat()
	dist := delta.Len()
	if dist == 0 || step <= 0 {
		return pos
	}
	if step > dist {
		step = dist
	}
	return pos.Add(delta.Scale(step / dist))
}

func request(anim *components.AnimationCommandComponent, state types.AnimState, loop bool, now float64) {
	if anim == nil {
		return
	}
	anim.Request(state, loop, now)
}

package systems

import (
	"math"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// PlayerSystem 将输入转换为快递员移动: 相对相机的转向、
// 被碰撞体阻挡的前后行走、跳跃和重力
type PlayerSystem struct {
	world *World
}

// NewPlayerSystem 创建玩家控制器
func NewPlayerSystem(w *World) *PlayerSystem {
	return &PlayerSystem{world: w}
}

// SyncMount 将自行车增益同步到玩家, 用于切换模型
func (s *PlayerSystem) SyncMount() {
	if pc, ok := ecs.GetComponent[*components.PlayerComponent](s.world.EntityManager, s.world.Player); ok {
		pc.Mounted = s.world.Session.HasBike
	}
}

// Update 应用一帧输入。会话结束或地图打开时
// 不移动任何东西
func (s *PlayerSystem) Update(dt float64, in game.Input) {
	w := s.world
	if !w.Session.GameActive || w.Session.MapOpen {
		return
	}
	em := w.EntityManager
	tr, ok := ecs.GetComponent[*components.TransformComponent](em, w.Player)
	if !ok {
		return
	}
	pc, ok := ecs.GetComponent[*components.PlayerComponent](em, w.Player)
	if !ok {
		return
	}
	anim, _ := ecs.GetComponent[*components.AnimationCommandComponent](em, w.Player)
	t := w.Tuning.Player

	yaw := s.turn(dt, in)

	forward := 0.0
	if in.MoveY > t.MoveDeadzone {
		forward = 1
	} else if in.MoveY < -t.MoveDeadzone {
		forward = -1
	}

	if in.JumpPressed && pc.Grounded {
		pc.VerticalVelocity = t.JumpForce
		pc.Grounded = false
		if !pc.Mounted {
			request(anim, types.AnimJump, false, w.Now())
		}
	}

	pc.Moving = forward != 0
	if pc.Moving {
		speed := t.BaseSpeed * w.Session.SpeedMultiplier()
		dir := utils.HeadingVector(yaw).Scale(forward)
		from := tr.Position.Add(utils.V3(0, t.WallCheckHeight, 0))
		if _, blocked := surface.CastAcross(from, dir, t.WallCheckDistance, w.Surfaces.Colliders()); !blocked {
			tr.Position = tr.Position.Add(dir.Scale(speed * dt))
		}

		target := yaw
		if forward < 0 {
			target += math.Pi
		}
		pc.Facing += utils.AngleDiff(pc.Facing, target) * t.FacingLerp
		tr.Heading = pc.Facing
	}

	s.applyGravity(tr, pc, dt)

	if !pc.Mounted && pc.Grounded {
		if pc.Moving {
			request(anim, types.AnimRun, true, w.Now())
		} else {
			request(anim, types.AnimIdle, true, w.Now())
		}
	}
}

// turn 根据 X 轴更新相机偏航角并返回
func (s *PlayerSystem) turn(dt float64, in game.Input) float64 {
	w := s.world
	t := w.Tuning.Player
	cam, ok := ecs.GetComponent[*components.CameraComponent](w.EntityManager, w.Camera)
	if !ok {
		return 0
	}
	if math.Abs(in.MoveX) > t.MoveDeadzone {
		rate := t.TurnRate
		if in.JoystickTurn {
			rate *= t.JoystickTurnFactor
		}
		cam.Yaw -= in.MoveX * rate * dt
	}
	return cam.Yaw
}

func (s *PlayerSystem) applyGravity(tr *components.TransformComponent, pc *components.PlayerComponent, dt float64) {
	t := s.world.Tuning.Player
	pc.VerticalVelocity += t.Gravity * dt
	tr.Position.Y += pc.VerticalVelocity * dt

	ground, ok := surface.GroundHeight(tr.Position.X, tr.Position.Z, tr.Position.Y+t.GroundRayLift, s.world.Surfaces.Colliders())
	if !ok {
		pc.Grounded = false
		return
	}
	above := tr.Position.Y - ground
	switch {
	case pc.VerticalVelocity <= 0 && above < t.SnapDistance:
		tr.Position.Y = ground
		pc.VerticalVelocity = 0
		pc.Grounded = true
	case pc.Grounded && above < t.SettleDistance:
		tr.Position.Y = utils.Lerp(tr.Position.Y, ground, math.Min(1, t.SettleRate*dt))
		pc.VerticalVelocity = 0
	default:
		pc.Grounded = false
	}
}

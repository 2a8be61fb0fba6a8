package systems

import (
	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/utils"
)

// CameraSystem 将相机和雾效向跟随视角或俯视地图视角缓动。
// 会话结束后继续运行
type CameraSystem struct {
	world *World
}

// NewCameraSystem 创建相机系统
func NewCameraSystem(w *World) *CameraSystem {
	return &CameraSystem{world: w}
}

// Update 将相机推进一步, 插值系数按帧计算
func (s *CameraSystem) Update() {
	w := s.world
	cam, ok := ecs.GetComponent[*components.CameraComponent](w.EntityManager, w.Camera)
	if !ok {
		return
	}
	t := w.Tuning.Camera
	player := w.PlayerPosition()

	var pos, look utils.Vec3
	var fog config.Band
	cam.MapView = w.Session.MapOpen
	if cam.MapView {
		pos = player.Add(utils.V3(0, t.MapHeight, 0))
		look = player
		fog = t.MapFog
	} else {
		pos = player.Add(t.FollowOffset.RotateY(cam.Yaw))
		look = player.Add(utils.V3(0, t.LookLift, 0))
		fog = t.FollowFog
	}

	cam.Position = cam.Position.Lerp(pos, t.PositionLerp)
	cam.LookAt = cam.LookAt.Lerp(look, t.PositionLerp)
	cam.FogNear = utils.Lerp(cam.FogNear, fog.Min, t.FogLerp)
	cam.FogFar = utils.Lerp(cam.FogFar, fog.Max, t.FogLerp)
}

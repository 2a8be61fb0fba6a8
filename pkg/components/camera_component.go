package components

import "github.com/decker502/courier/pkg/utils"

// CameraComponent 交给渲染器的插值相机与雾效状态。
// Yaw 是由转向输入驱动的跟随角度
type CameraComponent struct {
	Position utils.Vec3
	LookAt   utils.Vec3
	Yaw      float64
	FogNear  float64
	FogFar   float64
	// MapView 在跟随相机与俯视地图之间切换
	MapView bool
}

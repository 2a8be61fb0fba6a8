package components

// PlayerComponent 标记快递员并保存其物理状态
type PlayerComponent struct {
	VerticalVelocity float64
	Grounded         bool
	// Facing 是模型朝向, 向移动方向缓动
	Facing float64
	// Mounted 同步 SessionState.HasBike, 用于切换模型
	Mounted bool
	// Moving 表示本帧施加了前进输入
	Moving bool
}

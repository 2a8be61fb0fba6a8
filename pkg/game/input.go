package game

// Input 一帧的玩家意图。输入来源(键盘、屏幕摇杆、脚本)
// 对核心逻辑没有区别
type Input struct {
	// MoveX 转动相机(-1 向左 .. 1 向右)
	MoveX float64
	// MoveY 前进(1)或后退(-1)
	MoveY float64

	// 边沿触发: 只在按键按下的那一帧为 true
	JumpPressed  bool
	PauseToggled bool
	MapToggled   bool
	TimerToggled bool

	// JoystickTurn 表示 MoveX 来自模拟摇杆
	JoystickTurn bool
}

// Clamped 返回两个轴都限制在 [-1, 1] 的副本
func (in Input) Clamped() Input {
	in.MoveX = clampAxis(in.MoveX)
	in.MoveY = clampAxis(in.MoveY)
	return in
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

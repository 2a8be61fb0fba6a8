package components

import "github.com/decker502/courier/pkg/types"

// PowerupComponent 可拾取道具。
// 失效的道具不能再被拾取, 并在帧末销毁
type PowerupComponent struct {
	Kind   types.PowerupKind
	Active bool
	// Spin 是展示用的旋转角度; 自行车不旋转
	Spin float64
	// Variant 在同类道具的不同模型之间选择
	Variant int
}

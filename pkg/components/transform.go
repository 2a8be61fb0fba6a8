// Package components 定义挂载到实体上的纯数据组件。
// 组件不包含行为, 由系统读写
package components

import "github.com/decker502/courier/pkg/utils"

// TransformComponent 实体的世界坐标与朝向。
// Heading 是以弧度表示的偏航角; 0 朝向 +Z
type TransformComponent struct {
	Position utils.Vec3
	Heading  float64
}

// Forward 返回实体在地面平面上朝向的单位向量
func (t *TransformComponent) Forward() utils.Vec3 {
	return utils.HeadingVector(t.Heading)
}

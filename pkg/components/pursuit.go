package components

import (
	"fmt"

	"github.com/decker502/courier/pkg/utils"
)

// PursuitState 警察的 AI 状态
type PursuitState int

const (
	StatePatrol PursuitState = iota
	StateChase
)

func (s PursuitState) String() string {
	switch s {
	case StatePatrol:
		return "PATROL"
	case StateChase:
		return "CHASE"
	}
	return fmt.Sprintf("PursuitState(%d)", int(s))
}

// PursuitComponent 每个警察的状态机数据。
// 只由追捕系统写入; 例外是放置新信标时,
// 放置服务可能替换 PatrolTarget
type PursuitComponent struct {
	State        PursuitState
	PatrolTarget utils.Vec3
	HasTarget    bool
	// IdleTime 警察在巡逻目标处等待时累加
	IdleTime float64
}

// ClearTarget 强制下一帧重新选择巡逻目标
func (p *PursuitComponent) ClearTarget() {
	p.HasTarget = false
	p.PatrolTarget = utils.Vec3{}
	p.IdleTime = 0
}

// SetTarget 设置巡逻目标并重置等待计时
func (p *PursuitComponent) SetTarget(target utils.Vec3) {
	p.PatrolTarget = target
	p.HasTarget = true
	p.IdleTime = 0
}

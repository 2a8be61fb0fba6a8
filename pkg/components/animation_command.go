package components

import "github.com/decker502/courier/pkg/types"

// AnimationCommandComponent 动画命令组件, 请求动画协作方播放指定状态
//
// 生命周期:
//  1. 玩法系统设置 State 并清除 Processed
//  2. AnimationSystem 将新请求转发给 Animator
//  3. AnimationSystem 将命令标记为 Processed
//
// 只有 State 变化时才会重新发送, 系统可以每帧写入相同状态
type AnimationCommandComponent struct {
	State types.AnimState

	// Loop 为 false 表示一次性动画(如 Jump 和 Hook)
	Loop bool

	// Processed 表示 Animator 已收到 State
	Processed bool

	// Timestamp 是 State 最近一次变化时的会话时钟(秒)
	Timestamp float64
}

// Request 仅在状态不同时更新命令
func (c *AnimationCommandComponent) Request(state types.AnimState, loop bool, now float64) {
	if c.State == state && c.Loop == loop {
		return
	}
	c.State = state
	c.Loop = loop
	c.Processed = false
	c.Timestamp = now
}

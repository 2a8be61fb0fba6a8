package systems

import (
	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/components"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/types"
)

// Animator 播放命名动画状态, 混合与片段查找由实现负责
type Animator interface {
	Play(id ecs.EntityID, state types.AnimState, loop bool)
}

// LogAnimator 只记录请求日志的 Animator, 无界面运行时使用
type LogAnimator struct {
	Logger zerolog.Logger
}

// NewLogAnimator 创建记录日志的动画器
func NewLogAnimator() *LogAnimator {
	return &LogAnimator{Logger: logging.For("Animator")}
}

func (a *LogAnimator) Play(id ecs.EntityID, state types.AnimState, loop bool) {
	a.Logger.Trace().Uint64("entity", uint64(id)).Str("state", string(state)).Bool("loop", loop).Msg("play")
}

// AnimationSystem 将新的动画命令转发给 Animator
type AnimationSystem struct {
	entityManager *ecs.EntityManager
	animator      Animator
}

// NewAnimationSystem 创建分发器, animator 为 nil 时丢弃请求
func NewAnimationSystem(em *ecs.EntityManager, animator Animator) *AnimationSystem {
	return &AnimationSystem{entityManager: em, animator: animator}
}

// SetAnimator 替换协作方, 例如渲染器接入时
func (s *AnimationSystem) SetAnimator(animator Animator) {
	s.animator = animator
}

// Update 发送所有未处理的命令并标记为已处理
func (s *AnimationSystem) Update() int {
	sent := 0
	for _, id := range ecs.GetEntitiesWith1[*components.AnimationCommandComponent](s.entityManager) {
		cmd, _ := ecs.GetComponent[*components.AnimationCommandComponent](s.entityManager, id)
		if cmd.Processed || cmd.State == "" {
			continue
		}
		if s.animator != nil {
			s.animator.Play(id, cmd.State, cmd.Loop)
		}
		cmd.Processed = true
		sent++
	}
	return sent
}

package types

// AnimState 交给动画协作方的命名动画请求。
// 核心只请求状态, 混合由宿主负责
type AnimState string

const (
	AnimIdle   AnimState = "Idle"
	AnimRun    AnimState = "Run"
	AnimJump   AnimState = "Jump"
	AnimPatrol AnimState = "Patrol"
	AnimChase  AnimState = "Chase"
	AnimHook   AnimState = "Hook"
)

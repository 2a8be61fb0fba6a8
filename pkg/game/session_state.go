// Package game 保存会话经济、每帧输入快照,
// 以及各系统共享的关卡资源加载屏障
package game

import (
	"fmt"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/types"
)

// Outcome 会话的结束方式
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeBusted
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "active"
	case OutcomeBusted:
		return "busted"
	case OutcomeTimeout:
		return "timeout"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// SessionState 一次跑图的全部经济状态。系统通过指针访问,
// 其他地方不保存玩法计数器
//
// 不变量: TimeLeft >= 0; GameActive == false 在 Reset 前为终止状态
type SessionState struct {
	Score      int
	Armor      int
	TimeLeft   float64
	HasBike    bool
	BikeTimer  float64
	DrinkTimer float64

	GameActive bool
	IsBusted   bool

	Paused       bool
	TimerRunning bool
	MapOpen      bool

	// Elapsed 自 Reset 起的模拟时间, 不含暂停
	Elapsed float64
	// SpawnTimer 距下一次周期性道具生成的计时
	SpawnTimer float64
	// Collected 按类型统计的拾取次数
	Collected map[types.PowerupKind]int

	tuning        config.SessionTuning
	spawnInterval float64
}

// NewSessionState 创建处于初始状态的会话
func NewSessionState(tuning config.SessionTuning, spawnInterval float64) *SessionState {
	s := &SessionState{tuning: tuning, spawnInterval: spawnInterval}
	s.Reset()
	return s
}

// Reset 恢复初始值, 这是离开终止状态的唯一途径
func (s *SessionState) Reset() {
	s.Score = 0
	s.Armor = 0
	s.TimeLeft = s.tuning.StartTime
	s.HasBike = false
	s.BikeTimer = 0
	s.DrinkTimer = 0
	s.GameActive = true
	s.IsBusted = false
	s.Paused = false
	s.TimerRunning = true
	s.MapOpen = false
	s.Elapsed = 0
	s.SpawnTimer = 0
	s.Collected = make(map[types.PowerupKind]int)
}

// Tuning 返回会话常量
func (s *SessionState) Tuning() config.SessionTuning {
	return s.tuning
}

// Tick 将计时器推进 dt, 返回本帧是否应周期性生成道具。
// 时间归零时会话结束且 IsBusted 为 false。
// 会话结束后 Tick 不做任何事
func (s *SessionState) Tick(dt float64) bool {
	if !s.GameActive || dt <= 0 {
		return false
	}
	s.Elapsed += dt

	if s.TimerRunning {
		s.TimeLeft -= dt
	}
	if s.DrinkTimer > 0 {
		s.DrinkTimer -= dt
		if s.DrinkTimer < 0 {
			s.DrinkTimer = 0
		}
	}
	if s.HasBike && s.tuning.BikeDuration > 0 {
		s.BikeTimer -= dt
		if s.BikeTimer <= 0 {
			s.BikeTimer = 0
			s.HasBike = false
		}
	}

	due := false
	s.SpawnTimer += dt
	if s.SpawnTimer > s.spawnInterval {
		s.SpawnTimer = 0
		due = true
	}

	if s.TimeLeft <= 0 {
		s.TimeLeft = 0
		s.GameActive = false
		s.IsBusted = false
		return false
	}
	return due
}

// Deliver 记录一次送达并延长时间
func (s *SessionState) Deliver() bool {
	if !s.GameActive {
		return false
	}
	s.Score++
	s.TimeLeft += s.tuning.TimeBonus
	return true
}

// ApplyPowerup 应用道具效果
func (s *SessionState) ApplyPowerup(kind types.PowerupKind) {
	if !s.GameActive {
		return
	}
	switch kind {
	case types.PowerupBike:
		s.HasBike = true
		s.BikeTimer = s.tuning.BikeDuration
	case types.PowerupDrink:
		s.DrinkTimer = s.tuning.DrinkDuration
	case types.PowerupArmorLight:
		s.Armor++
	case types.PowerupArmorHeavy:
		s.Armor += 2
	}
	s.Collected[kind]++
}

// Bust 以被捕结束会话。只有真正结束会话的那次调用
// 返回 true
func (s *SessionState) Bust() bool {
	if !s.GameActive {
		return false
	}
	s.GameActive = false
	s.IsBusted = true
	return true
}

// Outcome 返回会话结束方式, 进行中时为 OutcomeNone
func (s *SessionState) Outcome() Outcome {
	switch {
	case s.GameActive:
		return OutcomeNone
	case s.IsBusted:
		return OutcomeBusted
	default:
		return OutcomeTimeout
	}
}

// WantedLevel 由分数得出的通缉等级(未达到任何阈值时为 0)
func (s *SessionState) WantedLevel() int {
	level, _ := s.tuning.OfficerQuota(s.Score)
	return level
}

// EnemyQuota 当前分数要求的警察数量
func (s *SessionState) EnemyQuota() int {
	_, officers := s.tuning.OfficerQuota(s.Score)
	return officers
}

// SpeedMultiplier 合并自行车与饮料的加速效果
func (s *SessionState) SpeedMultiplier() float64 {
	m := 1.0
	if s.HasBike {
		m *= s.tuning.BikeMultiplier
	}
	if s.DrinkTimer > 0 {
		m *= s.tuning.DrinkMultiplier
	}
	return m
}

// Status 当前增益的 HUD 文本
func (s *SessionState) Status() string {
	switch {
	case s.HasBike && s.DrinkTimer > 0:
		return "STACKING IT"
	case s.HasBike:
		return "ON BIKE"
	case s.DrinkTimer > 0:
		return "SUGAR RUSH"
	}
	return "WALKING"
}

// Title 游戏结束横幅, 会话进行中为空
func (s *SessionState) Title() string {
	switch s.Outcome() {
	case OutcomeBusted:
		return "BUSTED"
	case OutcomeTimeout:
		return "SHIFT ENDED"
	}
	return ""
}

// ApplyToggles 处理一帧内的调试/界面按键
func (s *SessionState) ApplyToggles(in Input) {
	if in.PauseToggled {
		s.Paused = !s.Paused
	}
	if in.MapToggled {
		s.MapOpen = !s.MapOpen
	}
	if in.TimerToggled {
		s.TimerRunning = !s.TimerRunning
	}
}

package app

import (
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keySource 应用读取的键盘接口。ebitenKeys 是真实实现,
// 测试中用 map 替代
type keySource interface {
	Pressed(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) Pressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (ebitenKeys) JustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// command 不属于 game.Input 的宿主级操作
type command int

const (
	cmdNone command = iota
	cmdNextLevel
	cmdReset
	cmdSpawnOfficer
	cmdSpawnPowerup
	cmdFullscreen
)

// debugPowerupKeys 数字键到调试道具的映射
var debugPowerupKeys = []struct {
	key  ebiten.Key
	kind types.PowerupKind
}{
	{ebiten.KeyDigit1, types.PowerupBike},
	{ebiten.KeyDigit2, types.PowerupDrink},
	{ebiten.KeyDigit3, types.PowerupArmorLight},
	{ebiten.KeyDigit4, types.PowerupArmorHeavy},
}

func axis(keys keySource, neg, pos []ebiten.Key) float64 {
	v := 0.0
	for _, k := range pos {
		if keys.Pressed(k) {
			v++
			break
		}
	}
	for _, k := range neg {
		if keys.Pressed(k) {
			v--
			break
		}
	}
	return v
}

// readInput 将一帧按键状态转换为玩家意图。A/D 转向
// (向右为正), W/S 行走
func readInput(keys keySource) game.Input {
	return game.Input{
		MoveX:        axis(keys, []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}),
		MoveY:        axis(keys, []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}),
		JumpPressed:  keys.JustPressed(ebiten.KeySpace),
		PauseToggled: keys.JustPressed(ebiten.KeyP) || keys.JustPressed(ebiten.KeyEscape),
		MapToggled:   keys.JustPressed(ebiten.KeyM),
		TimerToggled: keys.JustPressed(ebiten.KeyT),
	}
}

// readCommand 每帧最多返回一个宿主命令。
// cmdSpawnPowerup 同时返回道具类型
func readCommand(keys keySource) (command, types.PowerupKind) {
	switch {
	case keys.JustPressed(ebiten.KeyF11):
		return cmdFullscreen, 0
	case keys.JustPressed(ebiten.KeyN):
		return cmdNextLevel, 0
	case keys.JustPressed(ebiten.KeyR):
		return cmdReset, 0
	case keys.JustPressed(ebiten.KeyO):
		return cmdSpawnOfficer, 0
	}
	for _, dk := range debugPowerupKeys {
		if keys.JustPressed(dk.key) {
			return cmdSpawnPowerup, dk.kind
		}
	}
	return cmdNone, 0
}

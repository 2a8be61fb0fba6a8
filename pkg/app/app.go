// Package app 在 ebiten 窗口中托管游戏核心: 读取键盘,
// 每个 tick 推进一次场景, 并绘制俯视调试视图
package app

import (
	"context"
	"fmt"
	"image/color"
	"io/fs"
	"math"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/scenes"
	"github.com/decker502/courier/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"
)

// Config 应用启动配置
type Config struct {
	App    *config.AppConfig
	Tuning *config.TuningConfig
	// Data 数据目录, 包含 levels/ 和 templates.yaml
	Data    fs.FS
	Metrics *systems.Metrics
	// OnSessionEnd 接收每次结束的跑图
	OnSessionEnd func(scenes.RunSummary)
}

// App 围绕 GameScene 实现 ebiten.Game
type App struct {
	cfg     Config
	scene   *scenes.GameScene
	keys    keySource
	colors  palette
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	lastEnd string
}

// NewApp 创建场景并开始加载配置的起始关卡
func NewApp(cfg Config) (*App, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if cfg.Data == nil {
		return nil, fmt.Errorf("data filesystem is required")
	}

	scene := scenes.NewGameScene(cfg.Data, scenes.Options{
		Tuning:   cfg.Tuning,
		Seed:     cfg.App.Seed,
		Animator: systems.NewLogAnimator(),
		Metrics:  cfg.Metrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		scene:  scene,
		keys:   ebitenKeys{},
		colors: palette{},
		logger: logging.For("App"),
		ctx:    ctx,
		cancel: cancel,
	}
	scene.OnSessionEnd = a.sessionEnded

	a.logger.Info().Str("level", cfg.App.StartLevel).Msg("starting level")
	scene.LoadLevel(ctx, cfg.App.StartLevel)
	return a, nil
}

func (a *App) sessionEnded(sum scenes.RunSummary) {
	a.lastEnd = fmt.Sprintf("%s with %d deliveries", sum.Outcome, sum.Score)
	if a.cfg.OnSessionEnd != nil {
		a.cfg.OnSessionEnd(sum)
	}
}

// Scene 返回托管的场景
func (a *App) Scene() *scenes.GameScene {
	return a.scene
}

// Close 取消待处理的关卡加载
func (a *App) Close() {
	a.cancel()
}

// Update 运行一个 tick
func (a *App) Update() error {
	cmd, kind := readCommand(a.keys)
	switch cmd {
	case cmdFullscreen:
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case cmdNextLevel:
		next := a.scene.SwitchLevel(a.ctx, a.cfg.App.Levels)
		a.lastEnd = ""
		a.logger.Info().Str("level", next).Msg("switching level")
	case cmdReset:
		if err := a.scene.Reset(); err != nil {
			a.logger.Warn().Err(err).Msg("reset ignored")
		} else {
			a.lastEnd = ""
		}
	case cmdSpawnOfficer:
		a.scene.DebugSpawnOfficer()
	case cmdSpawnPowerup:
		a.scene.DebugSpawnPowerup(kind)
	}

	dt := 1.0 / float64(ebiten.TPS())
	a.scene.Update(dt, readInput(a.keys))
	return nil
}

// Draw 绘制俯视视图和 HUD
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff})

	snap := a.scene.Snapshot()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	v := newView(snap.Player.Position, a.cfg.App.Window.Scale, snap.MapOpen, w, h)

	if assets := a.scene.Assets(); assets != nil && !snap.Loading {
		a.drawSurfaces(screen, v, assets.Surfaces)
		a.drawEntities(screen, v, snap, assets)
	}

	for i, line := range hudLines(snap, a.lastEnd) {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*16)
	}
	if snap.Title != "" {
		ebitenutil.DebugPrintAt(screen, snap.Title+"  (R to restart)", w/2-60, h/2-40)
	}
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.App.Window.Width, a.cfg.App.Window.Height
}

// hudLines 一帧的文字叠加层
func hudLines(snap scenes.Snapshot, lastEnd string) []string {
	if snap.Loading {
		return []string{fmt.Sprintf("Loading %s...", snap.LevelID)}
	}
	if snap.LoadError != "" {
		return []string{"Level failed to load:", snap.LoadError, "N: next level"}
	}
	lines := []string{
		fmt.Sprintf("%s  score %d  armor %d", snap.LevelID, snap.Score, snap.Armor),
		fmt.Sprintf("time %.0f  wanted %d  officers %d", math.Ceil(snap.TimeLeft), snap.WantedLevel, len(snap.Officers)),
		snap.Status,
	}
	if snap.DrinkTimer > 0 {
		lines = append(lines, fmt.Sprintf("drink %.1fs", snap.DrinkTimer))
	}
	if snap.Paused {
		lines = append(lines, "PAUSED")
	}
	if lastEnd != "" {
		lines = append(lines, "last run: "+lastEnd)
	}
	return append(lines, "WASD move  SPACE jump  M map  P pause  N level  R reset")
}

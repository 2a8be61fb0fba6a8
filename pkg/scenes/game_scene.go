// Package scenes 运行一个快递关卡: 帧循环、关卡加载
// 以及会话重置
package scenes

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/ecs"
	"github.com/decker502/courier/pkg/entities"
	"github.com/decker502/courier/pkg/game"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/surface"
	"github.com/decker502/courier/pkg/systems"
	"github.com/decker502/courier/pkg/types"
	"github.com/decker502/courier/pkg/utils"
)

// ErrNoLevel 需要已安装关卡的操作在没有关卡时返回
var ErrNoLevel = errors.New("no level loaded")

// RunSummary 描述一次已结束的会话
type RunSummary struct {
	LevelID   string
	Seed      uint64
	Score     int
	Armor     int
	Outcome   game.Outcome
	Elapsed   float64
	Officers  int
	Collected map[types.PowerupKind]int
}

// Options 配置 GameScene
type Options struct {
	Tuning   *config.TuningConfig
	Seed     uint64
	Animator systems.Animator
	Metrics  *systems.Metrics
}

type loadResult struct {
	levelID string
	assets  *game.LevelAssets
	err     error
}

// GameScene 持有一个关卡的世界, 每帧按固定顺序
// 驱动各个系统
type GameScene struct {
	fsys   fs.FS
	seed   uint64
	world  *systems.World
	logger zerolog.Logger

	placement *systems.PlacementSystem
	pursuit   *systems.PursuitSystem
	powerups  *systems.PowerupSystem
	player    *systems.PlayerSystem
	delivery  *systems.DeliverySystem
	camera    *systems.CameraSystem
	animation *systems.AnimationSystem

	assets  *game.LevelAssets
	loading bool
	loadErr error
	pending chan loadResult
	cancel  context.CancelFunc

	endReported bool
	// 距上次重试警察配额的秒数
	enemyRetry float64

	// OnSessionEnd 每个会话被捕或超时时调用一次
	OnSessionEnd func(RunSummary)
}

// NewGameScene 创建从 fsys 读取关卡的空场景
func NewGameScene(fsys fs.FS, opts Options) *GameScene {
	tuning := opts.Tuning
	if tuning == nil {
		tuning = config.DefaultTuning()
	}
	w := systems.NewWorld(ecs.NewEntityManager(), tuning, opts.Seed)
	if opts.Metrics != nil {
		w.Metrics = opts.Metrics
	}
	animator := opts.Animator
	if animator == nil {
		animator = systems.NewLogAnimator()
	}

	placement := systems.NewPlacementSystem(w)
	return &GameScene{
		fsys:      fsys,
		seed:      opts.Seed,
		world:     w,
		logger:    logging.For("GameScene"),
		placement: placement,
		pursuit:   systems.NewPursuitSystem(w),
		powerups:  systems.NewPowerupSystem(w, placement),
		player:    systems.NewPlayerSystem(w),
		delivery:  systems.NewDeliverySystem(w, placement),
		camera:    systems.NewCameraSystem(w),
		animation: systems.NewAnimationSystem(w.EntityManager, animator),
	}
}

// World 暴露共享状态, 主要供工具和测试使用
func (s *GameScene) World() *systems.World { return s.world }

// Session 当前的会话经济
func (s *GameScene) Session() *game.SessionState { return s.world.Session }

// Placement 暴露放置服务, 供调试命令使用
func (s *GameScene) Placement() *systems.PlacementSystem { return s.placement }

// Assets 返回已安装的关卡资源, 加载中为 nil
func (s *GameScene) Assets() *game.LevelAssets { return s.assets }

// LevelID 已安装(或正在加载)的关卡
func (s *GameScene) LevelID() string { return s.world.LevelID }

// Loading 是否有正在进行的关卡加载
func (s *GameScene) Loading() bool { return s.loading }

// LoadError 上次加载失败的错误, 显示给玩家
func (s *GameScene) LoadError() error { return s.loadErr }

// SetAnimator 接入动画协作方
func (s *GameScene) SetAnimator(a systems.Animator) { s.animation.SetAnimator(a) }

// LoadLevel 清除所有实体并在后台开始加载 levelID。
// 加载完成前玩法被挂起; 正在进行的上一次加载
// 会被取消并丢弃其结果
func (s *GameScene) LoadLevel(ctx context.Context, levelID string) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.world.ClearEntities()
	s.world.Surfaces = surface.NewSet(nil)
	s.world.LevelID = levelID
	s.assets = nil
	s.loading = true
	s.loadErr = nil

	ch := make(chan loadResult, 1)
	s.pending = ch
	s.logger.Info().Str("level", levelID).Msg("loading level")
	go func() {
		assets, err := game.LoadLevelAssets(ctx, s.fsys, levelID)
		ch <- loadResult{levelID: levelID, assets: assets, err: err}
	}()
}

// WaitLoaded 阻塞直到待处理的加载完成并安装
func (s *GameScene) WaitLoaded(ctx context.Context) error {
	if !s.loading {
		return s.loadErr
	}
	select {
	case res := <-s.pending:
		s.finishLoad(res)
		return s.loadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SwitchLevel 加载 levels 中当前关卡的下一个, 循环回绕。
// 返回选中的关卡
func (s *GameScene) SwitchLevel(ctx context.Context, levels []string) string {
	if len(levels) == 0 {
		return s.world.LevelID
	}
	next := levels[0]
	for i, id := range levels {
		if id == s.world.LevelID {
			next = levels[(i+1)%len(levels)]
			break
		}
	}
	s.LoadLevel(ctx, next)
	return next
}

func (s *GameScene) pollLoad() {
	select {
	case res := <-s.pending:
		s.finishLoad(res)
	default:
	}
}

func (s *GameScene) finishLoad(res loadResult) {
	s.loading = false
	s.pending = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if res.err != nil {
		s.loadErr = res.err
		s.logger.Error().Err(res.err).Str("level", res.levelID).Msg("level load failed")
		return
	}
	s.assets = res.assets
	s.world.Surfaces = res.assets.Surfaces
	p := s.world.Tuning.Placement
	s.startSession(p.PlayerSearchRadius, p.PlayerSpawnLift, p.InitialPowerups)
	s.logger.Info().
		Str("level", res.levelID).
		Int("surfaces", res.assets.Surfaces.Len()).
		Int("warnings", len(res.assets.Warnings)).
		Msg("level ready")
}

// Reset 在当前关卡重新开始会话。这是离开被捕或超时
// 会话的唯一途径
func (s *GameScene) Reset() error {
	if s.loading || s.assets == nil {
		return ErrNoLevel
	}
	s.logger.Info().Str("level", s.world.LevelID).Msg("resetting session")
	s.world.ClearEntities()
	p := s.world.Tuning.Placement
	s.startSession(p.ResetSearchRadius, p.ResetSpawnLift, p.ResetPowerups)
	return nil
}

func (s *GameScene) startSession(searchRadius, lift float64, powerups int) {
	w := s.world
	w.Session.Reset()
	s.endReported = false
	s.enemyRetry = 0

	pos := s.placement.PlacePlayer(utils.Vec3{}, searchRadius, lift)
	cam := w.Tuning.Camera
	id, err := entities.NewCameraEntity(w.EntityManager, pos.Add(cam.FollowOffset), cam.FollowFog.Min, cam.FollowFog.Max)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create camera")
	}
	w.Camera = id

	s.placement.RelocateBeacon()
	s.placement.SpawnPowerupBurst(powerups)
}

// Update 运行一帧。rawDelta 限制在配置的最大值内,
// 卡顿的帧不会让任何东西瞬移
func (s *GameScene) Update(rawDelta float64, in game.Input) {
	if s.loading {
		s.pollLoad()
		return
	}
	if s.assets == nil {
		return
	}
	dt := utils.Clamp(rawDelta, 0, s.world.Tuning.MaxFrameDelta)
	in = in.Clamped()
	w := s.world

	w.Session.ApplyToggles(in)
	if w.Session.Paused {
		return
	}

	if w.Session.GameActive {
		// 在任何东西移动之前读取
		playerStart := w.PlayerPosition()

		spawnDue := w.Session.Tick(dt)
		s.powerups.Update(dt, spawnDue)
		s.player.SyncMount()
		s.pursuit.Update(dt, playerStart)
		s.player.Update(dt, in)
		s.delivery.Update()
		s.retryEnemyQuota(dt)
		s.placement.RespawnFallen()
		w.EntityManager.RemoveMarkedEntities()
	}

	s.camera.Update()
	s.animation.Update()
	s.reportEnd()
}

// retryEnemyQuota 补足上次移动信标时生成失败的警察。
// 只有数量不足时才累计时间
func (s *GameScene) retryEnemyQuota(dt float64) {
	w := s.world
	quota := w.Session.EnemyQuota()
	if len(w.Officers()) >= quota {
		s.enemyRetry = 0
		return
	}
	s.enemyRetry += dt
	if s.enemyRetry < w.Tuning.Placement.EnemyRetryInterval {
		return
	}
	s.enemyRetry = 0
	if n := s.placement.SyncEnemyQuota(quota); n > 0 {
		s.placement.RefreshPatrolTargets()
		s.logger.Info().Int("spawned", n).Int("quota", quota).Msg("officer quota caught up")
	}
}

func (s *GameScene) reportEnd() {
	w := s.world
	if s.endReported || w.Session.GameActive {
		return
	}
	s.endReported = true
	summary := s.Summary()
	if summary.Outcome == game.OutcomeTimeout {
		w.Metrics.Timeout(w.LevelID)
	}
	s.logger.Info().
		Str("level", summary.LevelID).
		Stringer("outcome", summary.Outcome).
		Int("score", summary.Score).
		Float64("elapsed", summary.Elapsed).
		Msg("session ended")
	if s.OnSessionEnd != nil {
		s.OnSessionEnd(summary)
	}
}

// Summary 描述当前会话
func (s *GameScene) Summary() RunSummary {
	w := s.world
	collected := make(map[types.PowerupKind]int, len(w.Session.Collected))
	for k, v := range w.Session.Collected {
		collected[k] = v
	}
	return RunSummary{
		LevelID:   w.LevelID,
		Seed:      s.seed,
		Score:     w.Session.Score,
		Armor:     w.Session.Armor,
		Outcome:   w.Session.Outcome(),
		Elapsed:   w.Session.Elapsed,
		Officers:  len(w.Officers()),
		Collected: collected,
	}
}

// DebugSpawnPowerup 在玩家旁边放下道具
func (s *GameScene) DebugSpawnPowerup(kind types.PowerupKind) bool {
	if s.assets == nil {
		return false
	}
	_, ok := s.placement.DebugSpawnPowerup(kind)
	return ok
}

// DebugSpawnOfficer 无视配额在信标附近增加一名警察
func (s *GameScene) DebugSpawnOfficer() bool {
	if s.assets == nil {
		return false
	}
	_, ok := s.placement.PlaceEnemy()
	return ok
}

package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/decker502/courier/pkg/config"
	"github.com/decker502/courier/pkg/logging"
	"github.com/decker502/courier/pkg/surface"
	"golang.org/x/sync/errgroup"
)

// TemplateManifestPath 模板清单在数据文件系统中的路径
const TemplateManifestPath = "templates.yaml"

// LevelPath 返回关卡清单在数据文件系统中的路径
func LevelPath(levelID string) string {
	return path.Join("levels", levelID+".yaml")
}

// LevelLoadError 导致本次加载失败的致命错误。
// 在其他加载成功之前关卡不可玩
type LevelLoadError struct {
	LevelID string
	Err     error
}

func (e *LevelLoadError) Error() string {
	return fmt.Sprintf("could not load level %s: %v", e.LevelID, e.Err)
}

func (e *LevelLoadError) Unwrap() error {
	return e.Err
}

// Template 解析后的视觉模板。模型无法加载时
// 设置 Fallback, 由 Primitive 代替
type Template struct {
	Name      string
	Model     string
	Scale     float64
	Primitive config.Primitive
	Clips     map[string]string
	Fallback  bool
}

// LevelAssets 放置逻辑运行前关卡需要的全部资源
type LevelAssets struct {
	Level     *config.LevelConfig
	Surfaces  *surface.Set
	Templates map[string]*Template
	// Warnings 已恢复的 AssetMissing 问题列表
	Warnings []string
	LoadTime time.Duration
}

var defaultPrimitive = config.Primitive{Shape: "box", Size: [3]float64{1, 1, 1}, Color: "#FF00FF"}

// Template 返回指定模板, 不存在时返回通用的替代几何体
func (a *LevelAssets) Template(name string) *Template {
	if t, ok := a.Templates[name]; ok {
		return t
	}
	return &Template{Name: name, Scale: 1, Primitive: defaultPrimitive, Fallback: true}
}

// LoadLevelAssets 并发加载关卡几何与所有模板,
// 全部完成后返回。关卡清单错误或必需模板缺失会导致加载失败;
// 可选模板缺失时使用其替代几何体
func LoadLevelAssets(ctx context.Context, fsys fs.FS, levelID string) (*LevelAssets, error) {
	logger := logging.For("LevelAssets")
	start := time.Now()

	manifest, err := config.LoadTemplateManifest(fsys, TemplateManifestPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &LevelLoadError{LevelID: levelID, Err: err}
		}
		logger.Warn().Err(err).Msg("no template manifest, every template will use a fallback primitive")
		manifest = &config.TemplateManifest{}
	}

	var (
		level    *config.LevelConfig
		surfaces *surface.Set
		results  = make([]*Template, len(manifest.Templates))
		warnings = make([]string, len(manifest.Templates))
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg, err := config.LoadLevelConfig(fsys, LevelPath(levelID))
		if err != nil {
			return err
		}
		built, err := cfg.BuildSurfaces()
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		level = cfg
		surfaces = surface.NewSet(built)
		return nil
	})

	for i, entry := range manifest.Templates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tc, err := config.LoadTemplateConfig(fsys, entry.Path)
			if err != nil {
				if !entry.Optional {
					return fmt.Errorf("required template %s: %w", entry.Name, err)
				}
				warnings[i] = fmt.Sprintf("template %s missing, using %s primitive: %v", entry.Name, entry.Fallback.Shape, err)
				prim := entry.Fallback
				if prim.Shape == "" {
					prim = defaultPrimitive
				}
				results[i] = &Template{Name: entry.Name, Scale: 1, Primitive: prim, Fallback: true}
				return nil
			}
			prim := tc.Primitive
			if prim.Shape == "" {
				prim = entry.Fallback
			}
			results[i] = &Template{
				Name:      entry.Name,
				Model:     tc.Model,
				Scale:     tc.Scale,
				Primitive: prim,
				Clips:     tc.Clips,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &LevelLoadError{LevelID: levelID, Err: err}
	}

	assets := &LevelAssets{
		Level:     level,
		Surfaces:  surfaces,
		Templates: make(map[string]*Template, len(results)),
		LoadTime:  time.Since(start),
	}
	for i, t := range results {
		assets.Templates[t.Name] = t
		if warnings[i] != "" {
			assets.Warnings = append(assets.Warnings, warnings[i])
			logger.Warn().Str("level", levelID).Msg(warnings[i])
		}
	}

	logger.Info().
		Str("level", levelID).
		Int("surfaces", surfaces.Len()).
		Int("roads", len(surfaces.Road)).
		Int("templates", len(assets.Templates)).
		Dur("took", assets.LoadTime).
		Msg("level assets ready")
	return assets, nil
}

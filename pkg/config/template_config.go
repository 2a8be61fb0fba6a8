package config

import (
	"fmt"
	"image/color"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Primitive 模型不可用时绘制的替代几何体
type Primitive struct {
	Shape string     `yaml:"shape"` // box、cylinder、torus、sphere
	Size  [3]float64 `yaml:"size,flow"`
	Color string     `yaml:"color"` // #RRGGBB
}

// TemplateEntry 模板清单中的一项
type TemplateEntry struct {
	Name     string    `yaml:"name"`
	Path     string    `yaml:"path"`
	Optional bool      `yaml:"optional"`
	Fallback Primitive `yaml:"fallback"`
}

// TemplateManifest 列出关卡需要的视觉模板
//
// 文件: data/templates.yaml
type TemplateManifest struct {
	Templates []TemplateEntry `yaml:"templates"`
}

// TemplateConfig 单个模板文件的内容
type TemplateConfig struct {
	Model     string    `yaml:"model"`
	Scale     float64   `yaml:"scale"`
	Primitive Primitive `yaml:"primitive"`
	// Clips 将动画状态映射到模型内的动画片段名
	Clips map[string]string `yaml:"clips"`
}

// LoadTemplateManifest 读取模板列表
func LoadTemplateManifest(fsys fs.FS, path string) (*TemplateManifest, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest %s: %w", path, err)
	}
	var m TemplateManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse template manifest %s: %w", path, err)
	}
	seen := make(map[string]bool)
	for i, t := range m.Templates {
		if t.Name == "" || t.Path == "" {
			return nil, fmt.Errorf("template %d: name and path are required", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("template %q listed twice", t.Name)
		}
		seen[t.Name] = true
	}
	return &m, nil
}

// LoadTemplateConfig 读取单个模板文件
func LoadTemplateConfig(fsys fs.FS, path string) (*TemplateConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	var t TemplateConfig
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if t.Model == "" && t.Primitive.Shape == "" {
		return nil, fmt.Errorf("template %s: needs a model or a primitive", path)
	}
	if t.Scale == 0 {
		t.Scale = 1
	}
	return &t, nil
}

// ParseHexColor 解析 "#RRGGBB" (# 可省略)
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

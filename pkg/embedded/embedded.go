// Package embedded 让其他包访问编译进二进制的数据文件。
//
// //go:embed 只能访问声明包目录下的文件, 因此 embed.FS
// 定义在项目根目录(embed.go), 启动时通过 Init 传入
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DataRoot 所有嵌入路径的起始目录
const DataRoot = "data"

// ErrNotInitialized 在调用 Init 之前返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	dataFS      fs.FS
	initialized bool
)

// Init 安装数据文件系统。必须在加载任何关卡或
// 调参文件之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// InitFromDir 使用磁盘目录代替编译进来的文件。
// dir 必须包含 data/ 子目录
func InitFromDir(dir string) error {
	info, err := os.Stat(filepath.Join(dir, DataRoot))
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Join(dir, DataRoot))
	}
	Init(os.DirFS(dir))
	return nil
}

// IsInitialized 检查是否已调用 Init
func IsInitialized() bool {
	return initialized
}

func clean(path string) (string, error) {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if path != DataRoot && !strings.HasPrefix(path, DataRoot+"/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with '%s/')", path, DataRoot)
	}
	return path, nil
}

// ReadFile 读取文件, 路径必须以 "data/" 开头
func ReadFile(path string) ([]byte, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	p, err := clean(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	if !initialized {
		return false
	}
	p, err := clean(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// Glob 匹配文件, 模式必须以 "data/" 开头
func Glob(pattern string) ([]string, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	p, err := clean(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, p)
}

// Data 将 data 目录作为独立文件系统返回,
// 调用方使用 "levels/shoreditch.yaml" 这样的路径
func Data() (fs.FS, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	return fs.Sub(dataFS, DataRoot)
}

// LevelIDs 列出 data/levels 下的关卡清单(已排序)
func LevelIDs() ([]string, error) {
	matches, err := Glob(DataRoot + "/levels/*.yaml")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".yaml"))
	}
	return ids, nil
}

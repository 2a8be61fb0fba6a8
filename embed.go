package main

import "embed"

// //go:embed 只能访问本目录下的文件, 因此数据目录在这里声明,
// 启动时交给 pkg/embedded
//
//go:embed data
var dataFS embed.FS

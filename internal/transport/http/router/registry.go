package router

import (
	"sort"

	"todo-api/internal/transport/http/ez"
)

// Module 一个业务模块把自己的动作挂到公共/鉴权分组上
type Module interface{ Mount(ez.Routes) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// MountAll 按优先级挂载模块；同优先级保持传入顺序
func MountAll(r ez.Routes, mods ...Module) {
	mods = append([]Module(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(r)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}

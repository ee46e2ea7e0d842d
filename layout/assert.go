//go:build !layoutdebug

package layout

// assert 在发布构建中不做任何事，调用方负责给出兜底结果。
func assert(bool, string) {}

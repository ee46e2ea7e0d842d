//go:build layoutdebug

package layout

// assert 在 layoutdebug 构建中遇到不变式被破坏时直接 panic。
func assert(cond bool, msg string) {
	if !cond {
		panic("layout: " + msg)
	}
}

package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// rawUnitsFor 记录作者书写的字号与行高单位。
func rawUnitsFor(size Length, lh LineHeightSpec) *RawUnits {
	raw := &RawUnits{
		FontSize: &RawLengthJSON{Value: size.Value, Unit: UnitToString(size.Unit)},
	}
	switch lh.Kind {
	case LineHeightFactor:
		raw.LineHeight = &RawLineHeightJSON{Kind: "factor", Factor: lh.Factor}
	case LineHeightAbsolute:
		raw.LineHeight = &RawLineHeightJSON{Kind: "absolute", Value: lh.Len.Value, Unit: UnitToString(lh.Len.Unit)}
	}
	return raw
}

package listview

import (
	"slices"
	"strings"
)

// OptionalString 空字符串表示"不限制"，返回 nil
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// OptionalInt 等于 unset 时表示"不限制"，返回 nil
func OptionalInt(v, unset int) *int {
	if v == unset {
		return nil
	}
	return &v
}

// FetchLimit 查询时多取一条，用于判断结果是否超出上限
func FetchLimit(searchLimit int) int {
	if searchLimit <= 0 {
		return 0
	}
	return searchLimit + 1
}

// IDSet 去重、去零并升序排列，空集合返回 nil
func IDSet(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

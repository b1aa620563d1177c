/**
 * 列表视图:结果后处理
 * @author: sun977
 * @date: 2025.12.02
 * @description: 对查询结果做截断、子过滤、稳定排序和分页
 *   1. 结果多于上限(查询时取 limit+1)时截断并标记 HasMore
 *   2. 子过滤器计数基于截断后的完整结果，而不是当前页
 *   3. 排序键相同的记录按ID升序，保证翻页结果稳定
 */
package listview

import (
	"cmp"
	"slices"
)

// Entity 列表实体，必须有稳定的唯一ID
type Entity interface {
	EntityID() uint64
}

// Comparator 比较函数，返回负数/0/正数
type Comparator[T any] func(a, b T) int

// SubfilterSpec 子过滤器定义
// Values 返回实体在该属性上的取值(多值属性可返回多个)
type SubfilterSpec[T any] struct {
	Name   string
	Values func(T) []string
}

// Options 后处理参数
type Options[T Entity] struct {
	Limit      int           // 搜索上限(不含多取的一条)
	Page       int           // 请求页码
	PageSize   int           // 每页行数
	Compare    Comparator[T] // 排序比较函数，为空时只按ID排序
	SortOrder  string        // ASC / DESC
	Subfilters []SubfilterSpec[T]
	Selected   map[string][]string // 已选中的子过滤值
}

// Pagination 分页信息
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	HasMore     bool `json:"has_more"` // 结果超出搜索上限，Total 只是上限
	Limit       int  `json:"limit"`
}

// SubfilterValue 子过滤器某个取值的计数
type SubfilterValue struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// Result 后处理结果
type Result[T Entity] struct {
	Items      []T                         // 当前页
	Visible    []T                         // 通过子过滤器的全部记录(已排序)
	Pagination Pagination                  // 分页信息
	Subfilters map[string][]SubfilterValue // 子过滤器计数
	Applied    map[string][]string         // 实际生效的子过滤选择
}

// Process 执行后处理，不修改入参切片
func Process[T Entity](items []T, opts Options[T]) Result[T] {
	hasMore := opts.Limit > 0 && len(items) > opts.Limit
	capped := slices.Clone(items)
	if hasMore {
		capped = capped[:opts.Limit]
	}

	visible, counts, applied := applySubfilters(capped, opts.Subfilters, opts.Selected)

	SortStable(visible, opts.Compare, opts.SortOrder)

	pagination := Paginate(len(visible), opts.Page, opts.PageSize)
	pagination.HasMore = hasMore
	pagination.Limit = opts.Limit

	start, end := PageWindow(pagination)
	page := make([]T, 0, end-start)
	page = append(page, visible[start:end]...)

	return Result[T]{
		Items:      page,
		Visible:    visible,
		Pagination: pagination,
		Subfilters: counts,
		Applied:    applied,
	}
}

// SortStable 稳定排序，比较结果相同的按ID升序(与排序方向无关)
func SortStable[T Entity](items []T, compare Comparator[T], order string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if compare != nil {
			c := compare(a, b)
			if order == SortOrderDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.EntityID(), b.EntityID())
	})
}

// Paginate 计算分页信息，页码超出范围时落到最近的有效页
func Paginate(total, page, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = total
		if pageSize == 0 {
			pageSize = 1
		}
	}
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		page = 1
	}
	return Pagination{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// PageWindow 当前页在完整列表中的下标区间 [start, end)
func PageWindow(p Pagination) (int, int) {
	start := (p.Page - 1) * p.PageSize
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// applySubfilters 计算可见记录和子过滤计数
// 记录可见当且仅当通过所有已选子过滤器；某属性的计数只统计通过其他子过滤器的记录
// 选择导致没有可见记录时，丢弃全部选择
func applySubfilters[T Entity](items []T, specs []SubfilterSpec[T], selected map[string][]string) ([]T, map[string][]SubfilterValue, map[string][]string) {
	if len(specs) == 0 {
		return items, nil, nil
	}

	active := map[string]map[string]bool{}
	for _, spec := range specs {
		if values := selected[spec.Name]; len(values) > 0 {
			set := make(map[string]bool, len(values))
			for _, v := range values {
				set[v] = true
			}
			active[spec.Name] = set
		}
	}

	// passes[i][j]: 第 i 条记录是否通过第 j 个子过滤器
	evaluate := func() ([][]bool, []T) {
		passes := make([][]bool, len(items))
		visible := make([]T, 0, len(items))
		for i, item := range items {
			row := make([]bool, len(specs))
			all := true
			for j, spec := range specs {
				row[j] = matchesSubfilter(spec.Values(item), active[spec.Name])
				all = all && row[j]
			}
			passes[i] = row
			if all {
				visible = append(visible, item)
			}
		}
		return passes, visible
	}

	passes, visible := evaluate()
	if len(visible) == 0 && len(active) > 0 {
		active = map[string]map[string]bool{}
		passes, visible = evaluate()
	}

	counts := make(map[string][]SubfilterValue, len(specs))
	for j, spec := range specs {
		tally := map[string]int{}
		for i, item := range items {
			if !passesOthers(passes[i], j) {
				continue
			}
			seen := map[string]bool{}
			for _, v := range spec.Values(item) {
				if !seen[v] {
					seen[v] = true
					tally[v]++
				}
			}
		}
		values := make([]SubfilterValue, 0, len(tally))
		for v, c := range tally {
			values = append(values, SubfilterValue{Value: v, Count: c, Selected: active[spec.Name][v]})
		}
		slices.SortFunc(values, func(a, b SubfilterValue) int { return cmp.Compare(a.Value, b.Value) })
		counts[spec.Name] = values
	}

	var applied map[string][]string
	for name, set := range active {
		if applied == nil {
			applied = map[string][]string{}
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		slices.Sort(values)
		applied[name] = values
	}

	return visible, counts, applied
}

func matchesSubfilter(values []string, selected map[string]bool) bool {
	if len(selected) == 0 {
		return true
	}
	for _, v := range values {
		if selected[v] {
			return true
		}
	}
	return false
}

func passesOthers(row []bool, skip int) bool {
	for j, ok := range row {
		if j != skip && !ok {
			return false
		}
	}
	return true
}

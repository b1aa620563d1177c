/**
 * 列表视图:输入规范化
 * @author: sun977
 * @date: 2025.12.02
 * @description: 合并请求参数、已保存的偏好和默认值，得到完整的过滤条件
 *   优先级: 请求参数 > 已保存偏好 > 默认值
 *   filter_set: 合并后写回存储; filter_rst: 删除存储并返回默认值; 其他请求不写存储
 * @func:
 *   - DetectState 根据请求参数判断请求状态
 *   - Normalizer.Normalize 规范化
 */
package listview

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
)

// State 请求状态，每个请求只确定一次
type State int

const (
	StateNormalView  State = iota // 普通浏览
	StateFilterSet                // 应用过滤条件
	StateFilterReset              // 重置过滤条件
)

// String 状态名
func (s State) String() string {
	switch s {
	case StateFilterSet:
		return "filter_set"
	case StateFilterReset:
		return "filter_reset"
	default:
		return "normal_view"
	}
}

// 排序方向
const (
	SortOrderAsc  = "ASC"
	SortOrderDesc = "DESC"
)

// DetectState 根据 filter_set / filter_rst 参数判断请求状态，filter_set 优先
func DetectState(p Params) State {
	switch {
	case p.Has("filter_set"):
		return StateFilterSet
	case p.Has("filter_rst"):
		return StateFilterReset
	default:
		return StateNormalView
	}
}

// ListQuery 所有列表视图共用的排序/分页参数
type ListQuery struct {
	Sort      string `form:"sort" json:"sort" binding:"omitempty,max=64"`
	SortOrder string `form:"sortorder" json:"sortorder" binding:"omitempty,oneof=ASC DESC"`
	Page      int    `form:"page" json:"page" binding:"omitempty,min=1"`
}

// View 列表视图定义
type View[F any] struct {
	ID           string              // 视图标识，偏好存储键的一部分
	Defaults     func() F            // 默认过滤条件
	Bind         func(f *F, p Params) // 将请求中出现的参数覆盖到过滤条件
	SortFields   []string            // 允许的排序字段，第一个为默认
	DefaultOrder string              // 默认排序方向
	Subfilters   []string            // 子过滤器属性名
}

// Preferences 视图偏好: 过滤条件 + 排序 + 页码 + 子过滤器选择
type Preferences[F any] struct {
	Filter     F                   `json:"filter"`
	Sort       string              `json:"sort"`
	SortOrder  string              `json:"sortorder"`
	Page       int                 `json:"page"`
	Subfilters map[string][]string `json:"subfilters,omitempty"`
}

// Normalizer 输入规范化器
type Normalizer[F any] struct {
	view  View[F]
	store ProfileStore
}

// NewNormalizer 创建输入规范化器
func NewNormalizer[F any](view View[F], store ProfileStore) *Normalizer[F] {
	if view.DefaultOrder == "" {
		view.DefaultOrder = SortOrderAsc
	}
	return &Normalizer[F]{view: view, store: store}
}

// View 返回视图定义
func (n *Normalizer[F]) View() View[F] {
	return n.view
}

// Defaults 默认偏好
func (n *Normalizer[F]) Defaults() Preferences[F] {
	prefs := Preferences[F]{
		SortOrder: n.view.DefaultOrder,
		Page:      1,
	}
	if n.view.Defaults != nil {
		prefs.Filter = n.view.Defaults()
	}
	if len(n.view.SortFields) > 0 {
		prefs.Sort = n.view.SortFields[0]
	}
	return prefs
}

// Validate 校验排序/分页参数，失败时返回 *system.ValidationError
func (n *Normalizer[F]) Validate(q ListQuery) error {
	if q.Sort != "" && !slices.Contains(n.view.SortFields, q.Sort) {
		return system.NewFieldValidationError("sort", fmt.Sprintf("不支持的排序字段 %q", q.Sort))
	}
	if q.SortOrder != "" && q.SortOrder != SortOrderAsc && q.SortOrder != SortOrderDesc {
		return system.NewFieldValidationError("sortorder", fmt.Sprintf("不支持的排序方向 %q", q.SortOrder))
	}
	if q.Page < 0 {
		return system.NewFieldValidationError("page", "页码必须大于等于1")
	}
	return nil
}

// Normalize 规范化请求
// 校验失败时不访问存储；读取存储失败时退回默认值，写入/删除失败时返回错误
func (n *Normalizer[F]) Normalize(ctx context.Context, userID uint64, p Params, q ListQuery) (*Preferences[F], State, error) {
	state := DetectState(p)
	if err := n.Validate(q); err != nil {
		return nil, state, err
	}

	key := ProfileKey{UserID: userID, ViewID: n.view.ID}

	if state == StateFilterReset {
		if err := n.store.Delete(ctx, key); err != nil {
			return nil, state, fmt.Errorf("删除视图偏好失败: %w", err)
		}
		prefs := n.Defaults()
		n.applySort(&prefs, q)
		return &prefs, state, nil
	}

	prefs := n.load(ctx, key)

	if n.view.Bind != nil {
		n.view.Bind(&prefs.Filter, p)
	}
	n.applySort(&prefs, q)
	if q.Page > 0 {
		prefs.Page = q.Page
	}
	n.applySubfilters(&prefs, p, state)

	if state == StateFilterSet {
		prefs.Page = 1
		data, err := json.Marshal(prefs)
		if err != nil {
			return nil, state, fmt.Errorf("序列化视图偏好失败: %w", err)
		}
		if err := n.store.Put(ctx, key, data); err != nil {
			return nil, state, fmt.Errorf("保存视图偏好失败: %w", err)
		}
	}

	return &prefs, state, nil
}

// load 读取已保存偏好，覆盖在默认值之上；缺失的键保留默认值
func (n *Normalizer[F]) load(ctx context.Context, key ProfileKey) Preferences[F] {
	prefs := n.Defaults()

	data, err := n.store.Get(ctx, key)
	if err != nil {
		logger.LogBusinessError(err, "", uint(key.UserID), "", "listview.load", "STORE", map[string]interface{}{
			"operation": "load_profile",
			"view_id":   key.ViewID,
		})
		return prefs
	}
	if len(data) == 0 {
		return prefs
	}

	saved := n.Defaults()
	if err := json.Unmarshal(data, &saved); err != nil {
		logger.LogBusinessError(err, "", uint(key.UserID), "", "listview.load", "STORE", map[string]interface{}{
			"operation": "decode_profile",
			"view_id":   key.ViewID,
		})
		return prefs
	}

	// 排序字段可能来自旧版本的允许列表
	if !slices.Contains(n.view.SortFields, saved.Sort) {
		saved.Sort = prefs.Sort
	}
	if saved.SortOrder != SortOrderAsc && saved.SortOrder != SortOrderDesc {
		saved.SortOrder = prefs.SortOrder
	}
	if saved.Page < 1 {
		saved.Page = 1
	}
	return saved
}

func (n *Normalizer[F]) applySort(prefs *Preferences[F], q ListQuery) {
	if q.Sort != "" {
		prefs.Sort = q.Sort
	}
	if q.SortOrder != "" {
		prefs.SortOrder = q.SortOrder
	}
}

// applySubfilters 子过滤器选择: filter_set 时完全以请求为准，否则请求中出现的覆盖已保存的
func (n *Normalizer[F]) applySubfilters(prefs *Preferences[F], p Params, state State) {
	if state == StateFilterSet {
		prefs.Subfilters = nil
	}
	for _, name := range n.view.Subfilters {
		key := "subfilter_" + name
		if !p.Has(key) {
			continue
		}
		var values []string
		p.Strings(key, &values)
		if prefs.Subfilters == nil {
			prefs.Subfilters = map[string][]string{}
		}
		if len(values) == 0 {
			delete(prefs.Subfilters, name)
			continue
		}
		prefs.Subfilters[name] = values
	}
	if len(prefs.Subfilters) == 0 {
		prefs.Subfilters = nil
	}
}

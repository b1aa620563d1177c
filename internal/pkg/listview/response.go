package listview

// Lookups 辅助查找表: 名称 -> (ID -> 显示名)，如主机组名、模板名、代理名
type Lookups map[string]map[uint64]string

// ListResponse 列表响应
// Filter 始终是规范化后的过滤条件，便于前端回填表单
type ListResponse[F any, T Entity] struct {
	State      string                      `json:"state"`
	Filter     F                           `json:"filter"`
	Sort       string                      `json:"sort"`
	SortOrder  string                      `json:"sortorder"`
	Pagination Pagination                  `json:"pagination"`
	Data       []T                         `json:"data"`
	Subfilters map[string][]SubfilterValue `json:"subfilters,omitempty"`
	Lookups    Lookups                     `json:"lookups,omitempty"`
}

// Assemble 组装列表响应，无副作用
func Assemble[F any, T Entity](prefs *Preferences[F], state State, result Result[T], lookups Lookups) *ListResponse[F, T] {
	data := result.Items
	if data == nil {
		data = []T{}
	}
	if len(lookups) == 0 {
		lookups = nil
	}
	return &ListResponse[F, T]{
		State:      state.String(),
		Filter:     prefs.Filter,
		Sort:       prefs.Sort,
		SortOrder:  prefs.SortOrder,
		Pagination: result.Pagination,
		Data:       data,
		Subfilters: result.Subfilters,
		Lookups:    lookups,
	}
}

// Add 添加一条查找记录
func (l Lookups) Add(table string, id uint64, name string) {
	if id == 0 {
		return
	}
	if l[table] == nil {
		l[table] = map[uint64]string{}
	}
	l[table][id] = name
}

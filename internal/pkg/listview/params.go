package listview

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params 请求参数(query + form)
// 各 Bind 方法只在参数出现时修改目标值，未出现的参数保持回退值不变
type Params url.Values

// ParamsFromRequest 从HTTP请求提取参数
func ParamsFromRequest(r *http.Request) Params {
	if r.Form == nil {
		_ = r.ParseForm()
	}
	return Params(r.Form)
}

// Has 参数是否出现(支持 key 与 key[] 两种写法)
func (p Params) Has(key string) bool {
	if _, ok := p[key]; ok {
		return true
	}
	_, ok := p[key+"[]"]
	return ok
}

func (p Params) values(key string) []string {
	if v, ok := p[key+"[]"]; ok {
		return v
	}
	return p[key]
}

func (p Params) first(key string) (string, bool) {
	v := p.values(key)
	if len(v) == 0 {
		return "", p.Has(key)
	}
	return strings.TrimSpace(v[0]), true
}

// String 字符串参数，出现即覆盖(包括空串，表示清空条件)
func (p Params) String(key string, dst *string) {
	if v, ok := p.first(key); ok {
		*dst = v
	}
}

// Int 整数参数，格式错误时保持原值
func (p Params) Int(key string, dst *int) {
	if v, ok := p.first(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Int64 64位整数参数，格式错误时保持原值
func (p Params) Int64(key string, dst *int64) {
	if v, ok := p.first(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// Bool 布尔参数，"1"/"true"/"on" 为真
func (p Params) Bool(key string, dst *bool) {
	if v, ok := p.first(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "on", "yes":
			*dst = true
		case "0", "false", "off", "no", "":
			*dst = false
		}
	}
}

// IDs ID集合参数，忽略无法解析的值，结果去重排序
func (p Params) IDs(key string, dst *[]uint64) {
	if !p.Has(key) {
		return
	}
	ids := make([]uint64, 0, len(p.values(key)))
	for _, raw := range p.values(key) {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	*dst = IDSet(ids)
}

// Strings 字符串集合参数，丢弃空值
func (p Params) Strings(key string, dst *[]string) {
	if !p.Has(key) {
		return
	}
	out := make([]string, 0, len(p.values(key)))
	for _, v := range p.values(key) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*dst = out
}

// TagFilter 标签过滤条件
type TagFilter struct {
	Tag      string `json:"tag"`
	Value    string `json:"value"`
	Operator int    `json:"operator"`
}

// 标签过滤运算符
const (
	TagOperatorLike      = 0 // 包含
	TagOperatorEqual     = 1 // 等于
	TagOperatorNotLike   = 2 // 不包含
	TagOperatorNotEqual  = 3 // 不等于
	TagOperatorExists    = 4 // 存在
	TagOperatorNotExists = 5 // 不存在
)

// 标签条件组合方式
const (
	TagEvalAndOr = 0 // 同名标签之间 OR，不同标签之间 AND
	TagEvalOr    = 2 // 任意一个满足
)

// Tags 解析 key[0][tag]=..&key[0][value]=..&key[0][operator]=.. 形式的标签条件
// tag 与 value 都为空的行被丢弃
func (p Params) Tags(key string, dst *[]TagFilter) {
	prefix := key + "["
	rows := map[int]*TagFilter{}
	present := false
	for k, v := range p {
		if !strings.HasPrefix(k, prefix) || len(v) == 0 {
			continue
		}
		present = true
		rest := k[len(prefix):]
		end := strings.Index(rest, "]")
		if end < 0 {
			continue
		}
		idx, err := strconv.Atoi(rest[:end])
		if err != nil {
			continue
		}
		field := strings.Trim(rest[end+1:], "[]")
		row, ok := rows[idx]
		if !ok {
			row = &TagFilter{}
			rows[idx] = row
		}
		switch field {
		case "tag":
			row.Tag = strings.TrimSpace(v[0])
		case "value":
			row.Value = strings.TrimSpace(v[0])
		case "operator":
			if op, err := strconv.Atoi(v[0]); err == nil && op >= TagOperatorLike && op <= TagOperatorNotExists {
				row.Operator = op
			}
		}
	}
	if !present && !p.Has(key) {
		return
	}

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	tags := make([]TagFilter, 0, len(rows))
	for _, idx := range indexes {
		if row := rows[idx]; row.Tag != "" || row.Value != "" {
			tags = append(tags, *row)
		}
	}
	*dst = tags
}

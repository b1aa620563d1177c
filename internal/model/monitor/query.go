/**
 * 模型:仓库查询参数
 * @author: sun977
 * @date: 2025.12.04
 * @description: 由规范化后的过滤条件构造仓库层查询参数
 *   - 空字符串条件为 nil(不限制)，而不是匹配空串
 *   - 多值条件为去重后的ID集合，空集合为 nil
 *   - Limit 总是 search_limit+1，用于判断结果是否超出上限
 *   - 排序字段和方向原样传递
 */
package monitor

import (
	"neomonitor/internal/pkg/listview"
)

// HostQuery 主机查询参数
type HostQuery struct {
	SearchName  *string
	SearchIP    *string
	SearchDNS   *string
	SearchPort  *string
	Status      *HostStatus
	GroupIDs    []uint64
	TemplateIDs []uint64
	MonitoredBy int
	ProxyIDs    []uint64
	EvalType    int
	Tags        []listview.TagFilter
	HostIDs     []uint64
	SortField   string
	SortOrder   string
	Limit       int
}

// BuildHostQuery 构造主机查询参数
func BuildHostQuery(prefs *listview.Preferences[HostFilter], searchLimit int) HostQuery {
	f := prefs.Filter
	q := HostQuery{
		SearchName:  listview.OptionalString(f.Host),
		SearchIP:    listview.OptionalString(f.IP),
		SearchDNS:   listview.OptionalString(f.DNS),
		SearchPort:  listview.OptionalString(f.Port),
		GroupIDs:    listview.IDSet(f.GroupIDs),
		TemplateIDs: listview.IDSet(f.TemplateIDs),
		MonitoredBy: f.MonitoredBy,
		EvalType:    f.EvalType,
		Tags:        nonEmptyTags(f.Tags),
		SortField:   prefs.Sort,
		SortOrder:   prefs.SortOrder,
		Limit:       listview.FetchLimit(searchLimit),
	}
	if status := listview.OptionalInt(f.Status, FilterAny); status != nil {
		s := HostStatus(*status)
		q.Status = &s
	}
	// 代理列表只在按代理监控时生效
	if f.MonitoredBy == MonitoredByProxy {
		q.ProxyIDs = listview.IDSet(f.ProxyIDs)
	}
	return q
}

// BuildTopHostsQuery Top Hosts 组件的主机查询参数，只包含已监控主机，不限制条数
func BuildTopHostsQuery(req *TopHostsRequest) HostQuery {
	status := HostStatusMonitored
	return HostQuery{
		Status:   &status,
		GroupIDs: listview.IDSet(req.GroupIDs),
		HostIDs:  listview.IDSet(req.HostIDs),
		EvalType: req.EvalType,
		Tags:     nonEmptyTags(req.HostTags),
	}
}

// TemplateQuery 模板查询参数
type TemplateQuery struct {
	SearchName          *string
	SearchVendorName    *string
	SearchVendorVersion *string
	GroupIDs            []uint64
	ParentTemplateIDs   []uint64
	EvalType            int
	Tags                []listview.TagFilter
	TemplateIDs         []uint64
	SortField           string
	SortOrder           string
	Limit               int
}

// BuildTemplateQuery 构造模板查询参数
func BuildTemplateQuery(prefs *listview.Preferences[TemplateFilter], searchLimit int) TemplateQuery {
	f := prefs.Filter
	return TemplateQuery{
		SearchName:          listview.OptionalString(f.Name),
		SearchVendorName:    listview.OptionalString(f.VendorName),
		SearchVendorVersion: listview.OptionalString(f.VendorVersion),
		GroupIDs:            listview.IDSet(f.GroupIDs),
		ParentTemplateIDs:   listview.IDSet(f.TemplateIDs),
		EvalType:            f.EvalType,
		Tags:                nonEmptyTags(f.Tags),
		SortField:           prefs.Sort,
		SortOrder:           prefs.SortOrder,
		Limit:               listview.FetchLimit(searchLimit),
	}
}

// ProxyQuery 代理查询参数
type ProxyQuery struct {
	SearchName    *string
	OperatingMode *ProxyOperatingMode
	Compatibility *ProxyCompatibility
	ProxyIDs      []uint64
	SortField     string
	SortOrder     string
	Limit         int
}

// BuildProxyQuery 构造代理查询参数
func BuildProxyQuery(prefs *listview.Preferences[ProxyFilter], searchLimit int) ProxyQuery {
	f := prefs.Filter
	q := ProxyQuery{
		SearchName: listview.OptionalString(f.Name),
		SortField:  prefs.Sort,
		SortOrder:  prefs.SortOrder,
		Limit:      listview.FetchLimit(searchLimit),
	}
	if mode := listview.OptionalInt(f.OperatingMode, FilterAny); mode != nil {
		m := ProxyOperatingMode(*mode)
		q.OperatingMode = &m
	}
	if version := listview.OptionalInt(f.Version, FilterAny); version != nil {
		v := ProxyCompatibility(*version)
		q.Compatibility = &v
	}
	return q
}

// TriggerQuery 触发器查询参数
type TriggerQuery struct {
	GroupIDs         []uint64
	HostIDs          []uint64
	TemplateIDs      []uint64 // 父触发器所属模板
	ParentTriggerIDs []uint64
	TriggerIDs       []uint64
	InheritedOnly    bool // 只包含从模板继承的触发器
	MonitoredOnly    bool // 只包含已监控主机上的启用触发器
	SortField        string
	SortOrder        string
	Limit            int
}

// BuildTriggerQuery 构造可用性报表的触发器查询参数
// 按主机模式使用主机组/主机条件，按模板模式使用模板组/模板/父触发器条件
func BuildTriggerQuery(prefs *listview.Preferences[AvailabilityFilter], templateIDs []uint64, searchLimit int) TriggerQuery {
	f := prefs.Filter
	q := TriggerQuery{
		MonitoredOnly: true,
		SortField:     prefs.Sort,
		SortOrder:     prefs.SortOrder,
		Limit:         listview.FetchLimit(searchLimit),
	}
	if f.Mode == AvailabilityModeTriggerTemplate {
		q.InheritedOnly = true
		q.TemplateIDs = listview.IDSet(templateIDs)
		if f.TriggerID != 0 {
			q.ParentTriggerIDs = []uint64{f.TriggerID}
		}
		return q
	}
	q.GroupIDs = listview.IDSet(f.GroupIDs)
	q.HostIDs = listview.IDSet(f.HostIDs)
	return q
}

// GraphQuery 图形查询参数
type GraphQuery struct {
	SearchName *string
	GroupIDs   []uint64
	HostIDs    []uint64
	GraphIDs   []uint64
	SortField  string
	SortOrder  string
	Limit      int
}

// BuildGraphQuery 构造图形查询参数
func BuildGraphQuery(prefs *listview.Preferences[GraphFilter], searchLimit int) GraphQuery {
	f := prefs.Filter
	return GraphQuery{
		SearchName: listview.OptionalString(f.Name),
		GroupIDs:   listview.IDSet(f.GroupIDs),
		HostIDs:    listview.IDSet(f.HostIDs),
		SortField:  prefs.Sort,
		SortOrder:  prefs.SortOrder,
		Limit:      listview.FetchLimit(searchLimit),
	}
}

func nonEmptyTags(tags []listview.TagFilter) []listview.TagFilter {
	if len(tags) == 0 {
		return nil
	}
	out := make([]listview.TagFilter, 0, len(tags))
	for _, t := range tags {
		if t.Tag != "" || t.Value != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

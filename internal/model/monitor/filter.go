/**
 * 模型:列表视图过滤条件
 * @author: sun977
 * @date: 2025.12.04
 * @description: 每个列表视图一个过滤条件结构体，作为视图偏好的一部分按 JSON 持久化
 *   Bind 只覆盖请求中出现的参数，未出现的保持已保存值或默认值
 */
package monitor

import (
	"neomonitor/internal/pkg/listview"
)

// HostFilter 主机列表过滤条件
type HostFilter struct {
	Host        string               `json:"host"`
	IP          string               `json:"ip"`
	DNS         string               `json:"dns"`
	Port        string               `json:"port"`
	Status      int                  `json:"status"`       // -1 不限
	GroupIDs    []uint64             `json:"groupids"`     // 主机组
	TemplateIDs []uint64             `json:"templateids"`  // 链接的模板
	MonitoredBy int                  `json:"monitored_by"` // 0 不限, 1 服务端, 2 代理
	ProxyIDs    []uint64             `json:"proxyids"`
	EvalType    int                  `json:"evaltype"`
	Tags        []listview.TagFilter `json:"tags"`
}

// DefaultHostFilter 主机列表默认过滤条件
func DefaultHostFilter() HostFilter {
	return HostFilter{Status: FilterAny, MonitoredBy: MonitoredByAny, EvalType: listview.TagEvalAndOr}
}

// Bind 覆盖请求中出现的过滤参数
func (f *HostFilter) Bind(p listview.Params) {
	p.String("filter_host", &f.Host)
	p.String("filter_ip", &f.IP)
	p.String("filter_dns", &f.DNS)
	p.String("filter_port", &f.Port)
	bindEnum(p, "filter_status", &f.Status, FilterAny, int(HostStatusMonitored), int(HostStatusNotMonitored))
	p.IDs("filter_groupids", &f.GroupIDs)
	p.IDs("filter_templateids", &f.TemplateIDs)
	bindEnum(p, "filter_monitored_by", &f.MonitoredBy, MonitoredByAny, MonitoredByServer, MonitoredByProxy)
	p.IDs("filter_proxyids", &f.ProxyIDs)
	bindEnum(p, "filter_evaltype", &f.EvalType, listview.TagEvalAndOr, listview.TagEvalOr)
	p.Tags("filter_tags", &f.Tags)
}

// TemplateFilter 模板列表过滤条件
type TemplateFilter struct {
	Name          string               `json:"name"`
	GroupIDs      []uint64             `json:"groupids"`
	VendorName    string               `json:"vendor_name"`
	VendorVersion string               `json:"vendor_version"`
	TemplateIDs   []uint64             `json:"templateids"` // 链接的父模板
	EvalType      int                  `json:"evaltype"`
	Tags          []listview.TagFilter `json:"tags"`
}

// DefaultTemplateFilter 模板列表默认过滤条件
func DefaultTemplateFilter() TemplateFilter {
	return TemplateFilter{EvalType: listview.TagEvalAndOr}
}

// Bind 覆盖请求中出现的过滤参数
func (f *TemplateFilter) Bind(p listview.Params) {
	p.String("filter_name", &f.Name)
	p.IDs("filter_groupids", &f.GroupIDs)
	p.String("filter_vendor_name", &f.VendorName)
	p.String("filter_vendor_version", &f.VendorVersion)
	p.IDs("filter_templateids", &f.TemplateIDs)
	bindEnum(p, "filter_evaltype", &f.EvalType, listview.TagEvalAndOr, listview.TagEvalOr)
	p.Tags("filter_tags", &f.Tags)
}

// ProxyFilter 代理列表过滤条件
type ProxyFilter struct {
	Name          string `json:"name"`
	OperatingMode int    `json:"operating_mode"` // -1 不限
	Version       int    `json:"version"`        // -1 不限, 1 当前, 2 过时, 3 不支持
}

// DefaultProxyFilter 代理列表默认过滤条件
func DefaultProxyFilter() ProxyFilter {
	return ProxyFilter{OperatingMode: FilterAny, Version: FilterAny}
}

// Bind 覆盖请求中出现的过滤参数
func (f *ProxyFilter) Bind(p listview.Params) {
	p.String("filter_name", &f.Name)
	bindEnum(p, "filter_operating_mode", &f.OperatingMode, FilterAny, int(ProxyModeActive), int(ProxyModePassive))
	bindEnum(p, "filter_version", &f.Version, FilterAny,
		int(ProxyVersionCurrent), int(ProxyVersionOutdated), int(ProxyVersionUnsupported))
}

// 可用性报表模式
const (
	AvailabilityModeHost            = 0 // 按主机
	AvailabilityModeTriggerTemplate = 1 // 按触发器模板
)

// AvailabilityFilter 可用性报表过滤条件
// From/To 为 0 时使用相对时间(默认最近一个报表周期)，避免把绝对时间保存进偏好
type AvailabilityFilter struct {
	Mode             int      `json:"mode"`
	GroupIDs         []uint64 `json:"groupids"`
	HostIDs          []uint64 `json:"hostids"`
	TemplateGroupID  uint64   `json:"template_groupid"`
	TemplateID       uint64   `json:"templateid"`
	TriggerID        uint64   `json:"triggerid"`
	OnlyWithProblems bool     `json:"only_with_problems"`
	From             int64    `json:"from"`
	To               int64    `json:"to"`
}

// DefaultAvailabilityFilter 可用性报表默认过滤条件
func DefaultAvailabilityFilter() AvailabilityFilter {
	return AvailabilityFilter{Mode: AvailabilityModeHost, OnlyWithProblems: true}
}

// Bind 覆盖请求中出现的过滤参数
func (f *AvailabilityFilter) Bind(p listview.Params) {
	bindEnum(p, "mode", &f.Mode, AvailabilityModeHost, AvailabilityModeTriggerTemplate)
	p.IDs("filter_groupids", &f.GroupIDs)
	p.IDs("filter_hostids", &f.HostIDs)
	bindID(p, "filter_template_groupid", &f.TemplateGroupID)
	bindID(p, "filter_templateid", &f.TemplateID)
	bindID(p, "filter_triggerid", &f.TriggerID)
	p.Bool("only_with_problems", &f.OnlyWithProblems)
	p.Int64("from", &f.From)
	p.Int64("to", &f.To)
	if f.From < 0 {
		f.From = 0
	}
	if f.To < 0 {
		f.To = 0
	}
}

// GraphFilter 图形列表过滤条件
type GraphFilter struct {
	Name     string   `json:"name"`
	GroupIDs []uint64 `json:"groupids"`
	HostIDs  []uint64 `json:"hostids"`
}

// DefaultGraphFilter 图形列表默认过滤条件
func DefaultGraphFilter() GraphFilter {
	return GraphFilter{}
}

// Bind 覆盖请求中出现的过滤参数
func (f *GraphFilter) Bind(p listview.Params) {
	p.String("filter_name", &f.Name)
	p.IDs("filter_groupids", &f.GroupIDs)
	p.IDs("filter_hostids", &f.HostIDs)
}

// bindEnum 只接受允许的取值，其他值保持原值
func bindEnum(p listview.Params, key string, dst *int, allowed ...int) {
	v := *dst
	p.Int(key, &v)
	for _, a := range allowed {
		if v == a {
			*dst = v
			return
		}
	}
}

// bindID 单个ID参数，0 表示不限
func bindID(p listview.Params, key string, dst *uint64) {
	if !p.Has(key) {
		return
	}
	var ids []uint64
	p.IDs(key, &ids)
	if len(ids) == 0 {
		*dst = 0
		return
	}
	*dst = ids[0]
}

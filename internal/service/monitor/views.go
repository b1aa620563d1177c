package monitor

import (
	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/listview"
)

// 视图标识，作为偏好存储键的一部分
const (
	ViewHosts        = "hosts"
	ViewTemplates    = "templates"
	ViewProxies      = "proxies"
	ViewAvailability = "availability"
	ViewGraphs       = "graphs"
)

// HostView 主机列表视图
func HostView() listview.View[monitorModel.HostFilter] {
	return listview.View[monitorModel.HostFilter]{
		ID:           ViewHosts,
		Defaults:     monitorModel.DefaultHostFilter,
		Bind:         (*monitorModel.HostFilter).Bind,
		SortFields:   []string{"name", "status"},
		DefaultOrder: listview.SortOrderAsc,
		Subfilters:   []string{"status", "availability"},
	}
}

// TemplateView 模板列表视图
func TemplateView() listview.View[monitorModel.TemplateFilter] {
	return listview.View[monitorModel.TemplateFilter]{
		ID:           ViewTemplates,
		Defaults:     monitorModel.DefaultTemplateFilter,
		Bind:         (*monitorModel.TemplateFilter).Bind,
		SortFields:   []string{"name"},
		DefaultOrder: listview.SortOrderAsc,
		Subfilters:   []string{"vendor"},
	}
}

// ProxyView 代理列表视图
func ProxyView() listview.View[monitorModel.ProxyFilter] {
	return listview.View[monitorModel.ProxyFilter]{
		ID:           ViewProxies,
		Defaults:     monitorModel.DefaultProxyFilter,
		Bind:         (*monitorModel.ProxyFilter).Bind,
		SortFields:   []string{"name", "operating_mode", "version"},
		DefaultOrder: listview.SortOrderAsc,
		Subfilters:   []string{"operating_mode"},
	}
}

// AvailabilityView 可用性报表视图
func AvailabilityView() listview.View[monitorModel.AvailabilityFilter] {
	return listview.View[monitorModel.AvailabilityFilter]{
		ID:           ViewAvailability,
		Defaults:     monitorModel.DefaultAvailabilityFilter,
		Bind:         (*monitorModel.AvailabilityFilter).Bind,
		SortFields:   []string{"host_name", "name", "problem"},
		DefaultOrder: listview.SortOrderAsc,
	}
}

// GraphView 图形列表视图
func GraphView() listview.View[monitorModel.GraphFilter] {
	return listview.View[monitorModel.GraphFilter]{
		ID:           ViewGraphs,
		Defaults:     monitorModel.DefaultGraphFilter,
		Bind:         (*monitorModel.GraphFilter).Bind,
		SortFields:   []string{"name", "graphtype"},
		DefaultOrder: listview.SortOrderAsc,
		Subfilters:   []string{"graphtype", "host"},
	}
}

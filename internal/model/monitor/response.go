package monitor

// HostRow 主机列表行
type HostRow struct {
	Host

	Availability          Availability            `json:"availability"`           // 所有接口的汇总可用性
	InterfaceAvailability map[string]Availability `json:"interface_availability"` // 按接口类型汇总
	InMaintenance         bool                    `json:"in_maintenance"`
	ItemCount             int64                   `json:"item_count"`
	TriggerCount          int64                   `json:"trigger_count"`
	GraphCount            int64                   `json:"graph_count"`
}

// TemplateRow 模板列表行
type TemplateRow struct {
	Host

	HostCount int64 `json:"host_count"` // 直接链接该模板的主机数量
}

// ProxyRow 代理列表行
type ProxyRow struct {
	Proxy

	HostCount int64 `json:"host_count"` // 由该代理监控的主机数量
}

// AvailabilityRow 可用性报表行，ID 为触发器ID
type AvailabilityRow struct {
	ID       uint64   `json:"triggerid"`
	HostID   uint64   `json:"hostid"`
	HostName string   `json:"host_name"`
	Name     string   `json:"name"`
	Priority Severity `json:"priority"`
	OK       float64  `json:"ok"`      // 正常时间百分比
	Problem  float64  `json:"problem"` // 问题时间百分比
}

// EntityID 列表稳定排序使用
func (r AvailabilityRow) EntityID() uint64 {
	return r.ID
}

// GraphRow 图形列表行
type GraphRow struct {
	Graph
}

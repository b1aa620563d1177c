/**
 * 模型:主机/模板/主机组
 * @author: sun977
 * @date: 2025.12.04
 * @description: 模板与主机共用 hosts 表，用 status=3 区分；主机与主机组、模板的关联通过中间表维护
 */
package monitor

import (
	"neomonitor/internal/model/basemodel"
)

// Host 主机(或模板)
type Host struct {
	basemodel.BaseModel

	Host              string     `json:"host" gorm:"size:128;index;not null;comment:技术名称"`
	Name              string     `json:"name" gorm:"size:128;index;not null;comment:可见名称"`
	Description       string     `json:"description" gorm:"type:text;comment:描述"`
	Status            HostStatus `json:"status" gorm:"default:0;index;comment:状态:0-已监控,1-未监控,3-模板"`
	MonitoredBy       int        `json:"monitored_by" gorm:"default:0;comment:监控方:0-服务端,2-代理"`
	ProxyID           uint64     `json:"proxyid" gorm:"index;default:0;comment:代理ID"`
	MaintenanceID     uint64     `json:"maintenanceid" gorm:"default:0;comment:维护ID"`
	MaintenanceStatus int        `json:"maintenance_status" gorm:"default:0;comment:维护状态:0-否,1-是"`
	VendorName        string     `json:"vendor_name" gorm:"size:64;comment:模板厂商"`
	VendorVersion     string     `json:"vendor_version" gorm:"size:32;comment:模板版本"`

	Interfaces []HostInterface `json:"interfaces,omitempty" gorm:"foreignKey:HostID"`
	Tags       []HostTag       `json:"tags,omitempty" gorm:"foreignKey:HostID"`
	Groups     []HostGroup     `json:"groups,omitempty" gorm:"many2many:hosts_groups;joinForeignKey:HostID;joinReferences:GroupID"`
	Templates  []Host          `json:"parent_templates,omitempty" gorm:"many2many:hosts_templates;joinForeignKey:HostID;joinReferences:TemplateID"`
}

// TableName 定义数据库表名
func (Host) TableName() string {
	return "hosts"
}

// IsTemplate 是否为模板
func (h *Host) IsTemplate() bool {
	return h.Status == HostStatusTemplate
}

// InMaintenance 是否处于维护期
func (h *Host) InMaintenance() bool {
	return h.MaintenanceStatus == 1
}

// GroupIDs 所属主机组ID
func (h *Host) GroupIDs() []uint64 {
	ids := make([]uint64, 0, len(h.Groups))
	for _, g := range h.Groups {
		ids = append(ids, g.ID)
	}
	return ids
}

// TemplateIDs 直接链接的模板ID
func (h *Host) TemplateIDs() []uint64 {
	ids := make([]uint64, 0, len(h.Templates))
	for _, t := range h.Templates {
		ids = append(ids, t.ID)
	}
	return ids
}

// HostInterface 主机接口
type HostInterface struct {
	basemodel.BaseModel

	HostID    uint64        `json:"hostid" gorm:"index;not null;comment:主机ID"`
	Type      InterfaceType `json:"type" gorm:"not null;comment:接口类型:1-agent,2-snmp,3-ipmi,4-jmx"`
	Main      bool          `json:"main" gorm:"default:false;comment:是否默认接口"`
	UseIP     bool          `json:"useip" gorm:"comment:使用IP连接"`
	IP        string        `json:"ip" gorm:"size:64;index;comment:IP地址"`
	DNS       string        `json:"dns" gorm:"size:255;comment:DNS名称"`
	Port      string        `json:"port" gorm:"size:64;comment:端口"`
	Available Availability  `json:"available" gorm:"default:0;comment:可用性:0-未知,1-可用,2-不可用"`
	Error     string        `json:"error" gorm:"size:2048;comment:最近错误"`
}

// TableName 定义数据库表名
func (HostInterface) TableName() string {
	return "interfaces"
}

// HostTag 主机/模板标签
type HostTag struct {
	basemodel.BaseModel

	HostID uint64 `json:"hostid" gorm:"index;not null;comment:主机ID"`
	Tag    string `json:"tag" gorm:"size:255;index;not null;comment:标签名"`
	Value  string `json:"value" gorm:"size:255;comment:标签值"`
}

// TableName 定义数据库表名
func (HostTag) TableName() string {
	return "host_tag"
}

// HostGroup 主机组
type HostGroup struct {
	basemodel.BaseModel

	Name string `json:"name" gorm:"size:255;uniqueIndex;not null;comment:组名"`
	Type int    `json:"type" gorm:"default:0;comment:类型:0-主机组,1-模板组"`
}

// TableName 定义数据库表名
func (HostGroup) TableName() string {
	return "host_groups"
}

// 主机组类型
const (
	GroupTypeHost     = 0
	GroupTypeTemplate = 1
)

// HostsGroups 主机与主机组关联
type HostsGroups struct {
	HostID  uint64 `gorm:"primaryKey;comment:主机ID"`
	GroupID uint64 `gorm:"primaryKey;index;comment:主机组ID"`
}

// TableName 定义数据库表名
func (HostsGroups) TableName() string {
	return "hosts_groups"
}

// HostsTemplates 主机(或模板)与模板的链接关系
type HostsTemplates struct {
	HostID     uint64 `gorm:"primaryKey;comment:主机ID"`
	TemplateID uint64 `gorm:"primaryKey;index;comment:模板ID"`
}

// TableName 定义数据库表名
func (HostsTemplates) TableName() string {
	return "hosts_templates"
}

// Maintenance 维护期
type Maintenance struct {
	basemodel.BaseModel

	Name        string `json:"name" gorm:"size:128;uniqueIndex;not null;comment:名称"`
	ActiveSince int64  `json:"active_since" gorm:"comment:开始时间(unix)"`
	ActiveTill  int64  `json:"active_till" gorm:"comment:结束时间(unix)"`
}

// TableName 定义数据库表名
func (Maintenance) TableName() string {
	return "maintenances"
}

// Proxy 代理
type Proxy struct {
	basemodel.BaseModel

	Name          string             `json:"name" gorm:"size:128;uniqueIndex;not null;comment:名称"`
	OperatingMode ProxyOperatingMode `json:"operating_mode" gorm:"default:0;comment:模式:0-主动,1-被动"`
	Description   string             `json:"description" gorm:"type:text;comment:描述"`
	Address       string             `json:"address" gorm:"size:255;comment:被动模式地址"`
	Port          string             `json:"port" gorm:"size:64;comment:被动模式端口"`
	AllowedAddrs  string             `json:"allowed_addresses" gorm:"size:255;comment:主动模式允许地址"`
	Version       string             `json:"version" gorm:"size:32;comment:代理版本号"`
	Compatibility ProxyCompatibility `json:"compatibility" gorm:"default:0;comment:兼容性:0-未知,1-当前,2-过时,3-不支持"`
	LastAccess    int64              `json:"lastaccess" gorm:"default:0;comment:最后通信时间(unix)"`
}

// TableName 定义数据库表名
func (Proxy) TableName() string {
	return "proxies"
}

// Models 需要迁移的监控对象表
func Models() []interface{} {
	return []interface{}{
		&Host{}, &HostInterface{}, &HostTag{}, &HostGroup{}, &HostsGroups{}, &HostsTemplates{},
		&Maintenance{}, &Proxy{},
		&Item{}, &History{}, &Trigger{}, &Event{},
		&Graph{}, &GraphItem{},
		&Action{}, &ActionCondition{}, &ActionOperation{},
		&DiscoveryRule{}, &DiscoveryCheck{},
	}
}

/**
 * 模型:动作
 * @author: sun977
 * @date: 2025.12.05
 * @description: 动作 = 条件 + 操作。更新动作时条件与操作整体替换(先删后建)
 */
package monitor

import (
	"neomonitor/internal/model/basemodel"
)

// Action 动作
type Action struct {
	basemodel.BaseModel

	Name             string `json:"name" gorm:"size:255;uniqueIndex;not null;comment:名称"`
	EventSource      int    `json:"eventsource" gorm:"default:0;comment:事件来源"`
	Status           int    `json:"status" gorm:"default:0;comment:状态:0-启用,1-禁用"`
	EscPeriod        string `json:"esc_period" gorm:"size:255;default:'1h';comment:默认操作步骤持续时间"`
	EvalType         int    `json:"evaltype" gorm:"default:0;comment:条件组合方式"`
	Formula          string `json:"formula" gorm:"size:1024;comment:自定义表达式"`
	PauseSuppressed  bool   `json:"pause_suppressed" gorm:"comment:抑制期间暂停"`
	NotifyIfCanceled bool   `json:"notify_if_canceled" gorm:"comment:取消时通知"`

	Conditions []ActionCondition `json:"conditions" gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE"`
	Operations []ActionOperation `json:"operations" gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE"`
}

// TableName 定义数据库表名
func (Action) TableName() string {
	return "actions"
}

// ActionCondition 动作条件
type ActionCondition struct {
	basemodel.BaseModel

	ActionID      uint64            `json:"actionid" gorm:"index;not null;comment:动作ID"`
	ConditionType ConditionType     `json:"conditiontype" gorm:"not null;comment:条件类型"`
	Operator      ConditionOperator `json:"operator" gorm:"default:0;comment:运算符"`
	Value         string            `json:"value" gorm:"size:255;comment:条件值"`
	Value2        string            `json:"value2" gorm:"size:255;comment:附加值(标签名)"`
	FormulaID     string            `json:"formulaid" gorm:"size:2;comment:表达式中的标识"`
}

// TableName 定义数据库表名
func (ActionCondition) TableName() string {
	return "conditions"
}

// ActionOperation 动作操作
type ActionOperation struct {
	basemodel.BaseModel

	ActionID      uint64   `json:"actionid" gorm:"index;not null;comment:动作ID"`
	OperationType int      `json:"operationtype" gorm:"not null;comment:操作类型"`
	Recovery      int      `json:"recovery" gorm:"default:0;comment:阶段:0-问题,1-恢复,2-更新"`
	EscPeriod     string   `json:"esc_period" gorm:"size:255;default:'0';comment:步骤持续时间"`
	EscStepFrom   int      `json:"esc_step_from" gorm:"default:1;comment:起始步骤"`
	EscStepTo     int      `json:"esc_step_to" gorm:"default:1;comment:结束步骤"`
	MediaTypeID   uint64   `json:"mediatypeid" gorm:"default:0;comment:媒介类型ID"`
	Subject       string   `json:"subject" gorm:"size:255;comment:消息主题"`
	Message       string   `json:"message" gorm:"type:text;comment:消息内容"`
	UserIDs       []uint64 `json:"userids,omitempty" gorm:"serializer:json;type:text;comment:通知用户"`
	UserGroupIDs  []uint64 `json:"usrgrpids,omitempty" gorm:"serializer:json;type:text;comment:通知用户组"`
	ScriptID      uint64   `json:"scriptid" gorm:"default:0;comment:远程命令脚本ID"`
	GroupIDs      []uint64 `json:"groupids,omitempty" gorm:"serializer:json;type:text;comment:目标主机组"`
	TemplateIDs   []uint64 `json:"templateids,omitempty" gorm:"serializer:json;type:text;comment:目标模板"`
	InventoryMode int      `json:"inventory_mode" gorm:"default:0;comment:资产清单模式"`
}

// TableName 定义数据库表名
func (ActionOperation) TableName() string {
	return "operations"
}

// DiscoveryRule 网络发现规则
type DiscoveryRule struct {
	basemodel.BaseModel

	Name    string           `json:"name" gorm:"size:255;uniqueIndex;not null;comment:名称"`
	ProxyID uint64           `json:"proxyid" gorm:"default:0;comment:代理ID"`
	IPRange string           `json:"iprange" gorm:"size:2048;comment:IP范围"`
	Delay   string           `json:"delay" gorm:"size:255;default:'1h';comment:间隔"`
	Status  int              `json:"status" gorm:"default:0;comment:状态"`
	Checks  []DiscoveryCheck `json:"dchecks,omitempty" gorm:"foreignKey:DRuleID"`
}

// TableName 定义数据库表名
func (DiscoveryRule) TableName() string {
	return "drules"
}

// DiscoveryCheck 网络发现检查
type DiscoveryCheck struct {
	basemodel.BaseModel

	DRuleID       uint64 `json:"druleid" gorm:"column:druleid;index;not null;comment:规则ID"`
	Type          int    `json:"type" gorm:"not null;comment:检查类型"`
	Key           string `json:"key_" gorm:"column:key_;size:2048;comment:键值/OID"`
	Ports         string `json:"ports" gorm:"size:255;default:'0';comment:端口"`
	AllowRedirect bool   `json:"allow_redirect" gorm:"default:false;comment:ICMP允许重定向"`
}

// TableName 定义数据库表名
func (DiscoveryCheck) TableName() string {
	return "dchecks"
}

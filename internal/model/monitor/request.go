/**
 * 模型:请求/响应结构
 * @author: sun977
 * @date: 2025.12.05
 * @description: 非列表类接口的请求与响应(动作、图形复制、Top Hosts 组件)
 *   校验规则使用 validator/v10 的 validate 标签，由服务层统一校验
 */
package monitor

import (
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
)

// ConditionInput 动作条件输入
type ConditionInput struct {
	ConditionType ConditionType     `json:"conditiontype" validate:"min=0,max=28"`
	Operator      ConditionOperator `json:"operator" validate:"min=0,max=13"`
	Value         string            `json:"value" validate:"max=255"`
	Value2        string            `json:"value2" validate:"max=255"`
	FormulaID     string            `json:"formulaid" validate:"omitempty,len=1,alpha,uppercase"`
}

// ConditionCheckRequest 动作条件校验请求
type ConditionCheckRequest struct {
	EventSource int `json:"eventsource" validate:"min=0,max=4"`
	ConditionInput
}

// ConditionCheckResponse 动作条件校验结果
type ConditionCheckResponse struct {
	ConditionInput
	Name        string `json:"name"`        // 条件值的可读名称
	Description string `json:"description"` // 条件完整描述
}

// OperationInput 动作操作输入
type OperationInput struct {
	OperationType int      `json:"operationtype" validate:"min=0,max=12"`
	Recovery      int      `json:"recovery" validate:"min=0,max=2"`
	EscPeriod     string   `json:"esc_period" validate:"max=255"`
	EscStepFrom   int      `json:"esc_step_from" validate:"omitempty,min=1,max=99999"`
	EscStepTo     int      `json:"esc_step_to" validate:"omitempty,min=0,max=99999"`
	MediaTypeID   uint64   `json:"mediatypeid"`
	Subject       string   `json:"subject" validate:"max=255"`
	Message       string   `json:"message" validate:"max=65535"`
	UserIDs       []uint64 `json:"userids" validate:"omitempty,dive,gt=0"`
	UserGroupIDs  []uint64 `json:"usrgrpids" validate:"omitempty,dive,gt=0"`
	ScriptID      uint64   `json:"scriptid"`
	GroupIDs      []uint64 `json:"groupids" validate:"omitempty,dive,gt=0"`
	TemplateIDs   []uint64 `json:"templateids" validate:"omitempty,dive,gt=0"`
	InventoryMode int      `json:"inventory_mode" validate:"min=-1,max=1"`
}

// ActionRequest 创建/更新动作请求
type ActionRequest struct {
	Name             string           `json:"name" validate:"required,max=255"`
	EventSource      int              `json:"eventsource" validate:"min=0,max=4"`
	Status           int              `json:"status" validate:"oneof=0 1"`
	EscPeriod        string           `json:"esc_period" validate:"max=255"`
	EvalType         int              `json:"evaltype" validate:"oneof=0 1 2 3"`
	Formula          string           `json:"formula" validate:"required_if=EvalType 3,max=1024"`
	PauseSuppressed  *bool            `json:"pause_suppressed"`
	NotifyIfCanceled *bool            `json:"notify_if_canceled"`
	Conditions       []ConditionInput `json:"conditions" validate:"omitempty,dive"`
	Operations       []OperationInput `json:"operations" validate:"omitempty,dive"`
}

// GraphCopyRequest 批量复制图形请求
type GraphCopyRequest struct {
	GraphIDs       []uint64 `json:"graphids" validate:"required,min=1,dive,gt=0"`
	TargetHostIDs  []uint64 `json:"target_hostids" validate:"required_without=TargetGroupIDs,dive,gt=0"`
	TargetGroupIDs []uint64 `json:"target_groupids" validate:"omitempty,dive,gt=0"`
}

// GraphCopyResult 批量复制结果
type GraphCopyResult struct {
	Copied int                  `json:"copied"`
	Failed int                  `json:"failed"`
	Errors []system.ErrorDetail `json:"errors,omitempty"`
}

// Top Hosts 聚合函数
const (
	AggregateNone  = 0
	AggregateMin   = 1
	AggregateMax   = 2
	AggregateAvg   = 3
	AggregateCount = 4
	AggregateSum   = 5
	AggregateFirst = 6
	AggregateLast  = 7
)

// Top Hosts 排序
const (
	TopHostsOrderTop    = 1
	TopHostsOrderBottom = 2
)

// TopHostsColumn Top Hosts 列定义
type TopHostsColumn struct {
	Name      string `json:"name" validate:"required,max=255"`
	Item      string `json:"item" validate:"required,max=255"` // 监控项名称(精确匹配)
	Aggregate int    `json:"aggregate_function" validate:"min=0,max=7"`
	Period    int64  `json:"aggregate_interval" validate:"omitempty,min=1,max=63072000"` // 秒
	Decimals  int    `json:"decimal_places" validate:"min=0,max=10"`
}

// TopHostsRequest Top Hosts 组件请求
type TopHostsRequest struct {
	GroupIDs  []uint64             `json:"groupids" validate:"omitempty,dive,gt=0"`
	HostIDs   []uint64             `json:"hostids" validate:"omitempty,dive,gt=0"`
	HostTags  []listview.TagFilter `json:"host_tags"`
	EvalType  int                  `json:"evaltype" validate:"oneof=0 2"`
	Columns   []TopHostsColumn     `json:"columns" validate:"required,min=1,max=100,dive"`
	Column    int                  `json:"column" validate:"min=0"`
	Order     int                  `json:"order" validate:"oneof=1 2"`
	ShowLines int                  `json:"show_lines" validate:"min=1,max=100"`
}

// TopHostsCell Top Hosts 单元格
type TopHostsCell struct {
	ItemID    uint64   `json:"itemid,omitempty"`
	Value     *float64 `json:"value"`
	Formatted string   `json:"formatted"`
}

// TopHostsRow Top Hosts 行
type TopHostsRow struct {
	HostID   uint64         `json:"hostid"`
	HostName string         `json:"host_name"`
	Cells    []TopHostsCell `json:"columns"`
}

// TopHostsResponse Top Hosts 组件数据
type TopHostsResponse struct {
	Columns []string      `json:"columns"`
	Rows    []TopHostsRow `json:"rows"`
}

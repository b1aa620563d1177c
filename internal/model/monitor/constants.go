/**
 * 模型:监控对象常量
 * @author: sun977
 * @date: 2025.12.04
 * @description: 主机状态、接口可用性、代理模式、触发器级别、动作条件/操作类型等枚举值
 *   数值与监控服务端保持一致，不能随意修改
 */
package monitor

// HostStatus 主机状态
type HostStatus int

const (
	HostStatusMonitored    HostStatus = 0 // 已监控
	HostStatusNotMonitored HostStatus = 1 // 未监控
	HostStatusTemplate     HostStatus = 3 // 模板
)

// 过滤条件中的"不限"
const FilterAny = -1

// InterfaceType 主机接口类型
type InterfaceType int

const (
	InterfaceTypeAgent InterfaceType = 1
	InterfaceTypeSNMP  InterfaceType = 2
	InterfaceTypeIPMI  InterfaceType = 3
	InterfaceTypeJMX   InterfaceType = 4
)

// String 接口类型名
func (t InterfaceType) String() string {
	switch t {
	case InterfaceTypeAgent:
		return "agent"
	case InterfaceTypeSNMP:
		return "snmp"
	case InterfaceTypeIPMI:
		return "ipmi"
	case InterfaceTypeJMX:
		return "jmx"
	default:
		return "unknown"
	}
}

// Availability 接口可用性
type Availability int

const (
	AvailabilityUnknown     Availability = 0
	AvailabilityAvailable   Availability = 1
	AvailabilityUnavailable Availability = 2
	AvailabilityMixed       Availability = 3 // 同类接口部分可用
)

// String 可用性名称，也用作子过滤器取值
func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	case AvailabilityMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// MonitoredBy 主机由谁监控
const (
	MonitoredByAny    = 0
	MonitoredByServer = 1
	MonitoredByProxy  = 2
)

// ProxyOperatingMode 代理工作模式
type ProxyOperatingMode int

const (
	ProxyModeActive  ProxyOperatingMode = 0
	ProxyModePassive ProxyOperatingMode = 1
)

// String 模式名
func (m ProxyOperatingMode) String() string {
	if m == ProxyModePassive {
		return "passive"
	}
	return "active"
}

// ProxyCompatibility 代理版本兼容性
type ProxyCompatibility int

const (
	ProxyVersionUndefined   ProxyCompatibility = 0
	ProxyVersionCurrent     ProxyCompatibility = 1
	ProxyVersionOutdated    ProxyCompatibility = 2
	ProxyVersionUnsupported ProxyCompatibility = 3
)

// Severity 触发器级别
type Severity int

const (
	SeverityNotClassified Severity = 0
	SeverityInformation   Severity = 1
	SeverityWarning       Severity = 2
	SeverityAverage       Severity = 3
	SeverityHigh          Severity = 4
	SeverityDisaster      Severity = 5
)

var severityNames = [...]string{"Not classified", "Information", "Warning", "Average", "High", "Disaster"}

// String 级别名称
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "Unknown"
	}
	return severityNames[s]
}

// 触发器值
const (
	TriggerValueOK      = 0
	TriggerValueProblem = 1
)

// 触发器状态
const (
	TriggerStatusEnabled  = 0
	TriggerStatusDisabled = 1
)

// 事件来源
const (
	EventSourceTriggers         = 0
	EventSourceDiscovery        = 1
	EventSourceAutoregistration = 2
	EventSourceInternal         = 3
	EventSourceService          = 4
)

// 事件对象
const (
	EventObjectTrigger  = 0
	EventObjectDHost    = 1
	EventObjectDService = 2
)

// 内部事件类型
const (
	EventTypeItemNotSupported    = 0
	EventTypeLLDRuleNotSupported = 2
	EventTypeTriggerUnknown      = 4
)

// 发现状态
const (
	DiscoveryStatusUp       = 0
	DiscoveryStatusDown     = 1
	DiscoveryStatusDiscover = 2
	DiscoveryStatusLost     = 3
)

// 发现检查类型
const (
	DCheckSSH      = 0
	DCheckLDAP     = 1
	DCheckSMTP     = 2
	DCheckFTP      = 3
	DCheckHTTP     = 4
	DCheckPOP      = 5
	DCheckNNTP     = 6
	DCheckIMAP     = 7
	DCheckTCP      = 8
	DCheckAgent    = 9
	DCheckSNMPv1   = 10
	DCheckSNMPv2c  = 11
	DCheckICMPPing = 12
	DCheckSNMPv3   = 13
	DCheckHTTPS    = 14
	DCheckTelnet   = 15
)

// 监控项值类型
const (
	ItemValueFloat  = 0
	ItemValueString = 1
	ItemValueLog    = 2
	ItemValueUint64 = 3
	ItemValueText   = 4
)

// 图形类型
const (
	GraphTypeNormal   = 0
	GraphTypeStacked  = 1
	GraphTypePie      = 2
	GraphTypeExploded = 3
)

// GraphTypeName 图形类型名称，也用作子过滤器取值
func GraphTypeName(t int) string {
	switch t {
	case GraphTypeNormal:
		return "normal"
	case GraphTypeStacked:
		return "stacked"
	case GraphTypePie:
		return "pie"
	case GraphTypeExploded:
		return "exploded"
	default:
		return "unknown"
	}
}

// 动作状态
const (
	ActionStatusEnabled  = 0
	ActionStatusDisabled = 1
)

// 条件组合方式
const (
	ConditionEvalAndOr      = 0
	ConditionEvalAnd        = 1
	ConditionEvalOr         = 2
	ConditionEvalExpression = 3
)

// ConditionType 动作条件类型
type ConditionType int

const (
	ConditionHostGroup         ConditionType = 0
	ConditionHost              ConditionType = 1
	ConditionTrigger           ConditionType = 2
	ConditionEventName         ConditionType = 3
	ConditionTriggerSeverity   ConditionType = 4
	ConditionTimePeriod        ConditionType = 6
	ConditionDHostIP           ConditionType = 7
	ConditionDServiceType      ConditionType = 8
	ConditionDServicePort      ConditionType = 9
	ConditionDStatus           ConditionType = 10
	ConditionDUptime           ConditionType = 11
	ConditionDValue            ConditionType = 12
	ConditionTemplate          ConditionType = 13
	ConditionEventAcknowledged ConditionType = 14
	ConditionSuppressed        ConditionType = 16
	ConditionDRule             ConditionType = 18
	ConditionDCheck            ConditionType = 19
	ConditionProxy             ConditionType = 20
	ConditionDObject           ConditionType = 21
	ConditionHostName          ConditionType = 22
	ConditionEventType         ConditionType = 23
	ConditionHostMetadata      ConditionType = 24
	ConditionEventTag          ConditionType = 25
	ConditionEventTagValue     ConditionType = 26
	ConditionService           ConditionType = 27
	ConditionServiceName       ConditionType = 28
)

// ConditionOperator 动作条件运算符
type ConditionOperator int

const (
	OperatorEqual     ConditionOperator = 0
	OperatorNotEqual  ConditionOperator = 1
	OperatorLike      ConditionOperator = 2
	OperatorNotLike   ConditionOperator = 3
	OperatorIn        ConditionOperator = 4
	OperatorMoreEqual ConditionOperator = 5
	OperatorLessEqual ConditionOperator = 6
	OperatorNotIn     ConditionOperator = 7
	OperatorRegexp    ConditionOperator = 8
	OperatorNotRegexp ConditionOperator = 9
	OperatorYes       ConditionOperator = 10
	OperatorNo        ConditionOperator = 11
	OperatorExists    ConditionOperator = 12
	OperatorNotExists ConditionOperator = 13
)

// 操作类型
const (
	OperationMessage         = 0
	OperationCommand         = 1
	OperationHostAdd         = 2
	OperationHostRemove      = 3
	OperationGroupAdd        = 4
	OperationGroupRemove     = 5
	OperationTemplateAdd     = 6
	OperationTemplateRemove  = 7
	OperationHostEnable      = 8
	OperationHostDisable     = 9
	OperationHostInventory   = 10
	OperationRecoveryMessage = 11
	OperationUpdateMessage   = 12
)

// 操作所属阶段
const (
	OperationPhaseProblem  = 0
	OperationPhaseRecovery = 1
	OperationPhaseUpdate   = 2
)

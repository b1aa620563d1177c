package monitor

import (
	"context"
	"slices"
	"strconv"
	"strings"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
)

// 名称分隔符，如 "主机: 触发器"
const nameDelimiter = ": "

// 各事件来源允许的条件类型
var conditionsBySource = map[int][]monitorModel.ConditionType{
	monitorModel.EventSourceTriggers: {
		monitorModel.ConditionEventName, monitorModel.ConditionTrigger, monitorModel.ConditionTriggerSeverity,
		monitorModel.ConditionHost, monitorModel.ConditionHostGroup, monitorModel.ConditionSuppressed,
		monitorModel.ConditionEventTag, monitorModel.ConditionEventTagValue, monitorModel.ConditionTemplate,
		monitorModel.ConditionTimePeriod,
	},
	monitorModel.EventSourceDiscovery: {
		monitorModel.ConditionDHostIP, monitorModel.ConditionDCheck, monitorModel.ConditionDObject,
		monitorModel.ConditionDRule, monitorModel.ConditionDStatus, monitorModel.ConditionProxy,
		monitorModel.ConditionDValue, monitorModel.ConditionDServicePort, monitorModel.ConditionDServiceType,
		monitorModel.ConditionDUptime,
	},
	monitorModel.EventSourceAutoregistration: {
		monitorModel.ConditionHostName, monitorModel.ConditionHostMetadata, monitorModel.ConditionProxy,
	},
	monitorModel.EventSourceInternal: {
		monitorModel.ConditionEventType, monitorModel.ConditionHost, monitorModel.ConditionHostGroup,
		monitorModel.ConditionEventTag, monitorModel.ConditionEventTagValue, monitorModel.ConditionTemplate,
	},
	monitorModel.EventSourceService: {
		monitorModel.ConditionService, monitorModel.ConditionServiceName,
		monitorModel.ConditionEventTag, monitorModel.ConditionEventTagValue,
	},
}

var (
	equalOps    = []monitorModel.ConditionOperator{monitorModel.OperatorEqual, monitorModel.OperatorNotEqual}
	likeOps     = []monitorModel.ConditionOperator{monitorModel.OperatorLike, monitorModel.OperatorNotLike}
	rangeOps    = []monitorModel.ConditionOperator{monitorModel.OperatorMoreEqual, monitorModel.OperatorLessEqual}
	tagOps      = []monitorModel.ConditionOperator{monitorModel.OperatorEqual, monitorModel.OperatorNotEqual, monitorModel.OperatorLike, monitorModel.OperatorNotLike}
	patternOps  = []monitorModel.ConditionOperator{monitorModel.OperatorLike, monitorModel.OperatorNotLike, monitorModel.OperatorRegexp, monitorModel.OperatorNotRegexp}
	onlyEqualOp = []monitorModel.ConditionOperator{monitorModel.OperatorEqual}
)

// 各条件类型允许的运算符
var operatorsByType = map[monitorModel.ConditionType][]monitorModel.ConditionOperator{
	monitorModel.ConditionDCheck:            equalOps,
	monitorModel.ConditionDHostIP:           equalOps,
	monitorModel.ConditionDRule:             equalOps,
	monitorModel.ConditionDServicePort:      equalOps,
	monitorModel.ConditionDServiceType:      equalOps,
	monitorModel.ConditionHost:              equalOps,
	monitorModel.ConditionHostGroup:         equalOps,
	monitorModel.ConditionProxy:             equalOps,
	monitorModel.ConditionService:           equalOps,
	monitorModel.ConditionTemplate:          equalOps,
	monitorModel.ConditionTrigger:           equalOps,
	monitorModel.ConditionServiceName:       likeOps,
	monitorModel.ConditionEventName:         likeOps,
	monitorModel.ConditionTriggerSeverity:   {monitorModel.OperatorEqual, monitorModel.OperatorNotEqual, monitorModel.OperatorMoreEqual, monitorModel.OperatorLessEqual},
	monitorModel.ConditionTimePeriod:        {monitorModel.OperatorIn, monitorModel.OperatorNotIn},
	monitorModel.ConditionSuppressed:        {monitorModel.OperatorNo, monitorModel.OperatorYes},
	monitorModel.ConditionDObject:           onlyEqualOp,
	monitorModel.ConditionDStatus:           onlyEqualOp,
	monitorModel.ConditionEventAcknowledged: onlyEqualOp,
	monitorModel.ConditionEventType:         onlyEqualOp,
	monitorModel.ConditionDUptime:           rangeOps,
	monitorModel.ConditionDValue:            {monitorModel.OperatorEqual, monitorModel.OperatorNotEqual, monitorModel.OperatorMoreEqual, monitorModel.OperatorLessEqual, monitorModel.OperatorLike, monitorModel.OperatorNotLike},
	monitorModel.ConditionHostMetadata:      patternOps,
	monitorModel.ConditionHostName:          patternOps,
	monitorModel.ConditionEventTag:          tagOps,
	monitorModel.ConditionEventTagValue:     tagOps,
}

var conditionTypeLabels = map[monitorModel.ConditionType]string{
	monitorModel.ConditionSuppressed:        "Problem is suppressed",
	monitorModel.ConditionEventName:         "Event name",
	monitorModel.ConditionTriggerSeverity:   "Trigger severity",
	monitorModel.ConditionTrigger:           "Trigger",
	monitorModel.ConditionHostName:          "Host name",
	monitorModel.ConditionHostGroup:         "Host group",
	monitorModel.ConditionTemplate:          "Template",
	monitorModel.ConditionHost:              "Host",
	monitorModel.ConditionTimePeriod:        "Time period",
	monitorModel.ConditionDRule:             "Discovery rule",
	monitorModel.ConditionDCheck:            "Discovery check",
	monitorModel.ConditionDObject:           "Discovery object",
	monitorModel.ConditionDHostIP:           "Host IP",
	monitorModel.ConditionDServiceType:      "Service type",
	monitorModel.ConditionDServicePort:      "Service port",
	monitorModel.ConditionDStatus:           "Discovery status",
	monitorModel.ConditionDUptime:           "Uptime/Downtime",
	monitorModel.ConditionDValue:            "Received value",
	monitorModel.ConditionEventAcknowledged: "Event acknowledged",
	monitorModel.ConditionProxy:             "Proxy",
	monitorModel.ConditionEventType:         "Event type",
	monitorModel.ConditionHostMetadata:      "Host metadata",
	monitorModel.ConditionEventTag:          "Tag name",
	monitorModel.ConditionEventTagValue:     "Tag value",
	monitorModel.ConditionService:           "Service",
	monitorModel.ConditionServiceName:       "Service name",
}

var operatorLabels = map[monitorModel.ConditionOperator]string{
	monitorModel.OperatorEqual:     "equals",
	monitorModel.OperatorNotEqual:  "does not equal",
	monitorModel.OperatorLike:      "contains",
	monitorModel.OperatorNotLike:   "does not contain",
	monitorModel.OperatorIn:        "in",
	monitorModel.OperatorMoreEqual: "is greater than or equals",
	monitorModel.OperatorLessEqual: "is less than or equals",
	monitorModel.OperatorNotIn:     "not in",
	monitorModel.OperatorYes:       "Yes",
	monitorModel.OperatorNo:        "No",
	monitorModel.OperatorRegexp:    "matches",
	monitorModel.OperatorNotRegexp: "does not match",
	monitorModel.OperatorExists:    "exists",
	monitorModel.OperatorNotExists: "does not exist",
}

var dcheckTypeNames = map[int]string{
	monitorModel.DCheckSSH:      "SSH",
	monitorModel.DCheckLDAP:     "LDAP",
	monitorModel.DCheckSMTP:     "SMTP",
	monitorModel.DCheckFTP:      "FTP",
	monitorModel.DCheckHTTP:     "HTTP",
	monitorModel.DCheckPOP:      "POP",
	monitorModel.DCheckNNTP:     "NNTP",
	monitorModel.DCheckIMAP:     "IMAP",
	monitorModel.DCheckTCP:      "TCP",
	monitorModel.DCheckAgent:    "Agent",
	monitorModel.DCheckSNMPv1:   "SNMPv1 agent",
	monitorModel.DCheckSNMPv2c:  "SNMPv2 agent",
	monitorModel.DCheckICMPPing: "ICMP ping",
	monitorModel.DCheckSNMPv3:   "SNMPv3 agent",
	monitorModel.DCheckHTTPS:    "HTTPS",
	monitorModel.DCheckTelnet:   "Telnet",
}

var discoveryStatusNames = map[int]string{
	monitorModel.DiscoveryStatusUp:       "Up",
	monitorModel.DiscoveryStatusDown:     "Down",
	monitorModel.DiscoveryStatusDiscover: "Discovered",
	monitorModel.DiscoveryStatusLost:     "Lost",
}

var eventTypeNames = map[int]string{
	monitorModel.EventTypeItemNotSupported:    `Item in "not supported" state`,
	monitorModel.EventTypeLLDRuleNotSupported: `Low-level discovery rule in "not supported" state`,
	monitorModel.EventTypeTriggerUnknown:      `Trigger in "unknown" state`,
}

// 值为对象ID的条件类型
var idConditions = []monitorModel.ConditionType{
	monitorModel.ConditionHostGroup, monitorModel.ConditionHost, monitorModel.ConditionTrigger,
	monitorModel.ConditionTemplate, monitorModel.ConditionProxy, monitorModel.ConditionDRule,
	monitorModel.ConditionDCheck, monitorModel.ConditionService,
}

// validateCondition 校验单个条件: 类型是否属于事件来源、运算符是否允许、取值是否合法
// field 为错误中使用的字段路径
func validateCondition(eventSource int, c monitorModel.ConditionInput, field string) error {
	allowed, ok := conditionsBySource[eventSource]
	if !ok {
		return system.NewFieldValidationError("eventsource", "不支持的事件来源")
	}
	if !slices.Contains(allowed, c.ConditionType) {
		return system.NewFieldValidationError(field+".conditiontype", "该事件来源不支持此条件类型")
	}
	if !slices.Contains(operatorsByType[c.ConditionType], c.Operator) {
		return system.NewFieldValidationError(field+".operator", "该条件类型不支持此运算符")
	}

	if c.Operator == monitorModel.OperatorExists || c.Operator == monitorModel.OperatorNotExists ||
		c.ConditionType == monitorModel.ConditionSuppressed {
		return nil
	}
	if strings.TrimSpace(c.Value) == "" {
		return system.NewFieldValidationError(field+".value", "条件值不能为空")
	}
	if c.ConditionType == monitorModel.ConditionEventTagValue && strings.TrimSpace(c.Value2) == "" {
		return system.NewFieldValidationError(field+".value2", "标签名不能为空")
	}

	invalid := system.NewFieldValidationError(field+".value", "条件值无效")
	switch {
	case slices.Contains(idConditions, c.ConditionType):
		if _, err := strconv.ParseUint(c.Value, 10, 64); err != nil {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionTriggerSeverity:
		if n, err := strconv.Atoi(c.Value); err != nil || n < int(monitorModel.SeverityNotClassified) || n > int(monitorModel.SeverityDisaster) {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionEventAcknowledged:
		if c.Value != "0" && c.Value != "1" {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionDObject:
		if c.Value != strconv.Itoa(monitorModel.EventObjectDHost) && c.Value != strconv.Itoa(monitorModel.EventObjectDService) {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionDStatus:
		if !knownValue(c.Value, discoveryStatusNames) {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionDServiceType:
		if !knownValue(c.Value, dcheckTypeNames) {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionEventType:
		if !knownValue(c.Value, eventTypeNames) {
			return invalid
		}
	case c.ConditionType == monitorModel.ConditionDUptime:
		if n, err := strconv.Atoi(c.Value); err != nil || n < 0 {
			return invalid
		}
	}
	return nil
}

func knownValue(value string, names map[int]string) bool {
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	_, ok := names[n]
	return ok
}

// conditionValueToString 条件值的可读名称，对象类条件解析为对象名称
// 对象不存在时主机组/主机/触发器返回 "Deleted ..."，其他返回 "Unknown"
func (s *ActionService) conditionValueToString(ctx context.Context, c monitorModel.ConditionInput) (string, error) {
	const unknown = "Unknown"
	id, _ := strconv.ParseUint(c.Value, 10, 64)
	ids := []uint64{id}

	switch c.ConditionType {
	case monitorModel.ConditionEventName, monitorModel.ConditionHostMetadata, monitorModel.ConditionHostName,
		monitorModel.ConditionTimePeriod, monitorModel.ConditionDHostIP, monitorModel.ConditionDServicePort,
		monitorModel.ConditionDUptime, monitorModel.ConditionDValue, monitorModel.ConditionEventTag,
		monitorModel.ConditionEventTagValue, monitorModel.ConditionServiceName:
		return c.Value, nil

	// 服务没有对应的对象表，按原值显示
	case monitorModel.ConditionService:
		return c.Value, nil

	case monitorModel.ConditionEventAcknowledged:
		if c.Value != "" && c.Value != "0" {
			return "Ack", nil
		}
		return "Not Ack", nil

	case monitorModel.ConditionTriggerSeverity:
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			return unknown, nil
		}
		return monitorModel.Severity(n).String(), nil

	case monitorModel.ConditionDObject:
		switch c.Value {
		case strconv.Itoa(monitorModel.EventObjectDHost):
			return "Device", nil
		case strconv.Itoa(monitorModel.EventObjectDService):
			return "Service", nil
		}
		return unknown, nil

	case monitorModel.ConditionDServiceType:
		return labelOf(c.Value, dcheckTypeNames, unknown), nil

	case monitorModel.ConditionDStatus:
		return labelOf(c.Value, discoveryStatusNames, unknown), nil

	case monitorModel.ConditionEventType:
		return labelOf(c.Value, eventTypeNames, unknown), nil

	case monitorModel.ConditionHostGroup:
		if id == 0 {
			return "Deleted host group", nil
		}
		names, err := s.hostRepo.GetGroupNames(ctx, ids)
		if err != nil {
			return "", err
		}
		return nameOr(names, id, unknown), nil

	case monitorModel.ConditionHost:
		if id == 0 {
			return "Deleted host", nil
		}
		names, err := s.hostRepo.GetHostNames(ctx, ids)
		if err != nil {
			return "", err
		}
		return nameOr(names, id, unknown), nil

	case monitorModel.ConditionTemplate:
		names, err := s.hostRepo.GetHostNames(ctx, ids)
		if err != nil {
			return "", err
		}
		return nameOr(names, id, unknown), nil

	case monitorModel.ConditionTrigger:
		if id == 0 {
			return "Deleted trigger", nil
		}
		triggers, err := s.triggerRepo.GetTriggers(ctx, ids)
		if err != nil {
			return "", err
		}
		if len(triggers) == 0 {
			return unknown, nil
		}
		hosts, err := s.hostRepo.GetHostNames(ctx, []uint64{triggers[0].HostID})
		if err != nil {
			return "", err
		}
		return hosts[triggers[0].HostID] + nameDelimiter + triggers[0].Description, nil

	case monitorModel.ConditionProxy:
		names, err := s.proxyRepo.GetProxyNames(ctx, ids)
		if err != nil {
			return "", err
		}
		return nameOr(names, id, unknown), nil

	case monitorModel.ConditionDRule:
		names, err := s.actionRepo.GetDiscoveryRuleNames(ctx, ids)
		if err != nil {
			return "", err
		}
		return nameOr(names, id, unknown), nil

	case monitorModel.ConditionDCheck:
		checks, rules, err := s.actionRepo.GetDiscoveryChecks(ctx, ids)
		if err != nil {
			return "", err
		}
		check, ok := checks[id]
		if !ok {
			return unknown, nil
		}
		return rules[check.DRuleID] + nameDelimiter + discoveryCheckString(check), nil
	}
	return unknown, nil
}

// conditionDescription 条件完整描述，如 "Host group equals Linux servers"
func conditionDescription(c monitorModel.ConditionInput, name string) string {
	switch c.ConditionType {
	case monitorModel.ConditionSuppressed:
		if c.Operator == monitorModel.OperatorYes {
			return "Problem is suppressed"
		}
		return "Problem is not suppressed"
	case monitorModel.ConditionEventAcknowledged:
		if c.Value != "" && c.Value != "0" {
			return "Event is acknowledged"
		}
		return "Event is not acknowledged"
	}

	var b strings.Builder
	if c.ConditionType == monitorModel.ConditionEventTagValue {
		b.WriteString("Value of tag ")
		b.WriteString(c.Value2)
	} else {
		b.WriteString(conditionTypeLabels[c.ConditionType])
	}
	b.WriteString(" ")
	b.WriteString(operatorLabels[c.Operator])
	if c.Operator != monitorModel.OperatorExists && c.Operator != monitorModel.OperatorNotExists {
		b.WriteString(" ")
		b.WriteString(name)
	}
	return b.String()
}

// discoveryCheckString 发现检查的可读描述，如 `Agent (10050) "system.uname"`
func discoveryCheckString(check monitorModel.DiscoveryCheck) string {
	var b strings.Builder
	b.WriteString(labelOf(strconv.Itoa(check.Type), dcheckTypeNames, "Unknown"))
	if check.Ports != "" && check.Ports != "0" {
		b.WriteString(" (" + check.Ports + ")")
	}
	if check.Key != "" {
		b.WriteString(` "` + check.Key + `"`)
	}
	if check.Type == monitorModel.DCheckICMPPing && check.AllowRedirect {
		b.WriteString(` "allow redirect"`)
	}
	return b.String()
}

func labelOf(value string, names map[int]string, fallback string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	if name, ok := names[n]; ok {
		return name
	}
	return fallback
}

func nameOr(names map[uint64]string, id uint64, fallback string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fallback
}

package monitor

import (
	"neomonitor/internal/model/basemodel"
)

// Trigger 触发器
// TemplateID 指向模板中的父触发器，主机触发器从模板继承时非零
type Trigger struct {
	basemodel.BaseModel

	HostID      uint64   `json:"hostid" gorm:"index;not null;comment:所属主机ID"`
	Description string   `json:"description" gorm:"size:255;not null;comment:名称"`
	Expression  string   `json:"expression" gorm:"size:2048;comment:表达式"`
	Priority    Severity `json:"priority" gorm:"default:0;comment:级别"`
	Status      int      `json:"status" gorm:"default:0;comment:状态:0-启用,1-禁用"`
	Value       int      `json:"value" gorm:"default:0;comment:当前值:0-正常,1-问题"`
	TemplateID  uint64   `json:"templateid" gorm:"index;default:0;comment:父触发器ID"`
}

// TableName 定义数据库表名
func (Trigger) TableName() string {
	return "triggers"
}

// Event 事件
// Source=0/Object=0 时 ObjectID 为触发器ID
type Event struct {
	basemodel.BaseModel

	Source       int      `json:"source" gorm:"default:0;index:idx_event_object,priority:1;comment:事件来源"`
	Object       int      `json:"object" gorm:"default:0;index:idx_event_object,priority:2;comment:事件对象"`
	ObjectID     uint64   `json:"objectid" gorm:"index:idx_event_object,priority:3;comment:对象ID"`
	Clock        int64    `json:"clock" gorm:"index:idx_event_object,priority:4;comment:发生时间(unix)"`
	Value        int      `json:"value" gorm:"default:0;comment:值:0-恢复,1-问题"`
	Name         string   `json:"name" gorm:"size:2048;comment:事件名称"`
	Severity     Severity `json:"severity" gorm:"default:0;comment:级别"`
	Acknowledged bool     `json:"acknowledged" gorm:"default:false;comment:是否已确认"`
}

// TableName 定义数据库表名
func (Event) TableName() string {
	return "events"
}

// Item 监控项
type Item struct {
	basemodel.BaseModel

	HostID    uint64 `json:"hostid" gorm:"index;not null;comment:所属主机ID"`
	Name      string `json:"name" gorm:"size:255;index;not null;comment:名称"`
	Key       string `json:"key_" gorm:"column:key_;size:2048;not null;comment:监控项键值"`
	ValueType int    `json:"value_type" gorm:"default:0;comment:值类型:0-浮点,1-字符,2-日志,3-整数,4-文本"`
	Units     string `json:"units" gorm:"size:255;comment:单位"`
	Status    int    `json:"status" gorm:"default:0;comment:状态:0-启用,1-禁用"`
}

// TableName 定义数据库表名
func (Item) TableName() string {
	return "items"
}

// IsNumeric 是否为数值类型监控项
func (i *Item) IsNumeric() bool {
	return i.ValueType == ItemValueFloat || i.ValueType == ItemValueUint64
}

// History 历史数据
// 数值类型写 Value，字符类型写 ValueText
type History struct {
	ID        uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemID    uint64  `json:"itemid" gorm:"index:idx_history_item_clock,priority:1;not null;comment:监控项ID"`
	Clock     int64   `json:"clock" gorm:"index:idx_history_item_clock,priority:2;not null;comment:采集时间(unix)"`
	Value     float64 `json:"value" gorm:"default:0;comment:数值"`
	ValueText string  `json:"value_text" gorm:"type:text;comment:文本值"`
}

// TableName 定义数据库表名
func (History) TableName() string {
	return "history"
}

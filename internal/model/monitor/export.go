package monitor

// 模板导出格式(YAML)
// 引用关系按名称导出，导入时再解析为ID

// TemplateExport 导出文档根节点
type TemplateExport struct {
	Export TemplateExportBody `yaml:"zabbix_export"`
}

// TemplateExportBody 导出内容
type TemplateExportBody struct {
	Version        string               `yaml:"version"`
	TemplateGroups []ExportName         `yaml:"template_groups,omitempty"`
	Templates      []ExportTemplateItem `yaml:"templates"`
}

// ExportName 按名称引用的对象
type ExportName struct {
	Name string `yaml:"name"`
}

// ExportVendor 厂商信息
type ExportVendor struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// ExportTag 标签
type ExportTag struct {
	Tag   string `yaml:"tag"`
	Value string `yaml:"value,omitempty"`
}

// ExportItem 监控项
type ExportItem struct {
	Name      string `yaml:"name"`
	Key       string `yaml:"key"`
	ValueType string `yaml:"value_type,omitempty"`
	Units     string `yaml:"units,omitempty"`
}

// ExportTemplateItem 单个模板
type ExportTemplateItem struct {
	Template    string        `yaml:"template"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Vendor      *ExportVendor `yaml:"vendor,omitempty"`
	Templates   []ExportName  `yaml:"templates,omitempty"`
	Groups      []ExportName  `yaml:"groups"`
	Items       []ExportItem  `yaml:"items,omitempty"`
	Tags        []ExportTag   `yaml:"tags,omitempty"`
}

// ItemValueTypeName 导出时的值类型名称，浮点类型为默认值不导出
func ItemValueTypeName(t int) string {
	switch t {
	case ItemValueString:
		return "CHAR"
	case ItemValueLog:
		return "LOG"
	case ItemValueUint64:
		return "UNSIGNED"
	case ItemValueText:
		return "TEXT"
	default:
		return ""
	}
}

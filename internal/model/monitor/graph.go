package monitor

import (
	"neomonitor/internal/model/basemodel"
)

// Graph 图形
// 图形本身不记录主机，所属主机由图形项引用的监控项决定
type Graph struct {
	basemodel.BaseModel

	Name       string      `json:"name" gorm:"size:128;index;not null;comment:名称"`
	Width      int         `json:"width" gorm:"default:900;comment:宽度"`
	Height     int         `json:"height" gorm:"default:200;comment:高度"`
	GraphType  int         `json:"graphtype" gorm:"default:0;comment:类型:0-普通,1-堆叠,2-饼图,3-分离饼图"`
	ShowLegend bool        `json:"show_legend" gorm:"comment:显示图例"`
	YAxisMin   float64     `json:"yaxismin" gorm:"default:0;comment:Y轴最小值"`
	YAxisMax   float64     `json:"yaxismax" gorm:"default:100;comment:Y轴最大值"`
	TemplateID uint64      `json:"templateid" gorm:"default:0;comment:父图形ID"`
	Items      []GraphItem `json:"gitems,omitempty" gorm:"foreignKey:GraphID"`

	// 查询时填充
	Hosts []Host `json:"hosts,omitempty" gorm:"-"`
}

// TableName 定义数据库表名
func (Graph) TableName() string {
	return "graphs"
}

// HostIDs 图形涉及的主机ID
func (g *Graph) HostIDs() []uint64 {
	ids := make([]uint64, 0, len(g.Hosts))
	for _, h := range g.Hosts {
		ids = append(ids, h.ID)
	}
	return ids
}

// GraphItem 图形项
type GraphItem struct {
	basemodel.BaseModel

	GraphID   uint64 `json:"graphid" gorm:"index;not null;comment:图形ID"`
	ItemID    uint64 `json:"itemid" gorm:"index;not null;comment:监控项ID"`
	DrawType  int    `json:"drawtype" gorm:"default:0;comment:绘制方式"`
	SortOrder int    `json:"sortorder" gorm:"default:0;comment:顺序"`
	Color     string `json:"color" gorm:"size:6;default:'009600';comment:颜色"`
	YAxisSide int    `json:"yaxisside" gorm:"default:0;comment:Y轴位置:0-左,1-右"`
	CalcFnc   int    `json:"calc_fnc" gorm:"default:2;comment:计算函数"`
}

// TableName 定义数据库表名
func (GraphItem) TableName() string {
	return "graphs_items"
}

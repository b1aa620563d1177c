/**
 * 监控服务层:Top Hosts 组件
 * @author: sun977
 * @date: 2025.12.08
 * @description: 按指定列的数值对主机排序，取前 N 或后 N 台
 *   每列按监控项名称在每台主机上精确匹配一个数值型监控项，取最新值或区间聚合值
 */
package monitor

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/validator"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// 未指定聚合区间时使用 1 小时
const defaultAggregatePeriod = int64(time.Hour / time.Second)

// TopHostsService Top Hosts 组件服务
type TopHostsService struct {
	hostRepo *monitorrepo.HostRepository
	itemRepo *monitorrepo.ItemRepository
	settings *Settings
	now      func() time.Time
}

// NewTopHostsService 创建 Top Hosts 组件服务
func NewTopHostsService(hostRepo *monitorrepo.HostRepository, itemRepo *monitorrepo.ItemRepository, settings *Settings) *TopHostsService {
	return &TopHostsService{
		hostRepo: hostRepo,
		itemRepo: itemRepo,
		settings: settings,
		now:      time.Now,
	}
}

// columnData 一列在各主机上的监控项和值
type columnData struct {
	items  map[uint64]monitorModel.Item // hostID -> item
	values map[uint64]float64           // itemID -> value
}

// Get 计算组件数据
func (s *TopHostsService) Get(ctx context.Context, req *monitorModel.TopHostsRequest) (*monitorModel.TopHostsResponse, error) {
	if req == nil {
		return nil, system.NewValidationError("请求体不能为空")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Column >= len(req.Columns) {
		return nil, system.NewFieldValidationError("column", "排序列不存在")
	}

	const title = "无法获取主机排行数据"
	resp := &monitorModel.TopHostsResponse{Columns: make([]string, 0, len(req.Columns)), Rows: []monitorModel.TopHostsRow{}}
	for _, c := range req.Columns {
		resp.Columns = append(resp.Columns, c.Name)
	}

	hosts, err := s.hostRepo.ListHosts(ctx, monitorModel.BuildTopHostsQuery(req))
	if err != nil {
		return nil, listFailed(title, err)
	}
	if len(hosts) == 0 {
		return resp, nil
	}
	hostIDs := make([]uint64, 0, len(hosts))
	for _, h := range hosts {
		hostIDs = append(hostIDs, h.ID)
	}

	columns, err := s.columnValues(ctx, req.Columns, hostIDs)
	if err != nil {
		return nil, listFailed(title, err)
	}

	// 排序列没有数值的主机不显示
	order := columns[req.Column]
	ranked := make([]monitorModel.Host, 0, len(hosts))
	for _, h := range hosts {
		if _, ok := columnValue(order, h.ID); ok {
			ranked = append(ranked, h)
		}
	}
	slices.SortStableFunc(ranked, func(a, b monitorModel.Host) int {
		va, _ := columnValue(order, a.ID)
		vb, _ := columnValue(order, b.ID)
		c := cmp.Compare(vb, va)
		if req.Order == monitorModel.TopHostsOrderBottom {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	lines := min(req.ShowLines, s.settings.TopHostsMaxLines())
	if len(ranked) > lines {
		ranked = ranked[:lines]
	}

	for _, h := range ranked {
		row := monitorModel.TopHostsRow{HostID: h.ID, HostName: h.Name, Cells: make([]monitorModel.TopHostsCell, 0, len(req.Columns))}
		for i, col := range req.Columns {
			cell := monitorModel.TopHostsCell{}
			if item, ok := columns[i].items[h.ID]; ok {
				cell.ItemID = item.ID
				if v, ok := columns[i].values[item.ID]; ok {
					value := v
					cell.Value = &value
					cell.Formatted = formatValue(v, item.Units, col.Decimals)
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// columnValues 解析每列在各主机上的监控项并取值
func (s *TopHostsService) columnValues(ctx context.Context, columns []monitorModel.TopHostsColumn, hostIDs []uint64) ([]columnData, error) {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		if !slices.Contains(names, c.Item) {
			names = append(names, c.Item)
		}
	}
	items, err := s.itemRepo.FindItemsByName(ctx, hostIDs, names)
	if err != nil {
		return nil, err
	}
	// 名称 -> 主机 -> 监控项，同名时取ID最小的数值型监控项
	byName := map[string]map[uint64]monitorModel.Item{}
	for _, it := range items {
		if !it.IsNumeric() {
			continue
		}
		if byName[it.Name] == nil {
			byName[it.Name] = map[uint64]monitorModel.Item{}
		}
		if _, ok := byName[it.Name][it.HostID]; !ok {
			byName[it.Name][it.HostID] = it
		}
	}

	now := s.now().Unix()
	out := make([]columnData, 0, len(columns))
	for _, c := range columns {
		data := columnData{items: byName[c.Item], values: map[uint64]float64{}}
		ids := make([]uint64, 0, len(data.items))
		for _, it := range data.items {
			ids = append(ids, it.ID)
		}
		if len(ids) > 0 {
			if c.Aggregate == monitorModel.AggregateNone {
				data.values, err = s.itemRepo.LastValues(ctx, ids)
			} else {
				period := c.Period
				if period <= 0 {
					period = defaultAggregatePeriod
				}
				data.values, err = s.itemRepo.Aggregate(ctx, ids, c.Aggregate, now-period, now)
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, data)
	}
	return out, nil
}

func columnValue(c columnData, hostID uint64) (float64, bool) {
	item, ok := c.items[hostID]
	if !ok {
		return 0, false
	}
	v, ok := c.values[item.ID]
	return v, ok
}

// formatValue 按单位格式化数值: B 使用二进制前缀，s 显示为时长，其他为定点小数加单位
func formatValue(v float64, units string, decimals int) string {
	switch units {
	case "B":
		if v >= 0 && v < math.MaxUint64 {
			return humanize.IBytes(uint64(v))
		}
	case "s":
		return formatDuration(v)
	}
	out := strconv.FormatFloat(v, 'f', decimals, 64)
	if units != "" {
		out += " " + units
	}
	return out
}

// formatDuration 秒数显示为最多三个单位，如 "1d 2h 3m"，不足一秒显示毫秒
func formatDuration(seconds float64) string {
	if seconds == 0 {
		return "0s"
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	if seconds < 1 {
		return fmt.Sprintf("%s%dms", sign, int64(math.Round(seconds*1000)))
	}

	units := []struct {
		suffix string
		size   int64
	}{
		{"y", 365 * 86400},
		{"M", 30 * 86400},
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}
	rest := int64(math.Round(seconds))
	parts := make([]string, 0, 3)
	for _, u := range units {
		if len(parts) == 3 {
			break
		}
		if n := rest / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(n, 10)+u.suffix)
			rest -= n * u.size
		}
	}
	return sign + strings.Join(parts, " ")
}

package monitor

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/logger"
)

// ItemRepository 监控项与历史数据仓库
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建监控项仓库实例
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// FindItemsByName 获取主机上指定名称的启用监控项
func (r *ItemRepository) FindItemsByName(ctx context.Context, hostIDs []uint64, names []string) ([]monitorModel.Item, error) {
	var items []monitorModel.Item
	if len(hostIDs) == 0 || len(names) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("host_id IN ? AND name IN ? AND status = 0", hostIDs, names).
		Order("id").
		Find(&items).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.item.FindItemsByName", "REPO", nil)
		return nil, err
	}
	return items, nil
}

// GetItemsByHosts 获取主机的全部监控项(模板导出使用)
func (r *ItemRepository) GetItemsByHosts(ctx context.Context, hostIDs []uint64) ([]monitorModel.Item, error) {
	var items []monitorModel.Item
	if len(hostIDs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("host_id IN ?", hostIDs).Order("host_id, name, id").Find(&items).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.item.GetItemsByHosts", "REPO", nil)
		return nil, err
	}
	return items, nil
}

// LastValues 每个监控项的最新值(按采集时间，时间相同取后写入的记录)
func (r *ItemRepository) LastValues(ctx context.Context, itemIDs []uint64) (map[uint64]float64, error) {
	if len(itemIDs) == 0 {
		return map[uint64]float64{}, nil
	}
	rows, err := r.edgeRows(ctx, itemIDs, true, nil)
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.item.LastValues", "REPO", nil)
		return nil, err
	}
	return historyValues(rows), nil
}

// Aggregate 对 [from, to] 内的历史数据做聚合，没有数据的监控项不出现在结果中
func (r *ItemRepository) Aggregate(ctx context.Context, itemIDs []uint64, function int, from, to int64) (map[uint64]float64, error) {
	out := map[uint64]float64{}
	if len(itemIDs) == 0 {
		return out, nil
	}

	switch function {
	case monitorModel.AggregateFirst, monitorModel.AggregateLast:
		return r.edgeValues(ctx, itemIDs, function == monitorModel.AggregateFirst, from, to)
	}

	var expr string
	switch function {
	case monitorModel.AggregateMin:
		expr = "MIN(value)"
	case monitorModel.AggregateMax:
		expr = "MAX(value)"
	case monitorModel.AggregateAvg:
		expr = "AVG(value)"
	case monitorModel.AggregateCount:
		expr = "COUNT(*)"
	case monitorModel.AggregateSum:
		expr = "SUM(value)"
	default:
		return nil, fmt.Errorf("unsupported aggregate function %d", function)
	}

	var rows []struct {
		ItemID uint64
		Value  float64
	}
	err := r.db.WithContext(ctx).Model(&monitorModel.History{}).
		Select("item_id, "+expr+" AS value").
		Where("item_id IN ? AND clock >= ? AND clock <= ?", itemIDs, from, to).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.item.Aggregate", "REPO", map[string]interface{}{
			"function": function,
		})
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = row.Value
	}
	return out, nil
}

// edgeValues 区间内第一个或最后一个值
func (r *ItemRepository) edgeValues(ctx context.Context, itemIDs []uint64, first bool, from, to int64) (map[uint64]float64, error) {
	rows, err := r.edgeRows(ctx, itemIDs, !first, &[2]int64{from, to})
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.item.edgeValues", "REPO", map[string]interface{}{
			"first": first,
		})
		return nil, err
	}
	return historyValues(rows), nil
}

// edgeRows 每个监控项按 clock 排序后的首条或末条历史记录，clock 相同按 id 决定
// window 不为空时只在 [window[0], window[1]] 内选取
func (r *ItemRepository) edgeRows(ctx context.Context, itemIDs []uint64, newest bool, window *[2]int64) ([]monitorModel.History, error) {
	dir := "ASC"
	if newest {
		dir = "DESC"
	}
	sub := "SELECT h2.id FROM history h2 WHERE h2.item_id = history.item_id"
	var args []interface{}
	if window != nil {
		sub += " AND h2.clock >= ? AND h2.clock <= ?"
		args = append(args, window[0], window[1])
	}
	sub += " ORDER BY h2.clock " + dir + ", h2.id " + dir + " LIMIT 1"

	var rows []monitorModel.History
	err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Where("id = ("+sub+")", args...).
		Find(&rows).Error
	return rows, err
}

func historyValues(rows []monitorModel.History) map[uint64]float64 {
	out := make(map[uint64]float64, len(rows))
	for _, h := range rows {
		out[h.ItemID] = h.Value
	}
	return out
}

// AddHistory 写入历史数据(数据导入与测试使用)
func (r *ItemRepository) AddHistory(ctx context.Context, rows []monitorModel.History) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.item.AddHistory", "REPO", nil)
		return err
	}
	return nil
}


/**
 * 监控仓库层:图形数据访问
 * @author: sun977
 * @date: 2025.12.06
 * @description: 图形本身不记录所属主机，主机由图形项 -> 监控项 -> 主机推导
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package monitor

import (
	"context"
	"errors"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/logger"
)

// GraphRepository 图形仓库
type GraphRepository struct {
	db *gorm.DB
}

// NewGraphRepository 创建图形仓库实例
func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

var graphSortColumns = map[string]string{
	"name":      "name",
	"graphtype": "graph_type",
}

// ListGraphs 按条件查询图形，并填充每个图形涉及的主机
func (r *GraphRepository) ListGraphs(ctx context.Context, q monitorModel.GraphQuery) ([]monitorModel.Graph, error) {
	db := r.db.WithContext(ctx).Model(&monitorModel.Graph{})
	db = whereLike(db, "graphs.name", q.SearchName)

	if len(q.HostIDs) > 0 || len(q.GroupIDs) > 0 {
		sub := r.db.Model(&monitorModel.GraphItem{}).
			Select("graphs_items.graph_id").
			Joins("JOIN items ON items.id = graphs_items.item_id")
		if len(q.HostIDs) > 0 {
			sub = sub.Where("items.host_id IN ?", q.HostIDs)
		}
		if len(q.GroupIDs) > 0 {
			sub = sub.Where("items.host_id IN (?)", r.db.Model(&monitorModel.HostsGroups{}).Select("host_id").Where("group_id IN ?", q.GroupIDs))
		}
		db = db.Where("graphs.id IN (?)", sub)
	}
	if len(q.GraphIDs) > 0 {
		db = db.Where("graphs.id IN ?", q.GraphIDs)
	}

	db = orderBy(db, graphSortColumns, q.SortField, q.SortOrder, "name")
	db = limit(db, q.Limit)

	var graphs []monitorModel.Graph
	if err := db.Find(&graphs).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.ListGraphs", "REPO", nil)
		return nil, err
	}
	if err := r.attachHosts(ctx, graphs); err != nil {
		return nil, err
	}
	return graphs, nil
}

// attachHosts 批量填充图形涉及的主机
func (r *GraphRepository) attachHosts(ctx context.Context, graphs []monitorModel.Graph) error {
	if len(graphs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(graphs))
	for _, g := range graphs {
		ids = append(ids, g.ID)
	}

	var rows []struct {
		GraphID  uint64
		HostID   uint64
		HostName string
	}
	err := r.db.WithContext(ctx).Table("graphs_items").
		Select("DISTINCT graphs_items.graph_id AS graph_id, hosts.id AS host_id, hosts.name AS host_name").
		Joins("JOIN items ON items.id = graphs_items.item_id").
		Joins("JOIN hosts ON hosts.id = items.host_id").
		Where("graphs_items.graph_id IN ?", ids).
		Order("hosts.name ASC").
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.attachHosts", "REPO", nil)
		return err
	}

	byGraph := map[uint64][]monitorModel.Host{}
	for _, row := range rows {
		h := monitorModel.Host{Name: row.HostName}
		h.ID = row.HostID
		byGraph[row.GraphID] = append(byGraph[row.GraphID], h)
	}
	for i := range graphs {
		graphs[i].Hosts = byGraph[graphs[i].ID]
	}
	return nil
}

// GetGraphsWithItems 获取图形及其图形项、引用的监控项
func (r *GraphRepository) GetGraphsWithItems(ctx context.Context, ids []uint64) ([]monitorModel.Graph, map[uint64]monitorModel.Item, error) {
	var graphs []monitorModel.Graph
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Find(&graphs).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.GetGraphsWithItems", "REPO", nil)
		return nil, nil, err
	}

	var itemIDs []uint64
	for _, g := range graphs {
		for _, gi := range g.Items {
			itemIDs = append(itemIDs, gi.ItemID)
		}
	}
	items := map[uint64]monitorModel.Item{}
	if len(itemIDs) == 0 {
		return graphs, items, nil
	}
	var list []monitorModel.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", itemIDs).Find(&list).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.GetGraphsWithItems", "REPO", nil)
		return nil, nil, err
	}
	for _, it := range list {
		items[it.ID] = it
	}
	return graphs, items, nil
}

// FindItemsByKeys 获取主机上指定键值的监控项，返回 key -> Item
func (r *GraphRepository) FindItemsByKeys(ctx context.Context, hostID uint64, keys []string) (map[string]monitorModel.Item, error) {
	out := map[string]monitorModel.Item{}
	if len(keys) == 0 {
		return out, nil
	}
	var items []monitorModel.Item
	if err := r.db.WithContext(ctx).Where("host_id = ? AND key_ IN ?", hostID, keys).Find(&items).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.FindItemsByKeys", "REPO", nil)
		return nil, err
	}
	for _, it := range items {
		out[it.Key] = it
	}
	return out, nil
}

// GraphNameExists 主机上是否已有同名图形
func (r *GraphRepository) GraphNameExists(ctx context.Context, hostID uint64, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&monitorModel.Graph{}).
		Where("graphs.name = ?", name).
		Where("graphs.id IN (?)", r.db.Model(&monitorModel.GraphItem{}).
			Select("graphs_items.graph_id").
			Joins("JOIN items ON items.id = graphs_items.item_id").
			Where("items.host_id = ?", hostID)).
		Count(&count).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.GraphNameExists", "REPO", nil)
		return false, err
	}
	return count > 0, nil
}

// CreateGraph 在事务中创建图形及其图形项
func (r *GraphRepository) CreateGraph(ctx context.Context, graph *monitorModel.Graph) error {
	if len(graph.Items) == 0 {
		return errors.New("graph must contain at least one item")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(graph).Error
	})
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.graph.CreateGraph", "REPO", map[string]interface{}{
			"name": graph.Name,
		})
		return err
	}
	return nil
}

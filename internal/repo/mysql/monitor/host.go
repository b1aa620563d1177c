/**
 * 监控仓库层:主机/模板数据访问
 * @author: sun977
 * @date: 2025.12.05
 * @description: 主机、模板、主机组、维护期的查询，以及列表附加信息(监控项/触发器/图形/主机数量)的批量统计
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package monitor

import (
	"context"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/logger"
)

// HostRepository 主机仓库
type HostRepository struct {
	db *gorm.DB
}

// NewHostRepository 创建主机仓库实例
func NewHostRepository(db *gorm.DB) *HostRepository {
	return &HostRepository{db: db}
}

var hostSortColumns = map[string]string{
	"name":   "name",
	"status": "status",
}

// ListHosts 按条件查询主机(不含模板)，预加载接口、标签、主机组和链接的模板
func (r *HostRepository) ListHosts(ctx context.Context, q monitorModel.HostQuery) ([]monitorModel.Host, error) {
	db := r.db.WithContext(ctx).Model(&monitorModel.Host{}).
		Where("hosts.status IN ?", []monitorModel.HostStatus{monitorModel.HostStatusMonitored, monitorModel.HostStatusNotMonitored})

	db = whereLike(db, "hosts.name", q.SearchName)
	if q.Status != nil {
		db = db.Where("hosts.status = ?", *q.Status)
	}
	if q.SearchIP != nil || q.SearchDNS != nil || q.SearchPort != nil {
		sub := r.db.Model(&monitorModel.HostInterface{}).Select("host_id")
		sub = whereLike(sub, "ip", q.SearchIP)
		sub = whereLike(sub, "dns", q.SearchDNS)
		sub = whereLike(sub, "port", q.SearchPort)
		db = db.Where("hosts.id IN (?)", sub)
	}
	if len(q.GroupIDs) > 0 {
		db = db.Where("hosts.id IN (?)", r.db.Model(&monitorModel.HostsGroups{}).Select("host_id").Where("group_id IN ?", q.GroupIDs))
	}
	if len(q.TemplateIDs) > 0 {
		db = db.Where("hosts.id IN (?)", r.db.Model(&monitorModel.HostsTemplates{}).Select("host_id").Where("template_id IN ?", q.TemplateIDs))
	}
	switch q.MonitoredBy {
	case monitorModel.MonitoredByServer:
		db = db.Where("hosts.monitored_by = ?", 0)
	case monitorModel.MonitoredByProxy:
		db = db.Where("hosts.monitored_by = ?", monitorModel.MonitoredByProxy)
		if len(q.ProxyIDs) > 0 {
			db = db.Where("hosts.proxy_id IN ?", q.ProxyIDs)
		}
	}
	if len(q.HostIDs) > 0 {
		db = db.Where("hosts.id IN ?", q.HostIDs)
	}
	if sql, args := tagConditions(q.Tags, q.EvalType, "hosts.id"); sql != "" {
		db = db.Where(sql, args...)
	}

	db = orderBy(db, hostSortColumns, q.SortField, q.SortOrder, "name")
	db = limit(db, q.Limit)

	var hosts []monitorModel.Host
	err := db.Preload("Interfaces").Preload("Tags").Preload("Groups").Preload("Templates").Find(&hosts).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.ListHosts", "REPO", map[string]interface{}{
			"operation": "list_hosts",
		})
		return nil, err
	}
	return hosts, nil
}

var templateSortColumns = map[string]string{
	"name": "name",
}

// ListTemplates 按条件查询模板，预加载标签、模板组和父模板
func (r *HostRepository) ListTemplates(ctx context.Context, q monitorModel.TemplateQuery) ([]monitorModel.Host, error) {
	db := r.db.WithContext(ctx).Model(&monitorModel.Host{}).Where("hosts.status = ?", monitorModel.HostStatusTemplate)

	db = whereLike(db, "hosts.name", q.SearchName)
	db = whereLike(db, "hosts.vendor_name", q.SearchVendorName)
	db = whereLike(db, "hosts.vendor_version", q.SearchVendorVersion)
	if len(q.GroupIDs) > 0 {
		db = db.Where("hosts.id IN (?)", r.db.Model(&monitorModel.HostsGroups{}).Select("host_id").Where("group_id IN ?", q.GroupIDs))
	}
	if len(q.ParentTemplateIDs) > 0 {
		db = db.Where("hosts.id IN (?)", r.db.Model(&monitorModel.HostsTemplates{}).Select("host_id").Where("template_id IN ?", q.ParentTemplateIDs))
	}
	if len(q.TemplateIDs) > 0 {
		db = db.Where("hosts.id IN ?", q.TemplateIDs)
	}
	if sql, args := tagConditions(q.Tags, q.EvalType, "hosts.id"); sql != "" {
		db = db.Where(sql, args...)
	}

	db = orderBy(db, templateSortColumns, q.SortField, q.SortOrder, "name")
	db = limit(db, q.Limit)

	var templates []monitorModel.Host
	if err := db.Preload("Tags").Preload("Groups").Preload("Templates").Find(&templates).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.host.ListTemplates", "REPO", map[string]interface{}{
			"operation": "list_templates",
		})
		return nil, err
	}
	return templates, nil
}

// GetTemplatesForExport 获取导出所需的模板完整信息
func (r *HostRepository) GetTemplatesForExport(ctx context.Context, templateIDs []uint64) ([]monitorModel.Host, error) {
	var templates []monitorModel.Host
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", templateIDs, monitorModel.HostStatusTemplate).
		Order("name ASC").
		Preload("Tags").Preload("Groups").Preload("Templates").
		Find(&templates).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.GetTemplatesForExport", "REPO", nil)
		return nil, err
	}
	return templates, nil
}

// GetHostNames 按ID批量获取主机(或模板)名称
func (r *HostRepository) GetHostNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	return r.names(ctx, &monitorModel.Host{}, ids, "repo.host.GetHostNames")
}

// GetGroupNames 按ID批量获取主机组名称
func (r *HostRepository) GetGroupNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	return r.names(ctx, &monitorModel.HostGroup{}, ids, "repo.host.GetGroupNames")
}

// GetMaintenanceNames 按ID批量获取维护期名称
func (r *HostRepository) GetMaintenanceNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	return r.names(ctx, &monitorModel.Maintenance{}, ids, "repo.host.GetMaintenanceNames")
}

func (r *HostRepository) names(ctx context.Context, model interface{}, ids []uint64, op string) (map[uint64]string, error) {
	out := map[uint64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID   uint64
		Name string
	}
	if err := r.db.WithContext(ctx).Model(model).Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		logger.LogError(err, "", 0, "", op, "REPO", nil)
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

// GetHostIDsByGroupIDs 获取主机组下的主机(不含模板)
func (r *HostRepository) GetHostIDsByGroupIDs(ctx context.Context, groupIDs []uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&monitorModel.HostsGroups{}).
		Joins("JOIN hosts ON hosts.id = hosts_groups.host_id").
		Where("hosts_groups.group_id IN ? AND hosts.status <> ?", groupIDs, monitorModel.HostStatusTemplate).
		Distinct().Order("hosts_groups.host_id").
		Pluck("hosts_groups.host_id", &ids).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.GetHostIDsByGroupIDs", "REPO", nil)
		return nil, err
	}
	return ids, nil
}

// GetTemplateIDsByGroupID 获取模板组下的模板
func (r *HostRepository) GetTemplateIDsByGroupID(ctx context.Context, groupID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&monitorModel.HostsGroups{}).
		Joins("JOIN hosts ON hosts.id = hosts_groups.host_id").
		Where("hosts_groups.group_id = ? AND hosts.status = ?", groupID, monitorModel.HostStatusTemplate).
		Order("hosts_groups.host_id").
		Pluck("hosts_groups.host_id", &ids).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.GetTemplateIDsByGroupID", "REPO", nil)
		return nil, err
	}
	return ids, nil
}

// ExistingHostIDs 过滤出存在的主机ID(不含模板)
func (r *HostRepository) ExistingHostIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	var out []uint64
	err := r.db.WithContext(ctx).Model(&monitorModel.Host{}).
		Where("id IN ? AND status <> ?", ids, monitorModel.HostStatusTemplate).
		Order("id").Pluck("id", &out).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.ExistingHostIDs", "REPO", nil)
		return nil, err
	}
	return out, nil
}

// CountItems 统计每台主机的监控项数量
func (r *HostRepository) CountItems(ctx context.Context, hostIDs []uint64) (map[uint64]int64, error) {
	return r.countBy(ctx, "items", "host_id", hostIDs, "repo.host.CountItems")
}

// CountTriggers 统计每台主机的触发器数量
func (r *HostRepository) CountTriggers(ctx context.Context, hostIDs []uint64) (map[uint64]int64, error) {
	return r.countBy(ctx, "triggers", "host_id", hostIDs, "repo.host.CountTriggers")
}

// CountLinkedHosts 统计直接链接每个模板的主机数量(不含模板)
func (r *HostRepository) CountLinkedHosts(ctx context.Context, templateIDs []uint64) (map[uint64]int64, error) {
	if len(templateIDs) == 0 {
		return map[uint64]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Table("hosts_templates").
		Select("hosts_templates.template_id AS id, COUNT(*) AS total").
		Joins("JOIN hosts ON hosts.id = hosts_templates.host_id").
		Where("hosts_templates.template_id IN ? AND hosts.status <> ?", templateIDs, monitorModel.HostStatusTemplate).
		Group("hosts_templates.template_id").
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.CountLinkedHosts", "REPO", nil)
		return nil, err
	}
	return countMap(rows), nil
}

// CountGraphs 统计每台主机的图形数量(图形项引用该主机的监控项)
func (r *HostRepository) CountGraphs(ctx context.Context, hostIDs []uint64) (map[uint64]int64, error) {
	if len(hostIDs) == 0 {
		return map[uint64]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Table("graphs_items").
		Select("items.host_id AS id, COUNT(DISTINCT graphs_items.graph_id) AS total").
		Joins("JOIN items ON items.id = graphs_items.item_id").
		Where("items.host_id IN ?", hostIDs).
		Group("items.host_id").
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.host.CountGraphs", "REPO", nil)
		return nil, err
	}
	return countMap(rows), nil
}

func (r *HostRepository) countBy(ctx context.Context, table, column string, ids []uint64, op string) (map[uint64]int64, error) {
	if len(ids) == 0 {
		return map[uint64]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Table(table).
		Select(column+" AS id, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", op, "REPO", nil)
		return nil, err
	}
	return countMap(rows), nil
}

package monitor

import (
	"context"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/logger"
)

// TriggerRepository 触发器与事件仓库
type TriggerRepository struct {
	db *gorm.DB
}

// NewTriggerRepository 创建触发器仓库实例
func NewTriggerRepository(db *gorm.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

var triggerSortColumns = map[string]string{
	"name":      "triggers.description",
	"host_name": "hosts.name",
}

// ListTriggers 按条件查询触发器，同时返回所属主机名称
// 结果按 (主机名, 触发器名) 排序，排序字段为 problem 时由调用方计算后重新排序
func (r *TriggerRepository) ListTriggers(ctx context.Context, q monitorModel.TriggerQuery) ([]monitorModel.AvailabilityRow, error) {
	db := r.db.WithContext(ctx).Table("triggers").
		Select("triggers.id AS id, triggers.host_id AS host_id, hosts.name AS host_name, triggers.description AS name, triggers.priority AS priority").
		Joins("JOIN hosts ON hosts.id = triggers.host_id")

	if q.MonitoredOnly {
		db = db.Where("triggers.status = ? AND hosts.status = ?", monitorModel.TriggerStatusEnabled, monitorModel.HostStatusMonitored)
	}
	if len(q.GroupIDs) > 0 {
		db = db.Where("triggers.host_id IN (?)", r.db.Model(&monitorModel.HostsGroups{}).Select("host_id").Where("group_id IN ?", q.GroupIDs))
	}
	if len(q.HostIDs) > 0 {
		db = db.Where("triggers.host_id IN ?", q.HostIDs)
	}
	if q.InheritedOnly {
		db = db.Where("triggers.template_id <> 0")
	}
	if len(q.TemplateIDs) > 0 {
		db = db.Where("triggers.template_id IN (?)", r.db.Model(&monitorModel.Trigger{}).Select("id").Where("host_id IN ?", q.TemplateIDs))
	}
	if len(q.ParentTriggerIDs) > 0 {
		db = db.Where("triggers.template_id IN ?", q.ParentTriggerIDs)
	}
	if len(q.TriggerIDs) > 0 {
		db = db.Where("triggers.id IN ?", q.TriggerIDs)
	}

	column, ok := triggerSortColumns[q.SortField]
	if !ok {
		column = "hosts.name"
	}
	direction := "ASC"
	if q.SortOrder == "DESC" {
		direction = "DESC"
	}
	db = db.Order(column + " " + direction).Order("triggers.id ASC")
	db = limit(db, q.Limit)

	var rows []monitorModel.AvailabilityRow
	if err := db.Scan(&rows).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.trigger.ListTriggers", "REPO", nil)
		return nil, err
	}
	return rows, nil
}

// GetTriggers 按ID获取触发器
func (r *TriggerRepository) GetTriggers(ctx context.Context, ids []uint64) ([]monitorModel.Trigger, error) {
	var triggers []monitorModel.Trigger
	if len(ids) == 0 {
		return triggers, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&triggers).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.trigger.GetTriggers", "REPO", nil)
		return nil, err
	}
	return triggers, nil
}

// ListTriggerEvents 获取触发器在 (from, to] 内的事件，按时间升序
func (r *TriggerRepository) ListTriggerEvents(ctx context.Context, triggerIDs []uint64, from, to int64) ([]monitorModel.Event, error) {
	var events []monitorModel.Event
	if len(triggerIDs) == 0 {
		return events, nil
	}
	err := r.db.WithContext(ctx).
		Where("source = ? AND object = ? AND object_id IN ? AND clock > ? AND clock <= ?",
			monitorModel.EventSourceTriggers, monitorModel.EventObjectTrigger, triggerIDs, from, to).
		Order("object_id ASC, clock ASC, id ASC").
		Find(&events).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.trigger.ListTriggerEvents", "REPO", nil)
		return nil, err
	}
	return events, nil
}

// LastEventsBefore 获取每个触发器在 at(含) 之前的最后一个事件
func (r *TriggerRepository) LastEventsBefore(ctx context.Context, triggerIDs []uint64, at int64) (map[uint64]monitorModel.Event, error) {
	out := map[uint64]monitorModel.Event{}
	if len(triggerIDs) == 0 {
		return out, nil
	}
	latest := r.db.Model(&monitorModel.Event{}).
		Select("MAX(id)").
		Where("source = ? AND object = ? AND object_id IN ? AND clock <= ?",
			monitorModel.EventSourceTriggers, monitorModel.EventObjectTrigger, triggerIDs, at).
		Group("object_id")

	var events []monitorModel.Event
	if err := r.db.WithContext(ctx).Where("id IN (?)", latest).Find(&events).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.trigger.LastEventsBefore", "REPO", nil)
		return nil, err
	}
	for _, e := range events {
		out[e.ObjectID] = e
	}
	return out, nil
}

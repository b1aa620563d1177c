/**
 * 监控仓库层:动作数据访问
 * @author: sun977
 * @date: 2025.12.06
 * @description: 动作的创建与更新。更新时在同一事务中删除旧的条件/操作并重新创建
 *   同时提供动作条件名称解析所需的发现规则/发现检查查询
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package monitor

import (
	"context"
	"errors"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
)

// ActionRepository 动作仓库
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository 创建动作仓库实例
func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// GetByID 获取动作及其条件和操作，不存在时返回 nil, nil
func (r *ActionRepository) GetByID(ctx context.Context, id uint64) (*monitorModel.Action, error) {
	var action monitorModel.Action
	err := r.db.WithContext(ctx).
		Preload("Conditions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Operations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&action, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", 0, "", "repo.action.GetByID", "REPO", map[string]interface{}{
			"actionid": id,
		})
		return nil, err
	}
	return &action, nil
}

// NameExists 是否已有同名动作(排除指定ID)
func (r *ActionRepository) NameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&monitorModel.Action{}).Where("name = ?", name)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.action.NameExists", "REPO", nil)
		return false, err
	}
	return count > 0, nil
}

// Create 在事务中创建动作、条件和操作
func (r *ActionRepository) Create(ctx context.Context, action *monitorModel.Action) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(action).Error
	})
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.action.Create", "REPO", map[string]interface{}{
			"name": action.Name,
		})
		return err
	}
	return nil
}

// Update 在事务中更新动作，条件和操作整体替换
func (r *ActionRepository) Update(ctx context.Context, action *monitorModel.Action) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&monitorModel.Action{}).Where("id = ?", action.ID).Updates(map[string]interface{}{
			"name":               action.Name,
			"event_source":       action.EventSource,
			"status":             action.Status,
			"esc_period":         action.EscPeriod,
			"eval_type":          action.EvalType,
			"formula":            action.Formula,
			"pause_suppressed":   action.PauseSuppressed,
			"notify_if_canceled": action.NotifyIfCanceled,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return system.ErrNotFound
		}

		if err := tx.Where("action_id = ?", action.ID).Delete(&monitorModel.ActionCondition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("action_id = ?", action.ID).Delete(&monitorModel.ActionOperation{}).Error; err != nil {
			return err
		}

		for i := range action.Conditions {
			action.Conditions[i].ID = 0
			action.Conditions[i].ActionID = action.ID
		}
		for i := range action.Operations {
			action.Operations[i].ID = 0
			action.Operations[i].ActionID = action.ID
		}
		if len(action.Conditions) > 0 {
			if err := tx.Create(&action.Conditions).Error; err != nil {
				return err
			}
		}
		if len(action.Operations) > 0 {
			if err := tx.Create(&action.Operations).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, system.ErrNotFound) {
			logger.LogError(err, "", 0, "", "repo.action.Update", "REPO", map[string]interface{}{
				"actionid": action.ID,
			})
		}
		return err
	}
	return nil
}

// GetDiscoveryRuleNames 按ID批量获取发现规则名称
func (r *ActionRepository) GetDiscoveryRuleNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := map[uint64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	var rules []monitorModel.DiscoveryRule
	if err := r.db.WithContext(ctx).Select("id, name").Where("id IN ?", ids).Find(&rules).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.action.GetDiscoveryRuleNames", "REPO", nil)
		return nil, err
	}
	for _, rule := range rules {
		out[rule.ID] = rule.Name
	}
	return out, nil
}

// GetDiscoveryChecks 按ID批量获取发现检查，同时返回所属规则名称
func (r *ActionRepository) GetDiscoveryChecks(ctx context.Context, ids []uint64) (map[uint64]monitorModel.DiscoveryCheck, map[uint64]string, error) {
	checks := map[uint64]monitorModel.DiscoveryCheck{}
	if len(ids) == 0 {
		return checks, map[uint64]string{}, nil
	}
	var list []monitorModel.DiscoveryCheck
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.action.GetDiscoveryChecks", "REPO", nil)
		return nil, nil, err
	}
	ruleIDs := make([]uint64, 0, len(list))
	for _, c := range list {
		checks[c.ID] = c
		ruleIDs = append(ruleIDs, c.DRuleID)
	}
	ruleNames, err := r.GetDiscoveryRuleNames(ctx, ruleIDs)
	if err != nil {
		return nil, nil, err
	}
	return checks, ruleNames, nil
}

/**
 * 监控服务层:动作
 * @author: sun977
 * @date: 2025.12.07
 * @description: 动作条件校验与动作创建/更新
 *   处理顺序固定: 输入校验 -> 权限检查 -> 外部调用(名称唯一/事务写入)
 *   外部调用失败返回 OperationError，不重试
 * @func:
 *   - CheckCondition 校验单个条件并返回可读名称
 *   - Create 创建动作
 *   - Update 更新动作，条件与操作整体替换
 */
package monitor

import (
	"context"
	"fmt"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/validator"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// ActionService 动作服务
type ActionService struct {
	actionRepo  *monitorrepo.ActionRepository
	hostRepo    *monitorrepo.HostRepository
	proxyRepo   *monitorrepo.ProxyRepository
	triggerRepo *monitorrepo.TriggerRepository
}

// NewActionService 创建动作服务
func NewActionService(actionRepo *monitorrepo.ActionRepository, hostRepo *monitorrepo.HostRepository, proxyRepo *monitorrepo.ProxyRepository, triggerRepo *monitorrepo.TriggerRepository) *ActionService {
	return &ActionService{
		actionRepo:  actionRepo,
		hostRepo:    hostRepo,
		proxyRepo:   proxyRepo,
		triggerRepo: triggerRepo,
	}
}

// CheckCondition 校验条件，返回条件及其可读名称和描述
func (s *ActionService) CheckCondition(ctx context.Context, req *monitorModel.ConditionCheckRequest) (*monitorModel.ConditionCheckResponse, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if err := validateCondition(req.EventSource, req.ConditionInput, "condition"); err != nil {
		return nil, err
	}

	name, err := s.conditionValueToString(ctx, req.ConditionInput)
	if err != nil {
		return nil, system.NewOperationError("无法解析条件", err)
	}
	return &monitorModel.ConditionCheckResponse{
		ConditionInput: req.ConditionInput,
		Name:           name,
		Description:    conditionDescription(req.ConditionInput, name),
	}, nil
}

// Create 创建动作
func (s *ActionService) Create(ctx context.Context, actor Actor, req *monitorModel.ActionRequest) (*monitorModel.Action, error) {
	if err := validateActionRequest(req); err != nil {
		return nil, err
	}
	if !actor.CanEdit() {
		return nil, system.ErrPermissionDenied
	}

	const title = "无法创建动作"
	exists, err := s.actionRepo.NameExists(ctx, req.Name, 0)
	if err != nil {
		return nil, system.NewOperationError(title, err)
	}
	if exists {
		return nil, system.NewOperationError(title, system.ErrAlreadyExists, system.ErrorDetail{
			Field:   "name",
			Message: fmt.Sprintf("动作 %q 已存在", req.Name),
		})
	}

	action := newAction(req)
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, system.NewOperationError(title, err)
	}

	logger.LogBusinessOperation("create_action", uint(actor.UserID), actor.Username, "", "", "success", "动作创建成功", map[string]interface{}{
		"actionid": action.ID,
		"name":     action.Name,
	})
	return action, nil
}

// Update 更新动作
func (s *ActionService) Update(ctx context.Context, actor Actor, id uint64, req *monitorModel.ActionRequest) (*monitorModel.Action, error) {
	if id == 0 {
		return nil, system.NewFieldValidationError("actionid", "动作ID无效")
	}
	if err := validateActionRequest(req); err != nil {
		return nil, err
	}
	if !actor.CanEdit() {
		return nil, system.ErrPermissionDenied
	}

	const title = "无法更新动作"
	current, err := s.actionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, system.NewOperationError(title, err)
	}
	if current == nil {
		return nil, system.NewOperationError(title, system.ErrNotFound)
	}
	exists, err := s.actionRepo.NameExists(ctx, req.Name, id)
	if err != nil {
		return nil, system.NewOperationError(title, err)
	}
	if exists {
		return nil, system.NewOperationError(title, system.ErrAlreadyExists, system.ErrorDetail{
			Field:   "name",
			Message: fmt.Sprintf("动作 %q 已存在", req.Name),
		})
	}

	action := newAction(req)
	action.ID = id
	action.CreatedAt = current.CreatedAt
	if err := s.actionRepo.Update(ctx, action); err != nil {
		return nil, system.NewOperationError(title, err)
	}

	logger.LogBusinessOperation("update_action", uint(actor.UserID), actor.Username, "", "", "success", "动作更新成功", map[string]interface{}{
		"actionid": action.ID,
		"name":     action.Name,
	})
	return action, nil
}

// validateActionRequest 结构体标签校验 + 逐个条件校验
func validateActionRequest(req *monitorModel.ActionRequest) error {
	if req == nil {
		return system.NewValidationError("请求体不能为空")
	}
	if err := validator.Struct(req); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, c := range req.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		if err := validateCondition(req.EventSource, c, field); err != nil {
			return err
		}
		if req.EvalType != monitorModel.ConditionEvalExpression {
			continue
		}
		if c.FormulaID == "" {
			return system.NewFieldValidationError(field+".formulaid", "自定义表达式需要条件标识")
		}
		if seen[c.FormulaID] {
			return system.NewFieldValidationError(field+".formulaid", "条件标识重复")
		}
		seen[c.FormulaID] = true
	}
	return nil
}

// newAction 请求转换为动作模型，操作按提交内容保存
func newAction(req *monitorModel.ActionRequest) *monitorModel.Action {
	action := &monitorModel.Action{
		Name:        req.Name,
		EventSource: req.EventSource,
		Status:      req.Status,
		EscPeriod:   req.EscPeriod,
		EvalType:    req.EvalType,
		Formula:     req.Formula,
	}
	if action.EscPeriod == "" {
		action.EscPeriod = "1h"
	}
	if action.EvalType != monitorModel.ConditionEvalExpression {
		action.Formula = ""
	}
	if req.PauseSuppressed != nil {
		action.PauseSuppressed = *req.PauseSuppressed
	} else {
		action.PauseSuppressed = true
	}
	if req.NotifyIfCanceled != nil {
		action.NotifyIfCanceled = *req.NotifyIfCanceled
	} else {
		action.NotifyIfCanceled = true
	}

	for _, c := range req.Conditions {
		action.Conditions = append(action.Conditions, monitorModel.ActionCondition{
			ConditionType: c.ConditionType,
			Operator:      c.Operator,
			Value:         c.Value,
			Value2:        c.Value2,
			FormulaID:     c.FormulaID,
		})
	}
	for _, op := range req.Operations {
		action.Operations = append(action.Operations, monitorModel.ActionOperation{
			OperationType: op.OperationType,
			Recovery:      op.Recovery,
			EscPeriod:     op.EscPeriod,
			EscStepFrom:   op.EscStepFrom,
			EscStepTo:     op.EscStepTo,
			MediaTypeID:   op.MediaTypeID,
			Subject:       op.Subject,
			Message:       op.Message,
			UserIDs:       op.UserIDs,
			UserGroupIDs:  op.UserGroupIDs,
			ScriptID:      op.ScriptID,
			GroupIDs:      op.GroupIDs,
			TemplateIDs:   op.TemplateIDs,
			InventoryMode: op.InventoryMode,
		})
	}
	return action
}

/**
 * 监控服务层:可用性报表
 * @author: sun977
 * @date: 2025.12.07
 * @description: 按主机或按触发器模板统计触发器在时间窗口内的正常/问题时间占比
 *   窗口开始前的状态取窗口前最后一个事件，没有事件时视为正常
 * @func:
 *   - List 报表列表
 *   - ExportXLSX 导出当前过滤条件下的全部记录
 */
package monitor

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

const availabilitySheet = "Availability"

// AvailabilityService 可用性报表服务
type AvailabilityService struct {
	triggerRepo *monitorrepo.TriggerRepository
	hostRepo    *monitorrepo.HostRepository
	normalizer  *listview.Normalizer[monitorModel.AvailabilityFilter]
	settings    *Settings
	now         func() time.Time
}

// NewAvailabilityService 创建可用性报表服务
func NewAvailabilityService(triggerRepo *monitorrepo.TriggerRepository, hostRepo *monitorrepo.HostRepository, store listview.ProfileStore, settings *Settings) *AvailabilityService {
	return &AvailabilityService{
		triggerRepo: triggerRepo,
		hostRepo:    hostRepo,
		normalizer:  listview.NewNormalizer(AvailabilityView(), store),
		settings:    settings,
		now:         time.Now,
	}
}

// AvailabilityListResponse 可用性报表响应
type AvailabilityListResponse = listview.ListResponse[monitorModel.AvailabilityFilter, monitorModel.AvailabilityRow]

func availabilityComparator(field string) listview.Comparator[monitorModel.AvailabilityRow] {
	switch field {
	case "name":
		return func(a, b monitorModel.AvailabilityRow) int { return strings.Compare(a.Name, b.Name) }
	case "problem":
		return func(a, b monitorModel.AvailabilityRow) int { return cmp.Compare(a.Problem, b.Problem) }
	default:
		return func(a, b monitorModel.AvailabilityRow) int {
			if c := strings.Compare(a.HostName, b.HostName); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}
	}
}

// List 可用性报表
func (s *AvailabilityService) List(ctx context.Context, req ListRequest) (*AvailabilityListResponse, error) {
	prefs, state, result, err := s.report(ctx, req)
	if err != nil {
		return nil, err
	}

	lookups := listview.Lookups{}
	groups, err := s.hostRepo.GetGroupNames(ctx, listview.IDSet(append(prefs.Filter.GroupIDs, prefs.Filter.TemplateGroupID)))
	if err != nil {
		return nil, listFailed("无法获取报表关联对象", err)
	}
	hosts, err := s.hostRepo.GetHostNames(ctx, listview.IDSet(append(prefs.Filter.HostIDs, prefs.Filter.TemplateID)))
	if err != nil {
		return nil, listFailed("无法获取报表关联对象", err)
	}
	addAll(lookups, "groups", groups)
	addAll(lookups, "hosts", hosts)

	return listview.Assemble(prefs, state, result, lookups), nil
}

// ExportXLSX 导出报表，包含通过子过滤的全部记录而不只是当前页
func (s *AvailabilityService) ExportXLSX(ctx context.Context, req ListRequest) ([]byte, error) {
	_, _, result, err := s.report(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", availabilitySheet); err != nil {
		return nil, system.NewOperationError("无法导出可用性报表", err)
	}
	header := []interface{}{"Host", "Name", "Severity", "Problems", "Ok"}
	if err := f.SetSheetRow(availabilitySheet, "A1", &header); err != nil {
		return nil, system.NewOperationError("无法导出可用性报表", err)
	}
	for i, r := range result.Visible {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, system.NewOperationError("无法导出可用性报表", err)
		}
		row := []interface{}{
			r.HostName,
			r.Name,
			r.Priority.String(),
			fmt.Sprintf("%.4f%%", r.Problem),
			fmt.Sprintf("%.4f%%", r.OK),
		}
		if err := f.SetSheetRow(availabilitySheet, cell, &row); err != nil {
			return nil, system.NewOperationError("无法导出可用性报表", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, system.NewOperationError("无法导出可用性报表", err)
	}
	return buf.Bytes(), nil
}

// report 规范化、查询触发器、计算可用性并后处理
func (s *AvailabilityService) report(ctx context.Context, req ListRequest) (*listview.Preferences[monitorModel.AvailabilityFilter], listview.State, listview.Result[monitorModel.AvailabilityRow], error) {
	var empty listview.Result[monitorModel.AvailabilityRow]

	prefs, state, err := normalize(ctx, s.normalizer, req, "无法保存可用性报表过滤条件")
	if err != nil {
		return nil, state, empty, err
	}
	from, to, err := s.window(prefs.Filter)
	if err != nil {
		return nil, state, empty, err
	}

	limit := s.settings.SearchLimit()
	rows, err := s.fetch(ctx, prefs, limit)
	if err != nil {
		return nil, state, empty, listFailed("无法获取触发器列表", err)
	}
	hasMore := limit > 0 && len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	if err := s.calculate(ctx, rows, from, to); err != nil {
		return nil, state, empty, listFailed("无法计算触发器可用性", err)
	}
	if prefs.Filter.OnlyWithProblems {
		kept := rows[:0]
		for _, r := range rows {
			if r.Problem > 0 {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	result := listview.Process(rows, listview.Options[monitorModel.AvailabilityRow]{
		Limit:     limit,
		Page:      prefs.Page,
		PageSize:  s.settings.RowsPerPage(),
		Compare:   availabilityComparator(prefs.Sort),
		SortOrder: prefs.SortOrder,
	})
	result.Pagination.HasMore = hasMore
	prefs.Page = result.Pagination.Page
	return prefs, state, result, nil
}

// window 报表时间窗口，未指定时取到当前时间为止的一个报表周期
func (s *AvailabilityService) window(f monitorModel.AvailabilityFilter) (int64, int64, error) {
	to := f.To
	if to == 0 {
		to = s.now().Unix()
	}
	from := f.From
	if from == 0 {
		from = to - int64(s.settings.ReportPeriod()/time.Second)
	}
	if from >= to {
		return 0, 0, system.NewFieldValidationError("from", "开始时间必须早于结束时间")
	}
	return from, to, nil
}

// fetch 按报表模式查询触发器，按模板模式时先解析模板
func (s *AvailabilityService) fetch(ctx context.Context, prefs *listview.Preferences[monitorModel.AvailabilityFilter], limit int) ([]monitorModel.AvailabilityRow, error) {
	f := prefs.Filter
	var templateIDs []uint64
	if f.Mode == monitorModel.AvailabilityModeTriggerTemplate {
		switch {
		case f.TemplateID != 0:
			templateIDs = []uint64{f.TemplateID}
		case f.TemplateGroupID != 0:
			ids, err := s.hostRepo.GetTemplateIDsByGroupID(ctx, f.TemplateGroupID)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				return nil, nil
			}
			templateIDs = ids
		}
	}
	return s.triggerRepo.ListTriggers(ctx, monitorModel.BuildTriggerQuery(prefs, templateIDs, limit))
}

// calculate 计算每个触发器在 [from, to] 内的正常/问题时间百分比
func (s *AvailabilityService) calculate(ctx context.Context, rows []monitorModel.AvailabilityRow, from, to int64) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	initial, err := s.triggerRepo.LastEventsBefore(ctx, ids, from)
	if err != nil {
		return err
	}
	events, err := s.triggerRepo.ListTriggerEvents(ctx, ids, from, to)
	if err != nil {
		return err
	}
	byTrigger := map[uint64][]monitorModel.Event{}
	for _, e := range events {
		byTrigger[e.ObjectID] = append(byTrigger[e.ObjectID], e)
	}

	for i := range rows {
		state := monitorModel.TriggerValueOK
		if e, ok := initial[rows[i].ID]; ok {
			state = e.Value
		}
		rows[i].OK, rows[i].Problem = availabilityShare(state, byTrigger[rows[i].ID], from, to)
	}
	return nil
}

// availabilityShare 根据初始状态和窗口内按时间升序的事件计算百分比
func availabilityShare(state int, events []monitorModel.Event, from, to int64) (float64, float64) {
	var problem int64
	last := from
	for _, e := range events {
		if state == monitorModel.TriggerValueProblem {
			problem += e.Clock - last
		}
		last = e.Clock
		state = e.Value
	}
	if state == monitorModel.TriggerValueProblem {
		problem += to - last
	}
	total := float64(to - from)
	problemPct := float64(problem) / total * 100
	return 100 - problemPct, problemPct
}

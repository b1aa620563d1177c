/**
 * 监控服务层:图形
 * @author: sun977
 * @date: 2025.12.07
 * @description: 图形列表与批量复制
 *   复制时每个 (图形, 目标主机) 组合独立处理，目标主机上按监控项键值映射图形项
 *   单个组合失败不影响其他组合，失败原因汇总后与成功数量一起返回
 */
package monitor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/validator"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// GraphService 图形服务
type GraphService struct {
	graphRepo  *monitorrepo.GraphRepository
	hostRepo   *monitorrepo.HostRepository
	normalizer *listview.Normalizer[monitorModel.GraphFilter]
	settings   *Settings
}

// NewGraphService 创建图形服务
func NewGraphService(graphRepo *monitorrepo.GraphRepository, hostRepo *monitorrepo.HostRepository, store listview.ProfileStore, settings *Settings) *GraphService {
	return &GraphService{
		graphRepo:  graphRepo,
		hostRepo:   hostRepo,
		normalizer: listview.NewNormalizer(GraphView(), store),
		settings:   settings,
	}
}

// GraphListResponse 图形列表响应
type GraphListResponse = listview.ListResponse[monitorModel.GraphFilter, monitorModel.GraphRow]

var graphSubfilters = []listview.SubfilterSpec[monitorModel.GraphRow]{
	{Name: "graphtype", Values: func(r monitorModel.GraphRow) []string {
		return []string{monitorModel.GraphTypeName(r.GraphType)}
	}},
	{Name: "host", Values: func(r monitorModel.GraphRow) []string {
		values := make([]string, 0, len(r.Hosts))
		for _, h := range r.Hosts {
			values = append(values, strconv.FormatUint(h.ID, 10))
		}
		return values
	}},
}

func graphComparator(field string) listview.Comparator[monitorModel.GraphRow] {
	if field == "graphtype" {
		return func(a, b monitorModel.GraphRow) int { return cmp.Compare(a.GraphType, b.GraphType) }
	}
	return func(a, b monitorModel.GraphRow) int { return strings.Compare(a.Name, b.Name) }
}

// List 图形列表
func (s *GraphService) List(ctx context.Context, req ListRequest) (*GraphListResponse, error) {
	prefs, state, err := normalize(ctx, s.normalizer, req, "无法保存图形过滤条件")
	if err != nil {
		return nil, err
	}

	limit := s.settings.SearchLimit()
	graphs, err := s.graphRepo.ListGraphs(ctx, monitorModel.BuildGraphQuery(prefs, limit))
	if err != nil {
		return nil, listFailed("无法获取图形列表", err)
	}

	rows := make([]monitorModel.GraphRow, 0, len(graphs))
	lookups := listview.Lookups{}
	for _, g := range graphs {
		rows = append(rows, monitorModel.GraphRow{Graph: g})
		// 子过滤器 host 的取值是主机ID，需要全部结果的主机名称
		for _, h := range g.Hosts {
			lookups.Add("hosts", h.ID, h.Name)
		}
	}

	result := listview.Process(rows, listview.Options[monitorModel.GraphRow]{
		Limit:      limit,
		Page:       prefs.Page,
		PageSize:   s.settings.RowsPerPage(),
		Compare:    graphComparator(prefs.Sort),
		SortOrder:  prefs.SortOrder,
		Subfilters: graphSubfilters,
		Selected:   prefs.Subfilters,
	})
	prefs.Page = result.Pagination.Page
	prefs.Subfilters = result.Applied

	hosts, err := s.hostRepo.GetHostNames(ctx, listview.IDSet(prefs.Filter.HostIDs))
	if err != nil {
		return nil, listFailed("无法获取图形关联对象", err)
	}
	groups, err := s.hostRepo.GetGroupNames(ctx, listview.IDSet(prefs.Filter.GroupIDs))
	if err != nil {
		return nil, listFailed("无法获取图形关联对象", err)
	}
	addAll(lookups, "hosts", hosts)
	addAll(lookups, "groups", groups)

	return listview.Assemble(prefs, state, result, lookups), nil
}

// Copy 批量复制图形到目标主机
// 返回的错误为 nil 表示全部成功；*multierror.Error 表示部分或全部组合失败，此时结果仍然有效
func (s *GraphService) Copy(ctx context.Context, actor Actor, req *monitorModel.GraphCopyRequest) (*monitorModel.GraphCopyResult, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if !actor.CanEdit() {
		return nil, system.ErrPermissionDenied
	}

	targets, err := s.resolveTargets(ctx, req)
	if err != nil {
		return nil, listFailed("无法解析目标主机", err)
	}
	if len(targets) == 0 {
		return nil, system.NewFieldValidationError("target_hostids", "没有有效的目标主机")
	}

	graphs, items, err := s.graphRepo.GetGraphsWithItems(ctx, listview.IDSet(req.GraphIDs))
	if err != nil {
		return nil, listFailed("无法获取图形", err)
	}
	if len(graphs) == 0 {
		return nil, system.NewOperationError("无法复制图形", system.ErrNotFound)
	}

	result := &monitorModel.GraphCopyResult{}
	var merr *multierror.Error
	for _, g := range graphs {
		for _, hostID := range targets {
			if err := s.copyGraph(ctx, g, items, hostID); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("图形 %q 复制到主机 %d 失败: %w", g.Name, hostID, err))
				result.Failed++
				result.Errors = append(result.Errors, system.ErrorDetail{
					Field:   strconv.FormatUint(g.ID, 10) + ":" + strconv.FormatUint(hostID, 10),
					Message: err.Error(),
				})
				continue
			}
			result.Copied++
		}
	}

	if merr != nil {
		logger.LogBusinessError(merr, "", uint(actor.UserID), "", "service.graph.Copy", "SERVICE", map[string]interface{}{
			"copied": result.Copied,
			"failed": result.Failed,
		})
	}
	return result, merr.ErrorOrNil()
}

// resolveTargets 目标主机 = 指定主机 ∪ 指定主机组内的主机，只保留存在的主机
func (s *GraphService) resolveTargets(ctx context.Context, req *monitorModel.GraphCopyRequest) ([]uint64, error) {
	ids := append([]uint64{}, req.TargetHostIDs...)
	if len(req.TargetGroupIDs) > 0 {
		groupHosts, err := s.hostRepo.GetHostIDsByGroupIDs(ctx, listview.IDSet(req.TargetGroupIDs))
		if err != nil {
			return nil, err
		}
		ids = append(ids, groupHosts...)
	}
	ids = listview.IDSet(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return s.hostRepo.ExistingHostIDs(ctx, ids)
}

// copyGraph 把一个图形复制到一台主机
func (s *GraphService) copyGraph(ctx context.Context, g monitorModel.Graph, items map[uint64]monitorModel.Item, hostID uint64) error {
	if len(g.Items) == 0 {
		return errors.New("图形没有图形项")
	}
	keys := make([]string, 0, len(g.Items))
	for _, gi := range g.Items {
		src, ok := items[gi.ItemID]
		if !ok {
			return fmt.Errorf("监控项 %d 不存在", gi.ItemID)
		}
		keys = append(keys, src.Key)
	}
	targetItems, err := s.graphRepo.FindItemsByKeys(ctx, hostID, keys)
	if err != nil {
		return err
	}

	exists, err := s.graphRepo.GraphNameExists(ctx, hostID, g.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: 主机上已存在同名图形", system.ErrAlreadyExists)
	}

	clone := monitorModel.Graph{
		Name:       g.Name,
		Width:      g.Width,
		Height:     g.Height,
		GraphType:  g.GraphType,
		ShowLegend: g.ShowLegend,
		YAxisMin:   g.YAxisMin,
		YAxisMax:   g.YAxisMax,
	}
	for _, gi := range g.Items {
		key := items[gi.ItemID].Key
		target, ok := targetItems[key]
		if !ok {
			return fmt.Errorf("主机上缺少监控项 %q", key)
		}
		clone.Items = append(clone.Items, monitorModel.GraphItem{
			ItemID:    target.ID,
			DrawType:  gi.DrawType,
			SortOrder: gi.SortOrder,
			Color:     gi.Color,
			YAxisSide: gi.YAxisSide,
			CalcFnc:   gi.CalcFnc,
		})
	}
	return s.graphRepo.CreateGraph(ctx, &clone)
}

/**
 * 监控服务层:主机列表
 * @author: sun977
 * @date: 2025.12.06
 * @description: 主机列表 = 规范化 -> 构造查询 -> 仓库查询 -> 后处理(子过滤/排序/分页) -> 当前页附加统计 -> 组装响应
 */
package monitor

import (
	"cmp"
	"context"
	"strconv"
	"strings"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/listview"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// HostService 主机列表服务
type HostService struct {
	hostRepo   *monitorrepo.HostRepository
	proxyRepo  *monitorrepo.ProxyRepository
	normalizer *listview.Normalizer[monitorModel.HostFilter]
	settings   *Settings
}

// NewHostService 创建主机列表服务
func NewHostService(hostRepo *monitorrepo.HostRepository, proxyRepo *monitorrepo.ProxyRepository, store listview.ProfileStore, settings *Settings) *HostService {
	return &HostService{
		hostRepo:   hostRepo,
		proxyRepo:  proxyRepo,
		normalizer: listview.NewNormalizer(HostView(), store),
		settings:   settings,
	}
}

// HostListResponse 主机列表响应
type HostListResponse = listview.ListResponse[monitorModel.HostFilter, monitorModel.HostRow]

var hostSubfilters = []listview.SubfilterSpec[monitorModel.HostRow]{
	{Name: "status", Values: func(r monitorModel.HostRow) []string {
		return []string{strconv.Itoa(int(r.Status))}
	}},
	{Name: "availability", Values: func(r monitorModel.HostRow) []string {
		return []string{r.Availability.String()}
	}},
}

func hostComparator(field string) listview.Comparator[monitorModel.HostRow] {
	if field == "status" {
		return func(a, b monitorModel.HostRow) int { return cmp.Compare(a.Status, b.Status) }
	}
	return func(a, b monitorModel.HostRow) int { return strings.Compare(a.Name, b.Name) }
}

// List 主机列表
func (s *HostService) List(ctx context.Context, req ListRequest) (*HostListResponse, error) {
	prefs, state, err := normalize(ctx, s.normalizer, req, "无法保存主机过滤条件")
	if err != nil {
		return nil, err
	}

	limit := s.settings.SearchLimit()
	hosts, err := s.hostRepo.ListHosts(ctx, monitorModel.BuildHostQuery(prefs, limit))
	if err != nil {
		return nil, listFailed("无法获取主机列表", err)
	}

	rows := make([]monitorModel.HostRow, 0, len(hosts))
	for _, h := range hosts {
		rows = append(rows, newHostRow(h))
	}

	result := listview.Process(rows, listview.Options[monitorModel.HostRow]{
		Limit:      limit,
		Page:       prefs.Page,
		PageSize:   s.settings.RowsPerPage(),
		Compare:    hostComparator(prefs.Sort),
		SortOrder:  prefs.SortOrder,
		Subfilters: hostSubfilters,
		Selected:   prefs.Subfilters,
	})
	prefs.Page = result.Pagination.Page
	prefs.Subfilters = result.Applied

	if err := s.attachCounts(ctx, result.Items); err != nil {
		return nil, listFailed("无法获取主机统计信息", err)
	}
	lookups, err := s.lookups(ctx, &prefs.Filter, result.Items)
	if err != nil {
		return nil, listFailed("无法获取主机关联对象", err)
	}

	return listview.Assemble(prefs, state, result, lookups), nil
}

// attachCounts 当前页主机的监控项/触发器/图形数量
func (s *HostService) attachCounts(ctx context.Context, rows []monitorModel.HostRow) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	items, err := s.hostRepo.CountItems(ctx, ids)
	if err != nil {
		return err
	}
	triggers, err := s.hostRepo.CountTriggers(ctx, ids)
	if err != nil {
		return err
	}
	graphs, err := s.hostRepo.CountGraphs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].ItemCount = items[rows[i].ID]
		rows[i].TriggerCount = triggers[rows[i].ID]
		rows[i].GraphCount = graphs[rows[i].ID]
	}
	return nil
}

// lookups 当前页以及过滤条件中引用的主机组、模板、代理、维护期名称
func (s *HostService) lookups(ctx context.Context, f *monitorModel.HostFilter, rows []monitorModel.HostRow) (listview.Lookups, error) {
	lookups := listview.Lookups{}
	var proxyIDs, maintenanceIDs []uint64
	for _, r := range rows {
		for _, g := range r.Groups {
			lookups.Add("groups", g.ID, g.Name)
		}
		for _, t := range r.Templates {
			lookups.Add("templates", t.ID, t.Name)
		}
		if r.ProxyID != 0 {
			proxyIDs = append(proxyIDs, r.ProxyID)
		}
		if r.MaintenanceID != 0 {
			maintenanceIDs = append(maintenanceIDs, r.MaintenanceID)
		}
	}
	proxyIDs = append(proxyIDs, f.ProxyIDs...)

	groups, err := s.hostRepo.GetGroupNames(ctx, listview.IDSet(f.GroupIDs))
	if err != nil {
		return nil, err
	}
	templates, err := s.hostRepo.GetHostNames(ctx, listview.IDSet(f.TemplateIDs))
	if err != nil {
		return nil, err
	}
	proxies, err := s.proxyRepo.GetProxyNames(ctx, listview.IDSet(proxyIDs))
	if err != nil {
		return nil, err
	}
	maintenances, err := s.hostRepo.GetMaintenanceNames(ctx, listview.IDSet(maintenanceIDs))
	if err != nil {
		return nil, err
	}

	addAll(lookups, "groups", groups)
	addAll(lookups, "templates", templates)
	addAll(lookups, "proxies", proxies)
	addAll(lookups, "maintenances", maintenances)
	return lookups, nil
}

func newHostRow(h monitorModel.Host) monitorModel.HostRow {
	row := monitorModel.HostRow{
		Host:                  h,
		InterfaceAvailability: map[string]monitorModel.Availability{},
		InMaintenance:         h.InMaintenance(),
	}
	all := make([]monitorModel.Availability, 0, len(h.Interfaces))
	byType := map[monitorModel.InterfaceType][]monitorModel.Availability{}
	for _, iface := range h.Interfaces {
		all = append(all, iface.Available)
		byType[iface.Type] = append(byType[iface.Type], iface.Available)
	}
	for t, values := range byType {
		row.InterfaceAvailability[t.String()] = summarizeAvailability(values)
	}
	row.Availability = summarizeAvailability(all)
	return row
}

// summarizeAvailability 所有接口状态一致时取该状态，不一致为 mixed，没有接口为 unknown
func summarizeAvailability(values []monitorModel.Availability) monitorModel.Availability {
	if len(values) == 0 {
		return monitorModel.AvailabilityUnknown
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return monitorModel.AvailabilityMixed
		}
	}
	return first
}

func addAll(lookups listview.Lookups, table string, names map[uint64]string) {
	for id, name := range names {
		lookups.Add(table, id, name)
	}
}

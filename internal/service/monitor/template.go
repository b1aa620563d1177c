/**
 * 监控服务层:模板列表与导出
 * @author: sun977
 * @date: 2025.12.06
 * @description: 模板列表复用主机列表的处理流程；导出为 YAML，引用关系按名称输出
 */
package monitor

import (
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// 导出格式版本
const templateExportVersion = "7.0"

// TemplateService 模板列表服务
type TemplateService struct {
	hostRepo   *monitorrepo.HostRepository
	itemRepo   *monitorrepo.ItemRepository
	normalizer *listview.Normalizer[monitorModel.TemplateFilter]
	settings   *Settings
}

// NewTemplateService 创建模板列表服务
func NewTemplateService(hostRepo *monitorrepo.HostRepository, itemRepo *monitorrepo.ItemRepository, store listview.ProfileStore, settings *Settings) *TemplateService {
	return &TemplateService{
		hostRepo:   hostRepo,
		itemRepo:   itemRepo,
		normalizer: listview.NewNormalizer(TemplateView(), store),
		settings:   settings,
	}
}

// TemplateListResponse 模板列表响应
type TemplateListResponse = listview.ListResponse[monitorModel.TemplateFilter, monitorModel.TemplateRow]

var templateSubfilters = []listview.SubfilterSpec[monitorModel.TemplateRow]{
	{Name: "vendor", Values: func(r monitorModel.TemplateRow) []string {
		if r.VendorName == "" {
			return nil
		}
		return []string{r.VendorName}
	}},
}

// List 模板列表
func (s *TemplateService) List(ctx context.Context, req ListRequest) (*TemplateListResponse, error) {
	prefs, state, err := normalize(ctx, s.normalizer, req, "无法保存模板过滤条件")
	if err != nil {
		return nil, err
	}

	limit := s.settings.SearchLimit()
	templates, err := s.hostRepo.ListTemplates(ctx, monitorModel.BuildTemplateQuery(prefs, limit))
	if err != nil {
		return nil, listFailed("无法获取模板列表", err)
	}

	rows := make([]monitorModel.TemplateRow, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, monitorModel.TemplateRow{Host: t})
	}

	result := listview.Process(rows, listview.Options[monitorModel.TemplateRow]{
		Limit:    limit,
		Page:     prefs.Page,
		PageSize: s.settings.RowsPerPage(),
		Compare: func(a, b monitorModel.TemplateRow) int {
			return strings.Compare(a.Name, b.Name)
		},
		SortOrder:  prefs.SortOrder,
		Subfilters: templateSubfilters,
		Selected:   prefs.Subfilters,
	})
	prefs.Page = result.Pagination.Page
	prefs.Subfilters = result.Applied

	ids := make([]uint64, 0, len(result.Items))
	for _, r := range result.Items {
		ids = append(ids, r.ID)
	}
	counts, err := s.hostRepo.CountLinkedHosts(ctx, ids)
	if err != nil {
		return nil, listFailed("无法获取模板统计信息", err)
	}
	lookups := listview.Lookups{}
	for i := range result.Items {
		result.Items[i].HostCount = counts[result.Items[i].ID]
		for _, g := range result.Items[i].Groups {
			lookups.Add("groups", g.ID, g.Name)
		}
		for _, parent := range result.Items[i].Templates {
			lookups.Add("templates", parent.ID, parent.Name)
		}
	}

	groups, err := s.hostRepo.GetGroupNames(ctx, listview.IDSet(prefs.Filter.GroupIDs))
	if err != nil {
		return nil, listFailed("无法获取模板关联对象", err)
	}
	parents, err := s.hostRepo.GetHostNames(ctx, listview.IDSet(prefs.Filter.TemplateIDs))
	if err != nil {
		return nil, listFailed("无法获取模板关联对象", err)
	}
	addAll(lookups, "groups", groups)
	addAll(lookups, "templates", parents)

	return listview.Assemble(prefs, state, result, lookups), nil
}

// Export 导出模板为 YAML 文档
func (s *TemplateService) Export(ctx context.Context, templateIDs []uint64) ([]byte, error) {
	ids := listview.IDSet(templateIDs)
	if len(ids) == 0 {
		return nil, system.NewFieldValidationError("templateids", "至少选择一个模板")
	}

	templates, err := s.hostRepo.GetTemplatesForExport(ctx, ids)
	if err != nil {
		return nil, listFailed("无法导出模板", err)
	}
	if len(templates) == 0 {
		return nil, system.NewOperationError("无法导出模板", system.ErrNotFound)
	}

	found := make([]uint64, 0, len(templates))
	for _, t := range templates {
		found = append(found, t.ID)
	}
	items, err := s.itemRepo.GetItemsByHosts(ctx, found)
	if err != nil {
		return nil, listFailed("无法导出模板", err)
	}
	itemsByHost := map[uint64][]monitorModel.ExportItem{}
	for _, it := range items {
		itemsByHost[it.HostID] = append(itemsByHost[it.HostID], monitorModel.ExportItem{
			Name:      it.Name,
			Key:       it.Key,
			ValueType: monitorModel.ItemValueTypeName(it.ValueType),
			Units:     it.Units,
		})
	}

	doc := monitorModel.TemplateExport{Export: monitorModel.TemplateExportBody{Version: templateExportVersion}}
	seenGroups := map[string]bool{}
	for _, t := range templates {
		entry := monitorModel.ExportTemplateItem{
			Template:    t.Host,
			Name:        t.Name,
			Description: t.Description,
			Items:       itemsByHost[t.ID],
		}
		if t.VendorName != "" || t.VendorVersion != "" {
			entry.Vendor = &monitorModel.ExportVendor{Name: t.VendorName, Version: t.VendorVersion}
		}
		for _, parent := range t.Templates {
			entry.Templates = append(entry.Templates, monitorModel.ExportName{Name: parent.Host})
		}
		for _, g := range t.Groups {
			entry.Groups = append(entry.Groups, monitorModel.ExportName{Name: g.Name})
			if !seenGroups[g.Name] {
				seenGroups[g.Name] = true
				doc.Export.TemplateGroups = append(doc.Export.TemplateGroups, monitorModel.ExportName{Name: g.Name})
			}
		}
		for _, tag := range t.Tags {
			entry.Tags = append(entry.Tags, monitorModel.ExportTag{Tag: tag.Tag, Value: tag.Value})
		}
		doc.Export.Templates = append(doc.Export.Templates, entry)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, system.NewOperationError("无法导出模板", err)
	}
	return out, nil
}

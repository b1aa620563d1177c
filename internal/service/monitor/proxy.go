package monitor

import (
	"cmp"
	"context"
	"strings"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/listview"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

// ProxyService 代理列表服务
type ProxyService struct {
	proxyRepo  *monitorrepo.ProxyRepository
	normalizer *listview.Normalizer[monitorModel.ProxyFilter]
	settings   *Settings
}

// NewProxyService 创建代理列表服务
func NewProxyService(proxyRepo *monitorrepo.ProxyRepository, store listview.ProfileStore, settings *Settings) *ProxyService {
	return &ProxyService{
		proxyRepo:  proxyRepo,
		normalizer: listview.NewNormalizer(ProxyView(), store),
		settings:   settings,
	}
}

// ProxyListResponse 代理列表响应
type ProxyListResponse = listview.ListResponse[monitorModel.ProxyFilter, monitorModel.ProxyRow]

var proxySubfilters = []listview.SubfilterSpec[monitorModel.ProxyRow]{
	{Name: "operating_mode", Values: func(r monitorModel.ProxyRow) []string {
		return []string{r.OperatingMode.String()}
	}},
}

func proxyComparator(field string) listview.Comparator[monitorModel.ProxyRow] {
	switch field {
	case "operating_mode":
		return func(a, b monitorModel.ProxyRow) int { return cmp.Compare(a.OperatingMode, b.OperatingMode) }
	case "version":
		return func(a, b monitorModel.ProxyRow) int { return compareVersion(a.Version, b.Version) }
	default:
		return func(a, b monitorModel.ProxyRow) int { return strings.Compare(a.Name, b.Name) }
	}
}

// List 代理列表
func (s *ProxyService) List(ctx context.Context, req ListRequest) (*ProxyListResponse, error) {
	prefs, state, err := normalize(ctx, s.normalizer, req, "无法保存代理过滤条件")
	if err != nil {
		return nil, err
	}

	limit := s.settings.SearchLimit()
	proxies, err := s.proxyRepo.ListProxies(ctx, monitorModel.BuildProxyQuery(prefs, limit))
	if err != nil {
		return nil, listFailed("无法获取代理列表", err)
	}

	rows := make([]monitorModel.ProxyRow, 0, len(proxies))
	for _, p := range proxies {
		rows = append(rows, monitorModel.ProxyRow{Proxy: p})
	}

	result := listview.Process(rows, listview.Options[monitorModel.ProxyRow]{
		Limit:      limit,
		Page:       prefs.Page,
		PageSize:   s.settings.RowsPerPage(),
		Compare:    proxyComparator(prefs.Sort),
		SortOrder:  prefs.SortOrder,
		Subfilters: proxySubfilters,
		Selected:   prefs.Subfilters,
	})
	prefs.Page = result.Pagination.Page
	prefs.Subfilters = result.Applied

	ids := make([]uint64, 0, len(result.Items))
	for _, r := range result.Items {
		ids = append(ids, r.ID)
	}
	counts, err := s.proxyRepo.CountHosts(ctx, ids)
	if err != nil {
		return nil, listFailed("无法获取代理统计信息", err)
	}
	for i := range result.Items {
		result.Items[i].HostCount = counts[result.Items[i].ID]
	}

	return listview.Assemble(prefs, state, result, nil), nil
}

// compareVersion 按点分数字比较版本号，非数字部分按字符串比较
func compareVersion(a, b string) int {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := atoi(pa[i])
		nb, errB := atoi(pb[i])
		if errA || errB {
			if c := strings.Compare(pa[i], pb[i]); c != 0 {
				return c
			}
			continue
		}
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(pa), len(pb))
}

// atoi 解析非负整数，第二个返回值为 true 表示不是数字
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, true
		}
		n = n*10 + int(r-'0')
	}
	return n, false
}

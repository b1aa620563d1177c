package monitor

import (
	"context"

	"gorm.io/gorm"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/pkg/logger"
)

// ProxyRepository 代理仓库
type ProxyRepository struct {
	db *gorm.DB
}

// NewProxyRepository 创建代理仓库实例
func NewProxyRepository(db *gorm.DB) *ProxyRepository {
	return &ProxyRepository{db: db}
}

var proxySortColumns = map[string]string{
	"name":           "name",
	"operating_mode": "operating_mode",
	"version":        "version",
}

// ListProxies 按条件查询代理
func (r *ProxyRepository) ListProxies(ctx context.Context, q monitorModel.ProxyQuery) ([]monitorModel.Proxy, error) {
	db := r.db.WithContext(ctx).Model(&monitorModel.Proxy{})
	db = whereLike(db, "name", q.SearchName)
	if q.OperatingMode != nil {
		db = db.Where("operating_mode = ?", *q.OperatingMode)
	}
	if q.Compatibility != nil {
		db = db.Where("compatibility = ?", *q.Compatibility)
	}
	if len(q.ProxyIDs) > 0 {
		db = db.Where("id IN ?", q.ProxyIDs)
	}
	db = orderBy(db, proxySortColumns, q.SortField, q.SortOrder, "name")
	db = limit(db, q.Limit)

	var proxies []monitorModel.Proxy
	if err := db.Find(&proxies).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.proxy.ListProxies", "REPO", nil)
		return nil, err
	}
	return proxies, nil
}

// GetProxyNames 按ID批量获取代理名称
func (r *ProxyRepository) GetProxyNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := map[uint64]string{}
	if len(ids) == 0 {
		return out, nil
	}
	var proxies []monitorModel.Proxy
	if err := r.db.WithContext(ctx).Select("id, name").Where("id IN ?", ids).Find(&proxies).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.proxy.GetProxyNames", "REPO", nil)
		return nil, err
	}
	for _, p := range proxies {
		out[p.ID] = p.Name
	}
	return out, nil
}

// CountHosts 统计每个代理监控的主机数量
func (r *ProxyRepository) CountHosts(ctx context.Context, proxyIDs []uint64) (map[uint64]int64, error) {
	if len(proxyIDs) == 0 {
		return map[uint64]int64{}, nil
	}
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&monitorModel.Host{}).
		Select("proxy_id AS id, COUNT(*) AS total").
		Where("proxy_id IN ? AND monitored_by = ? AND status <> ?", proxyIDs, monitorModel.MonitoredByProxy, monitorModel.HostStatusTemplate).
		Group("proxy_id").
		Scan(&rows).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "repo.proxy.CountHosts", "REPO", nil)
		return nil, err
	}
	return countMap(rows), nil
}

/**
 * 监控服务层:公共定义
 * @author: sun977
 * @date: 2025.12.06
 * @description: 列表请求、当前操作人、列表运行参数(支持配置热加载)以及各列表服务共用的规范化步骤
 */
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"neomonitor/internal/config"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
)

// Actor 当前操作人，来自JWT声明
type Actor struct {
	UserID   uint64
	Username string
	UserType system.UserType
}

// CanEdit 是否允许修改监控配置
func (a Actor) CanEdit() bool {
	return a.UserType.CanEditConfiguration()
}

// ListRequest 列表请求
type ListRequest struct {
	UserID uint64
	Params listview.Params
	Query  listview.ListQuery
}

// Settings 列表运行参数，配置文件变化时整体替换
type Settings struct {
	mu           sync.RWMutex
	searchLimit  int
	rowsPerPage  int
	reportPeriod time.Duration
	topHostsMax  int
}

// NewSettings 从配置创建运行参数
func NewSettings(cfg *config.Config) *Settings {
	s := &Settings{}
	s.apply(cfg)
	return s
}

func (s *Settings) apply(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchLimit = cfg.View.SearchLimit
	s.rowsPerPage = cfg.View.RowsPerPage
	s.reportPeriod = cfg.View.ReportPeriod
	s.topHostsMax = cfg.Widget.TopHostsMaxLines
	if s.rowsPerPage <= 0 {
		s.rowsPerPage = 50
	}
	if s.reportPeriod <= 0 {
		s.reportPeriod = 7 * 24 * time.Hour
	}
	if s.topHostsMax <= 0 {
		s.topHostsMax = 100
	}
}

// SearchLimit 单次查询上限
func (s *Settings) SearchLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchLimit
}

// RowsPerPage 每页行数
func (s *Settings) RowsPerPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowsPerPage
}

// ReportPeriod 可用性报表默认时间范围
func (s *Settings) ReportPeriod() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportPeriod
}

// TopHostsMaxLines 主机排行最大行数
func (s *Settings) TopHostsMaxLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topHostsMax
}

// ReloadCallback 配置热加载回调
func (s *Settings) ReloadCallback(oldConfig, newConfig *config.Config) error {
	if newConfig == nil {
		return nil
	}
	changed := config.ViewConfigChanged(oldConfig, newConfig)
	s.apply(newConfig)
	if changed {
		logger.LogSystemEvent("monitor", "settings_reload", "list view settings updated", logrus.InfoLevel, map[string]interface{}{
			"search_limit":  newConfig.View.SearchLimit,
			"rows_per_page": newConfig.View.RowsPerPage,
		})
	}
	return nil
}

// normalize 规范化列表请求，存储失败包装为 OperationError，校验错误原样返回
func normalize[F any](ctx context.Context, n *listview.Normalizer[F], req ListRequest, title string) (*listview.Preferences[F], listview.State, error) {
	prefs, state, err := n.Normalize(ctx, req.UserID, req.Params, req.Query)
	if err != nil {
		if system.IsValidationError(err) {
			return nil, state, err
		}
		return nil, state, system.NewOperationError(title, err)
	}
	return prefs, state, nil
}

// listFailed 仓库调用失败
func listFailed(title string, err error) error {
	var opErr *system.OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return system.NewOperationError(title, err)
}

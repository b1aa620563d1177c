package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neomonitor/internal/config"
	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/repo/memory"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
)

var (
	admin    = Actor{UserID: 1, Username: "Admin", UserType: system.UserTypeSuperAdmin}
	readOnly = Actor{UserID: 2, Username: "guest", UserType: system.UserTypeUser}
)

// env 服务测试环境: 内存 sqlite + 内存偏好存储
type env struct {
	db       *gorm.DB
	store    *memory.ProfileRepository
	settings *Settings

	hostRepo    *monitorrepo.HostRepository
	proxyRepo   *monitorrepo.ProxyRepository
	triggerRepo *monitorrepo.TriggerRepository
	graphRepo   *monitorrepo.GraphRepository
	itemRepo    *monitorrepo.ItemRepository
	actionRepo  *monitorrepo.ActionRepository

	ids ids
}

type ids struct {
	web1, web2, db1, tmpl uint64
	proxyA, proxyB        uint64
	trigTmpl, trigWeb1    uint64
	trigDB1               uint64
	graphWeb1             uint64
	cpuWeb1, memWeb1      uint64
	cpuDB1                uint64
	drule, dcheck         uint64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(monitorModel.Models()...))

	e := &env{
		db:    db,
		store: memory.NewProfileRepository(),
		settings: NewSettings(&config.Config{
			View:   config.ViewConfig{SearchLimit: 100, RowsPerPage: 50},
			Widget: config.WidgetConfig{TopHostsMaxLines: 100},
		}),
		hostRepo:    monitorrepo.NewHostRepository(db),
		proxyRepo:   monitorrepo.NewProxyRepository(db),
		triggerRepo: monitorrepo.NewTriggerRepository(db),
		graphRepo:   monitorrepo.NewGraphRepository(db),
		itemRepo:    monitorrepo.NewItemRepository(db),
		actionRepo:  monitorrepo.NewActionRepository(db),
	}
	e.seed(t)
	return e
}

// seed 测试数据:
//
//	组 10(Linux servers): web-01, web-02, db-01；组 11(Templates/OS): Linux by Agent
//	web-01 链接模板并继承触发器 High CPU；db-01 由 proxy-a 监控
//	web-01 图形 CPU load 引用 cpu/mem 两个监控项；db-01 有同键监控项，web-02 只有 cpu
func (e *env) seed(t *testing.T) {
	t.Helper()
	db := e.db

	groups := []monitorModel.HostGroup{{Name: "Linux servers"}, {Name: "Templates/OS", Type: monitorModel.GroupTypeTemplate}}
	groups[0].ID, groups[1].ID = 10, 11
	require.NoError(t, db.Create(&groups).Error)

	proxies := []monitorModel.Proxy{
		{Name: "proxy-a", OperatingMode: monitorModel.ProxyModeActive, Version: "7.0.10", Compatibility: monitorModel.ProxyVersionCurrent},
		{Name: "proxy-b", OperatingMode: monitorModel.ProxyModePassive, Version: "7.0.2", Compatibility: monitorModel.ProxyVersionOutdated},
	}
	require.NoError(t, db.Create(&proxies).Error)
	e.ids.proxyA, e.ids.proxyB = proxies[0].ID, proxies[1].ID

	tmpl := monitorModel.Host{Host: "Linux by Agent", Name: "Linux by Agent", Status: monitorModel.HostStatusTemplate, VendorName: "Neo", VendorVersion: "7.0-1"}
	web1 := monitorModel.Host{Host: "web-01", Name: "web-01", Status: monitorModel.HostStatusMonitored}
	web2 := monitorModel.Host{Host: "web-02", Name: "web-02", Status: monitorModel.HostStatusNotMonitored}
	db1 := monitorModel.Host{Host: "db-01", Name: "db-01", Status: monitorModel.HostStatusMonitored, MonitoredBy: monitorModel.MonitoredByProxy, ProxyID: e.ids.proxyA}
	for _, h := range []*monitorModel.Host{&tmpl, &web1, &web2, &db1} {
		require.NoError(t, db.Create(h).Error)
	}
	e.ids.tmpl, e.ids.web1, e.ids.web2, e.ids.db1 = tmpl.ID, web1.ID, web2.ID, db1.ID

	require.NoError(t, db.Create(&[]monitorModel.HostsGroups{
		{HostID: web1.ID, GroupID: 10}, {HostID: web2.ID, GroupID: 10}, {HostID: db1.ID, GroupID: 10}, {HostID: tmpl.ID, GroupID: 11},
	}).Error)
	require.NoError(t, db.Create(&[]monitorModel.HostsTemplates{{HostID: web1.ID, TemplateID: tmpl.ID}}).Error)
	require.NoError(t, db.Create(&[]monitorModel.HostInterface{
		{HostID: web1.ID, Type: monitorModel.InterfaceTypeAgent, Main: true, UseIP: true, IP: "192.168.1.10", Port: "10050", Available: monitorModel.AvailabilityAvailable},
		{HostID: web2.ID, Type: monitorModel.InterfaceTypeAgent, Main: true, UseIP: true, IP: "192.168.1.11", Port: "10050"},
		{HostID: db1.ID, Type: monitorModel.InterfaceTypeAgent, Main: true, UseIP: true, IP: "192.168.1.20", Port: "10050", Available: monitorModel.AvailabilityAvailable},
		{HostID: db1.ID, Type: monitorModel.InterfaceTypeSNMP, DNS: "db01.example.com", Port: "161", Available: monitorModel.AvailabilityUnavailable},
	}).Error)
	require.NoError(t, db.Create(&[]monitorModel.HostTag{
		{HostID: web1.ID, Tag: "env", Value: "prod"},
		{HostID: db1.ID, Tag: "env", Value: "prod"},
		{HostID: tmpl.ID, Tag: "class", Value: "os"},
	}).Error)

	items := []monitorModel.Item{
		{HostID: web1.ID, Name: "CPU utilization", Key: "system.cpu.util", Units: "%"},
		{HostID: web1.ID, Name: "Memory used", Key: "vm.memory.used", Units: "B", ValueType: monitorModel.ItemValueUint64},
		{HostID: db1.ID, Name: "CPU utilization", Key: "system.cpu.util", Units: "%"},
		{HostID: db1.ID, Name: "Memory used", Key: "vm.memory.used", Units: "B", ValueType: monitorModel.ItemValueUint64},
		{HostID: web2.ID, Name: "CPU utilization", Key: "system.cpu.util", Units: "%"},
		{HostID: tmpl.ID, Name: "CPU utilization", Key: "system.cpu.util", Units: "%"},
	}
	require.NoError(t, db.Create(&items).Error)
	e.ids.cpuWeb1, e.ids.memWeb1, e.ids.cpuDB1 = items[0].ID, items[1].ID, items[2].ID

	trigTmpl := monitorModel.Trigger{HostID: tmpl.ID, Description: "High CPU", Priority: monitorModel.SeverityWarning}
	require.NoError(t, db.Create(&trigTmpl).Error)
	e.ids.trigTmpl = trigTmpl.ID
	triggers := []monitorModel.Trigger{
		{HostID: web1.ID, Description: "High CPU", Priority: monitorModel.SeverityWarning, TemplateID: trigTmpl.ID},
		{HostID: db1.ID, Description: "Disk full", Priority: monitorModel.SeverityHigh},
		{HostID: web1.ID, Description: "Disabled check", Status: monitorModel.TriggerStatusDisabled},
	}
	require.NoError(t, db.Create(&triggers).Error)
	e.ids.trigWeb1, e.ids.trigDB1 = triggers[0].ID, triggers[1].ID

	graph := monitorModel.Graph{Name: "CPU load", GraphType: monitorModel.GraphTypeStacked, Items: []monitorModel.GraphItem{
		{ItemID: e.ids.cpuWeb1, SortOrder: 0, Color: "1A7C11", CalcFnc: 2},
		{ItemID: e.ids.memWeb1, SortOrder: 1, Color: "F63100", CalcFnc: 2},
	}}
	require.NoError(t, db.Create(&graph).Error)
	e.ids.graphWeb1 = graph.ID

	rule := monitorModel.DiscoveryRule{Name: "Local network", IPRange: "192.168.1.1-254", Checks: []monitorModel.DiscoveryCheck{
		{Type: monitorModel.DCheckAgent, Key: "system.uname", Ports: "10050"},
	}}
	require.NoError(t, db.Create(&rule).Error)
	e.ids.drule, e.ids.dcheck = rule.ID, rule.Checks[0].ID
}

func params(kv ...string) listview.Params {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Add(kv[i], kv[i+1])
	}
	return listview.Params(v)
}

// failingStore 写入总是失败的偏好存储
type failingStore struct{}

func (failingStore) Get(context.Context, listview.ProfileKey) ([]byte, error) { return nil, nil }
func (failingStore) Put(context.Context, listview.ProfileKey, []byte) error {
	return errors.New("store unavailable")
}
func (failingStore) Delete(context.Context, listview.ProfileKey) error {
	return errors.New("store unavailable")
}
func (failingStore) DeleteUser(context.Context, uint64) error {
	return errors.New("store unavailable")
}

func TestSettings(t *testing.T) {
	s := NewSettings(&config.Config{View: config.ViewConfig{SearchLimit: 10}})
	assert.Equal(t, 10, s.SearchLimit())
	assert.Equal(t, 50, s.RowsPerPage())
	assert.Equal(t, 100, s.TopHostsMaxLines())

	require.NoError(t, s.ReloadCallback(nil, &config.Config{View: config.ViewConfig{SearchLimit: 20, RowsPerPage: 5}}))
	assert.Equal(t, 20, s.SearchLimit())
	assert.Equal(t, 5, s.RowsPerPage())
	assert.NoError(t, s.ReloadCallback(nil, nil))
}

func TestActor_CanEdit(t *testing.T) {
	assert.True(t, admin.CanEdit())
	assert.True(t, Actor{UserType: system.UserTypeAdmin}.CanEdit())
	assert.False(t, readOnly.CanEdit())
}

func TestHostService_List(t *testing.T) {
	e := newEnv(t)
	svc := NewHostService(e.hostRepo, e.proxyRepo, e.store, e.settings)
	ctx := context.Background()

	t.Run("filter_set persists the filter and echoes it", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 7, Params: params("filter_host", "web", "filter_set", "1")})
		require.NoError(t, err)

		assert.Equal(t, "filter_set", resp.State)
		assert.Equal(t, "web", resp.Filter.Host)
		assert.Equal(t, "", resp.Filter.IP)
		assert.Equal(t, monitorModel.FilterAny, resp.Filter.Status)
		assert.Equal(t, "name", resp.Sort)
		assert.Equal(t, listview.SortOrderAsc, resp.SortOrder)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "web-01", resp.Data[0].Name)
		assert.Equal(t, "web-02", resp.Data[1].Name)
		assert.Equal(t, 2, resp.Pagination.Total)
		assert.False(t, resp.Pagination.HasMore)

		data, err := e.store.Get(ctx, listview.ProfileKey{UserID: 7, ViewID: ViewHosts})
		require.NoError(t, err)
		var saved listview.Preferences[monitorModel.HostFilter]
		require.NoError(t, json.Unmarshal(data, &saved))
		assert.Equal(t, "web", saved.Filter.Host)
	})

	t.Run("empty request restores the saved filter", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 7, Params: params()})
		require.NoError(t, err)
		assert.Equal(t, "normal_view", resp.State)
		assert.Equal(t, "web", resp.Filter.Host)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("filter_rst clears the stored filter", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 7, Params: params("filter_rst", "1")})
		require.NoError(t, err)
		assert.Equal(t, "", resp.Filter.Host)
		assert.Len(t, resp.Data, 3)

		data, err := e.store.Get(ctx, listview.ProfileKey{UserID: 7, ViewID: ViewHosts})
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("rows carry counts availability and lookups", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 8, Params: params()})
		require.NoError(t, err)
		require.Len(t, resp.Data, 3)

		db1 := resp.Data[0]
		assert.Equal(t, "db-01", db1.Name)
		assert.Equal(t, monitorModel.AvailabilityMixed, db1.Availability)
		assert.Equal(t, monitorModel.AvailabilityAvailable, db1.InterfaceAvailability["agent"])
		assert.Equal(t, monitorModel.AvailabilityUnavailable, db1.InterfaceAvailability["snmp"])
		assert.Equal(t, int64(2), db1.ItemCount)
		assert.Equal(t, int64(1), db1.TriggerCount)

		web1 := resp.Data[1]
		assert.Equal(t, int64(1), web1.GraphCount)
		assert.Equal(t, "proxy-a", resp.Lookups["proxies"][e.ids.proxyA])
		assert.Equal(t, "Linux servers", resp.Lookups["groups"][10])
		assert.Equal(t, "Linux by Agent", resp.Lookups["templates"][e.ids.tmpl])
	})

	t.Run("status subfilter counts and selection", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 9, Params: params("subfilter_status", "1")})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "web-02", resp.Data[0].Name)

		counts := map[string]int{}
		for _, v := range resp.Subfilters["status"] {
			counts[v.Value] = v.Count
		}
		assert.Equal(t, map[string]int{"0": 2, "1": 1}, counts)
	})

	t.Run("sort by status descending with id tie-break", func(t *testing.T) {
		resp, err := svc.List(ctx, ListRequest{UserID: 10, Query: listview.ListQuery{Sort: "status", SortOrder: listview.SortOrderDesc}})
		require.NoError(t, err)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, "web-02", resp.Data[0].Name)
		assert.Less(t, resp.Data[1].ID, resp.Data[2].ID)
	})

	t.Run("unknown sort field is a validation error", func(t *testing.T) {
		_, err := svc.List(ctx, ListRequest{UserID: 10, Query: listview.ListQuery{Sort: "ip"}})
		require.Error(t, err)
		assert.True(t, system.IsValidationError(err))
	})

	t.Run("pagination and search limit", func(t *testing.T) {
		limited := NewSettings(&config.Config{View: config.ViewConfig{SearchLimit: 2, RowsPerPage: 1}})
		small := NewHostService(e.hostRepo, e.proxyRepo, e.store, limited)
		resp, err := small.List(ctx, ListRequest{UserID: 11, Query: listview.ListQuery{Page: 2}})
		require.NoError(t, err)
		assert.True(t, resp.Pagination.HasMore)
		assert.Equal(t, 2, resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
		assert.Equal(t, 2, resp.Pagination.Page)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "web-01", resp.Data[0].Name)
	})

	t.Run("store write failure is an operation error", func(t *testing.T) {
		broken := NewHostService(e.hostRepo, e.proxyRepo, failingStore{}, e.settings)
		_, err := broken.List(ctx, ListRequest{UserID: 12, Params: params("filter_host", "web", "filter_set", "1")})
		var opErr *system.OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "无法保存主机过滤条件", opErr.Title)
	})
}

func TestSummarizeAvailability(t *testing.T) {
	assert.Equal(t, monitorModel.AvailabilityUnknown, summarizeAvailability(nil))
	assert.Equal(t, monitorModel.AvailabilityAvailable, summarizeAvailability([]monitorModel.Availability{1, 1}))
	assert.Equal(t, monitorModel.AvailabilityMixed, summarizeAvailability([]monitorModel.Availability{1, 2}))
}

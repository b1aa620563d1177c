package monitor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neomonitor/internal/config"
	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/repo/memory"
	monitorrepo "neomonitor/internal/repo/mysql/monitor"
	monitorService "neomonitor/internal/service/monitor"
)

type testIDs struct {
	tmpl, web1, web2, db1 uint64
	graph                 uint64
}

// setupRouter 内存 sqlite 上的完整监控路由，userType 决定当前用户权限
func setupRouter(t *testing.T, userType system.UserType) (*gin.Engine, testIDs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(monitorModel.Models()...))
	ids := seed(t, db)

	settings := monitorService.NewSettings(&config.Config{
		View:   config.ViewConfig{SearchLimit: 100, RowsPerPage: 50},
		Widget: config.WidgetConfig{TopHostsMaxLines: 100},
	})
	store := memory.NewProfileRepository()
	hostRepo := monitorrepo.NewHostRepository(db)
	proxyRepo := monitorrepo.NewProxyRepository(db)
	triggerRepo := monitorrepo.NewTriggerRepository(db)
	graphRepo := monitorrepo.NewGraphRepository(db)
	itemRepo := monitorrepo.NewItemRepository(db)
	actionRepo := monitorrepo.NewActionRepository(db)

	graphService := monitorService.NewGraphService(graphRepo, hostRepo, store, settings)
	lists := NewListHandler(
		monitorService.NewHostService(hostRepo, proxyRepo, store, settings),
		monitorService.NewTemplateService(hostRepo, itemRepo, store, settings),
		monitorService.NewProxyService(proxyRepo, store, settings),
		monitorService.NewAvailabilityService(triggerRepo, hostRepo, store, settings),
		graphService,
	)
	configs := NewConfigHandler(
		monitorService.NewActionService(actionRepo, hostRepo, proxyRepo, triggerRepo),
		graphService,
		monitorService.NewTopHostsService(hostRepo, itemRepo, settings),
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint64(1))
		c.Set("username", "tester")
		c.Set("user_type", userType)
		c.Next()
	})
	r.GET("/hosts", lists.Hosts)
	r.GET("/templates", lists.Templates)
	r.GET("/templates/export", lists.ExportTemplates)
	r.GET("/proxies", lists.Proxies)
	r.GET("/graphs", lists.Graphs)
	r.GET("/availability", lists.Availability)
	r.GET("/availability/export", lists.ExportAvailability)
	r.POST("/actions/conditions/check", configs.CheckCondition)
	r.POST("/actions", configs.CreateAction)
	r.PUT("/actions/:id", configs.UpdateAction)
	r.POST("/graphs/copy", configs.CopyGraphs)
	r.POST("/widgets/tophosts", configs.TopHosts)
	return r, ids
}

func seed(t *testing.T, db *gorm.DB) testIDs {
	t.Helper()
	var ids testIDs

	groups := []monitorModel.HostGroup{{Name: "Linux servers"}, {Name: "Templates/OS", Type: monitorModel.GroupTypeTemplate}}
	groups[0].ID, groups[1].ID = 10, 11
	require.NoError(t, db.Create(&groups).Error)

	tmpl := monitorModel.Host{Host: "Linux by Agent", Name: "Linux by Agent", Status: monitorModel.HostStatusTemplate}
	web1 := monitorModel.Host{Host: "web-01", Name: "web-01", Status: monitorModel.HostStatusMonitored}
	web2 := monitorModel.Host{Host: "web-02", Name: "web-02", Status: monitorModel.HostStatusMonitored}
	db1 := monitorModel.Host{Host: "db-01", Name: "db-01", Status: monitorModel.HostStatusMonitored}
	for _, h := range []*monitorModel.Host{&tmpl, &web1, &web2, &db1} {
		require.NoError(t, db.Create(h).Error)
	}
	ids.tmpl, ids.web1, ids.web2, ids.db1 = tmpl.ID, web1.ID, web2.ID, db1.ID

	require.NoError(t, db.Create(&[]monitorModel.HostsGroups{
		{HostID: web1.ID, GroupID: 10}, {HostID: web2.ID, GroupID: 10}, {HostID: db1.ID, GroupID: 10}, {HostID: tmpl.ID, GroupID: 11},
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

	graph := monitorModel.Graph{Name: "CPU load", Items: []monitorModel.GraphItem{
		{ItemID: items[0].ID, SortOrder: 0, Color: "1A7C11"},
		{ItemID: items[1].ID, SortOrder: 1, Color: "F63100"},
	}}
	require.NoError(t, db.Create(&graph).Error)
	ids.graph = graph.ID
	return ids
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListHandler_Hosts(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeSuperAdmin)

	w := doJSON(r, http.MethodGet, "/hosts?filter_set=1&filter_host=web", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "filter_set", data["state"])
	assert.Equal(t, "name", data["sort"])
	rows := data["data"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "web-01", rows[0].(map[string]interface{})["name"])
}

func TestListHandler_InvalidSort(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeSuperAdmin)

	t.Run("unknown sort field", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/hosts?sort=bogus", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "failed", body["status"])
		errs := body["errors"].([]interface{})
		require.Len(t, errs, 1)
		assert.Equal(t, "sort", errs[0].(map[string]interface{})["field"])
	})

	t.Run("bad sort order is rejected by binding", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/hosts?sortorder=UP", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListHandler_ExportTemplates(t *testing.T) {
	r, ids := setupRouter(t, system.UserTypeSuperAdmin)

	w := doJSON(r, http.MethodGet, "/templates/export?templateids="+strconv.FormatUint(ids.tmpl, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "zbx_export_templates_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "zabbix_export:"))
	assert.Contains(t, w.Body.String(), "Linux by Agent")
	assert.Contains(t, w.Body.String(), "system.cpu.util")

	w = doJSON(r, http.MethodGet, "/templates/export", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/templates/export?templateids=9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHandler_ExportAvailability(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeSuperAdmin)

	w := doJSON(r, http.MethodGet, "/availability/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "availability_")
	// xlsx 是 zip 容器
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestConfigHandler_CreateAction(t *testing.T) {
	req := map[string]interface{}{
		"name":        "Notify admins",
		"eventsource": monitorModel.EventSourceTriggers,
		"conditions": []map[string]interface{}{
			{"conditiontype": monitorModel.ConditionHostGroup, "value": "10"},
		},
	}

	t.Run("read-only user is forbidden", func(t *testing.T) {
		r, _ := setupRouter(t, system.UserTypeUser)
		w := doJSON(r, http.MethodPost, "/actions", req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing name is a validation error", func(t *testing.T) {
		r, _ := setupRouter(t, system.UserTypeUser)
		w := doJSON(r, http.MethodPost, "/actions", map[string]interface{}{"eventsource": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("created then conflict", func(t *testing.T) {
		r, _ := setupRouter(t, system.UserTypeAdmin)
		w := doJSON(r, http.MethodPost, "/actions", req)
		require.Equal(t, http.StatusCreated, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "Notify admins", data["name"])

		w = doJSON(r, http.MethodPost, "/actions", req)
		require.Equal(t, http.StatusConflict, w.Code)
		errs := decode(t, w)["errors"].([]interface{})
		assert.Equal(t, "name", errs[0].(map[string]interface{})["field"])
	})
}

func TestConfigHandler_UpdateAction(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeAdmin)

	w := doJSON(r, http.MethodPut, "/actions/abc", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/actions/9999", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigHandler_CheckCondition(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeUser)

	w := doJSON(r, http.MethodPost, "/actions/conditions/check", map[string]interface{}{
		"eventsource":   monitorModel.EventSourceTriggers,
		"conditiontype": monitorModel.ConditionHostGroup,
		"value":         "10",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Linux servers", data["name"])
}

func TestConfigHandler_CopyGraphs(t *testing.T) {
	t.Run("partial success", func(t *testing.T) {
		r, ids := setupRouter(t, system.UserTypeAdmin)
		w := doJSON(r, http.MethodPost, "/graphs/copy", map[string]interface{}{
			"graphids":       []uint64{ids.graph},
			"target_hostids": []uint64{ids.web2, ids.db1},
		})
		require.Equal(t, http.StatusMultiStatus, w.Code)
		body := decode(t, w)
		assert.Equal(t, "partial", body["status"])
		data := body["data"].(map[string]interface{})
		assert.EqualValues(t, 1, data["copied"])
		assert.EqualValues(t, 1, data["failed"])
	})

	t.Run("all copied", func(t *testing.T) {
		r, ids := setupRouter(t, system.UserTypeAdmin)
		w := doJSON(r, http.MethodPost, "/graphs/copy", map[string]interface{}{
			"graphids":       []uint64{ids.graph},
			"target_hostids": []uint64{ids.db1},
		})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("all failed", func(t *testing.T) {
		r, ids := setupRouter(t, system.UserTypeAdmin)
		w := doJSON(r, http.MethodPost, "/graphs/copy", map[string]interface{}{
			"graphids":       []uint64{ids.graph},
			"target_hostids": []uint64{ids.web2},
		})
		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "failed", body["status"])
		assert.NotEmpty(t, body["errors"])
	})

	t.Run("read-only user", func(t *testing.T) {
		r, ids := setupRouter(t, system.UserTypeUser)
		w := doJSON(r, http.MethodPost, "/graphs/copy", map[string]interface{}{
			"graphids":       []uint64{ids.graph},
			"target_hostids": []uint64{ids.db1},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestConfigHandler_TopHosts(t *testing.T) {
	r, _ := setupRouter(t, system.UserTypeUser)

	w := doJSON(r, http.MethodPost, "/widgets/tophosts", map[string]interface{}{"show_lines": 10, "order": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/widgets/tophosts", map[string]interface{}{
		"columns":    []map[string]interface{}{{"name": "CPU", "item": "CPU utilization"}},
		"order":      1,
		"show_lines": 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"CPU"}, data["columns"])
}

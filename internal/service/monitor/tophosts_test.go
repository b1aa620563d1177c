package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neomonitor/internal/config"
	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
)

func newTopHostsService(t *testing.T, e *env, history []monitorModel.History) *TopHostsService {
	t.Helper()
	require.NoError(t, e.itemRepo.AddHistory(context.Background(), history))
	svc := NewTopHostsService(e.hostRepo, e.itemRepo, e.settings)
	svc.now = func() time.Time { return time.Unix(10000, 0) }
	return svc
}

func topHostsRequest() *monitorModel.TopHostsRequest {
	return &monitorModel.TopHostsRequest{
		Columns: []monitorModel.TopHostsColumn{
			{Name: "CPU", Item: "CPU utilization", Decimals: 2},
			{Name: "Memory", Item: "Memory used"},
		},
		Order:     monitorModel.TopHostsOrderTop,
		ShowLines: 10,
	}
}

func TestTopHostsService_Get(t *testing.T) {
	e := newEnv(t)
	svc := newTopHostsService(t, e, []monitorModel.History{
		{ItemID: e.ids.cpuWeb1, Clock: 9000, Value: 40},
		{ItemID: e.ids.cpuDB1, Clock: 9000, Value: 80},
		{ItemID: e.ids.cpuWeb1, Clock: 9500, Value: 60},
		{ItemID: e.ids.cpuDB1, Clock: 9500, Value: 70},
		{ItemID: e.ids.memWeb1, Clock: 9500, Value: 1 << 30},
		{ItemID: e.ids.memWeb1, Clock: 9600, Value: 1 << 30},
	})
	ctx := context.Background()

	t.Run("top by last value", func(t *testing.T) {
		resp, err := svc.Get(ctx, topHostsRequest())
		require.NoError(t, err)
		assert.Equal(t, []string{"CPU", "Memory"}, resp.Columns)
		// web-02 未启用监控，模板不参与排序
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, "db-01", resp.Rows[0].HostName)
		assert.Equal(t, "70.00 %", resp.Rows[0].Cells[0].Formatted)
		assert.Equal(t, e.ids.cpuDB1, resp.Rows[0].Cells[0].ItemID)
		// db-01 的内存监控项没有数据
		assert.Nil(t, resp.Rows[0].Cells[1].Value)
		assert.Equal(t, e.ids.memWeb1, resp.Rows[1].Cells[1].ItemID)
		assert.Equal(t, "1.0 GiB", resp.Rows[1].Cells[1].Formatted)
	})

	t.Run("bottom order and line limit", func(t *testing.T) {
		req := topHostsRequest()
		req.Order = monitorModel.TopHostsOrderBottom
		req.ShowLines = 1
		resp, err := svc.Get(ctx, req)
		require.NoError(t, err)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "web-01", resp.Rows[0].HostName)
		require.NotNil(t, resp.Rows[0].Cells[0].Value)
		assert.Equal(t, 60.0, *resp.Rows[0].Cells[0].Value)
	})

	t.Run("average over interval", func(t *testing.T) {
		req := topHostsRequest()
		req.Columns[0].Aggregate = monitorModel.AggregateAvg
		resp, err := svc.Get(ctx, req)
		require.NoError(t, err)
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, "db-01", resp.Rows[0].HostName)
		assert.Equal(t, "75.00 %", resp.Rows[0].Cells[0].Formatted)
		assert.Equal(t, "50.00 %", resp.Rows[1].Cells[0].Formatted)

		// 区间内没有数据的主机不显示
		req.Columns[0].Period = 100
		resp, err = svc.Get(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, resp.Rows)
	})

	t.Run("hosts without order value are dropped", func(t *testing.T) {
		req := topHostsRequest()
		req.Column = 1
		resp, err := svc.Get(ctx, req)
		require.NoError(t, err)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "web-01", resp.Rows[0].HostName)
	})

	t.Run("filter by host", func(t *testing.T) {
		req := topHostsRequest()
		req.HostIDs = []uint64{e.ids.web1}
		resp, err := svc.Get(ctx, req)
		require.NoError(t, err)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, e.ids.web1, resp.Rows[0].HostID)
	})

	t.Run("max lines setting caps show lines", func(t *testing.T) {
		capped := *svc
		capped.settings = NewSettings(&config.Config{Widget: config.WidgetConfig{TopHostsMaxLines: 1}})
		resp, err := capped.Get(ctx, topHostsRequest())
		require.NoError(t, err)
		assert.Len(t, resp.Rows, 1)
	})
}

func TestTopHostsService_Get_Invalid(t *testing.T) {
	e := newEnv(t)
	svc := newTopHostsService(t, e, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, nil)
	assert.True(t, system.IsValidationError(err))

	req := topHostsRequest()
	req.Column = 2
	_, err = svc.Get(ctx, req)
	assert.True(t, system.IsValidationError(err))

	req = topHostsRequest()
	req.Columns = nil
	_, err = svc.Get(ctx, req)
	assert.True(t, system.IsValidationError(err))

	req = topHostsRequest()
	req.ShowLines = 0
	_, err = svc.Get(ctx, req)
	assert.True(t, system.IsValidationError(err))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "12.35 %", formatValue(12.346, "%", 2))
	assert.Equal(t, "3", formatValue(3, "", 0))
	assert.Equal(t, "1.5 KiB", formatValue(1536, "B", 2))
	assert.Equal(t, "1m 30s", formatValue(90, "s", 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "250ms", formatDuration(0.25))
	assert.Equal(t, "1d 2h 3m", formatDuration(86400+2*3600+3*60+4))
	assert.Equal(t, "1h", formatDuration(3600))
	assert.Equal(t, "-5s", formatDuration(-5))
	assert.Equal(t, "1y 1d", formatDuration(366*86400))
}

package listview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"neomonitor/internal/model/system"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore 测试用偏好存储
type mapStore struct {
	mu      sync.Mutex
	data    map[ProfileKey][]byte
	getErr  error
	puts    int
	deletes int
}

func newMapStore() *mapStore {
	return &mapStore{data: map[ProfileKey][]byte{}}
}

func (s *mapStore) Get(_ context.Context, key ProfileKey) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[key], nil
}

func (s *mapStore) Put(_ context.Context, key ProfileKey, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	s.data[key] = data
	return nil
}

func (s *mapStore) Delete(_ context.Context, key ProfileKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.data, key)
	return nil
}

func (s *mapStore) DeleteUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if key.UserID == userID {
			delete(s.data, key)
		}
	}
	return nil
}

type testFilter struct {
	Host     string      `json:"host"`
	IP       string      `json:"ip"`
	DNS      string      `json:"dns"`
	Status   int         `json:"status"`
	GroupIDs []uint64    `json:"groupids"`
	Tags     []TagFilter `json:"tags"`
}

func testView() View[testFilter] {
	return View[testFilter]{
		ID:       "hosts",
		Defaults: func() testFilter { return testFilter{Status: -1} },
		Bind: func(f *testFilter, p Params) {
			p.String("filter_host", &f.Host)
			p.String("filter_ip", &f.IP)
			p.String("filter_dns", &f.DNS)
			p.Int("filter_status", &f.Status)
			p.IDs("filter_groupids", &f.GroupIDs)
			p.Tags("filter_tags", &f.Tags)
		},
		SortFields: []string{"name", "status"},
		Subfilters: []string{"status"},
	}
}

func params(raw string) Params {
	v, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return Params(v)
}

func TestDetectState(t *testing.T) {
	assert.Equal(t, StateNormalView, DetectState(params("filter_host=a")))
	assert.Equal(t, StateFilterSet, DetectState(params("filter_set=1")))
	assert.Equal(t, StateFilterReset, DetectState(params("filter_rst=1")))
	assert.Equal(t, StateFilterSet, DetectState(params("filter_set=1&filter_rst=1")))
	assert.Equal(t, "filter_reset", StateFilterReset.String())
}

func TestNormalize_PersistedUsedVerbatimWithoutRequest(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)
	ctx := context.Background()

	persisted := Preferences[testFilter]{
		Filter:    testFilter{Host: "db", IP: "10.0.", Status: 1, GroupIDs: []uint64{2, 5}},
		Sort:      "status",
		SortOrder: SortOrderDesc,
		Page:      3,
	}
	require.NoError(t, store.Put(ctx, ProfileKey{UserID: 1, ViewID: "hosts"}, mustJSON(t, persisted)))
	store.puts = 0

	prefs, state, err := n.Normalize(ctx, 1, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, StateNormalView, state)
	assert.Equal(t, persisted, *prefs)
	assert.Zero(t, store.puts, "plain view must not write")
}

func TestNormalize_RequestOverridesPersisted(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)
	ctx := context.Background()

	persisted := n.Defaults()
	persisted.Filter.Host = "db"
	persisted.Filter.IP = "10.0."
	require.NoError(t, store.Put(ctx, ProfileKey{UserID: 1, ViewID: "hosts"}, mustJSON(t, persisted)))

	// 出现的空参数清空条件，未出现的参数保留已保存值，格式错误的参数保持回退值
	prefs, _, err := n.Normalize(ctx, 1, params("filter_host=&filter_status=abc&filter_dns=web"), ListQuery{Sort: "status"})
	require.NoError(t, err)
	assert.Equal(t, "", prefs.Filter.Host)
	assert.Equal(t, "10.0.", prefs.Filter.IP)
	assert.Equal(t, "web", prefs.Filter.DNS)
	assert.Equal(t, -1, prefs.Filter.Status)
	assert.Equal(t, "status", prefs.Sort)
}

func TestNormalize_SetThenViewRoundTrip(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)
	ctx := context.Background()

	req := params("filter_set=1&filter_host=srv&filter_groupids[]=4&filter_groupids[]=2&filter_groupids[]=4" +
		"&filter_tags[0][tag]=env&filter_tags[0][value]=prod&filter_tags[0][operator]=1" +
		"&filter_tags[1][tag]=&filter_tags[1][value]=")
	set, state, err := n.Normalize(ctx, 9, req, ListQuery{Page: 4})
	require.NoError(t, err)
	assert.Equal(t, StateFilterSet, state)
	assert.Equal(t, 1, set.Page, "applying a filter goes back to the first page")
	assert.Equal(t, []uint64{2, 4}, set.Filter.GroupIDs)
	assert.Equal(t, []TagFilter{{Tag: "env", Value: "prod", Operator: TagOperatorEqual}}, set.Filter.Tags)
	assert.Equal(t, 1, store.puts)

	viewed, state, err := n.Normalize(ctx, 9, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, StateNormalView, state)
	assert.Equal(t, *set, *viewed)

	// 其他用户不受影响
	other, _, err := n.Normalize(ctx, 10, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, n.Defaults(), *other)
}

func TestNormalize_ResetClearsStore(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)
	ctx := context.Background()

	_, _, err := n.Normalize(ctx, 1, params("filter_set=1&filter_host=srv&filter_ip=10.1"), ListQuery{})
	require.NoError(t, err)

	reset, state, err := n.Normalize(ctx, 1, params("filter_rst=1&filter_host=ignored"), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, StateFilterReset, state)
	assert.Equal(t, n.Defaults(), *reset)

	_, ok := store.data[ProfileKey{UserID: 1, ViewID: "hosts"}]
	assert.False(t, ok, "store entry must be gone after reset")

	viewed, _, err := n.Normalize(ctx, 1, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, n.Defaults(), *viewed)
}

func TestNormalize_ValidationHaltsBeforeStore(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)

	_, _, err := n.Normalize(context.Background(), 1, params("filter_set=1"), ListQuery{Sort: "password"})
	require.Error(t, err)
	assert.True(t, system.IsValidationError(err))
	assert.Zero(t, store.puts)

	_, _, err = n.Normalize(context.Background(), 1, params("filter_rst=1"), ListQuery{SortOrder: "UP"})
	require.Error(t, err)
	assert.Zero(t, store.deletes)
}

func TestNormalize_StoreFailuresDegrade(t *testing.T) {
	store := newMapStore()
	store.getErr = errors.New("connection refused")
	n := NewNormalizer(testView(), store)

	prefs, _, err := n.Normalize(context.Background(), 1, params("filter_host=x"), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "x", prefs.Filter.Host)
	assert.Equal(t, -1, prefs.Filter.Status)

	// 存储内容损坏或排序字段已不在允许列表中
	store.getErr = nil
	store.data[ProfileKey{UserID: 2, ViewID: "hosts"}] = []byte(`{"filter":{"host":"kept"},"sort":"removed_field","sortorder":"sideways","page":0}`)
	prefs, _, err = n.Normalize(context.Background(), 2, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "kept", prefs.Filter.Host)
	assert.Equal(t, -1, prefs.Filter.Status, "missing keys keep defaults")
	assert.Equal(t, "name", prefs.Sort)
	assert.Equal(t, SortOrderAsc, prefs.SortOrder)
	assert.Equal(t, 1, prefs.Page)

	store.data[ProfileKey{UserID: 3, ViewID: "hosts"}] = []byte(`not json`)
	prefs, _, err = n.Normalize(context.Background(), 3, Params{}, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, n.Defaults(), *prefs)
}

func TestNormalize_Subfilters(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)
	ctx := context.Background()

	prefs, _, err := n.Normalize(ctx, 1, params("filter_set=1&subfilter_status[]=0&subfilter_unknown[]=x"), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"status": {"0"}}, prefs.Subfilters)

	// 不带子过滤参数再次应用过滤条件时清空子过滤选择
	prefs, _, err = n.Normalize(ctx, 1, params("filter_set=1&filter_host=a"), ListQuery{})
	require.NoError(t, err)
	assert.Nil(t, prefs.Subfilters)
}

func TestParamsHelpers(t *testing.T) {
	p := params("a=+x+&ids=3,1,bad&ids2[]=7&ids2[]=0&b=on&s[]=&s[]=v")

	var s string
	p.String("a", &s)
	assert.Equal(t, "x", s)

	var ids []uint64
	p.IDs("ids", &ids)
	assert.Equal(t, []uint64{1, 3}, ids)

	p.IDs("ids2", &ids)
	assert.Equal(t, []uint64{7}, ids)

	var b bool
	p.Bool("b", &b)
	assert.True(t, b)

	var list []string
	p.Strings("s", &list)
	assert.Equal(t, []string{"v"}, list)

	untouched := "keep"
	p.String("missing", &untouched)
	assert.Equal(t, "keep", untouched)
}

func TestQueryHelpers(t *testing.T) {
	assert.Nil(t, OptionalString("  "))
	require.NotNil(t, OptionalString(" srv "))
	assert.Equal(t, "srv", *OptionalString(" srv "))

	assert.Nil(t, OptionalInt(-1, -1))
	assert.Equal(t, 0, *OptionalInt(0, -1))

	assert.Equal(t, 1001, FetchLimit(1000))
	assert.Nil(t, IDSet([]uint64{0}))
	assert.Equal(t, []uint64{1, 2}, IDSet([]uint64{2, 1, 2, 0}))
}

type row struct {
	ID     uint64
	Name   string
	Status string
	Groups []string
}

func (r row) EntityID() uint64 { return r.ID }

func byName(a, b row) int { return strings.Compare(a.Name, b.Name) }

func rows(n int) []row {
	out := make([]row, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, row{ID: uint64(i), Name: fmt.Sprintf("host-%03d", i), Status: []string{"0", "1"}[i%2]})
	}
	return out
}

func TestPaginationProperties(t *testing.T) {
	for _, limit := range []int{1, 7, 10} {
		for _, size := range []int{1, 3, 4, 50} {
			for m := 0; m <= 12; m++ {
				// 模拟 limit+1 查询: 最多返回 limit+1 条
				fetched := rows(min(m, limit+1))
				res := Process(fetched, Options[row]{Limit: limit, Page: 1, PageSize: size, Compare: byName})

				total := min(m, limit)
				assert.Equal(t, total, res.Pagination.Total)
				assert.Equal(t, (total+size-1)/size, res.Pagination.TotalPages, "limit=%d size=%d m=%d", limit, size, m)
				assert.Equal(t, len(fetched) == limit+1, res.Pagination.HasMore, "limit=%d m=%d", limit, m)
				assert.LessOrEqual(t, len(res.Items), size)
			}
		}
	}
}

func TestProcess_PageClampAndWindow(t *testing.T) {
	res := Process(rows(10), Options[row]{Limit: 100, Page: 9, PageSize: 4, Compare: byName})
	assert.Equal(t, 3, res.Pagination.Page)
	assert.Len(t, res.Items, 2)
	assert.True(t, res.Pagination.HasPrevious)
	assert.False(t, res.Pagination.HasNext)

	empty := Process([]row{}, Options[row]{Limit: 100, Page: 5, PageSize: 4})
	assert.Equal(t, 1, empty.Pagination.Page)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
	assert.NotNil(t, empty.Items)
}

func TestSortStable_TiesByIDAcrossRequests(t *testing.T) {
	input := []row{
		{ID: 9, Name: "b"}, {ID: 3, Name: "a"}, {ID: 7, Name: "b"}, {ID: 1, Name: "b"}, {ID: 5, Name: "a"},
	}
	first := Process(input, Options[row]{Limit: 10, Page: 1, PageSize: 10, Compare: byName})
	assert.Equal(t, []uint64{3, 5, 1, 7, 9}, ids(first.Items))

	desc := Process(input, Options[row]{Limit: 10, Page: 1, PageSize: 10, Compare: byName, SortOrder: SortOrderDesc})
	assert.Equal(t, []uint64{1, 7, 9, 3, 5}, ids(desc.Items), "ties stay ID ascending in DESC order")

	// 输入顺序不同，结果相同
	reversed := []row{input[4], input[3], input[2], input[1], input[0]}
	second := Process(reversed, Options[row]{Limit: 10, Page: 1, PageSize: 10, Compare: byName})
	assert.Equal(t, ids(first.Items), ids(second.Items))

	assert.Equal(t, uint64(9), input[0].ID, "input slice is not modified")
}

func TestSubfilterCounts(t *testing.T) {
	status := SubfilterSpec[row]{Name: "status", Values: func(r row) []string { return []string{r.Status} }}
	items := rows(11)

	res := Process(items, Options[row]{Limit: 100, Page: 1, PageSize: 5, Compare: byName, Subfilters: []SubfilterSpec[row]{status}})
	sum := 0
	for _, v := range res.Subfilters["status"] {
		sum += v.Count
	}
	assert.Equal(t, res.Pagination.Total, sum, "counts cover the full list, not the page")
	assert.Len(t, res.Items, 5)

	// 选中后只显示匹配的记录，该属性自身的计数不变
	res = Process(items, Options[row]{
		Limit: 100, Page: 1, PageSize: 50, Compare: byName,
		Subfilters: []SubfilterSpec[row]{status},
		Selected:   map[string][]string{"status": {"1"}},
	})
	assert.Equal(t, 6, res.Pagination.Total)
	assert.Equal(t, []SubfilterValue{{Value: "0", Count: 5}, {Value: "1", Count: 6, Selected: true}}, res.Subfilters["status"])
	assert.Equal(t, map[string][]string{"status": {"1"}}, res.Applied)

	// 选择导致结果为空时丢弃选择
	res = Process(items, Options[row]{
		Limit: 100, Page: 1, PageSize: 50,
		Subfilters: []SubfilterSpec[row]{status},
		Selected:   map[string][]string{"status": {"9"}},
	})
	assert.Equal(t, 11, res.Pagination.Total)
	assert.Nil(t, res.Applied)
}

func TestSubfilterCounts_CrossAttribute(t *testing.T) {
	items := []row{
		{ID: 1, Status: "0", Groups: []string{"linux", "db"}},
		{ID: 2, Status: "1", Groups: []string{"linux"}},
		{ID: 3, Status: "0", Groups: []string{"windows"}},
	}
	specs := []SubfilterSpec[row]{
		{Name: "status", Values: func(r row) []string { return []string{r.Status} }},
		{Name: "group", Values: func(r row) []string { return r.Groups }},
	}
	res := Process(items, Options[row]{Limit: 100, Page: 1, PageSize: 10, Subfilters: specs,
		Selected: map[string][]string{"group": {"linux"}}})

	assert.Equal(t, []uint64{1, 2}, ids(res.Items))
	// status 计数只统计通过 group 过滤的记录
	assert.Equal(t, []SubfilterValue{{Value: "0", Count: 1}, {Value: "1", Count: 1}}, res.Subfilters["status"])
	// group 计数不受自身选择影响
	assert.Equal(t, []SubfilterValue{{Value: "db", Count: 1}, {Value: "linux", Count: 2, Selected: true}, {Value: "windows", Count: 1}}, res.Subfilters["group"])
}

func TestAssemble_ExampleScenario(t *testing.T) {
	store := newMapStore()
	n := NewNormalizer(testView(), store)

	prefs, state, err := n.Normalize(context.Background(), 1, params("filter_host=srv&filter_set=1"), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, testFilter{Host: "srv", Status: -1}, prefs.Filter)
	assert.Equal(t, 1, store.puts)

	fetched := rows(5)
	res := Process(fetched, Options[row]{Limit: 1000, Page: prefs.Page, PageSize: 50, Compare: byName, SortOrder: prefs.SortOrder})
	lookups := Lookups{}
	lookups.Add("groups", 4, "Linux servers")
	lookups.Add("groups", 0, "ignored")

	resp := Assemble(prefs, state, res, lookups)
	assert.Equal(t, "filter_set", resp.State)
	assert.Equal(t, "srv", resp.Filter.Host)
	assert.Equal(t, 5, resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasMore)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(resp.Data))
	assert.Equal(t, map[uint64]string{4: "Linux servers"}, resp.Lookups["groups"])
}

func ids(items []row) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}
	return out
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

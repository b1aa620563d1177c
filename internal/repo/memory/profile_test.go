package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"neomonitor/internal/pkg/listview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	key := listview.ProfileKey{UserID: 1, ViewID: "hosts"}

	data, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, data)

	payload := []byte(`{"page":1}`)
	require.NoError(t, repo.Put(ctx, key, payload))
	payload[0] = 'x'

	data, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"page":1}`, string(data), "stored bytes are copied")

	require.NoError(t, repo.Delete(ctx, key))
	assert.Equal(t, 0, repo.Len())
}

func TestProfileRepository_DeleteUser(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 3, ViewID: "hosts"}, []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 3, ViewID: "proxies"}, []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, listview.ProfileKey{UserID: 33, ViewID: "hosts"}, []byte(`{}`)))

	require.NoError(t, repo.DeleteUser(ctx, 3))
	assert.Equal(t, 1, repo.Len())
	data, err := repo.Get(ctx, listview.ProfileKey{UserID: 33, ViewID: "hosts"})
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestProfileRepository_Concurrent(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := listview.ProfileKey{UserID: uint64(i % 5), ViewID: "hosts"}
			_ = repo.Put(ctx, key, []byte(fmt.Sprintf(`{"page":%d}`, i)))
			_, _ = repo.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, repo.Len())
}

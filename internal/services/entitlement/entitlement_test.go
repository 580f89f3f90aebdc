package entitlement

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/license-server/internal/models"
	"github.com/magabrotheeeer/license-server/internal/storage/jsonfile"
)

func newTestService(t *testing.T) (*Service, *jsonfile.Storage) {
	t.Helper()
	repo := jsonfile.New(filepath.Join(t.TempDir(), "db.json"), "")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, &sync.Mutex{}, 300, log), repo
}

// seed применяет мутацию к состоянию и сохраняет его.
func seed(t *testing.T, repo *jsonfile.Storage, mutate func(st *models.Store)) {
	t.Helper()
	ctx := context.Background()
	st, err := repo.Load(ctx)
	require.NoError(t, err)
	mutate(st)
	require.NoError(t, repo.Save(ctx, st))
}

func TestCheck_LockdownDominates(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		st.Globals.Lockdown = true
		st.Globals.FreeMode = true
		u := st.EnsureUser("alice")
		u.Unlimited = true
		u.LastSeen = now
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.False(t, v.OK)
	assert.True(t, v.Lockdown)
	assert.Equal(t, 1, v.Online, "lockdown still recomputes the presence count")
}

func TestCheck_BannedUser(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seed(t, repo, func(st *models.Store) {
		st.Globals.FreeMode = true
		st.EnsureUser("alice").Banned = true
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.False(t, v.OK, "ban wins over free mode")
	assert.True(t, v.Banned)
}

func TestCheck_FreeMode(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seed(t, repo, func(st *models.Store) {
		st.Globals.FreeMode = true
	})

	v, err := svc.Check(ctx, "newcomer", "hw1")
	require.NoError(t, err)
	assert.True(t, v.OK)
	assert.True(t, v.FreeMode)
	assert.Equal(t, 1, v.Online)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, st.Users, "newcomer", "free mode lazily creates the user")
	assert.Equal(t, []string{"hw1"}, st.Users["newcomer"].HWIDs)
	assert.NotZero(t, st.Users["newcomer"].LastSeen)
}

func TestCheck_FreeModeAnonymous(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seed(t, repo, func(st *models.Store) {
		st.Globals.FreeMode = true
	})

	v, err := svc.Check(ctx, "", "")
	require.NoError(t, err)
	assert.True(t, v.OK)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Users, "empty id must not create a record")
}

func TestCheck_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	v, err := svc.Check(ctx, "ghost", "hw1")
	require.NoError(t, err)
	assert.False(t, v.OK)
	assert.False(t, v.Banned)
}

func TestCheck_RemainingTime(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		st.EnsureUser("alice").ExpiresAt = now + 3600
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.True(t, v.OK)
	assert.False(t, v.Unlimited)
	assert.InDelta(t, 3600, v.Remain, 5)
}

func TestCheck_Expired(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		st.EnsureUser("alice").ExpiresAt = now - 1
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.False(t, v.OK)
	assert.Zero(t, v.Remain)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.NotZero(t, st.Users["alice"].LastSeen, "expired user is still seen")
}

func TestCheck_Unlimited(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seed(t, repo, func(st *models.Store) {
		st.EnsureUser("alice").Unlimited = true
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.True(t, v.OK)
	assert.True(t, v.Unlimited)
	assert.Zero(t, v.Remain)
}

func TestCheck_DeviceBinding(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		u := st.EnsureUser("alice")
		u.Devices = 2
		u.ExpiresAt = now + 3600
	})

	// привязка идемпотентна
	for i := 0; i < 3; i++ {
		v, err := svc.Check(ctx, "alice", "hw1")
		require.NoError(t, err)
		assert.True(t, v.OK)
	}
	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hw1"}, st.Users["alice"].HWIDs)

	// второе устройство проходит, третье не привязывается, но доступ
	// с уже привязанного устройства сохраняется
	v, err := svc.Check(ctx, "alice", "hw2")
	require.NoError(t, err)
	assert.True(t, v.OK)
	v, err = svc.Check(ctx, "alice", "hw3")
	require.NoError(t, err)
	assert.True(t, v.OK, "over-limit hwid is not bound but the check succeeds")

	st, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hw1", "hw2"}, st.Users["alice"].HWIDs)
	assert.LessOrEqual(t, len(st.Users["alice"].HWIDs), st.Users["alice"].Devices)
}

func TestCheck_OverLimitAfterLowering(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		u := st.EnsureUser("alice")
		u.ExpiresAt = now + 3600
		u.Devices = 2
		u.HWIDs = []string{"hw1", "hw2"}
		// лимит понизили уже после привязок
		u.Devices = 1
	})

	v, err := svc.Check(ctx, "alice", "hw1")
	require.NoError(t, err)
	assert.False(t, v.OK, "bindings above the limit deny access without eviction")

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hw1", "hw2"}, st.Users["alice"].HWIDs, "no eviction happens")
}

func TestCheck_OnlineCount(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	now := time.Now().Unix()
	seed(t, repo, func(st *models.Store) {
		st.EnsureUser("old").LastSeen = now - 1000
		st.EnsureUser("alice").ExpiresAt = now + 60
	})

	v, err := svc.Check(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Online, "only alice is inside the window")

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Globals.Online, "counter is persisted")
}

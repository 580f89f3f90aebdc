package admin

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/license-server/internal/services/activation"
	"github.com/magabrotheeeer/license-server/internal/services/entitlement"
	"github.com/magabrotheeeer/license-server/internal/storage/jsonfile"
)

// Сквозной сценарий: создание одноразового ключа, активация двумя
// пользователями и проверка доступа — все сервисы над одним хранилищем.
func TestScenario_CreateRedeemCheck(t *testing.T) {
	ctx := context.Background()
	repo := jsonfile.New(filepath.Join(t.TempDir(), "db.json"), token)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mu := &sync.Mutex{}

	adminSvc := New(repo, mu, 300, log)
	activationSvc := activation.New(repo, mu, log)
	entitlementSvc := entitlement.New(repo, mu, 300, log)

	created, err := adminSvc.CreateKeys(ctx, token, []string{"AAAA-1111"},
		KeySpec{Amount: 60, Unit: "m", Devices: 2, SingleUse: true})
	require.NoError(t, err)
	require.Equal(t, []string{"AAAA-1111"}, created)

	res, err := activationSvc.Redeem(ctx, "u1", "hw1", "AAAA-1111")
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = activationSvc.Redeem(ctx, "u2", "hw2", "AAAA-1111")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, activation.MsgAlreadyUsed, res.Message)

	v, err := entitlementSvc.Check(ctx, "u1", "hw1")
	require.NoError(t, err)
	assert.True(t, v.OK)
	assert.InDelta(t, 3600, v.Remain, 5)

	v, err = entitlementSvc.Check(ctx, "u2", "hw2")
	require.NoError(t, err)
	assert.False(t, v.OK, "the failed redeemer has no entitlement")
}

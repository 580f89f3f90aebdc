// Package activation содержит бизнес-логику активации по ключу:
// проверку формата и переиспользования кода и применение гранта
// (время или безлимит, новый лимит устройств) к записи пользователя.
package activation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/license-server/internal/lib/keycode"
	"github.com/magabrotheeeer/license-server/internal/models"
)

// Сообщения результата активации — контракт клиентского ПО.
const (
	MsgActivated   = "activated"
	MsgLockdown    = "lockdown"
	MsgBadFormat   = "bad key format"
	MsgNotFound    = "key not found"
	MsgAlreadyUsed = "key already used"
	MsgBanned      = "banned"
)

// Repository определяет методы хранилища состояния, нужные активации.
type Repository interface {
	Load(ctx context.Context) (*models.Store, error)
	Save(ctx context.Context, st *models.Store) error
}

// Service реализует движок активации ключей. mu общий со всеми
// сервисами и сериализует цикл load-mutate-save.
type Service struct {
	repo Repository
	mu   *sync.Mutex
	log  *slog.Logger
}

// New создает Service.
func New(repo Repository, mu *sync.Mutex, log *slog.Logger) *Service {
	return &Service{repo: repo, mu: mu, log: log}
}

// Redeem активирует ключ для пользователя. Каждая проверка
// последовательности завершает операцию первым отказом; отказы не
// изменяют состояние — сохранение происходит только при успехе.
func (s *Service) Redeem(ctx context.Context, id, hwid, code string) (*models.RedeemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if st.Globals.Lockdown {
		return &models.RedeemResult{Message: MsgLockdown}, nil
	}

	code = keycode.Normalize(code)
	if !keycode.Valid(code) {
		return &models.RedeemResult{Message: MsgBadFormat}, nil
	}

	k, ok := st.Keys[code]
	if !ok {
		return &models.RedeemResult{Message: MsgNotFound}, nil
	}
	if k.SingleUse && k.UsedBy != "" {
		return &models.RedeemResult{Message: MsgAlreadyUsed}, nil
	}

	u := st.EnsureUser(id)
	if u.Banned {
		return &models.RedeemResult{Message: MsgBanned}, nil
	}

	// лимит ключа замещает лимит пользователя, не объединяется с ним
	u.Devices = k.Devices
	if u.Devices < 1 {
		u.Devices = 1
	}
	u.BindHWID(hwid)

	now := time.Now().Unix()
	if k.Unlimited {
		u.Unlimited = true
		u.ExpiresAt = 0
	} else {
		base := u.ExpiresAt
		if now > base {
			base = now
		}
		u.ExpiresAt = base + int64(k.Minutes)*60
		u.Unlimited = false
	}

	if k.SingleUse {
		k.UsedBy = id
	}
	u.Normalize()

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("key redeemed",
		slog.String("code", code),
		slog.String("user", id),
		slog.Bool("unlimited", k.Unlimited))
	return &models.RedeemResult{OK: true, Message: MsgActivated}, nil
}

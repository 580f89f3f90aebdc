// Package entitlement содержит бизнес-логику проверки доступа:
// упорядоченную цепочку правил (lockdown → бан → бесплатный режим →
// неизвестный пользователь → лимит устройств → безлимит → остаток времени)
// и подсчёт приблизительного онлайна по отметкам last_seen.
package entitlement

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/license-server/internal/models"
)

// Repository определяет методы хранилища состояния, нужные проверке доступа.
type Repository interface {
	// Load возвращает копию полного состояния.
	Load(ctx context.Context) (*models.Store, error)
	// Save атомарно сохраняет полное состояние.
	Save(ctx context.Context, st *models.Store) error
}

// Service реализует движок проверки доступа. Общий mu сериализует
// каждый цикл load-mutate-save со всеми остальными сервисами:
// хранилище само не блокирует, без внешней сериализации два
// конкурентных запроса затирают изменения друг друга.
type Service struct {
	repo   Repository
	mu     *sync.Mutex
	window int64
	log    *slog.Logger
}

// New создает Service. windowSeconds — ширина окна счётчика онлайна.
func New(repo Repository, mu *sync.Mutex, windowSeconds int, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		mu:     mu,
		window: int64(windowSeconds),
		log:    log,
	}
}

// Check выполняет цепочку правил для пары (id, hwid). Первое сработавшее
// правило определяет вердикт. Каждый путь, включая отказы, пересчитывает
// онлайн и сохраняет состояние, поэтому вердикт всегда несёт свежий счётчик.
func (s *Service) Check(ctx context.Context, id, hwid string) (*models.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()

	v := &models.Verdict{
		Lockdown: st.Globals.Lockdown,
		FreeMode: st.Globals.FreeMode,
	}
	finish := func() error {
		st.Globals.Online = st.CountOnline(s.window, now)
		v.Online = st.Globals.Online
		return s.repo.Save(ctx, st)
	}

	if st.Globals.Lockdown {
		return v, finish()
	}

	var u *models.User
	if id != "" {
		u = st.Users[id]
	}

	if u != nil && u.Banned {
		v.Banned = true
		return v, finish()
	}

	if st.Globals.FreeMode {
		v.OK = true
		if id != "" {
			u = st.EnsureUser(id)
			u.BindHWID(hwid)
			u.LastSeen = now
		}
		return v, finish()
	}

	if u == nil {
		return v, finish()
	}

	u.BindHWID(hwid)
	// привязок больше лимита — лимит понизили после прежних привязок
	if len(u.HWIDs) > u.Devices {
		return v, finish()
	}

	u.LastSeen = now

	if u.Unlimited {
		v.OK = true
		v.Unlimited = true
		return v, finish()
	}

	if remain := u.ExpiresAt - now; remain > 0 {
		v.OK = true
		v.Remain = remain
	}
	return v, finish()
}

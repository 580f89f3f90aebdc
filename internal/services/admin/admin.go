// Package admin содержит бизнес-логику административных операций:
// переключение глобальных режимов, управление ключами и пользователями,
// переименование идентификатора с переносом ссылок и массовое обнуление
// с резервной копией. Каждая операция требует совпадения токена
// администратора и выполняется как единый цикл load-mutate-save.
package admin

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/license-server/internal/lib/durationunit"
	"github.com/magabrotheeeer/license-server/internal/lib/keycode"
	"github.com/magabrotheeeer/license-server/internal/models"
)

// BulkZeroConfirm литерал подтверждения массового обнуления подписок.
const BulkZeroConfirm = "ZERO-ALL"

// Repository определяет методы хранилища, нужные административным операциям.
type Repository interface {
	Load(ctx context.Context) (*models.Store, error)
	Save(ctx context.Context, st *models.Store) error
	// Backup копирует текущее состояние в резервный файл.
	Backup(ctx context.Context) error
	// RestoreBackup возвращает false, если резервной копии нет.
	RestoreBackup(ctx context.Context) (bool, error)
}

// KeySpec параметры создания или изменения ключа.
type KeySpec struct {
	Amount    int
	Unit      string
	Devices   int
	Unlimited bool
	SingleUse bool
}

// Overview сводка состояния для панели администратора.
type Overview struct {
	Online   int                  `json:"online"`
	FreeMode bool                 `json:"free_mode"`
	Lockdown bool                 `json:"lockdown"`
	Active   []models.UserSummary `json:"active"`
	Banned   []models.UserSummary `json:"banned"`
	Keys     []models.KeySummary  `json:"keys"`
}

// Service реализует административные операции. mu общий со всеми
// сервисами и сериализует цикл load-mutate-save.
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

func authorize(st *models.Store, token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(st.Globals.AdminToken)) != 1 {
		return models.ErrForbidden
	}
	return nil
}

// begin загружает состояние и проверяет токен; при любой ошибке
// состояние остаётся нетронутым.
func (s *Service) begin(ctx context.Context, token string) (*models.Store, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := authorize(st, token); err != nil {
		return nil, err
	}
	return st, nil
}

// ToggleFree переключает бесплатный режим и возвращает новое значение.
func (s *Service) ToggleFree(ctx context.Context, token string) (bool, error) {
	const op = "admin.ToggleFree"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	st.Globals.FreeMode = !st.Globals.FreeMode
	if err := s.repo.Save(ctx, st); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("free mode toggled", slog.Bool("free_mode", st.Globals.FreeMode))
	return st.Globals.FreeMode, nil
}

// ToggleLockdown переключает полный запрет доступа и возвращает новое значение.
func (s *Service) ToggleLockdown(ctx context.Context, token string) (bool, error) {
	const op = "admin.ToggleLockdown"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	st.Globals.Lockdown = !st.Globals.Lockdown
	if err := s.repo.Save(ctx, st); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("lockdown toggled", slog.Bool("lockdown", st.Globals.Lockdown))
	return st.Globals.Lockdown, nil
}

// CreateKeys создает пакет ключей по кандидатам кодов. Пустой список
// кандидатов порождает ровно один случайный код. Невалидные кандидаты
// пропускаются; если явные кандидаты были, а валидных не осталось,
// возвращается ErrBadFormat. Возвращает список созданных кодов.
func (s *Service) CreateKeys(ctx context.Context, token string, codes []string, spec KeySpec) ([]string, error) {
	const op = "admin.CreateKeys"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	minutes := 0
	if !spec.Unlimited {
		minutes, err = durationunit.Minutes(spec.Amount, spec.Unit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, models.ErrBadUnit)
		}
	}
	devices := spec.Devices
	if devices < 1 {
		devices = 1
	}

	if len(codes) == 0 {
		codes = []string{keycode.Generate()}
	}

	var created []string
	for _, cand := range codes {
		code := keycode.Normalize(cand)
		if !keycode.Valid(code) {
			s.log.Warn("skipping invalid key code", slog.String("code", cand))
			continue
		}
		st.Keys[code] = &models.Key{
			Code:      code,
			Minutes:   minutes,
			Devices:   devices,
			Unlimited: spec.Unlimited,
			SingleUse: spec.SingleUse,
		}
		created = append(created, code)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrBadFormat)
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("keys created", slog.Int("count", len(created)))
	return created, nil
}

// DeleteKey удаляет ключ по коду.
func (s *Service) DeleteKey(ctx context.Context, token, code string) error {
	const op = "admin.DeleteKey"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code = keycode.Normalize(code)
	if _, ok := st.Keys[code]; !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	delete(st.Keys, code)
	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("key deleted", slog.String("code", code))
	return nil
}

// EditKey изменяет параметры существующего ключа. Отметка used_by
// сохраняется: правка одноразового ключа не делает его снова доступным.
func (s *Service) EditKey(ctx context.Context, token, code string, spec KeySpec) error {
	const op = "admin.EditKey"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code = keycode.Normalize(code)
	k, ok := st.Keys[code]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	minutes := 0
	if !spec.Unlimited {
		minutes, err = durationunit.Minutes(spec.Amount, spec.Unit)
		if err != nil {
			return fmt.Errorf("%s: %w", op, models.ErrBadUnit)
		}
	}
	k.Minutes = minutes
	k.Unlimited = spec.Unlimited
	k.SingleUse = spec.SingleUse
	k.Devices = spec.Devices
	if k.Devices < 1 {
		k.Devices = 1
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("key edited", slog.String("code", code))
	return nil
}

// ActivateUser выдаёт подписку напрямую по идентификатору: задаёт лимит
// устройств и либо безлимит, либо начисляет время поверх max(now, expires_at).
func (s *Service) ActivateUser(ctx context.Context, token, id string, amount int, unit string, devices int, unlimited bool) error {
	const op = "admin.ActivateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	u := st.EnsureUser(id)
	u.Devices = devices
	if u.Devices < 1 {
		u.Devices = 1
	}
	if unlimited {
		u.Unlimited = true
		u.ExpiresAt = 0
	} else {
		minutes, err := durationunit.Minutes(amount, unit)
		if err != nil {
			return fmt.Errorf("%s: %w", op, models.ErrBadUnit)
		}
		now := time.Now().Unix()
		base := u.ExpiresAt
		if now > base {
			base = now
		}
		u.ExpiresAt = base + int64(minutes)*60
		u.Unlimited = false
	}
	u.Normalize()

	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user activated", slog.String("user", id), slog.Bool("unlimited", unlimited))
	return nil
}

// AdjustTime прибавляет или убавляет время подписки. Прибавление идёт
// поверх max(now, expires_at), убавление не опускается ниже нуля.
// Для безлимитных пользователей операция не делает ничего.
func (s *Service) AdjustTime(ctx context.Context, token, id string, amount int, unit, direction string) error {
	const op = "admin.AdjustTime"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	u := st.EnsureUser(id)
	if u.Unlimited {
		return nil
	}
	minutes, err := durationunit.Minutes(amount, unit)
	if err != nil {
		return fmt.Errorf("%s: %w", op, models.ErrBadUnit)
	}

	cur := u.ExpiresAt
	if cur < 0 {
		cur = 0
	}
	switch direction {
	case "add":
		now := time.Now().Unix()
		base := cur
		if now > base {
			base = now
		}
		u.ExpiresAt = base + int64(minutes)*60
	case "sub":
		u.ExpiresAt = cur - int64(minutes)*60
		if u.ExpiresAt < 0 {
			u.ExpiresAt = 0
		}
	default:
		return fmt.Errorf("%s: %w: direction %q", op, models.ErrBadFormat, direction)
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("time adjusted", slog.String("user", id), slog.String("direction", direction))
	return nil
}

// SetDevices задаёт лимит устройств пользователя. Уже привязанные
// устройства при понижении лимита не отвязываются: проверки доступа
// будут отклоняться, пока привязок больше лимита.
func (s *Service) SetDevices(ctx context.Context, token, id string, devices int) error {
	const op = "admin.SetDevices"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u := st.EnsureUser(id)
	u.Devices = devices
	if u.Devices < 1 {
		u.Devices = 1
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("device limit set", slog.String("user", id), slog.Int("devices", u.Devices))
	return nil
}

// SetUnlimited включает или выключает безлимитный доступ пользователя.
func (s *Service) SetUnlimited(ctx context.Context, token, id string, unlimited bool) error {
	const op = "admin.SetUnlimited"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u := st.EnsureUser(id)
	u.Unlimited = unlimited
	u.Normalize()
	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("unlimited flag set", slog.String("user", id), slog.Bool("unlimited", unlimited))
	return nil
}

// SetBanned блокирует или разблокирует пользователя.
func (s *Service) SetBanned(ctx context.Context, token, id string, banned bool) error {
	const op = "admin.SetBanned"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u := st.EnsureUser(id)
	u.Banned = banned
	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("ban flag set", slog.String("user", id), slog.Bool("banned", banned))
	return nil
}

// RenameUser переносит запись пользователя под новый идентификатор и
// переписывает все ссылки used_by в таблице ключей. Перенос и перезапись
// ссылок выполняются в одном цикле сохранения.
func (s *Service) RenameUser(ctx context.Context, token, oldID, newID string) error {
	const op = "admin.RenameUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if newID == "" {
		return fmt.Errorf("%s: %w: empty new id", op, models.ErrBadFormat)
	}
	u, ok := st.Users[oldID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if _, taken := st.Users[newID]; taken {
		return fmt.Errorf("%s: %w: id %q is taken", op, models.ErrConflict, newID)
	}

	delete(st.Users, oldID)
	u.ID = newID
	st.Users[newID] = u
	for _, k := range st.Keys {
		if k.UsedBy == oldID {
			k.UsedBy = newID
		}
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user renamed", slog.String("old", oldID), slog.String("new", newID))
	return nil
}

// BulkZero обнуляет подписки всех пользователей, предварительно снимая
// резервную копию для BulkUndo. Требует литерал подтверждения.
// Возвращает число затронутых пользователей.
func (s *Service) BulkZero(ctx context.Context, token, confirm string) (int, error) {
	const op = "admin.BulkZero"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if confirm != BulkZeroConfirm {
		return 0, fmt.Errorf("%s: %w: confirmation mismatch", op, models.ErrBadFormat)
	}

	if err := s.repo.Backup(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	affected := 0
	for _, u := range st.Users {
		if u.Unlimited || u.ExpiresAt != 0 {
			affected++
		}
		u.Unlimited = false
		u.ExpiresAt = 0
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("bulk zero applied", slog.Int("affected", affected))
	return affected, nil
}

// BulkUndo восстанавливает состояние из последней резервной копии.
func (s *Service) BulkUndo(ctx context.Context, token string) error {
	const op = "admin.BulkUndo"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.begin(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ok, err := s.repo.RestoreBackup(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w: no backup", op, models.ErrNotFound)
	}
	s.log.Info("bulk undo applied")
	return nil
}

// UserInfo возвращает представление пользователя для администратора.
func (s *Service) UserInfo(ctx context.Context, token, id string) (*models.UserSummary, error) {
	const op = "admin.UserInfo"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, ok := st.Users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	sum := summarizeUser(u, time.Now().Unix())
	return &sum, nil
}

// Overview возвращает сводку: глобальные флаги, свежий счётчик онлайна,
// списки активных и заблокированных пользователей и таблицу ключей.
// Счётчик онлайна пересчитывается и сохраняется.
func (s *Service) Overview(ctx context.Context, token string) (*Overview, error) {
	const op = "admin.Overview"
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.begin(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().Unix()
	st.Globals.Online = st.CountOnline(s.window, now)

	ov := &Overview{
		Online:   st.Globals.Online,
		FreeMode: st.Globals.FreeMode,
		Lockdown: st.Globals.Lockdown,
	}
	for _, u := range st.Users {
		if u.Banned {
			ov.Banned = append(ov.Banned, summarizeUser(u, now))
		}
		if u.Active(now) {
			ov.Active = append(ov.Active, summarizeUser(u, now))
		}
	}
	sort.Slice(ov.Active, func(i, j int) bool { return ov.Active[i].ID < ov.Active[j].ID })
	sort.Slice(ov.Banned, func(i, j int) bool { return ov.Banned[i].ID < ov.Banned[j].ID })

	for _, k := range st.Keys {
		ov.Keys = append(ov.Keys, summarizeKey(k))
	}
	sort.Slice(ov.Keys, func(i, j int) bool { return ov.Keys[i].Code < ov.Keys[j].Code })

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ov, nil
}

func summarizeUser(u *models.User, now int64) models.UserSummary {
	remaining := "unlimited"
	if !u.Unlimited {
		remaining = durationunit.Pretty(u.RemainingSeconds(now))
	}
	return models.UserSummary{
		ID:        u.ID,
		Remaining: remaining,
		Devices:   u.Devices,
		HWIDs:     u.HWIDs,
		Banned:    u.Banned,
	}
}

func summarizeKey(k *models.Key) models.KeySummary {
	duration := "unlimited"
	if !k.Unlimited {
		duration = durationunit.Pretty(int64(k.Minutes) * 60)
	}
	usage := "reusable"
	if k.SingleUse {
		usage = "single-use"
	}
	return models.KeySummary{
		Code:     k.Code,
		Duration: duration,
		Devices:  k.Devices,
		Usage:    usage,
		UsedBy:   k.UsedBy,
	}
}

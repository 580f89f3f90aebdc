// Package models содержит доменные структуры сервера лицензий:
// глобальные флаги, записи пользователей, активационные ключи,
// а также результирующие структуры проверки доступа и активации.
//
// Все временные поля хранятся как unix-секунды (int64), ноль означает
// «никогда» для last_seen и «нет активного срока» для expires_at.
package models

// SchemaVersion текущая версия формата файла состояния.
const SchemaVersion = 1

// GlobalConfig глобальные флаги сервера, единственный экземпляр в Store.
type GlobalConfig struct {
	FreeMode   bool   `json:"free_mode"`   // доступ всем незаблокированным
	Lockdown   bool   `json:"lockdown"`    // полный запрет доступа
	Online     int    `json:"online"`      // последний подсчёт онлайна (кеш)
	AdminToken string `json:"admin_token"` // общий секрет администратора
}

// User запись пользователя, ключ в Store.Users — User.ID.
type User struct {
	ID        string   `json:"id"`         // Уникальный идентификатор
	ExpiresAt int64    `json:"expires_at"` // Срок действия подписки, unix-секунды
	Unlimited bool     `json:"unlimited"`  // Безлимитный доступ
	Devices   int      `json:"devices"`    // Лимит привязанных устройств, >= 1
	HWIDs     []string `json:"hwids"`      // Привязанные устройства в порядке привязки
	Banned    bool     `json:"banned"`     // Заблокирован администратором
	LastSeen  int64    `json:"last_seen"`  // Последняя проверка доступа, unix-секунды
}

// Key активационный ключ, ключ в Store.Keys — нормализованный код.
type Key struct {
	Code      string `json:"code"`              // Код в верхнем регистре
	Minutes   int    `json:"minutes"`           // Начисляемые минуты, 0 для безлимита
	Unlimited bool   `json:"unlimited"`         // Даёт безлимитный доступ
	Devices   int    `json:"devices"`           // Новый лимит устройств пользователя
	SingleUse bool   `json:"single_use"`        // Одноразовый ключ
	UsedBy    string `json:"used_by,omitempty"` // Кто активировал одноразовый ключ
}

// Store полное состояние сервера: глобальные флаги и две таблицы.
// Store является единственным источником истины; каждый запрос работает
// с собственной копией, полученной из хранилища, и сохраняет её целиком.
type Store struct {
	Version int              `json:"schema_version"`
	Globals GlobalConfig     `json:"globals"`
	Users   map[string]*User `json:"users"`
	Keys    map[string]*Key  `json:"keys"`
}

// Verdict ответ проверки доступа для клиентского ПО.
type Verdict struct {
	OK        bool  `json:"ok"`
	Banned    bool  `json:"banned"`
	Lockdown  bool  `json:"lockdown"`
	FreeMode  bool  `json:"free_mode"`
	Unlimited bool  `json:"unlimited"`
	Remain    int64 `json:"remain"`
	Online    int   `json:"online"`
}

// RedeemResult результат активации ключа.
type RedeemResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"msg"`
}

// UserSummary представление пользователя для административных ответов.
type UserSummary struct {
	ID        string   `json:"id"`
	Remaining string   `json:"remaining"`
	Devices   int      `json:"devices"`
	HWIDs     []string `json:"hwids"`
	Banned    bool     `json:"banned"`
}

// KeySummary представление ключа для административных ответов.
type KeySummary struct {
	Code     string `json:"code"`
	Duration string `json:"duration"`
	Devices  int    `json:"devices"`
	Usage    string `json:"usage"`
	UsedBy   string `json:"used_by,omitempty"`
}

// NewStore создает состояние по умолчанию с переданным токеном администратора.
func NewStore(adminToken string) *Store {
	return &Store{
		Version: SchemaVersion,
		Globals: GlobalConfig{AdminToken: adminToken},
		Users:   make(map[string]*User),
		Keys:    make(map[string]*Key),
	}
}

// EnsureUser возвращает запись пользователя, создавая её при первом обращении.
func (s *Store) EnsureUser(id string) *User {
	if u, ok := s.Users[id]; ok {
		return u
	}
	u := &User{
		ID:      id,
		Devices: 1,
		HWIDs:   []string{},
	}
	s.Users[id] = u
	return u
}

// Normalize приводит все записи к каноническому виду перед сохранением.
func (s *Store) Normalize() {
	for _, u := range s.Users {
		u.Normalize()
	}
}

// Normalize приводит запись к каноническому виду: безлимит обнуляет срок,
// лимит устройств не опускается ниже единицы.
func (u *User) Normalize() {
	if u.Unlimited {
		u.ExpiresAt = 0
	}
	if u.Devices < 1 {
		u.Devices = 1
	}
	if u.HWIDs == nil {
		u.HWIDs = []string{}
	}
}

// HasHWID сообщает, привязано ли устройство к пользователю.
func (u *User) HasHWID(hwid string) bool {
	for _, h := range u.HWIDs {
		if h == hwid {
			return true
		}
	}
	return false
}

// BindHWID пытается привязать устройство: пустые и уже привязанные
// идентификаторы игнорируются, превышение лимита не является ошибкой —
// устройство просто не добавляется. Возвращает true, если привязка произошла.
func (u *User) BindHWID(hwid string) bool {
	if hwid == "" || u.HasHWID(hwid) {
		return false
	}
	if len(u.HWIDs) >= u.Devices {
		return false
	}
	u.HWIDs = append(u.HWIDs, hwid)
	return true
}

// RemainingSeconds возвращает оставшееся время подписки в секундах,
// ноль для истёкших и безлимитных записей.
func (u *User) RemainingSeconds(now int64) int64 {
	if u.Unlimited {
		return 0
	}
	remain := u.ExpiresAt - now
	if remain < 0 {
		return 0
	}
	return remain
}

// Active сообщает, действует ли подписка пользователя в данный момент.
func (u *User) Active(now int64) bool {
	return u.Unlimited || u.ExpiresAt > now
}

// CountOnline возвращает число пользователей, чья последняя проверка
// доступа укладывается в скользящее окно windowSeconds от момента now.
// Чистая функция: запись результата в Globals.Online остаётся за вызывающим.
func (s *Store) CountOnline(windowSeconds, now int64) int {
	cnt := 0
	for _, u := range s.Users {
		if u.LastSeen > 0 && now-u.LastSeen <= windowSeconds {
			cnt++
		}
	}
	return cnt
}

// Package jsonfile реализует хранилище состояния сервера лицензий в одном
// JSON-файле. Запись атомарна относительно падения процесса: данные пишутся
// во временный файл рядом с основным и подменяются через os.Rename, поэтому
// читатель никогда не видит частично записанное состояние.
//
// Хранилище не выполняет блокировок: сериализация циклов
// load-mutate-save лежит на вызывающем слое.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/magabrotheeeer/license-server/internal/models"
)

// DefaultAdminToken используется при инициализации нового файла состояния,
// если внешний токен не задан.
const DefaultAdminToken = "admin"

// Storage файловое хранилище состояния: основной файл, резервная копия
// (path + ".bak") и временный файл для атомарной подмены (path + ".tmp").
type Storage struct {
	path       string
	backupPath string
	tmpPath    string
	adminToken string
}

// New создает хранилище для переданного пути. adminToken применяется
// только при создании нового файла состояния; пустое значение заменяется
// на DefaultAdminToken.
func New(path, adminToken string) *Storage {
	if adminToken == "" {
		adminToken = DefaultAdminToken
	}
	return &Storage{
		path:       path,
		backupPath: path + ".bak",
		tmpPath:    path + ".tmp",
		adminToken: adminToken,
	}
}

// Load читает состояние из файла. Отсутствующий файл не ошибка:
// создаётся и сохраняется состояние по умолчанию. Нечитаемый или
// повреждённый файл возвращает обёрнутую ошибку, состояние на диске
// при этом не меняется.
func (s *Storage) Load(ctx context.Context) (*models.Store, error) {
	const op = "storage.jsonfile.Load"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		st := models.NewStore(s.adminToken)
		if err := s.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var st models.Store
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%s: corrupt state file: %w", op, err)
	}
	if st.Version > models.SchemaVersion {
		return nil, fmt.Errorf("%s: unsupported schema version %d", op, st.Version)
	}
	if st.Users == nil {
		st.Users = make(map[string]*models.User)
	}
	if st.Keys == nil {
		st.Keys = make(map[string]*models.Key)
	}
	return &st, nil
}

// Save нормализует и записывает состояние целиком: сериализация во
// временный файл, затем атомарная подмена основного.
func (s *Storage) Save(ctx context.Context, st *models.Store) error {
	const op = "storage.jsonfile.Save"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	st.Normalize()
	st.Version = models.SchemaVersion
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := os.WriteFile(s.tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Backup копирует текущее состояние в резервный файл, предварительно
// инициализируя состояние по умолчанию, если основного файла ещё нет.
func (s *Storage) Backup(ctx context.Context) error {
	const op = "storage.jsonfile.Backup"

	if _, err := s.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := s.backupPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp, s.backupPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RestoreBackup подменяет основной файл резервной копией.
// Возвращает false, если резервной копии не существует.
func (s *Storage) RestoreBackup(ctx context.Context) (bool, error) {
	const op = "storage.jsonfile.RestoreBackup"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := os.ReadFile(s.backupPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(s.tmpPath, data, 0o600); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

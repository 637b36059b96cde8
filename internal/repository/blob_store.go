package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskBlobStore - хранилище блобов на диске: ключ вида "папка/имя_файла"
// отображается в путь под корневым каталогом. В media-списках остановок
// сохраняется именно ключ, а не ссылка для показа.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore создает хранилище блобов с корнем root.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог хранилища %s: %w", root, err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("не удалось определить путь хранилища: %w", err)
	}
	return &DiskBlobStore{root: abs}, nil
}

// Upload сохраняет содержимое под указанным ключом и возвращает ключ как путь
// сохранённого объекта. Повторная загрузка того же ключа перезаписывает объект:
// дедупликация не выполняется. Запись идёт через временный файл с последующим
// переименованием, чтобы читатели не видели неполных объектов.
func (s *DiskBlobStore) Upload(ctx context.Context, key string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// Ключ отображается только внутрь корня: сегменты ".." в ключе недопустимы.
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("ключ %s выходит за пределы корня хранилища", key)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог для %s: %w", key, err)
	}

	tmp := target + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", fmt.Errorf("не удалось записать объект %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("не удалось сохранить объект %s: %w", key, err)
	}
	return key, nil
}

// Exists сообщает, сохранён ли объект с данным ключом.
func (s *DiskBlobStore) Exists(key string) bool {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return false
	}
	_, err := os.Stat(target)
	return err == nil
}

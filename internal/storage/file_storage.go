package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/nomadhub/nomadhub-backend/internal/pkg/apperror"
)

// Типы файлов, которые принимаем в сдачах работ и свидетельствах споров.
var allowedTypes = map[string]struct{}{
	"jpg":  {},
	"png":  {},
	"gif":  {},
	"webp": {},
	"pdf":  {},
	"zip":  {},
	"gz":   {},
}

// FileStorage хранит файлы сдач работ на диске, раскладывая по контрактам.
type FileStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewFileStorage создаёт файловое хранилище.
func NewFileStorage(rootPath string, maxUploadMB int64) (*FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root dir %s: %w", rootPath, err)
	}

	return &FileStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет тип файла по magic-байтам, сохраняет его и возвращает
// относительный путь. Файл пишется во временное имя и переименовывается
// атомарно.
func (s *FileStorage) Save(ctx context.Context, contractID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	// filetype.Match читает первые 262 байта
	head := make([]byte, 262)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", 0, fmt.Errorf("storage: read file head: %w", err)
	}
	head = head[:n]

	kind, _ := filetype.Match(head)
	if kind == filetype.Unknown {
		return "", 0, apperror.New(apperror.ErrCodeValidation, "unrecognized file type")
	}
	if _, ok := allowedTypes[kind.Extension]; !ok {
		return "", 0, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("file type %s is not allowed", kind.Extension))
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)

	contractDir := filepath.Join(s.rootPath, contractID.String())
	if err := os.MkdirAll(contractDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: create contract dir: %w", err)
	}

	targetPath := filepath.Join(contractDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: write file: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: close file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: rename file: %w", err)
	}

	return filepath.Join(contractID.String(), fileName), written, nil
}

// Delete удаляет файл из хранилища.
func (s *FileStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "file"
	}
	return name
}

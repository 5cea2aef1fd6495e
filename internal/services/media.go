package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// MediaStore is where accepted uploads end up. Keys returned by Save are
// what journals and profiles persist.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object behind key. A missing object is not an error.
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// MediaPolicy bounds what MediaIntake accepts.
type MediaPolicy struct {
	MaxBytes      int64
	RestrictTypes bool
	AllowedTypes  []string
	MaxFiles      int
}

// MediaIntake validates multipart uploads and stores them under unique names.
type MediaIntake struct {
	store  MediaStore
	policy MediaPolicy
	now    func() time.Time
	log    *zap.Logger
}

func NewMediaIntake(store MediaStore, policy MediaPolicy, log *zap.Logger) *MediaIntake {
	return &MediaIntake{store: store, policy: policy, now: time.Now, log: log}
}

func (m *MediaIntake) Store() MediaStore { return m.store }

func (m *MediaIntake) MaxFiles() int { return m.policy.MaxFiles }

// MaxRequestBytes bounds a whole multipart request carrying files files plus
// form fields; 0 means unbounded.
func (m *MediaIntake) MaxRequestBytes(files int) int64 {
	if m.policy.MaxBytes <= 0 {
		return 0
	}
	if files < 1 {
		files = 1
	}
	return int64(files)*m.policy.MaxBytes + 1<<20
}

type checkedFile struct {
	header      *multipart.FileHeader
	contentType string
}

// Accept validates every file first and only then stores them, so a request
// is either fully stored or not at all. Returned keys keep the input order.
func (m *MediaIntake) Accept(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if m.policy.MaxFiles > 0 && len(files) > m.policy.MaxFiles {
		return nil, utils.NewValidationError("images", "at most %d images are allowed", m.policy.MaxFiles)
	}

	checked := make([]checkedFile, 0, len(files))
	for _, fh := range files {
		ct, err := m.check(fh)
		if err != nil {
			return nil, err
		}
		checked = append(checked, checkedFile{header: fh, contentType: ct})
	}

	keys := make([]string, 0, len(checked))
	for _, cf := range checked {
		key, err := m.save(ctx, cf)
		if err != nil {
			m.Discard(ctx, keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// AcceptOne is Accept for a single required file.
func (m *MediaIntake) AcceptOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", utils.NewValidationError("file", "no file uploaded")
	}
	keys, err := m.Accept(ctx, []*multipart.FileHeader{fh})
	if err != nil {
		return "", err
	}
	return keys[0], nil
}

// Discard removes stored keys, logging failures.
func (m *MediaIntake) Discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := m.store.Remove(ctx, key); err != nil {
			m.log.Warn("failed to remove media", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *MediaIntake) check(fh *multipart.FileHeader) (string, error) {
	if m.policy.MaxBytes > 0 && fh.Size > m.policy.MaxBytes {
		return "", utils.NewValidationError("images", "%s exceeds the %d byte limit", fh.Filename, m.policy.MaxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect type of %q: %w", fh.Filename, err)
	}
	ct := mt.String()
	if i := strings.Index(ct, ";"); i != -1 {
		ct = ct[:i]
	}
	if m.policy.RestrictTypes && !mimetype.EqualsAny(ct, m.policy.AllowedTypes...) {
		return "", utils.NewValidationError("images", "only image files are allowed (%s)", strings.Join(m.policy.AllowedTypes, ", "))
	}
	return ct, nil
}

func (m *MediaIntake) save(ctx context.Context, cf checkedFile) (string, error) {
	f, err := cf.header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", cf.header.Filename, err)
	}
	defer f.Close()

	key, err := m.store.Save(ctx, m.fileName(cf.header.Filename), f, cf.header.Size, cf.contentType)
	if err != nil {
		return "", fmt.Errorf("store upload %q: %w", cf.header.Filename, err)
	}
	return key, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName is "<unix millis>-<8 hex>-<sanitised original name>".
func (m *MediaIntake) fileName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "file"
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return fmt.Sprintf("%d-%s-%s", m.now().UnixMilli(), uuid.NewString()[:8], base)
}

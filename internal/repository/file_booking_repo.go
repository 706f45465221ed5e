package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clinicbooking/internal/db"
	apperrors "clinicbooking/internal/errors"
)

// FileBookingRepository persists the whole booking array as one JSON
// document, rewritten after every append.
type FileBookingRepository struct {
	*MemoryBookingRepository
	path string
}

// NewFileBookingRepository loads path, treating a missing file as an empty store.
func NewFileBookingRepository(path string) (*FileBookingRepository, error) {
	bookings, err := readBookingDocument(path)
	if err != nil {
		return nil, err
	}
	r := &FileBookingRepository{
		MemoryBookingRepository: newMemoryFrom(bookings),
		path:                    path,
	}
	r.persist = r.writeDocument
	return r, nil
}

func (r *FileBookingRepository) Path() string {
	return r.path
}

// DocumentLocker takes a lock that every process writing the document honours.
type DocumentLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Share makes the store safe for several processes writing one path. Every
// operation re-reads the document, and appends rewrite it under locks, so no
// process works from a stale copy or overwrites another's records.
func (r *FileBookingRepository) Share(locks DocumentLocker) {
	key := documentLockKey(r.path)
	r.reload = func() ([]db.Booking, error) { return readBookingDocument(r.path) }
	r.guard = func(ctx context.Context) (func(), error) {
		unlock, err := locks.Lock(ctx, key)
		if err != nil {
			return nil, apperrors.NewStorageError("lock bookings file", err)
		}
		return unlock, nil
	}
}

func documentLockKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "document|" + path
}

func readBookingDocument(path string) ([]db.Booking, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("read bookings file", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var bookings []db.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, apperrors.NewStorageError("parse bookings file", err)
	}

	seen := make(map[int]struct{}, len(bookings))
	for _, b := range bookings {
		if _, dup := seen[b.ID]; dup || b.ID <= 0 {
			return nil, apperrors.NewStorageError("parse bookings file", fmt.Errorf("invalid or duplicate booking id %d", b.ID))
		}
		seen[b.ID] = struct{}{}
	}
	return bookings, nil
}

// writeDocument writes to a temp file next to the target and renames it
// over the target, so readers never see a half written document.
func (r *FileBookingRepository) writeDocument(bookings []db.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("encode bookings", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError("create bookings dir", err)
	}

	tmp, err := os.CreateTemp(dir, ".bookings-*.json")
	if err != nil {
		return apperrors.NewStorageError("create temp bookings file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("write bookings file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("sync bookings file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("close bookings file", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return apperrors.NewStorageError("replace bookings file", err)
	}
	return nil
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"clinicbooking/internal/config"
	"clinicbooking/internal/db"
	"clinicbooking/internal/repository"
	"clinicbooking/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, &config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryBookingRepository{}, store)

	path := filepath.Join(t.TempDir(), "bookings.json")
	store, err = openStore(ctx, &config.Config{Store: config.StoreFile, BookingsFile: path})
	require.NoError(t, err)
	fileStore, ok := store.(*repository.FileBookingRepository)
	require.True(t, ok)
	assert.Equal(t, path, fileStore.Path())

	_, err = openStore(ctx, &config.Config{Store: "sqlite"})
	assert.Error(t, err)
}

func TestShareFileStore(t *testing.T) {
	ctx := context.Background()
	locks := service.NewLocalKeyLocker()
	path := filepath.Join(t.TempDir(), "bookings.json")

	a, err := openStore(ctx, &config.Config{Store: config.StoreFile, BookingsFile: path})
	require.NoError(t, err)
	b, err := openStore(ctx, &config.Config{Store: config.StoreFile, BookingsFile: path})
	require.NoError(t, err)
	assert.True(t, shareFileStore(a, locks))
	assert.True(t, shareFileStore(b, locks))
	assert.False(t, shareFileStore(repository.NewMemoryBookingRepository(), locks))

	_, err = a.Append(ctx, db.BookingDraft{DoctorID: 1, Date: "2025-08-10", Slot: "09:00", PatientName: "Amal"})
	require.NoError(t, err)
	n, err := b.CountForSlot(ctx, 1, "2025-08-10", "09:00")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewLoggerLevel(t *testing.T) {
	logger := newLogger(&config.Config{Env: "production", LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = newLogger(&config.Config{Env: "production", LogLevel: "loud"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "serve", serveCmd().Use)
	assert.Equal(t, "migrate", migrateCmd().Use)
}

package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"pc-inventory/internal/config"
	"pc-inventory/internal/models"
	"pc-inventory/internal/notify"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// setupTestDB points models.DB at a fresh SQLite file for the test.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "inventory_test.db")
	cfg.Token.Secret = "test-secret-key-for-testing-only"
	cfg.Token.Issuer = "pc-inventory-test"
	cfg.Security.BcryptCost = bcrypt.MinCost

	require.NoError(t, models.InitDB(cfg))

	t.Cleanup(func() {
		if sqlDB, err := models.DB.DB(); err == nil {
			sqlDB.Close()
		}
		models.DB = nil
	})

	return cfg
}

// recordingNotifier keeps every message and fails when err is set.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}

type testEnv struct {
	cfg       *config.Config
	notifier  *recordingNotifier
	auth      *AuthService
	changes   *ChangeService
	computers *ComputerService
	users     *UserService
	profiles  *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := setupTestDB(t)
	notifier := &recordingNotifier{}
	changes := NewChangeService(cfg, notifier, zap.NewNop())

	return &testEnv{
		cfg:       cfg,
		notifier:  notifier,
		auth:      NewAuthService(cfg),
		changes:   changes,
		computers: NewComputerService(cfg, changes),
		users:     NewUserService(cfg, changes),
		profiles:  NewProfileService(),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role, superuser bool) *models.User {
	t.Helper()
	user, _, err := e.auth.CreateUser(NewUser{
		Username:    username,
		Password:    username + "-password",
		Role:        role,
		IsSuperuser: superuser,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createComputer(t *testing.T, name, ip string) *models.Computer {
	t.Helper()
	computer, err := e.computers.Create(ComputerInput{
		ComputerName:    ptr(name),
		IPAddress:       ptr(ip),
		LocationAddress: ptr("Main building"),
		Floor:           ptr(2),
		Office:          ptr("204"),
		OperatingSystem: ptr("Windows 10"),
	})
	require.NoError(t, err)
	return computer
}

func countChanges(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, models.DB.Model(&models.Change{}).Count(&count).Error)
	return count
}

func ptr[T any](v T) *T {
	return &v
}

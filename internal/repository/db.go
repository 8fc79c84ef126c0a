package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teamtasks/internal/model"
)

// NewDB opens the local mirror database and runs migrations.
// Foreign keys are enabled so the cascade and set-null delete policies
// declared on the models are enforced by SQLite.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "teamtasks.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&model.UserProfile{},
		&model.Group{},
		&model.GroupMember{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.ActivityLog{},
		&model.SyncQueueItem{},
		&model.AuthToken{},
		&model.AppSetting{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

// withForeignKeys appends the foreign-key pragma to the DSN unless the
// caller already set one.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// Store bundles the repositories over one mirror database.
type Store struct {
	Users       *UserProfileRepository
	Groups      *GroupRepository
	Members     *GroupMemberRepository
	Tasks       *TaskRepository
	Assignments *TaskAssignmentRepository
	Logs        *ActivityLogRepository
	Queue       *SyncQueueRepository
	AuthTokens  *AuthTokenRepository
	Settings    *AppSettingsRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:       NewUserProfileRepository(db),
		Groups:      NewGroupRepository(db),
		Members:     NewGroupMemberRepository(db),
		Tasks:       NewTaskRepository(db),
		Assignments: NewTaskAssignmentRepository(db),
		Logs:        NewActivityLogRepository(db),
		Queue:       NewSyncQueueRepository(db),
		AuthTokens:  NewAuthTokenRepository(db),
		Settings:    NewAppSettingsRepository(db),
	}
}

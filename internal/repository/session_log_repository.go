package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"paylog/internal/cache"
	apperrors "paylog/internal/errors"
	"paylog/internal/model"
)

// sessionCacheTTL bounds how long the UI polls may be served from
// cache before hitting the database again.
const sessionCacheTTL = 5 * time.Minute

// SessionLogRepository defines session log persistence operations.
type SessionLogRepository interface {
	Create(ctx context.Context, session *model.SessionLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SessionLog, error)
	Update(ctx context.Context, session *model.SessionLog) error
}

type sessionLogRepository struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewSessionLogRepository creates a new session log repository. Reads
// are served cache-aside: the checkout UI polls session state between
// redirects, and the cache fails safe to the database when redis is
// unavailable.
func NewSessionLogRepository(db *gorm.DB, cacheClient *cache.Client) SessionLogRepository {
	return &sessionLogRepository{db: db, cache: cacheClient}
}

// Create inserts a new session log record.
func (r *sessionLogRepository) Create(ctx context.Context, session *model.SessionLog) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID finds a session log by ID, preferring the cache.
func (r *sessionLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SessionLog, error) {
	key := sessionCacheKey(id)
	if cached, _ := r.cache.Get(ctx, key); cached != nil {
		var session model.SessionLog
		if err := json.Unmarshal(cached, &session); err == nil {
			return &session, nil
		}
	}

	var session model.SessionLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	if encoded, err := json.Marshal(&session); err == nil {
		_ = r.cache.Set(ctx, key, encoded, sessionCacheTTL)
	}
	return &session, nil
}

// Update saves an existing session log record and invalidates its
// cached copy.
func (r *sessionLogRepository) Update(ctx context.Context, session *model.SessionLog) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, sessionCacheKey(session.ID))
	return nil
}

func sessionCacheKey(id uuid.UUID) string {
	return "session:" + id.String()
}

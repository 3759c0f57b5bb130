package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/models"
	"gorm.io/gorm"
)

const DefaultMemoryCapacity = 500

// RequestLogRepositoryImpl implements RequestLogRepository on postgres
type RequestLogRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestLogRepository(db *gorm.DB) models.RequestLogRepository {
	return &RequestLogRepositoryImpl{db: db}
}

func (r *RequestLogRepositoryImpl) Create(ctx context.Context, log *models.RequestLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}
	return nil
}

func (r *RequestLogRepositoryImpl) GetRecent(ctx context.Context, limit int) ([]models.RequestLog, error) {
	var logs []models.RequestLog
	err := r.db.WithContext(ctx).
		Order("ts DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}
	return logs, nil
}

// MemoryRequestLogRepository keeps the most recent logs in a fixed ring.
// Used when no database is configured.
type MemoryRequestLogRepository struct {
	mu     sync.RWMutex
	buf    []models.RequestLog
	next   int
	size   int
	lastID uint
}

func NewMemoryRequestLogRepository(capacity int) *MemoryRequestLogRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRequestLogRepository{buf: make([]models.RequestLog, capacity)}
}

func (r *MemoryRequestLogRepository) Create(ctx context.Context, log *models.RequestLog) error {
	if log.TS.IsZero() {
		log.TS = time.Now().UTC()
	}
	if err := log.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	log.ID = r.lastID
	r.buf[r.next] = *log
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
	return nil
}

func (r *MemoryRequestLogRepository) GetRecent(ctx context.Context, limit int) ([]models.RequestLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, r.size)
	if n < 0 {
		n = 0
	}
	logs := make([]models.RequestLog, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		logs = append(logs, r.buf[idx])
	}
	return logs, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	RequestLog models.RequestLogRepository
}

// NewRepositoryManager uses postgres when db is set and an in-memory
// ring otherwise.
func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	if db == nil {
		return &RepositoryManager{RequestLog: NewMemoryRequestLogRepository(DefaultMemoryCapacity)}
	}
	return &RepositoryManager{RequestLog: NewRequestLogRepository(db)}
}

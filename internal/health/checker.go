package health

import (
	"context"
	"sort"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/database"
	"github.com/Ayash-Bera/apifusion/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	ServiceHealthy   = "healthy"
	ServiceUnhealthy = "unhealthy"
)

// CheckFunc pings one backing service.
type CheckFunc func(ctx context.Context) error

// HealthChecker reports the app identity plus the state of each configured
// backing store.
type HealthChecker struct {
	app     string
	env     string
	checks  map[string]CheckFunc
	timeout time.Duration
	logger  *logrus.Logger
}

func NewHealthChecker(app, env string, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		app:     app,
		env:     env,
		checks:  make(map[string]CheckFunc),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// ForManager registers postgres and redis checks for the stores the manager
// actually opened.
func ForManager(app, env string, dbManager *database.Manager, logger *logrus.Logger) *HealthChecker {
	h := NewHealthChecker(app, env, logger)
	if dbManager == nil {
		return h
	}
	if dbManager.DB != nil {
		h.Register("postgres", dbManager.PingDatabase)
	}
	if dbManager.Redis != nil {
		h.Register("redis", dbManager.PingRedis)
	}
	return h
}

func (h *HealthChecker) Register(name string, check CheckFunc) {
	h.checks[name] = check
}

// CheckAll runs every registered check. Any failing service degrades the
// overall status.
func (h *HealthChecker) CheckAll(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{
		Status: StatusOK,
		App:    h.app,
		Env:    h.env,
	}
	if len(h.checks) == 0 {
		return resp
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp.Services = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		start := time.Now()
		err := h.checks[name](checkCtx)
		cancel()

		if err != nil {
			resp.Services[name] = ServiceUnhealthy
			resp.Status = StatusDegraded
			h.logger.WithError(err).WithFields(logrus.Fields{
				"service":          name,
				"response_time_ms": time.Since(start).Milliseconds(),
			}).Error("Health check failed")
			continue
		}
		resp.Services[name] = ServiceHealthy
	}
	return resp
}

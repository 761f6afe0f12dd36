package audit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const maxLimit = 500

// Recorder is what mutating handlers call after a successful write.
type Recorder interface {
	Record(ctx context.Context, action, entityType, entityID string, meta map[string]any)
}

type Nop struct{}

func (Nop) Record(context.Context, string, string, string, map[string]any) {}

type Filter struct {
	EntityType string
	EntityID   string
	Action     string
	Limit      int
}

type Store interface {
	Insert(ctx context.Context, tenant string, e models.AuditEntry) error
	List(ctx context.Context, tenant string, f Filter) ([]models.AuditEntry, error)
}

// Log writes audit entries into the tenant bound to the request.
type Log struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func New(store Store, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{store: store, log: log, now: time.Now}
}

// Record never fails the caller; write errors are logged.
func (l *Log) Record(ctx context.Context, action, entityType, entityID string, meta map[string]any) {
	tenant := middleware.TenantFrom(ctx)
	if tenant == "" {
		return
	}
	p := middleware.PrincipalFrom(ctx)
	e := models.AuditEntry{
		ID:          utils.NewID(),
		OccurredAt:  l.now().UTC(),
		ActorUserID: p.UserID,
		ActorRole:   p.Role,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Meta:        meta,
	}
	if err := l.store.Insert(context.WithoutCancel(ctx), tenant, e); err != nil {
		l.log.Warn("audit write failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// List serves GET /api/audit, newest first.
func (l *Log) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	f := Filter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Action:     q.Get("action"),
		Limit:      100,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		f.Limit = n
	}
	items, err := l.store.List(r.Context(), middleware.TenantFrom(r.Context()), f)
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": items})
}

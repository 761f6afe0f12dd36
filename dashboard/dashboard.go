package dashboard

import (
	"context"
	"net/http"
	"time"

	"cruiseops/middleware"
	"cruiseops/models"
	"cruiseops/utils"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"
)

const recentNotifications = 10

type BookingStats interface {
	CountByStatus(ctx context.Context, tenant string) (map[string]int64, error)
	ConfirmedRevenue(ctx context.Context, tenant string) (map[string]int64, error)
}

type ShipCounter interface {
	CountShips(ctx context.Context, tenant, status string) (int64, error)
}

type SailingCounter interface {
	Count(ctx context.Context, tenant, status string) (int64, error)
}

type CustomerCounter interface {
	Count(ctx context.Context, tenant string) (int64, error)
}

type NotificationFeed interface {
	Recent(ctx context.Context, companyID string, n int) ([]models.Notification, error)
}

type KPIs struct {
	Bookings      map[string]int64      `json:"bookings"`
	Revenue       map[string]int64      `json:"confirmed_revenue"`
	OpenSailings  int64                 `json:"open_sailings"`
	ActiveShips   int64                 `json:"active_ships"`
	Customers     int64                 `json:"customers"`
	Notifications []models.Notification `json:"recent_notifications"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

type Service struct {
	bookings      BookingStats
	ships         ShipCounter
	sailings      SailingCounter
	customers     CustomerCounter
	notifications NotificationFeed
	now           func() time.Time
}

func NewService(b BookingStats, sh ShipCounter, sl SailingCounter, c CustomerCounter, n NotificationFeed) *Service {
	return &Service{bookings: b, ships: sh, sailings: sl, customers: c, notifications: n, now: time.Now}
}

// KPIs gathers every figure concurrently; the first failure cancels the rest.
func (s *Service) KPIs(ctx context.Context, tenant, companyID string) (KPIs, error) {
	k := KPIs{GeneratedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		k.Bookings, err = s.bookings.CountByStatus(gctx, tenant)
		return err
	})
	g.Go(func() (err error) {
		k.Revenue, err = s.bookings.ConfirmedRevenue(gctx, tenant)
		return err
	})
	g.Go(func() (err error) {
		k.OpenSailings, err = s.sailings.Count(gctx, tenant, models.SailingOpen)
		return err
	})
	g.Go(func() (err error) {
		k.ActiveShips, err = s.ships.CountShips(gctx, tenant, models.ShipActive)
		return err
	})
	g.Go(func() (err error) {
		k.Customers, err = s.customers.Count(gctx, tenant)
		return err
	})
	g.Go(func() (err error) {
		k.Notifications, err = s.notifications.Recent(gctx, companyID, recentNotifications)
		return err
	})
	if err := g.Wait(); err != nil {
		return KPIs{}, err
	}
	if k.Bookings == nil {
		k.Bookings = map[string]int64{}
	}
	if k.Revenue == nil {
		k.Revenue = map[string]int64{}
	}
	if k.Notifications == nil {
		k.Notifications = []models.Notification{}
	}
	return k, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// KPIs serves GET /api/dashboard/kpis.
func (h *Handler) KPIs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	k, err := h.svc.KPIs(ctx, middleware.TenantFrom(ctx), middleware.CompanyFrom(ctx))
	if err != nil {
		utils.RespondWithErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, k)
}

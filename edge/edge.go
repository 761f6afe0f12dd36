// Package edge serves the aggregated views used by the public site and the
// mobile app.
package edge

import (
	"context"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/sailings"
	"cruiseops/utils"

	"golang.org/x/sync/errgroup"
)

type SailingSource interface {
	List(ctx context.Context, tenant string, f sailings.Filter) ([]models.Sailing, error)
	Get(ctx context.Context, tenant, id string) (models.Sailing, error)
}

type ShipSource interface {
	Ships(ctx context.Context, tenant string) ([]models.Ship, error)
}

type Cruise struct {
	Sailing models.Sailing `json:"sailing"`
	Ship    *models.Ship   `json:"ship"`
}

type AgendaItem struct {
	Time     string `json:"time"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Kind     string `json:"kind"`
}

type Agenda struct {
	CustomerID string       `json:"customer_id"`
	SailingID  string       `json:"sailing_id"`
	Date       string       `json:"date"`
	Items      []AgendaItem `json:"items"`
}

type Service struct {
	sailings SailingSource
	ships    ShipSource
	now      func() time.Time
}

func NewService(sl SailingSource, sh ShipSource) *Service {
	return &Service{sailings: sl, ships: sh, now: time.Now}
}

// Cruises joins every sailing with its ship. A sailing whose ship is gone
// keeps a nil ship.
func (s *Service) Cruises(ctx context.Context, tenant string) ([]Cruise, error) {
	var (
		sls   []models.Sailing
		ships []models.Ship
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sls, err = s.sailings.List(gctx, tenant, sailings.Filter{})
		return err
	})
	g.Go(func() (err error) {
		ships, err = s.ships.Ships(gctx, tenant)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Ship, len(ships))
	for i := range ships {
		byID[ships[i].ID] = &ships[i]
	}
	out := make([]Cruise, 0, len(sls))
	for _, sl := range sls {
		out = append(out, Cruise{Sailing: sl, Ship: byID[sl.ShipID]})
	}
	return out, nil
}

// MobileAgenda returns the fixed onboard schedule for today, with the port
// call inserted when the ship is in port.
func (s *Service) MobileAgenda(ctx context.Context, tenant, customerID, sailingID string) (Agenda, error) {
	customerID = strings.TrimSpace(customerID)
	sailingID = strings.TrimSpace(sailingID)
	if customerID == "" || sailingID == "" {
		return Agenda{}, utils.Invalid("customer_id and sailing_id are required")
	}
	sl, err := s.sailings.Get(ctx, tenant, sailingID)
	if err != nil {
		return Agenda{}, err
	}

	today := s.now().UTC()
	items := []AgendaItem{
		{Time: "09:00", Title: "Safety drill", Location: "Main Theater", Kind: "info"},
	}
	if stop, ok := sailings.OnDay(sl, today); ok {
		name := stop.PortName
		if name == "" {
			name = stop.PortCode
		}
		items = append(items, AgendaItem{
			Time:     stop.Arrival.UTC().Format("15:04"),
			Title:    "Arrive in " + name,
			Location: stop.PortCode,
			Kind:     "port",
		})
	}
	items = append(items, AgendaItem{Time: "19:00", Title: "Dinner seating", Location: "Oceanview Restaurant", Kind: "dining"})

	return Agenda{
		CustomerID: customerID,
		SailingID:  sl.ID,
		Date:       today.Format(time.DateOnly),
		Items:      items,
	}, nil
}

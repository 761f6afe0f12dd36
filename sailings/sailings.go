package sailings

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

// PortLookup resolves port codes against the tenant's port registry.
type PortLookup interface {
	PortsByCode(ctx context.Context, tenant string, codes []string) (map[string]models.Port, error)
}

type Service struct {
	store Store
	ports PortLookup
	now   func() time.Time
}

func NewService(store Store, ports PortLookup) *Service {
	return &Service{store: store, ports: ports, now: time.Now}
}

type PortStopInput struct {
	PortCode  string    `json:"port_code"`
	PortName  string    `json:"port_name"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

func (in PortStopInput) stop() (models.PortStop, error) {
	p := models.PortStop{
		PortCode:  utils.UpperCode(in.PortCode),
		PortName:  strings.TrimSpace(in.PortName),
		Arrival:   in.Arrival.UTC(),
		Departure: in.Departure.UTC(),
	}
	if p.PortCode == "" {
		return p, utils.Invalid("port_code is required")
	}
	if !p.Departure.After(p.Arrival) {
		return p, utils.Invalid("departure must be after arrival")
	}
	return p, nil
}

type CreateInput struct {
	Code           string          `json:"code"`
	ShipID         string          `json:"ship_id"`
	ItineraryID    string          `json:"itinerary_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	EmbarkPortCode string          `json:"embark_port_code"`
	DebarkPortCode string          `json:"debark_port_code"`
	Status         string          `json:"status"`
	PortStops      []PortStopInput `json:"port_stops"`
}

func sortStops(stops []models.PortStop) {
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Arrival.Before(stops[j].Arrival) })
}

func (s *Service) Create(ctx context.Context, tenant string, in CreateInput) (models.Sailing, error) {
	sl := models.Sailing{
		Code:           strings.TrimSpace(in.Code),
		ShipID:         strings.TrimSpace(in.ShipID),
		ItineraryID:    strings.TrimSpace(in.ItineraryID),
		StartDate:      strings.TrimSpace(in.StartDate),
		EndDate:        strings.TrimSpace(in.EndDate),
		EmbarkPortCode: utils.UpperCode(in.EmbarkPortCode),
		DebarkPortCode: utils.UpperCode(in.DebarkPortCode),
		Status:         in.Status,
	}
	for _, raw := range in.PortStops {
		p, err := raw.stop()
		if err != nil {
			return sl, err
		}
		sl.PortStops = append(sl.PortStops, p)
	}
	return s.Add(ctx, tenant, sl)
}

// Add validates a fully built sailing and stores it.
func (s *Service) Add(ctx context.Context, tenant string, sl models.Sailing) (models.Sailing, error) {
	if sl.Code == "" || sl.ShipID == "" {
		return sl, utils.Invalid("code and ship_id are required")
	}
	start, err := utils.ParseDate(sl.StartDate)
	if err != nil {
		return sl, err
	}
	end, err := utils.ParseDate(sl.EndDate)
	if err != nil {
		return sl, err
	}
	if end.Before(start) {
		return sl, utils.Invalid("end_date must not be before start_date")
	}
	sl.Status = utils.LowerCode(sl.Status)
	if sl.Status == "" {
		sl.Status = models.SailingPlanned
	}
	if !slices.Contains(models.SailingStatuses, sl.Status) {
		return sl, utils.Invalid("status must be one of planned|open|closed|cancelled")
	}
	if sl.PortStops == nil {
		sl.PortStops = []models.PortStop{}
	}
	sortStops(sl.PortStops)
	sl.ID = utils.NewID()
	sl.CreatedAt = s.now().UTC()
	return sl, s.store.Insert(ctx, tenant, sl)
}

func (s *Service) List(ctx context.Context, tenant string, f Filter) ([]models.Sailing, error) {
	f.Status = utils.LowerCode(f.Status)
	return s.store.List(ctx, tenant, f)
}

func (s *Service) Get(ctx context.Context, tenant, id string) (models.Sailing, error) {
	sl, err := s.store.Get(ctx, tenant, id)
	if err != nil {
		return models.Sailing{}, err
	}
	if sl == nil {
		return models.Sailing{}, utils.NotFound("Sailing not found")
	}
	return *sl, nil
}

func (s *Service) SetStatus(ctx context.Context, tenant, id, status string) (models.Sailing, error) {
	sl, err := s.Get(ctx, tenant, id)
	if err != nil {
		return sl, err
	}
	status = utils.LowerCode(status)
	if !slices.Contains(models.SailingStatuses, status) {
		return sl, utils.Invalid("status must be one of planned|open|closed|cancelled")
	}
	sl.Status = status
	return sl, s.store.Replace(ctx, tenant, sl)
}

func (s *Service) AddPortStop(ctx context.Context, tenant, id string, in PortStopInput) (models.Sailing, error) {
	sl, err := s.Get(ctx, tenant, id)
	if err != nil {
		return sl, err
	}
	p, err := in.stop()
	if err != nil {
		return sl, err
	}
	sl.PortStops = append(sl.PortStops, p)
	sortStops(sl.PortStops)
	return sl, s.store.Replace(ctx, tenant, sl)
}

type StopView struct {
	PortCode    string    `json:"port_code"`
	PortName    string    `json:"port_name"`
	PortCity    string    `json:"port_city"`
	PortCountry string    `json:"port_country"`
	Arrival     time.Time `json:"arrival"`
	Departure   time.Time `json:"departure"`
}

// Itinerary returns the sailing's port stops with port details in lang.
func (s *Service) Itinerary(ctx context.Context, tenant, id, lang string) ([]StopView, error) {
	sl, err := s.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(sl.PortStops))
	for _, p := range sl.PortStops {
		codes = append(codes, p.PortCode)
	}
	ports, err := s.ports.PortsByCode(ctx, tenant, codes)
	if err != nil {
		return nil, err
	}
	out := make([]StopView, 0, len(sl.PortStops))
	for _, p := range sl.PortStops {
		v := StopView{PortCode: p.PortCode, PortName: p.PortName, Arrival: p.Arrival, Departure: p.Departure}
		if port, ok := ports[p.PortCode]; ok {
			if name := utils.Localize(port.Names, lang); name != "" {
				v.PortName = name
			}
			v.PortCity = utils.Localize(port.Cities, lang)
			v.PortCountry = utils.Localize(port.Countries, lang)
		}
		if v.PortName == "" {
			v.PortName = p.PortCode
		}
		out = append(out, v)
	}
	return out, nil
}

// OnDay returns the first port stop whose arrival falls on day (UTC).
func OnDay(sl models.Sailing, day time.Time) (models.PortStop, bool) {
	y, m, d := day.UTC().Date()
	for _, p := range sl.PortStops {
		py, pm, pd := p.Arrival.UTC().Date()
		if py == y && pm == m && pd == d {
			return p, true
		}
	}
	return models.PortStop{}, false
}

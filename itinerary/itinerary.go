package itinerary

import (
	"context"
	"slices"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/sailings"
	"cruiseops/utils"
)

const (
	defaultArrival   = "08:00"
	defaultDeparture = "18:00"
)

// SailingService is the part of the sailings module used to materialize an itinerary.
type SailingService interface {
	Add(ctx context.Context, tenant string, sl models.Sailing) (models.Sailing, error)
	List(ctx context.Context, tenant string, f sailings.Filter) ([]models.Sailing, error)
}

type Service struct {
	store    Store
	sailings SailingService
	now      func() time.Time
}

func NewService(store Store, sl SailingService) *Service {
	return &Service{store: store, sailings: sl, now: time.Now}
}

// NormalizeStop validates a stop and fills in its canonical casing.
func NormalizeStop(st models.ItineraryStop) (models.ItineraryStop, error) {
	st.Kind = utils.LowerCode(st.Kind)
	if st.Kind == "" {
		st.Kind = models.StopPort
	}
	if st.Kind != models.StopPort && st.Kind != models.StopSea {
		return st, utils.Invalid("kind must be port or sea")
	}
	if st.DayOffset < 0 {
		return st, utils.Invalid("day_offset must be >= 0")
	}
	st.PortCode = utils.UpperCode(st.PortCode)
	st.PortName = strings.TrimSpace(st.PortName)
	if st.Kind == models.StopPort && st.PortCode == "" {
		return st, utils.Invalid("port stops require port_code")
	}
	for _, t := range []string{st.ArrivalTime, st.DepartureTime} {
		if t == "" {
			continue
		}
		if _, err := utils.ParseClock(t); err != nil {
			return st, err
		}
	}
	if len(st.Labels) > 0 {
		st.Labels = cleanLangMap(st.Labels)
	}
	return st, nil
}

// Normalize validates an itinerary in place and sorts its stops by day.
func Normalize(it *models.Itinerary) error {
	it.Code = strings.TrimSpace(it.Code)
	if it.Code == "" {
		return utils.Invalid("code is required")
	}
	it.Titles = cleanLangMap(it.Titles)
	it.MapImageURL = strings.TrimSpace(it.MapImageURL)
	seen := map[int]bool{}
	for i, raw := range it.Stops {
		st, err := NormalizeStop(raw)
		if err != nil {
			return err
		}
		if seen[st.DayOffset] {
			return utils.Invalid("duplicate day_offset %d", st.DayOffset)
		}
		seen[st.DayOffset] = true
		it.Stops[i] = st
	}
	if it.Stops == nil {
		it.Stops = []models.ItineraryStop{}
	}
	slices.SortStableFunc(it.Stops, func(a, b models.ItineraryStop) int { return a.DayOffset - b.DayOffset })
	return nil
}

type ItineraryInput struct {
	Code        string                 `json:"code"`
	Titles      map[string]string      `json:"titles"`
	MapImageURL string                 `json:"map_image_url"`
	Stops       []models.ItineraryStop `json:"stops"`
}

func (s *Service) Create(ctx context.Context, tenant string, in ItineraryInput) (models.Itinerary, error) {
	now := s.now().UTC()
	it := models.Itinerary{
		ID:          utils.NewID(),
		Code:        in.Code,
		Titles:      in.Titles,
		MapImageURL: in.MapImageURL,
		Stops:       append([]models.ItineraryStop(nil), in.Stops...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := Normalize(&it); err != nil {
		return it, err
	}
	return it, s.store.InsertItinerary(ctx, tenant, it)
}

// Update replaces titles, map image and stops of an existing itinerary.
func (s *Service) Update(ctx context.Context, tenant, id string, in ItineraryInput) (models.Itinerary, error) {
	it, err := s.Get(ctx, tenant, id)
	if err != nil {
		return it, err
	}
	it.Code = in.Code
	it.Titles = in.Titles
	it.MapImageURL = in.MapImageURL
	it.Stops = append([]models.ItineraryStop(nil), in.Stops...)
	it.UpdatedAt = s.now().UTC()
	if err := Normalize(&it); err != nil {
		return it, err
	}
	return it, s.store.ReplaceItinerary(ctx, tenant, it)
}

// Upsert stores already normalized itineraries keyed by code.
func (s *Service) Upsert(ctx context.Context, tenant string, items []models.Itinerary) error {
	now := s.now().UTC()
	for _, it := range items {
		it.ID = utils.NewID()
		it.CreatedAt, it.UpdatedAt = now, now
		if err := s.store.UpsertItineraryByCode(ctx, tenant, it); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, tenant, id string) (models.Itinerary, error) {
	it, err := s.store.GetItinerary(ctx, tenant, id)
	if err != nil {
		return models.Itinerary{}, err
	}
	if it == nil {
		return models.Itinerary{}, utils.NotFound("Itinerary not found")
	}
	return *it, nil
}

// List returns itineraries whose code or any title contains q.
func (s *Service) List(ctx context.Context, tenant, q string) ([]models.Itinerary, error) {
	all, err := s.store.ListItineraries(ctx, tenant)
	if err != nil || strings.TrimSpace(q) == "" {
		return all, err
	}
	q = strings.TrimSpace(q)
	out := []models.Itinerary{}
	for _, it := range all {
		if utils.ContainsIgnoreCase(it.Code, q) || titleMatches(it.Titles, q) {
			out = append(out, it)
		}
	}
	return out, nil
}

func titleMatches(titles map[string]string, q string) bool {
	for _, t := range titles {
		if utils.ContainsIgnoreCase(t, q) {
			return true
		}
	}
	return false
}

type StopView struct {
	models.ItineraryStop
	Label string    `json:"label,omitempty"`
	Port  *PortView `json:"port,omitempty"`
}

type View struct {
	models.Itinerary
	Title string     `json:"title"`
	Stops []StopView `json:"stops"`
}

// Render attaches localized port details to each stop.
func (s *Service) Render(ctx context.Context, tenant string, it models.Itinerary, lang string) (View, error) {
	var codes []string
	for _, st := range it.Stops {
		if st.PortCode != "" {
			codes = append(codes, st.PortCode)
		}
	}
	ports, err := s.store.PortsByCode(ctx, tenant, codes)
	if err != nil {
		return View{}, err
	}
	v := View{Itinerary: it, Title: utils.Localize(it.Titles, lang), Stops: make([]StopView, 0, len(it.Stops))}
	for _, st := range it.Stops {
		sv := StopView{ItineraryStop: st, Label: utils.Localize(st.Labels, lang)}
		if st.PortCode != "" {
			pv := PortView{Code: st.PortCode, Name: st.PortName}
			if p, ok := ports[st.PortCode]; ok {
				pv = Localized(p, lang)
			}
			if pv.Name == "" {
				pv.Name = st.PortCode
			}
			sv.Port = &pv
		}
		v.Stops = append(v.Stops, sv)
	}
	return v, nil
}

type Dates struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Nights    int    `json:"nights"`
}

// Compute spans the itinerary from startDate; nights is the largest day offset.
func Compute(it models.Itinerary, startDate string) (Dates, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return Dates{}, err
	}
	nights := 0
	for _, st := range it.Stops {
		nights = max(nights, st.DayOffset)
	}
	return Dates{
		StartDate: start.Format(utils.DateLayout),
		EndDate:   start.AddDate(0, 0, nights).Format(utils.DateLayout),
		Days:      nights + 1,
		Nights:    nights,
	}, nil
}

func at(day time.Time, clock, fallback string) time.Time {
	if clock == "" {
		clock = fallback
	}
	mins, err := utils.ParseClock(clock)
	if err != nil {
		mins, _ = utils.ParseClock(fallback)
	}
	return day.Add(time.Duration(mins) * time.Minute)
}

// PortStops turns the port days of an itinerary into dated stops. A departure at or
// before the arrival moves to the following day.
func PortStops(it models.Itinerary, start time.Time) []models.PortStop {
	out := []models.PortStop{}
	for _, st := range it.Stops {
		if st.Kind != models.StopPort || st.PortCode == "" {
			continue
		}
		day := start.AddDate(0, 0, st.DayOffset)
		arr := at(day, st.ArrivalTime, defaultArrival)
		dep := at(day, st.DepartureTime, defaultDeparture)
		if !dep.After(arr) {
			dep = dep.Add(24 * time.Hour)
		}
		out = append(out, models.PortStop{PortCode: st.PortCode, PortName: st.PortName, Arrival: arr, Departure: dep})
	}
	return out
}

type SailingInput struct {
	Code      string `json:"code"`
	ShipID    string `json:"ship_id"`
	StartDate string `json:"start_date"`
	Status    string `json:"status"`
}

func (s *Service) CreateSailing(ctx context.Context, tenant, id string, in SailingInput) (models.Sailing, error) {
	it, err := s.Get(ctx, tenant, id)
	if err != nil {
		return models.Sailing{}, err
	}
	dates, err := Compute(it, in.StartDate)
	if err != nil {
		return models.Sailing{}, err
	}
	start, _ := utils.ParseDate(dates.StartDate)
	stops := PortStops(it, start)
	sl := models.Sailing{
		Code:        strings.TrimSpace(in.Code),
		ShipID:      strings.TrimSpace(in.ShipID),
		ItineraryID: it.ID,
		StartDate:   dates.StartDate,
		EndDate:     dates.EndDate,
		Status:      in.Status,
		PortStops:   stops,
	}
	if len(stops) > 0 {
		sl.EmbarkPortCode = stops[0].PortCode
		sl.DebarkPortCode = stops[len(stops)-1].PortCode
	}
	return s.sailings.Add(ctx, tenant, sl)
}

func (s *Service) Sailings(ctx context.Context, tenant, id string) ([]models.Sailing, error) {
	if _, err := s.Get(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.sailings.List(ctx, tenant, sailings.Filter{ItineraryID: id})
}

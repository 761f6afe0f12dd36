package imports

import (
	"context"
	"io"
	"time"

	"cruiseops/models"
	"cruiseops/utils"

	"go.uber.org/zap"
)

type ItineraryWriter interface {
	Upsert(ctx context.Context, tenant string, items []models.Itinerary) error
}

// ShipCatalog is the part of the ship store the importer writes through.
type ShipCatalog interface {
	GetShipByCode(ctx context.Context, tenant, code string) (*models.Ship, error)
	UpsertCategory(ctx context.Context, tenant string, c models.CabinCategory) (string, error)
	UpsertCabin(ctx context.Context, tenant string, c models.Cabin) error
}

type Result struct {
	DryRun      bool `json:"dry_run"`
	Itineraries int  `json:"itineraries"`
	Stops       int  `json:"stops"`
	Categories  int  `json:"cabin_categories"`
	Cabins      int  `json:"cabins"`
}

type Service struct {
	itineraries ItineraryWriter
	ships       ShipCatalog
	log         *zap.Logger
}

func NewService(its ItineraryWriter, ships ShipCatalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{itineraries: its, ships: ships, log: log}
}

// resolveShips maps every ship code in the plan to its id. Unknown codes become issues on
// the first row that mentions them.
func (s *Service) resolveShips(ctx context.Context, tenant string, plan *Plan) (map[string]string, error) {
	ids := map[string]string{}
	var issues []Issue
	for _, code := range plan.ShipCodes() {
		sh, err := s.ships.GetShipByCode(ctx, tenant, code)
		if err != nil {
			return nil, err
		}
		if sh != nil {
			ids[code] = sh.ID
		}
	}
	reported := map[string]bool{}
	report := func(sheet, code string, row int) {
		if _, ok := ids[code]; ok || reported[sheet+"/"+code] {
			return
		}
		reported[sheet+"/"+code] = true
		issues = append(issues, Issue{Sheet: sheet, Row: row, Column: "ship_code", Message: "unknown ship code " + code})
	}
	for _, c := range plan.Categories {
		report(SheetCategories, c.ShipCode, c.Row)
	}
	for _, c := range plan.Cabins {
		report(SheetCabins, c.ShipCode, c.Row)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return ids, nil
}

// Import validates the workbook and, unless dryRun, writes it. Nothing is written when any
// issue is found.
func (s *Service) Import(ctx context.Context, tenant string, r io.Reader, dryRun bool) (Result, error) {
	start := time.Now()
	plan, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	ids, err := s.resolveShips(ctx, tenant, plan)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		DryRun:      dryRun,
		Itineraries: len(plan.Itineraries),
		Stops:       plan.Stops(),
		Categories:  len(plan.Categories),
		Cabins:      len(plan.Cabins),
	}
	if dryRun {
		return res, nil
	}

	if len(plan.Itineraries) > 0 {
		if err := s.itineraries.Upsert(ctx, tenant, plan.Itineraries); err != nil {
			return res, err
		}
	}
	catIDs := map[string]string{}
	for _, row := range plan.Categories {
		c := row.Category
		c.ID = utils.NewID()
		c.ShipID = ids[row.ShipCode]
		id, err := s.ships.UpsertCategory(ctx, tenant, c)
		if err != nil {
			return res, err
		}
		catIDs[row.ShipCode+"/"+c.Code] = id
	}
	for _, row := range plan.Cabins {
		c := row.Cabin
		c.ID = utils.NewID()
		c.ShipID = ids[row.ShipCode]
		c.CategoryID = catIDs[row.ShipCode+"/"+row.CategoryCode]
		if err := s.ships.UpsertCabin(ctx, tenant, c); err != nil {
			return res, err
		}
	}
	s.log.Info("workbook imported",
		zap.String("tenant", tenant),
		zap.Int("itineraries", res.Itineraries),
		zap.Int("cabin_categories", res.Categories),
		zap.Int("cabins", res.Cabins),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

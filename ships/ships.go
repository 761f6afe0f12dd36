package ships

import (
	"context"
	"slices"
	"strings"
	"time"

	"cruiseops/models"
	"cruiseops/utils"
)

var (
	shipStatuses = []string{models.ShipActive, models.ShipInactive, models.ShipMaintenance}
	severities   = []string{"low", "medium", "high"}
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func validStatus(status string) (string, error) {
	status = utils.LowerCode(status)
	if status == "" {
		return models.ShipActive, nil
	}
	if !slices.Contains(shipStatuses, status) {
		return "", utils.Invalid("status must be one of active|inactive|maintenance")
	}
	return status, nil
}

type ShipInput struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Operator string `json:"operator"`
	Decks    int    `json:"decks"`
	Status   string `json:"status"`
}

func (s *Service) CreateShip(ctx context.Context, tenant string, in ShipInput) (models.Ship, error) {
	sh := models.Ship{
		ID:                 utils.NewID(),
		Name:               strings.TrimSpace(in.Name),
		Code:               utils.UpperCode(in.Code),
		Operator:           strings.TrimSpace(in.Operator),
		Decks:              in.Decks,
		Amenities:          []models.Amenity{},
		MaintenanceRecords: []models.MaintenanceRecord{},
		CreatedAt:          s.now().UTC(),
	}
	if sh.Name == "" || sh.Code == "" {
		return sh, utils.Invalid("name and code are required")
	}
	if sh.Decks < 0 {
		return sh, utils.Invalid("decks must be >= 0")
	}
	var err error
	if sh.Status, err = validStatus(in.Status); err != nil {
		return sh, err
	}
	return sh, s.store.InsertShip(ctx, tenant, sh)
}

func (s *Service) Ships(ctx context.Context, tenant string) ([]models.Ship, error) {
	return s.store.ListShips(ctx, tenant)
}

func (s *Service) Ship(ctx context.Context, tenant, id string) (models.Ship, error) {
	sh, err := s.store.GetShip(ctx, tenant, id)
	if err != nil {
		return models.Ship{}, err
	}
	if sh == nil {
		return models.Ship{}, utils.NotFound("Ship not found")
	}
	return *sh, nil
}

type ShipPatch struct {
	Name     *string `json:"name"`
	Operator *string `json:"operator"`
	Decks    *int    `json:"decks"`
	Status   *string `json:"status"`
}

// PatchShip applies the non-null fields.
func (s *Service) PatchShip(ctx context.Context, tenant, id string, p ShipPatch) (models.Ship, error) {
	sh, err := s.Ship(ctx, tenant, id)
	if err != nil {
		return sh, err
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return sh, utils.Invalid("name must not be empty")
		}
		sh.Name = strings.TrimSpace(*p.Name)
	}
	if p.Operator != nil {
		sh.Operator = strings.TrimSpace(*p.Operator)
	}
	if p.Decks != nil {
		if *p.Decks < 0 {
			return sh, utils.Invalid("decks must be >= 0")
		}
		sh.Decks = *p.Decks
	}
	if p.Status != nil {
		if utils.LowerCode(*p.Status) == "" {
			return sh, utils.Invalid("status must be one of active|inactive|maintenance")
		}
		if sh.Status, err = validStatus(*p.Status); err != nil {
			return sh, err
		}
	}
	return sh, s.store.ReplaceShip(ctx, tenant, sh)
}

type AmenityInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (s *Service) AddAmenity(ctx context.Context, tenant, shipID string, in AmenityInput) (models.Ship, error) {
	sh, err := s.Ship(ctx, tenant, shipID)
	if err != nil {
		return sh, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return sh, utils.Invalid("name is required")
	}
	sh.Amenities = append(sh.Amenities, models.Amenity{
		ID:          utils.NewID(),
		Name:        name,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
	})
	return sh, s.store.ReplaceShip(ctx, tenant, sh)
}

type MaintenanceInput struct {
	Summary    string     `json:"summary"`
	Severity   string     `json:"severity"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// AddMaintenanceRecord appends a record; medium and high severity put the ship into
// maintenance.
func (s *Service) AddMaintenanceRecord(ctx context.Context, tenant, shipID string, in MaintenanceInput) (models.Ship, error) {
	sh, err := s.Ship(ctx, tenant, shipID)
	if err != nil {
		return sh, err
	}
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		return sh, utils.Invalid("summary is required")
	}
	severity := utils.LowerCode(in.Severity)
	if severity == "" {
		severity = "low"
	}
	if !slices.Contains(severities, severity) {
		return sh, utils.Invalid("severity must be one of low|medium|high")
	}
	at := s.now().UTC()
	if in.RecordedAt != nil {
		at = in.RecordedAt.UTC()
	}
	sh.MaintenanceRecords = append(sh.MaintenanceRecords, models.MaintenanceRecord{
		ID:         utils.NewID(),
		Summary:    summary,
		Severity:   severity,
		RecordedAt: at,
	})
	if severity != "low" {
		sh.Status = models.ShipMaintenance
	}
	return sh, s.store.ReplaceShip(ctx, tenant, sh)
}

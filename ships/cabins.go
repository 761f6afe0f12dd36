package ships

import (
	"context"
	"slices"
	"strings"

	"cruiseops/models"
	"cruiseops/utils"
)

type CategoryInput struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	View         string         `json:"view"`
	CabinClass   string         `json:"cabin_class"`
	MaxOccupancy *int           `json:"max_occupancy"`
	Meta         map[string]any `json:"meta"`
}

func (s *Service) CreateCategory(ctx context.Context, tenant, shipID string, in CategoryInput) (models.CabinCategory, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return models.CabinCategory{}, err
	}
	c := models.CabinCategory{
		ID:           utils.NewID(),
		ShipID:       shipID,
		Code:         utils.UpperCode(in.Code),
		Name:         strings.TrimSpace(in.Name),
		View:         utils.LowerCode(in.View),
		CabinClass:   utils.LowerCode(in.CabinClass),
		MaxOccupancy: 2,
		Meta:         in.Meta,
	}
	if c.Code == "" || c.Name == "" {
		return c, utils.Invalid("code and name are required")
	}
	if in.MaxOccupancy != nil {
		if *in.MaxOccupancy < 1 {
			return c, utils.Invalid("max_occupancy must be >= 1")
		}
		c.MaxOccupancy = *in.MaxOccupancy
	}
	return c, s.store.InsertCategory(ctx, tenant, c)
}

func (s *Service) Categories(ctx context.Context, tenant, shipID string) ([]models.CabinCategory, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, tenant, shipID)
}

func (s *Service) checkCategory(ctx context.Context, tenant, shipID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	c, err := s.store.GetCategory(ctx, tenant, categoryID)
	if err != nil {
		return err
	}
	if c == nil || c.ShipID != shipID {
		return utils.Invalid("Unknown category_id for this ship")
	}
	return nil
}

// CabinStatus validates a cabin status; empty means active.
func CabinStatus(status string) (string, error) {
	status = utils.LowerCode(status)
	if status == "" {
		return "active", nil
	}
	if !slices.Contains(shipStatuses, status) {
		return "", utils.Invalid("status must be one of active|inactive|maintenance")
	}
	return status, nil
}

type CabinInput struct {
	CategoryID  string         `json:"category_id"`
	CabinNo     string         `json:"cabin_no"`
	Deck        int            `json:"deck"`
	Status      string         `json:"status"`
	Accessories []string       `json:"accessories"`
	Meta        map[string]any `json:"meta"`
}

func (s *Service) CreateCabin(ctx context.Context, tenant, shipID string, in CabinInput) (models.Cabin, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return models.Cabin{}, err
	}
	c := models.Cabin{
		ID:          utils.NewID(),
		ShipID:      shipID,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		CabinNo:     strings.TrimSpace(in.CabinNo),
		Deck:        in.Deck,
		Accessories: in.Accessories,
		Meta:        in.Meta,
	}
	if c.CabinNo == "" {
		return c, utils.Invalid("cabin_no is required")
	}
	if c.Deck < 0 {
		return c, utils.Invalid("deck must be >= 0")
	}
	if c.Accessories == nil {
		c.Accessories = []string{}
	}
	var err error
	if c.Status, err = CabinStatus(in.Status); err != nil {
		return c, err
	}
	if err := s.checkCategory(ctx, tenant, shipID, c.CategoryID); err != nil {
		return c, err
	}
	return c, s.store.InsertCabin(ctx, tenant, c)
}

func (s *Service) Cabins(ctx context.Context, tenant, shipID string, f CabinFilter) ([]models.Cabin, error) {
	if _, err := s.Ship(ctx, tenant, shipID); err != nil {
		return nil, err
	}
	f.Status = utils.LowerCode(f.Status)
	return s.store.ListCabins(ctx, tenant, shipID, f)
}

type CabinPatch struct {
	CategoryID  *string         `json:"category_id"`
	Deck        *int            `json:"deck"`
	Status      *string         `json:"status"`
	Accessories *[]string       `json:"accessories"`
	Meta        *map[string]any `json:"meta"`
}

func (s *Service) PatchCabin(ctx context.Context, tenant, shipID, cabinID string, p CabinPatch) (models.Cabin, error) {
	c, err := s.store.GetCabin(ctx, tenant, cabinID)
	if err != nil {
		return models.Cabin{}, err
	}
	if c == nil || c.ShipID != shipID {
		return models.Cabin{}, utils.NotFound("Cabin not found")
	}
	if p.CategoryID != nil {
		id := strings.TrimSpace(*p.CategoryID)
		if err := s.checkCategory(ctx, tenant, shipID, id); err != nil {
			return *c, err
		}
		c.CategoryID = id
	}
	if p.Deck != nil {
		if *p.Deck < 0 {
			return *c, utils.Invalid("deck must be >= 0")
		}
		c.Deck = *p.Deck
	}
	if p.Status != nil {
		if c.Status, err = CabinStatus(*p.Status); err != nil {
			return *c, err
		}
	}
	if p.Accessories != nil {
		c.Accessories = *p.Accessories
		if c.Accessories == nil {
			c.Accessories = []string{}
		}
	}
	if p.Meta != nil {
		c.Meta = *p.Meta
	}
	return *c, s.store.ReplaceCabin(ctx, tenant, *c)
}

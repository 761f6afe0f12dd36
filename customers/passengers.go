package customers

import (
	"context"
	"strings"

	"cruiseops/models"
	"cruiseops/utils"
)

type PassengerInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	BirthDate   *string `json:"birth_date"`
	Paxtype     *string `json:"paxtype"`
	PassportNo  *string `json:"passport_no"`
	Nationality *string `json:"nationality"`
}

func (in PassengerInput) apply(p *models.Passenger) error {
	setTrimmed(&p.FirstName, in.FirstName)
	setTrimmed(&p.LastName, in.LastName)
	setTrimmed(&p.PassportNo, in.PassportNo)
	if in.Nationality != nil {
		p.Nationality = utils.UpperCode(*in.Nationality)
	}
	if in.Paxtype != nil {
		p.Paxtype = utils.LowerCode(*in.Paxtype)
	}
	if p.Paxtype == "" {
		p.Paxtype = models.PaxAdult
	}
	if !utils.Contains(models.Paxtypes, p.Paxtype) {
		return utils.Invalid("paxtype must be one of adult|child|infant")
	}
	if in.BirthDate != nil {
		var err error
		if p.BirthDate, err = optionalDate("birth_date", *in.BirthDate); err != nil {
			return err
		}
	}
	if p.FirstName == "" || p.LastName == "" {
		return utils.Invalid("first_name and last_name are required")
	}
	return nil
}

func (s *Service) AddPassenger(ctx context.Context, tenant, customerID string, in PassengerInput) (models.Passenger, error) {
	if _, err := s.Get(ctx, tenant, customerID); err != nil {
		return models.Passenger{}, err
	}
	now := s.now().UTC()
	p := models.Passenger{ID: utils.NewID(), CustomerID: customerID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(&p); err != nil {
		return p, err
	}
	return p, s.store.InsertPassenger(ctx, tenant, p)
}

func (s *Service) Passengers(ctx context.Context, tenant, customerID string) ([]models.Passenger, error) {
	if _, err := s.Get(ctx, tenant, customerID); err != nil {
		return nil, err
	}
	return s.store.ListPassengers(ctx, tenant, customerID)
}

func (s *Service) passenger(ctx context.Context, tenant, customerID, id string) (models.Passenger, error) {
	p, err := s.store.GetPassenger(ctx, tenant, strings.TrimSpace(id))
	if err != nil {
		return models.Passenger{}, err
	}
	if p == nil || p.CustomerID != customerID {
		return models.Passenger{}, utils.NotFound("Passenger not found")
	}
	return *p, nil
}

func (s *Service) PatchPassenger(ctx context.Context, tenant, customerID, id string, in PassengerInput) (models.Passenger, error) {
	p, err := s.passenger(ctx, tenant, customerID, id)
	if err != nil {
		return p, err
	}
	if err := in.apply(&p); err != nil {
		return p, err
	}
	p.UpdatedAt = s.now().UTC()
	return p, s.store.ReplacePassenger(ctx, tenant, p)
}

func (s *Service) DeletePassenger(ctx context.Context, tenant, customerID, id string) error {
	if _, err := s.passenger(ctx, tenant, customerID, id); err != nil {
		return err
	}
	_, err := s.store.DeletePassenger(ctx, tenant, id)
	return err
}

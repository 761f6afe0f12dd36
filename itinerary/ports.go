package itinerary

import (
	"context"
	"strings"

	"cruiseops/models"
	"cruiseops/utils"
)

type PortInput struct {
	Code      string            `json:"code"`
	Names     map[string]string `json:"names"`
	Cities    map[string]string `json:"cities"`
	Countries map[string]string `json:"countries"`
}

// PortView is a port rendered in one language.
type PortView struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func cleanLangMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		k, v = utils.LowerCode(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

// Localized falls back to the code for the name and to empty strings for city and
// country.
func Localized(p models.Port, lang string) PortView {
	v := PortView{
		Code:    p.Code,
		Name:    utils.Localize(p.Names, lang),
		City:    utils.Localize(p.Cities, lang),
		Country: utils.Localize(p.Countries, lang),
	}
	if v.Name == "" {
		v.Name = p.Code
	}
	return v
}

func (s *Service) UpsertPort(ctx context.Context, tenant string, in PortInput) (models.Port, error) {
	p := models.Port{
		Code:      utils.UpperCode(in.Code),
		Names:     cleanLangMap(in.Names),
		Cities:    cleanLangMap(in.Cities),
		Countries: cleanLangMap(in.Countries),
		UpdatedAt: s.now().UTC(),
	}
	if p.Code == "" {
		return p, utils.Invalid("code is required")
	}
	return p, s.store.UpsertPort(ctx, tenant, p)
}

func (s *Service) Ports(ctx context.Context, tenant string) ([]models.Port, error) {
	return s.store.ListPorts(ctx, tenant)
}

func (s *Service) Port(ctx context.Context, tenant, code string) (models.Port, error) {
	p, err := s.store.GetPort(ctx, tenant, utils.UpperCode(code))
	if err != nil {
		return models.Port{}, err
	}
	if p == nil {
		return models.Port{}, utils.NotFound("Port not found")
	}
	return *p, nil
}

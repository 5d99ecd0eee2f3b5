package service

import (
	"context"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
)

// SettingsUpdate изменение настроек; nil поля не меняются
type SettingsUpdate struct {
	ExchangeRate    *float64 `json:"exchangeRate,omitempty"`
	PricePerKiloLYD *float64 `json:"pricePerKiloLYD,omitempty"`
	PricePerKiloUSD *float64 `json:"pricePerKiloUSD,omitempty"`
}

// SettingsService глобальные настройки (курс и цены за кило)
type SettingsService struct {
	base
}

// NewSettingsService создает новый SettingsService
func NewSettingsService(deps Deps) *SettingsService {
	return &SettingsService{base: newBase(deps)}
}

// readSettings возвращает настройки или значения по умолчанию, если строки еще нет
func readSettings(ctx context.Context, r reader) (domain.AppSettings, bool, error) {
	doc, err := r.Get(ctx, domain.CollectionSettings, domain.SettingsID)
	if err != nil {
		return domain.AppSettings{}, false, err
	}
	if !doc.Exists {
		return domain.DefaultSettings(), false, nil
	}

	settings, err := decode[domain.AppSettings](doc)
	if err != nil {
		return domain.AppSettings{}, false, err
	}
	if settings.ExchangeRate <= 0 {
		settings.ExchangeRate = domain.DefaultSettings().ExchangeRate
	}
	return settings, true, nil
}

// GetSettings читает настройки; при первом чтении создает строку со значениями по умолчанию
func (s *SettingsService) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	const op = "settings.get"

	settings, found, err := readSettings(ctx, s.store)
	if err != nil {
		return nil, s.fail(op, err)
	}

	if !found {
		settings.UpdatedAt = now()
		fields, err := docstore.Encode(settings)
		if err != nil {
			return nil, s.fail(op, err)
		}
		if err := s.store.Set(ctx, domain.CollectionSettings, domain.SettingsID, fields, true); err != nil {
			return nil, s.fail(op, err)
		}
	}

	return &settings, nil
}

// UpdateSettings меняет курс и цены за кило
func (s *SettingsService) UpdateSettings(ctx context.Context, in SettingsUpdate) (*domain.AppSettings, error) {
	const op = "settings.update"

	if in.ExchangeRate != nil && *in.ExchangeRate <= 0 {
		return nil, s.fail(op, fmt.Errorf("%w: exchange rate must be positive", domain.ErrValidation))
	}
	for _, price := range []*float64{in.PricePerKiloLYD, in.PricePerKiloUSD} {
		if price != nil && *price < 0 {
			return nil, s.fail(op, domain.ErrNegativeAmount)
		}
	}

	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if in.ExchangeRate != nil {
		current.ExchangeRate = *in.ExchangeRate
	}
	if in.PricePerKiloLYD != nil {
		current.PricePerKiloLYD = *in.PricePerKiloLYD
	}
	if in.PricePerKiloUSD != nil {
		current.PricePerKiloUSD = *in.PricePerKiloUSD
	}
	current.UpdatedAt = now()

	fields, err := docstore.Encode(current)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := s.store.Set(ctx, domain.CollectionSettings, domain.SettingsID, fields, true); err != nil {
		return nil, s.fail(op, err)
	}

	return current, nil
}

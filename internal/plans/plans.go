// Package plans хранит каталог тарифов подписки. Каталог неизменяем после
// создания; ссылки на тариф по ID слабые - неизвестный ID не является ошибкой.
package plans

import (
	"fmt"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Функции, которые открывает премиум-подписка.
const (
	FeatureAdFree          = "ad_free"
	FeatureUnlimitedFaves  = "unlimited_favorites"
	FeatureCustomThemes    = "custom_themes"
	FeatureExclusiveVerses = "exclusive_devotionals"
	FeaturePrayerBoardPlus = "prayer_board_plus"
)

// Default возвращает встроенный каталог тарифов.
func Default() []models.SubscriptionPlan {
	return []models.SubscriptionPlan{
		{
			ID:             "monthly_basic",
			Name:           "Basic",
			Description:    "Ad-free daily verses and unlimited favorites",
			Price:          2.99,
			DurationMonths: 1,
			Features:       []string{FeatureAdFree, FeatureUnlimitedFaves},
		},
		{
			ID:             "monthly_premium",
			Name:           "Premium",
			Description:    "Everything in Basic plus themes, exclusive devotionals and prayer board extras",
			Price:          4.99,
			DurationMonths: 1,
			Features: []string{
				FeatureAdFree, FeatureUnlimitedFaves, FeatureCustomThemes,
				FeatureExclusiveVerses, FeaturePrayerBoardPlus,
			},
		},
		{
			ID:             "yearly_premium",
			Name:           "Premium Yearly",
			Description:    "Premium billed once a year",
			Price:          49.99,
			DurationMonths: 12,
			Features: []string{
				FeatureAdFree, FeatureUnlimitedFaves, FeatureCustomThemes,
				FeatureExclusiveVerses, FeaturePrayerBoardPlus,
			},
		},
	}
}

// Catalog - индекс тарифов по ID с сохранением исходного порядка.
type Catalog struct {
	order []string
	byID  map[string]models.SubscriptionPlan
}

// New строит каталог. Пустой список заменяется встроенным каталогом.
func New(list []models.SubscriptionPlan) (*Catalog, error) {
	const op = "plans.New"
	if len(list) == 0 {
		list = Default()
	}
	c := &Catalog{byID: make(map[string]models.SubscriptionPlan, len(list))}
	for _, p := range list {
		if p.ID == "" {
			return nil, fmt.Errorf("%s: plan without id", op)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate plan id %q", op, p.ID)
		}
		if p.Price < 0 || p.DurationMonths <= 0 {
			return nil, fmt.Errorf("%s: plan %q has invalid price or duration", op, p.ID)
		}
		p.Features = append([]string(nil), p.Features...)
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Lookup возвращает тариф по ID.
func (c *Catalog) Lookup(id string) (models.SubscriptionPlan, bool) {
	p, ok := c.byID[id]
	if !ok {
		return models.SubscriptionPlan{}, false
	}
	p.Features = append([]string(nil), p.Features...)
	return p, true
}

// List возвращает копию каталога в исходном порядке.
func (c *Catalog) List() []models.SubscriptionPlan {
	out := make([]models.SubscriptionPlan, 0, len(c.order))
	for _, id := range c.order {
		p, _ := c.Lookup(id)
		out = append(out, p)
	}
	return out
}

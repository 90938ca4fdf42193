package models

import "math"

// SubscriptionPlan - статическая запись каталога тарифов.
type SubscriptionPlan struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Price          float64  `json:"price" yaml:"price"`                     // В денежных единицах, например 4.99
	DurationMonths int      `json:"duration_months" yaml:"duration_months"` // Длительность оплаченного периода
	Features       []string `json:"features" yaml:"features"`               // Порядок важен для отображения
}

// PriceMinorUnits возвращает цену в минимальных единицах валюты (центах).
func (p SubscriptionPlan) PriceMinorUnits() int64 {
	return int64(math.Round(p.Price * 100))
}

// HasFeature сообщает, входит ли функция в тариф.
func (p SubscriptionPlan) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

package model

import "github.com/shopspring/decimal"

// MenuItems lists the cafe menu in its canonical order. Price inference in
// the clean pipeline matches against this order, so two items sharing a
// price (Sandwich/Smoothie, Cake/Juice) resolve to the earlier entry.
var MenuItems = []string{
	"Coffee", "Tea", "Sandwich", "Salad", "Cake", "Cookie", "Smoothie", "Juice",
}

// MenuPrices maps every menu item to its fixed unit price.
var MenuPrices = map[string]decimal.Decimal{
	"Coffee":   decimal.NewFromFloat(2.0),
	"Tea":      decimal.NewFromFloat(1.5),
	"Sandwich": decimal.NewFromFloat(4.0),
	"Salad":    decimal.NewFromFloat(5.0),
	"Cake":     decimal.NewFromFloat(3.0),
	"Cookie":   decimal.NewFromFloat(1.0),
	"Smoothie": decimal.NewFromFloat(4.0),
	"Juice":    decimal.NewFromFloat(3.0),
}

// ItemForPrice returns the first menu item whose price matches exactly,
// or "" when none does.
func ItemForPrice(price decimal.Decimal) string {
	for _, name := range MenuItems {
		if MenuPrices[name].Equal(price) {
			return name
		}
	}
	return ""
}

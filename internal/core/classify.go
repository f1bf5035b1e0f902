package core

import "strings"

// categoryKeywords maps each classifiable category to the lower-cased
// substrings that vote for it. CategoryOther has no keywords; it wins
// only by default.
var categoryKeywords = map[Category][]string{
	CategoryFood: {
		"groceries", "restaurant", "snack", "food", "lunch", "dinner", "breakfast",
		"cafe", "coffee", "meal", "takeout", "delivery", "dine",
	},
	CategoryHousing: {
		"rent", "mortgage", "utilities", "electricity", "water", "gas bill", "internet",
		"repair", "maintenance", "property", "furniture", "home", "apartment",
	},
	CategoryTransport: {
		"gas", "uber", "bus", "car", "taxi", "train", "subway", "lyft", "fuel",
		"transit", "transportation", "commute", "vehicle", "maintenance", "parking",
	},
	CategoryEntertainment: {
		"movie", "game", "concert", "theater", "netflix", "subscription", "streaming",
		"hobby", "leisure", "event", "ticket", "show", "music", "sports",
	},
	CategoryShopping: {
		"clothes", "electronics", "shoes", "amazon", "online", "mall", "retail", "purchase",
		"clothing", "accessory", "device", "gadget", "appliance",
	},
	CategoryHealth: {
		"doctor", "medical", "medicine", "pharmacy", "healthcare", "dental", "vision",
		"fitness", "gym", "wellness", "hospital", "prescription",
	},
}

// Classify maps a free-text description to a category by counting
// keyword substring hits. Only a strictly highest score wins; ties and
// zero hits fall back to CategoryOther. Pure and deterministic.
func Classify(description string) Category {
	if description == "" {
		return CategoryOther
	}

	lowered := strings.ToLower(description)
	best := CategoryOther
	maxHits := 0
	tied := false

	for _, cat := range Categories() {
		hits := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}
		switch {
		case hits > maxHits:
			maxHits = hits
			best = cat
			tied = false
		case hits == maxHits && hits > 0:
			tied = true
		}
	}

	if maxHits == 0 || tied {
		return CategoryOther
	}
	return best
}

package models

// Rarity is the tier a species belongs to
type Rarity string

const (
	RarityBonus     Rarity = "bonus"
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RaritySuperRare Rarity = "superRare"
)

var rarityRank = map[Rarity]int{
	RaritySuperRare: 3,
	RarityRare:      2,
	RarityCommon:    1,
	RarityBonus:     0,
}

// Rank orders tiers from bonus (0) to superRare (3). Unknown tiers rank as bonus.
func (r Rarity) Rank() int {
	return rarityRank[r]
}

// Known reports whether r is one of the defined tiers
func (r Rarity) Known() bool {
	_, ok := rarityRank[r]
	return ok
}

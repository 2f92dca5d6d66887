package domain

// Achievement identifiers. Any of these can be unlocked independently; the
// grants ledger keeps each one-time per user.
const (
	EarlyAdopter  = "early_adopter"
	NFTCollector  = "nft_collector"
	SuperReferrer = "super_referrer"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

var Catalog = []Achievement{
	{ID: EarlyAdopter, Title: "Early Adopter", Description: "Completed the early adopters program", Points: 1},
	{ID: NFTCollector, Title: "NFT Collector", Description: "Purchased an NFT from our collection", Points: 1},
	{ID: SuperReferrer, Title: "Super Referrer", Description: "Referred over 20 friends", Points: 1},
}

func Known(id string) bool {
	for _, a := range Catalog {
		if a.ID == id {
			return true
		}
	}
	return false
}

package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

const RecentLimit = 10

type RecentEntry struct {
	ID          string          `json:"id"`
	At          time.Time       `json:"at"`
	CardNumber  string          `json:"card_number"`
	HolderName  string          `json:"holder_name"`
	PointOfSale string          `json:"point_of_sale"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	CardBlocked bool            `json:"card_blocked"`
}

// RecentList keeps the newest entries first and forgets the oldest past its
// limit.
type RecentList struct {
	entries []RecentEntry
	limit   int
}

func NewRecentList(limit int) *RecentList {
	if limit <= 0 {
		limit = RecentLimit
	}
	return &RecentList{limit: limit}
}

func (r *RecentList) Push(e RecentEntry) {
	r.entries = append([]RecentEntry{e}, r.entries...)
	if len(r.entries) > r.limit {
		r.entries = r.entries[:r.limit]
	}
}

func (r *RecentList) Entries() []RecentEntry {
	out := make([]RecentEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

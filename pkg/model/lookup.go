package model

// LookupOption maps a stored code to the label shown for it. Options are wedding scoped so couples
// can name their own guest groups.
// swagger:model
type LookupOption struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	WeddingID uint   `gorm:"index:idx_lookup_option,unique;not null" json:"weddingId"`
	Kind      string `gorm:"index:idx_lookup_option,unique;not null" json:"kind"`
	Code      string `gorm:"index:idx_lookup_option,unique;not null" json:"code"`
	Label     string `gorm:"not null" json:"label"`
	SortOrder int    `json:"sortOrder"`
}

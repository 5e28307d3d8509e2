package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductOption is one selectable choice inside an option slot, e.g. the
// "A4" size or the glossy paper finish. The modifier is added to the unit
// price and may be negative.
type ProductOption struct {
	ID            string  `bson:"id" json:"id"`
	Label         string  `bson:"label" json:"label"`
	LabelEn       string  `bson:"labelEn,omitempty" json:"labelEn,omitempty"`
	PriceModifier float64 `bson:"priceModifier" json:"priceModifier"`
}

// OptionSlot groups the choices for one configurable aspect of a product
// (size, material, printed sides). A customer picks at most one option per
// slot.
type OptionSlot struct {
	ID       string          `bson:"id" json:"id"`
	Label    string          `bson:"label" json:"label"`
	LabelEn  string          `bson:"labelEn,omitempty" json:"labelEn,omitempty"`
	Required bool            `bson:"required" json:"required"`
	Options  []ProductOption `bson:"options" json:"options"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameEn      string             `bson:"nameEn,omitempty" json:"nameEn,omitempty"`
	Slug        string             `bson:"slug,omitempty" json:"slug,omitempty"`
	BasePrice   float64            `bson:"basePrice" json:"basePrice"`
	MinQuantity int                `bson:"minQuantity" json:"minQuantity"`
	SaleEnabled bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   float64            `bson:"salePrice" json:"salePrice"`
	SaleStartAt *time.Time         `bson:"saleStartAt,omitempty" json:"saleStartAt,omitempty"`
	SaleEndAt   *time.Time         `bson:"saleEndAt,omitempty" json:"saleEndAt,omitempty"`
	IsOnSale    bool               `bson:"-" json:"isOnSale"`
	OptionSlots []OptionSlot       `bson:"optionSlots,omitempty" json:"optionSlots,omitempty"`
	Category    StringList         `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// FindOption resolves an option id inside a slot. Unknown slot or option ids
// return false; callers skip them rather than failing the whole line.
func (p Product) FindOption(slotID, optionID string) (ProductOption, bool) {
	for _, slot := range p.OptionSlots {
		if slot.ID != slotID {
			continue
		}
		for _, opt := range slot.Options {
			if opt.ID == optionID {
				return opt, true
			}
		}
	}
	return ProductOption{}, false
}

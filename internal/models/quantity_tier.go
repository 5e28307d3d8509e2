package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuantityTier is a volume-pricing breakpoint managed by the admin panel.
// A product-level tier (OptionID empty) carries an absolute Price that
// replaces the base price once the selected quantity reaches the threshold.
// An option-level tier carries a PriceModifier that replaces the option's
// own modifier instead.
type QuantityTier struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID     primitive.ObjectID `bson:"productId" json:"productId"`
	OptionID      string             `bson:"optionId,omitempty" json:"optionId,omitempty"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         *float64           `bson:"price,omitempty" json:"price,omitempty"`
	PriceModifier *float64           `bson:"priceModifier,omitempty" json:"priceModifier,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

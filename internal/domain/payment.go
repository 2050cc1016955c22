package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod records how a fee was collected.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// Payment is a fee collected from a member. Recording one renews the membership.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID       primitive.ObjectID `bson:"memberId" json:"memberId"`
	Amount         float64            `bson:"amount" json:"amount"`
	Method         PaymentMethod      `bson:"method" json:"method"`
	Plan           string             `bson:"plan" json:"plan"`
	PaidOn         string             `bson:"paidOn" json:"paidOn"`                 // calendar date
	PreviousExpiry string             `bson:"previousExpiry,omitempty" json:"previousExpiry,omitempty"`
	NewExpiry      string             `bson:"newExpiry" json:"newExpiry"`
	RecordedBy     primitive.ObjectID `bson:"recordedBy" json:"recordedBy"`
	Note           string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of a membership, derived from its expiry date.
type Status string

const (
	StatusActive       Status = "Active"
	StatusExpiringSoon Status = "Expiring Soon"
	StatusExpired      Status = "Expired"
)

// ParseStatus recognises the three lifecycle states case-insensitively.
// "expiring-soon", "expiring_soon" and "expiring" are accepted as well.
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	switch norm {
	case "active":
		return StatusActive, true
	case "expiring soon", "expiring":
		return StatusExpiringSoon, true
	case "expired":
		return StatusExpired, true
	}
	return "", false
}

// Member is a gym member as stored by the backend and exchanged with clients.
// Dates are kept as the strings the backend hands out so that a malformed
// value reaches the roster engine instead of failing the whole decode.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone" json:"phone"`
	Plan        string             `bson:"plan" json:"plan"`
	JoiningDate string             `bson:"joiningDate" json:"joiningDate"`
	ExpiryDate  string             `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	Amount      float64            `bson:"amount" json:"amount"`
	Weight      *float64           `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height      *float64           `bson:"height,omitempty" json:"height,omitempty"` // cm
	Status      string             `bson:"status,omitempty" json:"status,omitempty"` // server-side hint, see roster.Classify
	PhotoKey    string             `bson:"photoKey,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UnmarshalJSON accepts the loosely typed member payloads produced by older
// backends: "_id" for "id", "expiry" for "expiryDate", and numbers sent as
// strings (or phone numbers sent as numbers).
func (m *Member) UnmarshalJSON(data []byte) error {
	type plain Member
	var aux struct {
		plain
		ID          flexString  `json:"id"`
		MongoID     flexString  `json:"_id"`
		Phone       flexString  `json:"phone"`
		JoiningDate flexString  `json:"joiningDate"`
		ExpiryDate  flexString  `json:"expiryDate"`
		Expiry      flexString  `json:"expiry"`
		Status      flexString  `json:"status"`
		Amount      flexNumber  `json:"amount"`
		Weight      flexNumber  `json:"weight"`
		Height      flexNumber  `json:"height"`
		CreatedAt   flexString  `json:"createdAt"`
		UpdatedAt   flexString  `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*m = Member(aux.plain)

	id := string(aux.ID)
	if id == "" {
		id = string(aux.MongoID)
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		m.ID = oid
	}

	m.Phone = string(aux.Phone)
	m.JoiningDate = string(aux.JoiningDate)
	m.ExpiryDate = string(aux.ExpiryDate)
	if m.ExpiryDate == "" {
		m.ExpiryDate = string(aux.Expiry)
	}
	m.Status = string(aux.Status)
	m.Amount = aux.Amount.value
	if aux.Weight.set {
		w := aux.Weight.value
		m.Weight = &w
	}
	if aux.Height.set {
		h := aux.Height.value
		m.Height = &h
	}
	if t, ok := ParseDate(string(aux.CreatedAt), time.UTC); ok {
		m.CreatedAt = t
	}
	if t, ok := ParseDate(string(aux.UpdatedAt), time.UTC); ok {
		m.UpdatedAt = t
	}
	return nil
}

// PhoneDigits strips everything but ASCII digits from s.
func PhoneDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// flexString decodes a JSON string, number or boolean into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		// Objects such as {"$oid": "..."} are not something we can use.
		var oid struct {
			OID string `json:"$oid"`
		}
		if data[0] == '{' && json.Unmarshal(data, &oid) == nil {
			*f = flexString(oid.OID)
			return nil
		}
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

// flexNumber decodes a JSON number or numeric string. Unparsable input
// leaves it unset rather than failing.
type flexNumber struct {
	value float64
	set   bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = flexNumber{}
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*f = flexNumber{}
		return nil
	}
	*f = flexNumber{value: v, set: true}
	return nil
}

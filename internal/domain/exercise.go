// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseTemplate is an entry in the gym's exercise catalog that staff hand
// out to members (e.g. a "Fat Loss Plan" circuit).
type ExerciseTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "Chest", "Cardio"
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`         // e.g. "Fat Loss Plan", "Beginner"
	Sets        int                `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps        string             `bson:"reps,omitempty" json:"reps,omitempty"` // "12", "8-10", "30s"
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasTag reports whether the template carries tag, ignoring case.
func (e *ExerciseTemplate) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

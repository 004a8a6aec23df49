package model

import "time"

// TraitRecord archives a player's submitted trait when they consent to it
// being kept beyond the session TTL. Stored in MongoDB, independent of the
// ephemeral session document.
type TraitRecord struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SessionCode string    `json:"sessionCode" bson:"sessionCode"`
	PlayerName  string    `json:"playerName" bson:"playerName"`
	Trait       string    `json:"trait" bson:"trait"`
	Consent     bool      `json:"consent" bson:"consent"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

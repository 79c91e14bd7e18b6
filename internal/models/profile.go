package models

import "github.com/google/uuid"

// Gender values accepted on client profiles and campaign targeting.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderAll    = "ALL"
)

// MaxClientAge bounds the age field on client profiles.
const MaxClientAge = 160

// Client is an end-user profile ads are matched against.
type Client struct {
	ID       uuid.UUID `json:"client_id"`
	Login    string    `json:"login"`
	Age      int       `json:"age"`
	Location string    `json:"location"`
	Gender   string    `json:"gender"`
}

// Validate checks client payload invariants.
func (c Client) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidation("client_id is required")
	}
	if c.Login == "" {
		return NewValidation("login is required")
	}
	if c.Age < 0 || c.Age > MaxClientAge {
		return NewValidation("age must be in [0, %d]", MaxClientAge)
	}
	if c.Gender != GenderMale && c.Gender != GenderFemale {
		return NewValidation("gender must be MALE or FEMALE")
	}
	return nil
}

// Advertiser owns campaigns.
type Advertiser struct {
	ID   uuid.UUID `json:"advertiser_id"`
	Name string    `json:"name"`
}

// Validate checks advertiser payload invariants.
func (a Advertiser) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidation("advertiser_id is required")
	}
	if a.Name == "" {
		return NewValidation("name is required")
	}
	return nil
}

// MLScore is a precomputed relevance scalar for a (client, advertiser) pair.
// A missing pair reads as score 0.
type MLScore struct {
	ClientID     uuid.UUID `json:"client_id"`
	AdvertiserID uuid.UUID `json:"advertiser_id"`
	Score        float64   `json:"score"`
}

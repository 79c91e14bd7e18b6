package models

import "github.com/google/uuid"

// Targeting is the optional set of client-attribute constraints on a
// campaign. Nil fields are wildcards.
type Targeting struct {
	Gender   *string `json:"gender,omitempty"`
	AgeFrom  *int    `json:"age_from,omitempty"`
	AgeTo    *int    `json:"age_to,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Validate checks targeting invariants.
func (t Targeting) Validate() error {
	if t.Gender != nil {
		switch *t.Gender {
		case GenderMale, GenderFemale, GenderAll:
		default:
			return NewValidation("targeting.gender must be MALE, FEMALE or ALL")
		}
	}
	if t.AgeFrom != nil && *t.AgeFrom < 0 {
		return NewValidation("targeting.age_from must be non-negative")
	}
	if t.AgeTo != nil && *t.AgeTo < 0 {
		return NewValidation("targeting.age_to must be non-negative")
	}
	if t.AgeFrom != nil && t.AgeTo != nil && *t.AgeFrom > *t.AgeTo {
		return NewValidation("targeting.age_from must not exceed age_to")
	}
	return nil
}

// Matches reports whether the client satisfies every set constraint.
// Location is a case-sensitive exact match.
func (t Targeting) Matches(c Client) bool {
	if t.Location != nil && *t.Location != c.Location {
		return false
	}
	if t.Gender != nil && *t.Gender != GenderAll && *t.Gender != c.Gender {
		return false
	}
	if t.AgeFrom != nil && c.Age < *t.AgeFrom {
		return false
	}
	if t.AgeTo != nil && c.Age > *t.AgeTo {
		return false
	}
	return true
}

// Campaign is the canonical stored campaign row.
type Campaign struct {
	ID                uuid.UUID `json:"campaign_id"`
	AdvertiserID      uuid.UUID `json:"advertiser_id"`
	ImpressionsLimit  int       `json:"impressions_limit"`
	ClicksLimit       int       `json:"clicks_limit"`
	CostPerImpression float64   `json:"cost_per_impression"`
	CostPerClick      float64   `json:"cost_per_click"`
	AdTitle           string    `json:"ad_title"`
	AdText            string    `json:"ad_text"`
	StartDate         uint32    `json:"start_date"`
	EndDate           uint32    `json:"end_date"`
	Targeting         Targeting `json:"targeting"`
	CreatedAt         uint32    `json:"-"`
}

// Validate checks campaign invariants. They are enforced at the store
// boundary on every create and update.
func (c Campaign) Validate() error {
	if c.ImpressionsLimit <= 0 {
		return NewValidation("impressions_limit must be positive")
	}
	if c.ClicksLimit < 0 {
		return NewValidation("clicks_limit must be non-negative")
	}
	if c.ClicksLimit > c.ImpressionsLimit {
		return NewValidation("clicks_limit must not exceed impressions_limit")
	}
	if c.CostPerImpression < 0 {
		return NewValidation("cost_per_impression must be non-negative")
	}
	if c.CostPerClick < 0 {
		return NewValidation("cost_per_click must be non-negative")
	}
	if c.AdTitle == "" {
		return NewValidation("ad_title is required")
	}
	if c.AdText == "" {
		return NewValidation("ad_text is required")
	}
	if c.StartDate > c.EndDate {
		return NewValidation("start_date must not exceed end_date")
	}
	return c.Targeting.Validate()
}

// IsActive reports whether day falls inside the campaign window.
func (c Campaign) IsActive(day uint32) bool {
	return c.StartDate <= day && day <= c.EndDate
}

// Started reports whether the campaign window has opened by day. Once
// started, limits and dates are frozen.
func (c Campaign) Started(day uint32) bool {
	return day >= c.StartDate
}

// CheckFrozenFields validates an update of c against the stored old
// version once the campaign has started: limits and dates must match the
// old values exactly. Costs, creatives and targeting stay mutable.
func (c Campaign) CheckFrozenFields(old Campaign) error {
	if c.ImpressionsLimit != old.ImpressionsLimit {
		return NewValidation("impressions_limit is frozen after start")
	}
	if c.ClicksLimit != old.ClicksLimit {
		return NewValidation("clicks_limit is frozen after start")
	}
	if c.StartDate != old.StartDate {
		return NewValidation("start_date is frozen after start")
	}
	if c.EndDate != old.EndDate {
		return NewValidation("end_date is frozen after start")
	}
	return nil
}

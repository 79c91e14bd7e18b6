package models

import "github.com/google/uuid"

// ActiveCampaign is the hot-cache projection of a currently active
// campaign together with its per-client view and click sets. It is the
// unit the selector scans on every ad request.
type ActiveCampaign struct {
	Campaign
	ViewClients  map[uuid.UUID]struct{} `json:"-"`
	ClickClients map[uuid.UUID]struct{} `json:"-"`
}

// NewActiveCampaign builds a projection with empty client sets.
func NewActiveCampaign(c Campaign) ActiveCampaign {
	return ActiveCampaign{
		Campaign:     c,
		ViewClients:  make(map[uuid.UUID]struct{}),
		ClickClients: make(map[uuid.UUID]struct{}),
	}
}

// Viewed reports whether the client already received an impression.
func (a ActiveCampaign) Viewed(clientID uuid.UUID) bool {
	_, ok := a.ViewClients[clientID]
	return ok
}

// Clicked reports whether the client already clicked.
func (a ActiveCampaign) Clicked(clientID uuid.UUID) bool {
	_, ok := a.ClickClients[clientID]
	return ok
}

// RemainingImpressions never goes below zero even if limits were lowered
// after delivery.
func (a ActiveCampaign) RemainingImpressions() int {
	if r := a.ImpressionsLimit - len(a.ViewClients); r > 0 {
		return r
	}
	return 0
}

// RemainingClicks never goes below zero.
func (a ActiveCampaign) RemainingClicks() int {
	if r := a.ClicksLimit - len(a.ClickClients); r > 0 {
		return r
	}
	return 0
}

// Ad is the public projection returned to clients from the serve path.
type Ad struct {
	ID           uuid.UUID `json:"ad_id"`
	Title        string    `json:"ad_title"`
	Text         string    `json:"ad_text"`
	AdvertiserID uuid.UUID `json:"advertiser_id"`
}

// AdOf projects the campaign into its public ad shape.
func (a ActiveCampaign) AdOf() Ad {
	return Ad{
		ID:           a.ID,
		Title:        a.AdTitle,
		Text:         a.AdText,
		AdvertiserID: a.AdvertiserID,
	}
}

package models

import (
	"testing"

	"github.com/google/uuid"
)

func validCampaign() Campaign {
	return Campaign{
		ID:                uuid.New(),
		AdvertiserID:      uuid.New(),
		ImpressionsLimit:  10,
		ClicksLimit:       2,
		CostPerImpression: 1,
		CostPerClick:      5,
		AdTitle:           "title",
		AdText:            "text",
		StartDate:         0,
		EndDate:           5,
	}
}

func TestCampaignValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Campaign)
		wantErr bool
	}{
		{"valid", func(*Campaign) {}, false},
		{"zero impressions limit", func(c *Campaign) { c.ImpressionsLimit = 0 }, true},
		{"clicks above impressions", func(c *Campaign) { c.ClicksLimit = 11 }, true},
		{"negative cost per impression", func(c *Campaign) { c.CostPerImpression = -1 }, true},
		{"negative cost per click", func(c *Campaign) { c.CostPerClick = -0.5 }, true},
		{"empty title", func(c *Campaign) { c.AdTitle = "" }, true},
		{"empty text", func(c *Campaign) { c.AdText = "" }, true},
		{"start after end", func(c *Campaign) { c.StartDate = 6 }, true},
		{"zero clicks limit is fine", func(c *Campaign) { c.ClicksLimit = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCampaign()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTargetingValidate(t *testing.T) {
	bad := "OTHER"
	if err := (Targeting{Gender: &bad}).Validate(); err == nil {
		t.Fatal("expected invalid gender error")
	}

	from, to := 40, 30
	if err := (Targeting{AgeFrom: &from, AgeTo: &to}).Validate(); err == nil {
		t.Fatal("expected inverted age range error")
	}

	all := GenderAll
	if err := (Targeting{Gender: &all}).Validate(); err != nil {
		t.Fatalf("ALL must be accepted: %v", err)
	}
}

func TestTargetingMatches(t *testing.T) {
	client := Client{ID: uuid.New(), Login: "u", Age: 30, Location: "Moscow", Gender: GenderMale}

	moscow, paris := "Moscow", "Paris"
	female, all := GenderFemale, GenderAll
	from25, to29 := 25, 29

	cases := []struct {
		name string
		tg   Targeting
		want bool
	}{
		{"empty matches everyone", Targeting{}, true},
		{"location match", Targeting{Location: &moscow}, true},
		{"location mismatch", Targeting{Location: &paris}, false},
		{"gender ALL wildcard", Targeting{Gender: &all}, true},
		{"gender mismatch", Targeting{Gender: &female}, false},
		{"age inside range", Targeting{AgeFrom: &from25}, true},
		{"age above range", Targeting{AgeTo: &to29}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tg.Matches(client); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckFrozenFields(t *testing.T) {
	old := validCampaign()

	updated := old
	updated.CostPerClick = 99
	updated.AdTitle = "new title"
	if err := updated.CheckFrozenFields(old); err != nil {
		t.Fatalf("mutable fields must pass: %v", err)
	}

	frozen := []func(*Campaign){
		func(c *Campaign) { c.ImpressionsLimit = 20 },
		func(c *Campaign) { c.ClicksLimit = 3 },
		func(c *Campaign) { c.StartDate = 1 },
		func(c *Campaign) { c.EndDate = 6 },
	}
	for i, mutate := range frozen {
		c := old
		mutate(&c)
		if err := c.CheckFrozenFields(old); err == nil {
			t.Fatalf("case %d: expected frozen-field error", i)
		}
	}
}

func TestActivityWindow(t *testing.T) {
	c := validCampaign()
	c.StartDate = 2
	c.EndDate = 4

	if c.IsActive(1) || c.IsActive(5) {
		t.Fatal("outside the window must be inactive")
	}
	if !c.IsActive(2) || !c.IsActive(4) {
		t.Fatal("window bounds are inclusive")
	}
	if c.Started(1) {
		t.Fatal("not started before start_date")
	}
	if !c.Started(2) {
		t.Fatal("started at start_date")
	}
}

func TestRemainingClamps(t *testing.T) {
	ac := NewActiveCampaign(validCampaign())
	ac.ImpressionsLimit = 1
	ac.ViewClients[uuid.New()] = struct{}{}
	ac.ViewClients[uuid.New()] = struct{}{}

	if got := ac.RemainingImpressions(); got != 0 {
		t.Fatalf("remaining impressions = %d, want 0", got)
	}
}

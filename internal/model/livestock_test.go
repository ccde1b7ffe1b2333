package model

import (
	"testing"
	"time"
)

func TestLivestockValidate(t *testing.T) {
	stock := Livestock{
		TankID:         1,
		Name:           "Clownfish",
		ScientificName: "Amphiprion ocellaris",
		Quantity:       2,
		IntroducedOn:   date(2023, 10, 5),
		CreatedAt:      time.Date(2023, 10, 5, 9, 0, 0, 0, time.UTC),
	}
	if err := stock.Validate(); err != nil {
		t.Fatalf("valid livestock rejected: %v", err)
	}

	noName := stock
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Fatal("expected error for blank name")
	}

	noCount := stock
	noCount.Quantity = 0
	if err := noCount.Validate(); err == nil {
		t.Fatal("expected error for zero quantity")
	}

	noTank := stock
	noTank.TankID = 0
	if err := noTank.Validate(); err == nil {
		t.Fatal("expected error for missing tank")
	}
}

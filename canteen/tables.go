/*
tables.go - Static reference tables

Delivery options and meal timing slots are fixed configuration consumed by
the engine, not engine state. Charges live here so order totals are derived
from one table only.
*/
package canteen

import (
	"fmt"
	"time"
)

// =============================================================================
// DELIVERY OPTIONS
// =============================================================================

// DeliveryOption maps a fixed option code to a flat surcharge.
type DeliveryOption struct {
	Code   string
	Label  string
	Charge Money
}

const (
	DeliveryPickup = "PICKUP"
	DeliveryClass  = "CLASS"
)

// DeliveryOptions is the complete option table.
var DeliveryOptions = map[string]DeliveryOption{
	DeliveryPickup: {Code: DeliveryPickup, Label: "Canteen Pickup", Charge: MoneyFromInt(0)},
	DeliveryClass:  {Code: DeliveryClass, Label: "Classroom Delivery", Charge: MoneyFromInt(20)},
}

// DeliveryCharge returns the surcharge for an option code.
// Unknown options are a hard error, not a zero charge.
func DeliveryCharge(code string) (Money, error) {
	opt, ok := DeliveryOptions[code]
	if !ok {
		return ZeroMoney(), fmt.Errorf("%w: %q", ErrInvalidDeliveryOption, code)
	}
	return opt.Charge, nil
}

// =============================================================================
// MEAL TIMINGS
// =============================================================================

// MealSlot is a named time window a scheduled order is associated with.
// Purely descriptive; the engine does not enforce it against real time.
type MealSlot struct {
	Start string
	End   string
	Label string
}

const (
	MealMorningBreak   = "MORNING_BREAK"
	MealLunch          = "LUNCH"
	MealAfternoonBreak = "AFTERNOON_BREAK"
)

// MealTimings is the complete slot table.
var MealTimings = map[string]MealSlot{
	MealMorningBreak:   {Start: "10:30", End: "11:00", Label: "Morning Break"},
	MealLunch:          {Start: "12:30", End: "13:30", Label: "Lunch"},
	MealAfternoonBreak: {Start: "15:30", End: "16:00", Label: "Afternoon Break"},
}

// MealSlotFor looks up a timing slot. The empty code is valid and yields an
// empty slot; any other unknown code is a validation error.
func MealSlotFor(code string) (MealSlot, error) {
	if code == "" {
		return MealSlot{}, nil
	}
	slot, ok := MealTimings[code]
	if !ok {
		return MealSlot{}, fmt.Errorf("%w: %q", ErrInvalidMealTiming, code)
	}
	return slot, nil
}

// =============================================================================
// SCHEDULING SLOTS
// =============================================================================

// TimeSlot is a schedulable pickup/delivery hour offered to clients.
type TimeSlot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TimeSlots generates hourly slots for today and tomorrow between 08:00 and
// 20:00, skipping hours that have already passed.
func TimeSlots(now time.Time) []TimeSlot {
	slots := []TimeSlot{}
	for dayOffset := 0; dayOffset < 2; dayOffset++ {
		date := now.AddDate(0, 0, dayOffset)
		startHour := 8
		if dayOffset == 0 {
			startHour = now.Hour() + 1
		}
		for hour := startHour; hour < 20; hour++ {
			at := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, now.Location())
			if !at.After(now) {
				continue
			}
			slots = append(slots, TimeSlot{
				Value: at.Format(time.RFC3339),
				Label: at.Format("January 02, 03:00 PM"),
			})
		}
	}
	return slots
}

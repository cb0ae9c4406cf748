package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/tripweave-backend/models/trip/validation"
	"github.com/tripweave/tripweave-backend/pkg/valueobjects"
	"github.com/tripweave/tripweave-backend/types"
)

const (
	DefaultNights = 4
	DefaultTitle  = "Untitled Trip"
)

var (
	arrivalBucket   = []string{"Arrive", "Check-in", "Dinner in town"}
	departureBucket = []string{"Pack up", "Leisurely brunch", "Depart"}
	defaultBucket   = []string{"Morning activity", "Explore", "Group dinner"}
)

var transportAliases = map[string]types.Transport{
	"flights":     types.TransportFlights,
	"flight":      types.TransportFlights,
	"fly":         types.TransportFlights,
	"rail":        types.TransportRail,
	"train":       types.TransportRail,
	"rental":      types.TransportRental,
	"rental car":  types.TransportRental,
	"own-vehicle": types.TransportOwnVehicle,
	"own vehicle": types.TransportOwnVehicle,
	"vehicle":     types.TransportOwnVehicle,
}

var vibeAliases = map[string]types.Vibe{
	"adventure":           types.VibeAdventure,
	"camping":             types.VibeCamping,
	"culture":             types.VibeCulture,
	"relaxation":          types.VibeRelaxation,
	"relaxation & luxury": types.VibeRelaxation,
	"local-attractions":   types.VibeLocalAttractions,
	"local attractions":   types.VibeLocalAttractions,
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseTransport(s string) types.Transport {
	if t, ok := transportAliases[canonical(s)]; ok {
		return t
	}
	return types.TransportFlights
}

func parseVibe(s string) types.Vibe {
	if v, ok := vibeAliases[canonical(s)]; ok {
		return v
	}
	return types.VibeAdventure
}

func parsePartyType(s string) types.PartyType {
	if canonical(s) == string(types.PartySolo) {
		return types.PartySolo
	}
	return types.PartyGroup
}

func parseBudgetModel(s string) types.BudgetModel {
	if canonical(s) == string(types.BudgetIndividual) {
		return types.BudgetIndividual
	}
	return types.BudgetGroup
}

// Normalize turns a record from any source into a canonical trip. It never
// fails: absent or malformed fields take their defaults. The change log is
// dropped when the record was last written by someone other than actor.
func Normalize(rec types.TripRecord, actor string, now time.Time) *types.Trip {
	t := &types.Trip{
		ID:                strings.TrimSpace(rec.ID),
		Title:             firstNonBlank(rec.Title, rec.Name, DefaultTitle),
		Origin:            strings.TrimSpace(rec.Origin),
		OriginCoords:      validCoords(rec.OriginCoords),
		OriginCountry:     strings.TrimSpace(rec.OriginCountry),
		Destination:       strings.TrimSpace(rec.Destination),
		DestinationCoords: validCoords(rec.DestinationCoords),
		Transport:         parseTransport(rec.Transport),
		Vibe:              parseVibe(rec.Vibe),
		PartyType:         parsePartyType(rec.PartyType),
		BudgetModel:       parseBudgetModel(rec.BudgetModel),
		Archived:          rec.Archived,
		OwnerID:           strings.TrimSpace(rec.OwnerID),
		LastWriter:        rec.LastWriter,
		Version:           rec.Version,
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.OwnerID == "" {
		t.OwnerID = actor
	}
	if rec.Submitted != nil {
		t.Submitted = *rec.Submitted
	}
	t.CreatedAt = now
	if rec.CreatedAt != nil && !rec.CreatedAt.IsZero() {
		t.CreatedAt = *rec.CreatedAt
	}
	t.UpdatedAt = t.CreatedAt
	if rec.UpdatedAt != nil && !rec.UpdatedAt.IsZero() {
		t.UpdatedAt = *rec.UpdatedAt
	}

	nights := DefaultNights
	if rec.Nights != nil {
		nights = *rec.Nights
	}
	applyDates(t, rec.StartDate, rec.EndDate, nights)
	enforcePartyRules(t)
	t.Activities = resizeActivities(rec.Activities, t.DayCount())
	t.Participants = dedupeParticipants(rec.Participants)

	t.Budget = types.Budget{Currency: string(valueobjects.DefaultCurrency)}
	if rec.Budget != nil {
		if c, ok := valueobjects.ParseCurrency(rec.Budget.Currency); ok {
			t.Budget.Currency = string(c)
		}
		t.Budget.Estimated = clampOptional(rec.Budget.Estimated)
	}
	t.ParticipantBudgets = make(map[string]float64, len(rec.ParticipantBudgets))
	for id, amount := range rec.ParticipantBudgets {
		if id = strings.TrimSpace(id); id != "" {
			t.ParticipantBudgets[id] = clamp(amount)
		}
	}

	t.Expenses = append([]types.Expense{}, rec.Expenses...)
	for i := range t.Expenses {
		if t.Expenses[i].Splits == nil {
			t.Expenses[i].Splits = map[string]float64{}
		}
	}
	t.Chat = append([]types.ChatMessage{}, rec.Chat...)
	t.Media = append([]types.MediaItem{}, rec.Media...)
	t.Docs = append([]types.TripDoc{}, rec.Docs...)
	t.ChangeLog = append([]types.ChangeLogEntry{}, rec.ChangeLog...)

	if rec.LastWriter != "" && !strings.EqualFold(rec.LastWriter, actor) {
		t.ChangeLog = []types.ChangeLogEntry{}
	}
	return t
}

// applyDates derives nights and the end date. Both dates valid and ordered:
// nights follow the dates. Start only, or an end before the start: the end
// date follows nights.
func applyDates(t *types.Trip, startRaw, endRaw string, nights int) {
	if nights < 0 {
		nights = 0
	}
	start, okStart := validation.ParseDate(startRaw)
	end, okEnd := validation.ParseDate(endRaw)

	t.StartDate, t.EndDate = "", ""
	switch {
	case okStart && okEnd && !end.Before(start):
		nights = daysBetween(start, end)
		t.StartDate = start.Format(types.DateLayout)
		t.EndDate = end.Format(types.DateLayout)
	case okStart:
		t.StartDate = start.Format(types.DateLayout)
		t.EndDate = start.AddDate(0, 0, nights).Format(types.DateLayout)
	case okEnd:
		t.EndDate = end.Format(types.DateLayout)
	}
	t.Nights = nights
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

func enforcePartyRules(t *types.Trip) {
	if t.PartyType == types.PartySolo {
		t.BudgetModel = types.BudgetIndividual
	}
}

// resizeActivities seeds fresh buckets when none exist, otherwise truncates
// or pads with the default bucket.
func resizeActivities(existing [][]string, days int) [][]string {
	out := make([][]string, days)
	if len(existing) == 0 {
		for i := range out {
			switch {
			case i == 0:
				out[i] = copyBucket(arrivalBucket)
			case i == days-1:
				out[i] = copyBucket(departureBucket)
			default:
				out[i] = copyBucket(defaultBucket)
			}
		}
		return out
	}
	for i := range out {
		if i < len(existing) {
			out[i] = append([]string{}, existing[i]...)
		} else {
			out[i] = copyBucket(defaultBucket)
		}
	}
	return out
}

func copyBucket(b []string) []string {
	return append([]string{}, b...)
}

func dedupeParticipants(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func validCoords(c *types.Coordinates) *types.Coordinates {
	if !valueobjects.ValidCoordinates(c) {
		return nil
	}
	v := *c
	return &v
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampOptional(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := clamp(*v)
	return &c
}

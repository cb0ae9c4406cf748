package types

import (
	"strings"
	"time"
)

type Transport string

const (
	TransportFlights    Transport = "flights"
	TransportRail       Transport = "rail"
	TransportRental     Transport = "rental"
	TransportOwnVehicle Transport = "own-vehicle"
)

type Vibe string

const (
	VibeAdventure        Vibe = "adventure"
	VibeCamping          Vibe = "camping"
	VibeCulture          Vibe = "culture"
	VibeRelaxation       Vibe = "relaxation"
	VibeLocalAttractions Vibe = "local-attractions"
)

type PartyType string

const (
	PartySolo  PartyType = "solo"
	PartyGroup PartyType = "group"
)

type BudgetModel string

const (
	BudgetIndividual BudgetModel = "individual"
	BudgetGroup      BudgetModel = "group"
)

type SplitMode string

const (
	SplitSelf     SplitMode = "self"
	SplitAll      SplitMode = "all"
	SplitSelected SplitMode = "selected"
)

type DocType string

const (
	DocTicket    DocType = "Ticket"
	DocHotel     DocType = "Hotel"
	DocActivity  DocType = "Activity"
	DocTransport DocType = "Transport"
	DocOther     DocType = "Other"
)

// DateLayout is the calendar date format used for trip and forecast dates.
const DateLayout = "2006-01-02"

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Budget struct {
	Currency  string   `json:"currency"`
	Estimated *float64 `json:"estimated,omitempty"`
}

type Expense struct {
	ID        string             `json:"id"`
	Desc      string             `json:"desc"`
	Amount    float64            `json:"amount"`
	Currency  string             `json:"currency"`
	PaidBy    string             `json:"paidBy"`
	SplitMode SplitMode          `json:"splitMode"`
	Splits    map[string]float64 `json:"splits"`
	CreatedAt time.Time          `json:"createdAt"`
}

type ChatMessage struct {
	ID       string    `json:"id"`
	From     string    `json:"from"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
	MediaIDs []string  `json:"mediaIds,omitempty"`
}

// MediaItem describes an uploaded blob. The bytes live in blob storage.
type MediaItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type TripDoc struct {
	ID        string    `json:"id"`
	Type      DocType   `json:"type"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider,omitempty"`
	Ref       string    `json:"ref,omitempty"`
	URL       string    `json:"url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChangeLogEntry struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
	By   string    `json:"by"`
}

// Trip is the canonical, normalized trip snapshot. Values handed out by the
// engine are never mutated in place; every change produces a new Trip.
type Trip struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Origin             string             `json:"origin"`
	OriginCoords       *Coordinates       `json:"originCoords,omitempty"`
	OriginCountry      string             `json:"originCountry,omitempty"`
	Destination        string             `json:"destination"`
	DestinationCoords  *Coordinates       `json:"destinationCoords,omitempty"`
	StartDate          string             `json:"startDate,omitempty"`
	EndDate            string             `json:"endDate,omitempty"`
	Nights             int                `json:"nights"`
	Transport          Transport          `json:"transport"`
	Vibe               Vibe               `json:"vibe"`
	PartyType          PartyType          `json:"partyType"`
	BudgetModel        BudgetModel        `json:"budgetModel"`
	Activities         [][]string         `json:"activities"`
	Participants       []string           `json:"participants"`
	Budget             Budget             `json:"budget"`
	ParticipantBudgets map[string]float64 `json:"participantBudgets"`
	Expenses           []Expense          `json:"expenses"`
	Chat               []ChatMessage      `json:"chat"`
	Media              []MediaItem        `json:"media"`
	Docs               []TripDoc          `json:"docs"`
	ChangeLog          []ChangeLogEntry   `json:"changeLog"`
	Submitted          bool               `json:"submitted"`
	Archived           bool               `json:"archived"`
	OwnerID            string             `json:"ownerId"`
	LastWriter         string             `json:"lastWriter"`
	Version            int64              `json:"version"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// DayCount is derived from nights and never stored.
func (t *Trip) DayCount() int {
	return DayCountFor(t.Nights)
}

func DayCountFor(nights int) int {
	if nights+1 < 1 {
		return 1
	}
	return nights + 1
}

// HasParticipant compares identifiers case-insensitively.
func (t *Trip) HasParticipant(id string) bool {
	for _, p := range t.Participants {
		if strings.EqualFold(p, id) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	c := *t
	c.OriginCoords = cloneCoords(t.OriginCoords)
	c.DestinationCoords = cloneCoords(t.DestinationCoords)
	if t.Budget.Estimated != nil {
		v := *t.Budget.Estimated
		c.Budget.Estimated = &v
	}

	c.Activities = make([][]string, len(t.Activities))
	for i, day := range t.Activities {
		c.Activities[i] = append([]string{}, day...)
	}
	c.Participants = append([]string{}, t.Participants...)

	c.ParticipantBudgets = make(map[string]float64, len(t.ParticipantBudgets))
	for k, v := range t.ParticipantBudgets {
		c.ParticipantBudgets[k] = v
	}

	c.Expenses = make([]Expense, len(t.Expenses))
	for i, e := range t.Expenses {
		e.Splits = cloneFloatMap(e.Splits)
		c.Expenses[i] = e
	}

	c.Chat = make([]ChatMessage, len(t.Chat))
	for i, m := range t.Chat {
		if m.MediaIDs != nil {
			m.MediaIDs = append([]string{}, m.MediaIDs...)
		}
		c.Chat[i] = m
	}

	c.Media = append([]MediaItem{}, t.Media...)
	c.Docs = append([]TripDoc{}, t.Docs...)
	c.ChangeLog = append([]ChangeLogEntry{}, t.ChangeLog...)
	return &c
}

func cloneCoords(c *Coordinates) *Coordinates {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TripRecord is the loose shape accepted from any source: local cache, a
// draft, or remote metadata. Absent fields are nil and get defaults during
// normalization.
type TripRecord struct {
	ID                 string             `json:"id,omitempty"`
	Title              string             `json:"title,omitempty"`
	Name               string             `json:"name,omitempty"`
	Origin             string             `json:"origin,omitempty"`
	OriginCoords       *Coordinates       `json:"originCoords,omitempty"`
	OriginCountry      string             `json:"originCountry,omitempty"`
	Destination        string             `json:"destination,omitempty"`
	DestinationCoords  *Coordinates       `json:"destinationCoords,omitempty"`
	StartDate          string             `json:"startDate,omitempty"`
	EndDate            string             `json:"endDate,omitempty"`
	Nights             *int               `json:"nights,omitempty"`
	Transport          string             `json:"transport,omitempty"`
	Vibe               string             `json:"vibe,omitempty"`
	PartyType          string             `json:"partyType,omitempty"`
	BudgetModel        string             `json:"budgetModel,omitempty"`
	Activities         [][]string         `json:"activities,omitempty"`
	Participants       []string           `json:"participants,omitempty"`
	Budget             *Budget            `json:"budget,omitempty"`
	ParticipantBudgets map[string]float64 `json:"participantBudgets,omitempty"`
	Expenses           []Expense          `json:"expenses,omitempty"`
	Chat               []ChatMessage      `json:"chat,omitempty"`
	Media              []MediaItem        `json:"media,omitempty"`
	Docs               []TripDoc          `json:"docs,omitempty"`
	ChangeLog          []ChangeLogEntry   `json:"changeLog,omitempty"`
	Submitted          *bool              `json:"submitted,omitempty"`
	Archived           bool               `json:"archived,omitempty"`
	OwnerID            string             `json:"ownerId,omitempty"`
	LastWriter         string             `json:"lastWriter,omitempty"`
	Version            int64              `json:"version,omitempty"`
	CreatedAt          *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time         `json:"updatedAt,omitempty"`
}

// Record converts a canonical trip back into the loose shape.
func (t *Trip) Record() TripRecord {
	c := t.Clone()
	nights := c.Nights
	submitted := c.Submitted
	budget := c.Budget
	created := c.CreatedAt
	updated := c.UpdatedAt
	return TripRecord{
		ID:                 c.ID,
		Title:              c.Title,
		Origin:             c.Origin,
		OriginCoords:       c.OriginCoords,
		OriginCountry:      c.OriginCountry,
		Destination:        c.Destination,
		DestinationCoords:  c.DestinationCoords,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		Nights:             &nights,
		Transport:          string(c.Transport),
		Vibe:               string(c.Vibe),
		PartyType:          string(c.PartyType),
		BudgetModel:        string(c.BudgetModel),
		Activities:         c.Activities,
		Participants:       c.Participants,
		Budget:             &budget,
		ParticipantBudgets: c.ParticipantBudgets,
		Expenses:           c.Expenses,
		Chat:               c.Chat,
		Media:              c.Media,
		Docs:               c.Docs,
		ChangeLog:          c.ChangeLog,
		Submitted:          &submitted,
		Archived:           c.Archived,
		OwnerID:            c.OwnerID,
		LastWriter:         c.LastWriter,
		Version:            c.Version,
		CreatedAt:          &created,
		UpdatedAt:          &updated,
	}
}

// MetaUpdate carries the editable metadata fields. Nil means "leave as is".
type MetaUpdate struct {
	Title             *string      `json:"title,omitempty"`
	Origin            *string      `json:"origin,omitempty"`
	OriginCoords      *Coordinates `json:"originCoords,omitempty"`
	OriginCountry     *string      `json:"originCountry,omitempty"`
	Destination       *string      `json:"destination,omitempty"`
	DestinationCoords *Coordinates `json:"destinationCoords,omitempty"`
	StartDate         *string      `json:"startDate,omitempty"`
	EndDate           *string      `json:"endDate,omitempty"`
	Nights            *int         `json:"nights,omitempty"`
	Transport         *string      `json:"transport,omitempty"`
	Vibe              *string      `json:"vibe,omitempty"`
	PartyType         *string      `json:"partyType,omitempty"`
	BudgetModel       *string      `json:"budgetModel,omitempty"`
}

// NewTripParams seeds a trip created from the "new trip" action.
type NewTripParams struct {
	Title       string `json:"title"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Nights      *int   `json:"nights"`
	PartyType   string `json:"partyType"`
}

type ExpenseDraft struct {
	Desc      string    `json:"desc"`
	Amount    float64   `json:"amount"`
	PaidBy    string    `json:"paidBy"`
	SplitMode SplitMode `json:"splitMode"`
	SplitWith []string  `json:"splitWith"`
}

type DocDraft struct {
	Type     DocType `json:"type"`
	Title    string  `json:"title"`
	Provider string  `json:"provider"`
	Ref      string  `json:"ref"`
	URL      string  `json:"url"`
	Notes    string  `json:"notes"`
}

type BudgetSummary struct {
	Currency  string             `json:"currency"`
	Estimated *float64           `json:"estimated,omitempty"`
	Spent     float64            `json:"spent"`
	Remaining *float64           `json:"remaining,omitempty"`
	Balances  map[string]float64 `json:"balances"`
}

// TripList groups the retained trips for one actor.
type TripList struct {
	Created []*Trip `json:"created"`
	Invited []*Trip `json:"invited"`
}

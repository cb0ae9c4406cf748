package service

import (
	"context"
	"strings"

	"github.com/tripweave/tripweave-backend/models/trip/validation"
	"github.com/tripweave/tripweave-backend/pkg/valueobjects"
	"github.com/tripweave/tripweave-backend/types"
)

// UpdateMeta merges the editable metadata and marks the trip submitted. An
// update that would leave the destination blank, the dates out of order or
// coordinates out of range is ignored. The committed metadata is mirrored to
// the remote store on a best-effort basis.
func (e *Engine) UpdateMeta(ctx context.Context, trip *types.Trip, u types.MetaUpdate) (*types.Trip, error) {
	next, err := e.mutate(ctx, trip, "update_meta", "Trip details updated", func(next *types.Trip) (bool, string) {
		return applyMeta(next, u)
	})
	if err != nil || next == trip {
		return next, err
	}

	if e.remote != nil {
		if err := e.remote.WriteMeta(ctx, next); err != nil {
			e.log.Warnw("Failed to mirror trip metadata", "tripId", next.ID, "error", err)
		}
	}
	return next, nil
}

func applyMeta(next *types.Trip, u types.MetaUpdate) (bool, string) {
	if u.Title != nil {
		next.Title = firstNonBlank(*u.Title, DefaultTitle)
	}
	if u.Origin != nil {
		next.Origin = strings.TrimSpace(*u.Origin)
	}
	if u.Destination != nil {
		next.Destination = strings.TrimSpace(*u.Destination)
	}
	if strings.TrimSpace(next.Destination) == "" {
		return false, "destination is required"
	}

	if u.OriginCoords != nil {
		if !valueobjects.ValidCoordinates(u.OriginCoords) {
			return false, "origin coordinates out of range"
		}
		next.OriginCoords = validCoords(u.OriginCoords)
	}
	if u.DestinationCoords != nil {
		if !valueobjects.ValidCoordinates(u.DestinationCoords) {
			return false, "destination coordinates out of range"
		}
		next.DestinationCoords = validCoords(u.DestinationCoords)
	}

	if u.StartDate != nil {
		next.StartDate = strings.TrimSpace(*u.StartDate)
	}
	if u.EndDate != nil {
		next.EndDate = strings.TrimSpace(*u.EndDate)
	}
	if err := validation.ValidateDateRange(next.StartDate, next.EndDate); err != nil {
		return false, "end date before start date"
	}
	if u.Nights != nil {
		next.Nights = *u.Nights
		// A new night count moves the end date unless the caller set both
		// dates explicitly.
		if u.EndDate == nil {
			next.EndDate = ""
		}
	}

	if u.Transport != nil {
		next.Transport = parseTransport(*u.Transport)
	}
	if u.Vibe != nil {
		next.Vibe = parseVibe(*u.Vibe)
	}
	if u.PartyType != nil {
		next.PartyType = parsePartyType(*u.PartyType)
	}
	if u.BudgetModel != nil {
		next.BudgetModel = parseBudgetModel(*u.BudgetModel)
	}
	if u.OriginCountry != nil {
		country := strings.TrimSpace(*u.OriginCountry)
		if !strings.EqualFold(country, next.OriginCountry) {
			next.OriginCountry = country
			next.Budget.Currency = string(valueobjects.CurrencyForCountry(country))
		}
	}

	next.Submitted = true
	return true, ""
}

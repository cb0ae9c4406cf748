package service

import (
	"context"
	"strings"

	"github.com/tripweave/tripweave-backend/models/trip/validation"
	"github.com/tripweave/tripweave-backend/types"
)

// AppendChatMessage adds a message from the caller unless from is given.
// A message needs text or at least one media id.
func (e *Engine) AppendChatMessage(ctx context.Context, trip *types.Trip, text string, mediaIDs []string, from string) (*types.Trip, error) {
	text = strings.TrimSpace(text)
	ids := make([]string, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	msg := types.ChatMessage{
		ID:   e.newID(),
		From: firstNonBlank(from, types.ActorFromContext(ctx)),
		Text: text,
		At:   e.clock(),
	}
	if len(ids) > 0 {
		msg.MediaIDs = ids
	}

	return e.mutate(ctx, trip, "append_chat", "Sent a message", func(next *types.Trip) (bool, string) {
		if text == "" && len(ids) == 0 {
			return false, "empty message"
		}
		next.Chat = append(next.Chat, msg)
		return true, ""
	})
}

// AddMedia records metadata for uploaded blobs.
func (e *Engine) AddMedia(ctx context.Context, trip *types.Trip, items []types.MediaItem) (*types.Trip, error) {
	now := e.clock()
	added := make([]types.MediaItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = e.newID()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		added = append(added, item)
	}

	return e.mutate(ctx, trip, "add_media", "Added media", func(next *types.Trip) (bool, string) {
		if len(added) == 0 {
			return false, "no media"
		}
		next.Media = append(next.Media, added...)
		return true, ""
	})
}

func (e *Engine) RemoveMedia(ctx context.Context, trip *types.Trip, id string) (*types.Trip, error) {
	return e.mutate(ctx, trip, "remove_media", "Removed media", func(next *types.Trip) (bool, string) {
		for i, m := range next.Media {
			if m.ID == id {
				next.Media = append(next.Media[:i:i], next.Media[i+1:]...)
				return true, ""
			}
		}
		return false, "unknown media"
	})
}

func parseDocType(t types.DocType) types.DocType {
	for _, known := range []types.DocType{types.DocTicket, types.DocHotel, types.DocActivity, types.DocTransport, types.DocOther} {
		if strings.EqualFold(strings.TrimSpace(string(t)), string(known)) {
			return known
		}
	}
	return types.DocOther
}

// docFromDraft cleans a draft. ok is false when the title is blank. Invalid
// URLs are dropped rather than rejected.
func docFromDraft(d types.DocDraft) (types.TripDoc, bool) {
	doc := types.TripDoc{
		Type:     parseDocType(d.Type),
		Title:    strings.TrimSpace(d.Title),
		Provider: strings.TrimSpace(d.Provider),
		Ref:      strings.TrimSpace(d.Ref),
		Notes:    strings.TrimSpace(d.Notes),
	}
	if url := strings.TrimSpace(d.URL); url != "" && validation.ValidateDocURL(url) == nil {
		doc.URL = url
	}
	return doc, doc.Title != ""
}

func (e *Engine) AddDoc(ctx context.Context, trip *types.Trip, draft types.DocDraft) (*types.Trip, error) {
	doc, ok := docFromDraft(draft)
	doc.ID = e.newID()
	doc.CreatedAt = e.clock()
	return e.mutate(ctx, trip, "add_doc", "Added document: "+doc.Title, func(next *types.Trip) (bool, string) {
		if !ok {
			return false, "document title is required"
		}
		next.Docs = append(next.Docs, doc)
		return true, ""
	})
}

func (e *Engine) UpdateDoc(ctx context.Context, trip *types.Trip, id string, draft types.DocDraft) (*types.Trip, error) {
	doc, ok := docFromDraft(draft)
	return e.mutate(ctx, trip, "update_doc", "Updated document: "+doc.Title, func(next *types.Trip) (bool, string) {
		if !ok {
			return false, "document title is required"
		}
		for i, existing := range next.Docs {
			if existing.ID == id {
				doc.ID = existing.ID
				doc.CreatedAt = existing.CreatedAt
				next.Docs[i] = doc
				return true, ""
			}
		}
		return false, "unknown document"
	})
}

func (e *Engine) RemoveDoc(ctx context.Context, trip *types.Trip, id string) (*types.Trip, error) {
	return e.mutate(ctx, trip, "remove_doc", "Removed document", func(next *types.Trip) (bool, string) {
		for i, d := range next.Docs {
			if d.ID == id {
				next.Docs = append(next.Docs[:i:i], next.Docs[i+1:]...)
				return true, ""
			}
		}
		return false, "unknown document"
	})
}

package replay

import (
	"context"
	"errors"
	"strings"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.PlayerID) == "" || u.Events == nil {
		return Response{}, ErrInvalidRequest
	}
	if req.OccurredFrom > 0 && req.OccurredTo > 0 && req.OccurredFrom > req.OccurredTo {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	events, err := u.Events.ListByPlayerID(ctx, req.PlayerID, limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	return Response{Events: events, Summary: summarize(events)}, nil
}

func filterByTimeWindow(events []economy.DomainEvent, from, to int64) []economy.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]economy.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// summarize expects events newest first.
func summarize(events []economy.DomainEvent) Summary {
	s := Summary{Purchases: map[string]int{}}
	for _, evt := range events {
		switch evt.Type {
		case economy.EventPurchaseCompleted:
			if id, ok := evt.Payload["upgrade"].(string); ok {
				s.Purchases[id]++
			}
		case economy.EventLevelUp:
			s.LevelUps++
			if s.LatestLevel == "" {
				s.LatestLevel = str(evt.Payload["level_after"])
			}
		case economy.EventCriticalClick:
			s.CriticalClicks++
		case economy.EventGameSaved:
			s.Saves++
		case economy.EventGameLoaded:
			s.Loads++
		case economy.EventGameReset:
			s.Resets++
		}
	}
	return s
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

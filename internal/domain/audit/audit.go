package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crewshift/internal/domain/apperr"
	"crewshift/internal/domain/auth"
	"crewshift/internal/platform/querier"
	"crewshift/internal/platform/requestctx"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

type StoreAPI interface {
	InsertEvent(ctx context.Context, evt Event) error
	ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, error)
}

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Record stores an event, taking the request id and client ip from ctx.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, after any) error {
	var afterJSON []byte
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}
	return s.store.InsertEvent(ctx, Event{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         requestctx.GetClientIP(ctx),
		After:      afterJSON,
	})
}

func (s *Service) List(ctx context.Context, caller *auth.Identity, filter Filter, limit, offset int) ([]Event, error) {
	if _, err := auth.Authorize(caller, auth.RoleManager); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, filter, limit, offset)
	if err != nil {
		return nil, apperr.Store("audit.List", err)
	}
	return events, nil
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) InsertEvent(ctx context.Context, evt Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, after_json, request_id, ip)
    VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,$7)
  `, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, []byte(evt.After), evt.RequestID, evt.IP)
	return err
}

func (s *Store) ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery("SELECT id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at, after_json", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var (
			evt   Event
			after []byte
		)
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &after); err != nil {
			return nil, err
		}
		evt.After = after
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.ActorUser != "" {
		args = append(args, filter.ActorUser)
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args))
	}
	return query, args
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const matchColumns = `id, kind, sender_id, receiver_id, customer_id, participants, items, deliveries,
	state, events, meeting_location, meeting_date, version, archived, created_at, updated_at`

type matchRow struct {
	ID              string         `db:"id"`
	Kind            string         `db:"kind"`
	SenderID        *string        `db:"sender_id"`
	ReceiverID      *string        `db:"receiver_id"`
	CustomerID      *string        `db:"customer_id"`
	Participants    pq.StringArray `db:"participants"`
	Items           []byte         `db:"items"`
	Deliveries      []byte         `db:"deliveries"`
	State           string         `db:"state"`
	Events          []byte         `db:"events"`
	MeetingLocation string         `db:"meeting_location"`
	MeetingDate     *time.Time     `db:"meeting_date"`
	Version         int            `db:"version"`
	Archived        bool           `db:"archived"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (row *matchRow) toDomain() (*domain.Match, error) {
	m := &domain.Match{
		ID:           row.ID,
		Kind:         domain.MatchKind(row.Kind),
		SenderID:     row.SenderID,
		ReceiverID:   row.ReceiverID,
		CustomerID:   row.CustomerID,
		Participants: []string(row.Participants),
		State:        domain.MatchState(row.State),
		MeetingInfo:  domain.MeetingInfo{Location: row.MeetingLocation, Date: row.MeetingDate},
		Version:      row.Version,
		Archived:     row.Archived,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if m.Participants == nil {
		m.Participants = []string{}
	}
	if err := json.Unmarshal(row.Items, &m.Items); err != nil {
		return nil, fmt.Errorf("decode items of match %s: %w", row.ID, err)
	}
	if err := unmarshalOptional(row.Deliveries, &m.Deliveries); err != nil {
		return nil, fmt.Errorf("decode deliveries of match %s: %w", row.ID, err)
	}
	if err := unmarshalOptional(row.Events, &m.Events); err != nil {
		return nil, fmt.Errorf("decode events of match %s: %w", row.ID, err)
	}
	return m, nil
}

func unmarshalOptional(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

type matchDocument struct {
	items      []byte
	deliveries []byte
	events     []byte
}

func encodeMatch(m *domain.Match) (matchDocument, error) {
	var doc matchDocument
	var err error
	if doc.items, err = json.Marshal(nonNil(m.Items)); err != nil {
		return doc, fmt.Errorf("encode items: %w", err)
	}
	if doc.deliveries, err = json.Marshal(nonNil(m.Deliveries)); err != nil {
		return doc, fmt.Errorf("encode deliveries: %w", err)
	}
	if doc.events, err = json.Marshal(nonNil(m.Events)); err != nil {
		return doc, fmt.Errorf("encode events: %w", err)
	}
	return doc, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateMany(ctx context.Context, matches []*domain.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, m := range matches {
		doc, err := encodeMatch(m)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			m.ID, string(m.Kind), m.SenderID, m.ReceiverID, m.CustomerID,
			pq.Array(nonNil(m.Participants)), doc.items, doc.deliveries,
			string(m.State), doc.events, m.MeetingInfo.Location, m.MeetingInfo.Date,
			m.Version, m.Archived, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	var row matchRow
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *matchRepository) Update(ctx context.Context, match *domain.Match) error {
	doc, err := encodeMatch(match)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET participants = $1, items = $2, deliveries = $3, state = $4, events = $5,
		    meeting_location = $6, meeting_date = $7, archived = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		pq.Array(nonNil(match.Participants)), doc.items, doc.deliveries, string(match.State), doc.events,
		match.MeetingInfo.Location, match.MeetingInfo.Date, match.Archived,
		match.UpdatedAt, match.ID, match.Version,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, match.ID); err != nil {
			return err
		}
		if !exists {
			return domain.ErrMatchNotFound
		}
		return domain.ErrMatchVersionConflict
	}

	match.Version++
	return nil
}

func (r *matchRepository) GetAllForUser(ctx context.Context, userID string) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE NOT archived AND (sender_id = $1 OR receiver_id = $1 OR customer_id = $1)
		ORDER BY created_at, id
	`
	return r.selectMatches(ctx, query, userID)
}

func (r *matchRepository) GetUserMatchesByReceiver(ctx context.Context, receiverID string) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE kind = 'user-match' AND NOT archived AND receiver_id = $1
		ORDER BY created_at, id
	`
	return r.selectMatches(ctx, query, receiverID)
}

func (r *matchRepository) GetUserMatchesBySender(ctx context.Context, senderID string) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + ` FROM matches
		WHERE kind = 'user-match' AND NOT archived AND sender_id = $1
		ORDER BY created_at, id
	`
	return r.selectMatches(ctx, query, senderID)
}

func (r *matchRepository) selectMatches(ctx context.Context, query string, args ...interface{}) ([]*domain.Match, error) {
	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	matches := make([]*domain.Match, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

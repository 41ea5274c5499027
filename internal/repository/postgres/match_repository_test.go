package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var (
	created = time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)

	matchColumnNames = []string{
		"id", "kind", "sender_id", "receiver_id", "customer_id", "participants", "items", "deliveries",
		"state", "events", "meeting_location", "meeting_date", "version", "archived", "created_at", "updated_at",
	}
)

func userMatchRow(id string) []driver.Value {
	return []driver.Value{
		id, "user-match", "s1", "r1", nil, []byte("{r1}"),
		[]byte(`[{"itemId":"i1","receiverId":"r1","receivedBlid":"AAAA1111"},{"itemId":"i2"}]`),
		[]byte(`[]`), "partly-matched",
		[]byte(`[{"type":"created","time":"2026-05-01T09:00:00Z"},{"type":"partly-matched","time":"2026-05-01T10:00:00Z"}]`),
		"Hall", created, 3, false, created, created,
	}
}

func TestMatchRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM matches WHERE id = $1")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(matchColumnNames).AddRow(userMatchRow("m1")...))

	m, err := repo.GetByID(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, domain.MatchKindUser, m.Kind)
	assert.Equal(t, "s1", *m.SenderID)
	assert.Nil(t, m.CustomerID)
	assert.Equal(t, []string{"r1"}, m.Participants)
	require.Len(t, m.Items, 2)
	assert.Equal(t, "r1", *m.Items[0].ReceiverID)
	assert.Nil(t, m.Items[1].ReceiverID)
	assert.Equal(t, domain.MatchStatePartlyMatched, m.State)
	assert.Len(t, m.Events, 2)
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, created, *m.MeetingInfo.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM matches WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestMatchRepository_CreateMany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := created
	matches := []*domain.Match{
		domain.NewMatchFromCandidate("m1", domain.CandidateWithMeeting{
			Candidate:   domain.NewUserCandidate("s1", "r1", []string{"i1"}),
			MeetingInfo: domain.MeetingInfo{Location: "Hall", Date: &date},
		}, created),
		domain.NewMatchFromCandidate("m2", domain.CandidateWithMeeting{
			Candidate:   domain.NewStandCandidate("u1", []string{"i2"}, nil),
			MeetingInfo: domain.MeetingInfo{Location: "Stand"},
		}, created),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs("m1", "user-match", "s1", "r1", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"created", sqlmock.AnyArg(), "Hall", created, 0, false, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs("m2", "stand-match", nil, nil, "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"created", sqlmock.AnyArg(), "Stand", nil, 0, false, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateMany(context.Background(), matches))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_CreateManyRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	m := domain.NewMatchFromCandidate("m1", domain.CandidateWithMeeting{
		Candidate:   domain.NewStandCandidate("u1", []string{"i2"}, nil),
		MeetingInfo: domain.MeetingInfo{Location: "Stand"},
	}, created)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []*domain.Match{m})
	assert.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_UpdateBumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	m := &domain.Match{ID: "m1", State: domain.MatchStateFullyMatched, Version: 2, UpdatedAt: created}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches")).
		WithArgs(sqlmock.AnyArg(), []byte("[]"), []byte("[]"), "fully-matched", []byte("[]"),
			"", nil, false, created, "m1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), m))
	assert.Equal(t, 3, m.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_UpdateVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	m := &domain.Match{ID: "m1", Version: 1}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Update(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrMatchVersionConflict)
	assert.Equal(t, 1, m.Version)
}

func TestMatchRepository_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.Update(context.Background(), &domain.Match{ID: "gone"})
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestMatchRepository_GetUserMatchesByReceiver(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("kind = 'user-match' AND NOT archived AND receiver_id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(matchColumnNames).
			AddRow(userMatchRow("m1")...).
			AddRow(userMatchRow("m2")...))

	matches, err := repo.GetUserMatchesByReceiver(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, "m2", matches[1].ID)
}

func TestMatchRepository_GetAllForUserEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("sender_id = $1 OR receiver_id = $1 OR customer_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	matches, err := repo.GetAllForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"voyago/internal/domain"
	"voyago/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
// Preferences and the generated itinerary are stored as JSONB payloads.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip record.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, user_id, preferences, itinerary, status, generation_source, generation_model, generation_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	prefs, err := json.Marshal(trip.Preferences)
	if err != nil {
		return err
	}

	var itinerary []byte
	if trip.Itinerary != nil {
		itinerary, err = json.Marshal(trip.Itinerary)
		if err != nil {
			return err
		}
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		prefs,
		nullBytes(itinerary),
		trip.Status,
		nullString(string(trip.GenerationSource)),
		nullString(trip.GenerationModel),
		trip.GenerationMs,
		trip.CreatedAt,
		trip.UpdatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `
		SELECT id, user_id, preferences, itinerary, status, generation_source, generation_model, generation_ms, created_at, updated_at
		FROM trips WHERE id = $1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetByUserID retrieves a user's trips, newest first.
func (r *TripRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Trip, error) {
	query := `
		SELECT id, user_id, preferences, itinerary, status, generation_source, generation_model, generation_ms, created_at, updated_at
		FROM trips WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// MarkGenerated writes the itinerary payload, generation metadata, and
// generated status. Returns ErrNotFound when the trip does not exist.
func (r *TripRepository) MarkGenerated(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET preferences = $1, itinerary = $2, status = $3, generation_source = $4, generation_model = $5, generation_ms = $6, updated_at = $7
		WHERE id = $8
	`

	prefs, err := json.Marshal(trip.Preferences)
	if err != nil {
		return err
	}

	itinerary, err := json.Marshal(trip.Itinerary)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, query,
		prefs,
		itinerary,
		trip.Status,
		string(trip.GenerationSource),
		trip.GenerationModel,
		trip.GenerationMs,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var prefs []byte
	var itinerary []byte
	var source sql.NullString
	var model sql.NullString

	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&prefs,
		&itinerary,
		&trip.Status,
		&source,
		&model,
		&trip.GenerationMs,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(prefs, &trip.Preferences); err != nil {
		return nil, err
	}

	if len(itinerary) > 0 {
		trip.Itinerary = &domain.Itinerary{}
		if err := json.Unmarshal(itinerary, trip.Itinerary); err != nil {
			return nil, err
		}
	}

	if source.Valid {
		trip.GenerationSource = domain.GenerationSource(source.String)
	}
	if model.Valid {
		trip.GenerationModel = model.String
	}

	return &trip, nil
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)

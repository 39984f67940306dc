package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"placechat/internal/models"
)

var ErrPlaceNotFound = errors.New("place not found")

// PlaceFilter narrows ListPlaces.
type PlaceFilter struct {
	Category string
	Limit    int
	Offset   int
}

// PlaceRepository abstracts place persistence.
type PlaceRepository interface {
	ListPlaces(ctx context.Context, filter PlaceFilter) ([]models.Place, error)
	CreatePlace(ctx context.Context, place models.Place) (models.Place, error)
	GetPlace(ctx context.Context, placeID string) (models.Place, error)
	UpdatePlace(ctx context.Context, placeID string, update models.PlaceUpdate) (models.Place, error)
	DeletePlace(ctx context.Context, placeID string) error
}

// PlaceRepo is a sqlx implementation of PlaceRepository.
type PlaceRepo struct {
	db *sqlx.DB
}

// NewPlaceRepo constructs a PlaceRepo.
func NewPlaceRepo(db *sqlx.DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

const placeColumns = `id, name, address, latitude, longitude, category, description, total_seats, wifi_available, power_outlets, created_by, created_at, updated_at`

// ListPlaces returns places newest first.
func (r *PlaceRepo) ListPlaces(ctx context.Context, filter PlaceFilter) ([]models.Place, error) {
	var places []models.Place
	var err error
	if filter.Category != "" {
		err = r.db.SelectContext(ctx, &places, `SELECT `+placeColumns+` FROM places WHERE category=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			filter.Category, filter.Limit, filter.Offset)
	} else {
		err = r.db.SelectContext(ctx, &places, `SELECT `+placeColumns+` FROM places ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset)
	}
	return places, err
}

// CreatePlace inserts a place.
func (r *PlaceRepo) CreatePlace(ctx context.Context, place models.Place) (models.Place, error) {
	if place.ID == "" {
		place.ID = uuid.NewString()
	}
	var created models.Place
	err := r.db.QueryRowxContext(ctx, `INSERT INTO places (id, name, address, latitude, longitude, category, description, total_seats, wifi_available, power_outlets, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+placeColumns,
		place.ID, place.Name, place.Address, place.Latitude, place.Longitude, place.Category, place.Description,
		place.TotalSeats, place.WifiAvailable, place.PowerOutlets, place.CreatedBy).
		StructScan(&created)
	return created, err
}

// GetPlace fetches a place by id.
func (r *PlaceRepo) GetPlace(ctx context.Context, placeID string) (models.Place, error) {
	var place models.Place
	err := r.db.GetContext(ctx, &place, `SELECT `+placeColumns+` FROM places WHERE id=$1`, placeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, ErrPlaceNotFound
	}
	return place, err
}

// UpdatePlace applies the non-nil fields of update.
func (r *PlaceRepo) UpdatePlace(ctx context.Context, placeID string, update models.PlaceUpdate) (models.Place, error) {
	var place models.Place
	err := r.db.QueryRowxContext(ctx, `UPDATE places SET
            name = COALESCE($2, name),
            address = COALESCE($3, address),
            latitude = COALESCE($4, latitude),
            longitude = COALESCE($5, longitude),
            category = COALESCE($6, category),
            description = COALESCE($7, description),
            total_seats = COALESCE($8, total_seats),
            wifi_available = COALESCE($9, wifi_available),
            power_outlets = COALESCE($10, power_outlets),
            updated_at = NOW()
        WHERE id=$1
        RETURNING `+placeColumns,
		placeID, update.Name, update.Address, update.Latitude, update.Longitude, update.Category, update.Description,
		update.TotalSeats, update.WifiAvailable, update.PowerOutlets).
		StructScan(&place)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, ErrPlaceNotFound
	}
	return place, err
}

// DeletePlace removes a place and, through cascades, its rooms.
func (r *PlaceRepo) DeletePlace(ctx context.Context, placeID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id=$1`, placeID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

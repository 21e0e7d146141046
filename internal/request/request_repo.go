package request

import (
	"context"
	"database/sql"

	requesterrors "go-travel-desk/internal/request/errors"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *TravelRequest) error
	FindAll(ctx context.Context) ([]TravelRequest, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]TravelRequest, error)
	FindByID(ctx context.Context, id string) (*TravelRequest, error)
	Update(ctx context.Context, r *TravelRequest) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *TravelRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindAll(ctx context.Context) ([]TravelRequest, error) {
	var requests []TravelRequest
	err := r.db.WithContext(ctx).
		Order("submitted_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]TravelRequest, error) {
	var requests []TravelRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("submitted_date DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*TravelRequest, error) {
	var req TravelRequest
	err := r.db.WithContext(ctx).
		First(&req, "id = ?", id).Error
	return &req, err
}

// Update writes the full record guarded by its version: the row must
// still carry the version the record was loaded with, and the write bumps
// it. Zero rows affected means a concurrent writer got there first.
func (r *repository) Update(ctx context.Context, req *TravelRequest) error {
	loadedVersion := req.Version
	req.Version = loadedVersion + 1

	res := r.db.WithContext(ctx).
		Model(&TravelRequest{}).
		Where("id = ? AND version = ?", req.ID, loadedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(req)
	if res.Error != nil {
		req.Version = loadedVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		req.Version = loadedVersion
		return requesterrors.ErrVersionConflict
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Delete(&TravelRequest{}, "id = ?", id).Error
}

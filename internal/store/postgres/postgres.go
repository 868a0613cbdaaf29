// Package postgres implements the record store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New expects a connection opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() domain.UserRepository { return userRepo{s.db} }
func (s *Store) Departments() department.Repository { return departmentRepo{s.db} }
func (s *Store) Doctors() staff.DoctorRepository { return doctorRepo{s.db} }
func (s *Store) Nurses() staff.NurseRepository { return nurseRepo{s.db} }
func (s *Store) Pharmacists() staff.PharmacistRepository { return pharmacistRepo{s.db} }
func (s *Store) Patients() patient.Repository { return patientRepo{s.db} }
func (s *Store) Appointments() appointment.Repository { return appointmentRepo{s.db} }
func (s *Store) Tokens() token.Repository { return tokenRepo{s.db} }
func (s *Store) Prescriptions() prescription.Repository { return prescriptionRepo{s.db} }
func (s *Store) Drugs() drug.Repository { return drugRepo{s.db} }
func (s *Store) Theatres() theatre.TheatreRepository { return theatreRepo{s.db} }
func (s *Store) Surgeries() theatre.SurgeryRepository { return surgeryRepo{s.db} }
func (s *Store) Alerts() alert.Repository { return alertRepo{s.db} }
func (s *Store) AuditLogs() domain.AuditLogRepository { return auditLogRepo{s.db} }

// InTx maps onto a SQL transaction; nested calls become savepoints.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func create[T any](ctx context.Context, db *gorm.DB, v *T, duplicate error) error {
	return insertErr(db.WithContext(ctx).Create(v).Error, v, duplicate)
}

func first[T any](db *gorm.DB, notFound error) (*T, error) {
	var v T
	if err := loadErr(db.First(&v).Error, v, notFound); err != nil {
		return nil, err
	}
	return &v, nil
}

// insertErr maps a unique violation onto duplicate when one is given.
func insertErr(err error, v any, duplicate error) error {
	if err == nil {
		return nil
	}
	if duplicate != nil && isUniqueViolation(err) {
		return duplicate
	}
	return fmt.Errorf("inserting %T: %w", v, err)
}

func loadErr(err error, v any, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("loading %T: %w", v, err)
}

const uniqueViolation = "23505"

// isUniqueViolation also accepts the raw driver error for connections
// opened without TranslateError.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func getByID[T any](ctx context.Context, db *gorm.DB, id int64, notFound error) (*T, error) {
	return first[T](db.WithContext(ctx).Where("id = ?", id), notFound)
}

func findAll[T any](db *gorm.DB) ([]*T, error) {
	var out []*T
	if err := db.Order("id").Find(&out).Error; err != nil {
		var zero T
		return nil, fmt.Errorf("listing %T: %w", zero, err)
	}
	return out, nil
}

// patch locks the row, merges the non-nil patch fields and writes it back.
func patch[T any](ctx context.Context, db *gorm.DB, id int64, notFound error, apply func(*T)) (*T, error) {
	var out *T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := first[T](tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id), notFound)
		if err != nil {
			return err
		}
		apply(v)
		if err := tx.Save(v).Error; err != nil {
			return fmt.Errorf("updating %T: %w", v, err)
		}
		out = v
		return nil
	})
	return out, err
}

// Package registry manages the customers and bottles of the workshop.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/parse"
	"wartungsmanager-backend/internal/workflow"
)

// DefaultInspectionIntervalYears is used when an inspection does not name
// its interval.
const DefaultInspectionIntervalYears = 2

var (
	ErrNotFound     = workflow.ErrNotFound
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// Service implements the registry on a gorm database.
type Service struct {
	db  *gorm.DB
	now func() time.Time
	log *zap.Logger
}

// NewService creates a registry service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
		log: logging.Category(logging.NameRegistry, "service"),
	}
}

// ListOptions pages list queries. Query filters by name where supported.
type ListOptions struct {
	Query  string
	Limit  int
	Offset int
}

// CustomerInput holds the editable customer fields.
type CustomerInput struct {
	Name  string
	Phone string
	Email string
	Notes string
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	c := model.Customer{
		Name:  name,
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.TrimSpace(in.Email),
		Notes: in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.log.Info("Customer created", zap.Int64("customer_id", c.ID))
	return &c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "customer", id)
	}
	return &c, nil
}

func (s *Service) ListCustomers(ctx context.Context, opts ListOptions) ([]model.Customer, error) {
	q := paged(s.db.WithContext(ctx), opts).Order("name, id")
	if query := strings.TrimSpace(opts.Query); query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	var customers []model.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// BottleInput holds the fields accepted when registering a bottle. An
// empty InternalNumber is generated from the row id.
type BottleInput struct {
	InternalNumber    string
	ExternalNumber    string
	Barcode           string
	BarcodeType       string
	SizeLiters        float64
	MaxPressure       int
	WeightKg          float64
	ValveType         string
	Manufacturer      string
	ManufacturedAt    *time.Time
	InspectionDate    *time.Time
	NextInspectionDue *time.Time
	CustomerID        *int64
}

func (s *Service) CreateBottle(ctx context.Context, in BottleInput) (*model.Bottle, error) {
	if in.SizeLiters < 0 || in.WeightKg < 0 {
		return nil, fmt.Errorf("%w: size and weight must not be negative", ErrInvalidInput)
	}
	if in.MaxPressure < 0 || in.MaxPressure > workflow.MaxPressure {
		return nil, fmt.Errorf("%w: max pressure must be within 0..%d bar", ErrInvalidInput, workflow.MaxPressure)
	}

	b := model.Bottle{
		ExternalNumber:    strings.TrimSpace(in.ExternalNumber),
		SizeLiters:        in.SizeLiters,
		MaxPressure:       in.MaxPressure,
		WeightKg:          in.WeightKg,
		ValveType:         strings.TrimSpace(in.ValveType),
		Manufacturer:      strings.TrimSpace(in.Manufacturer),
		ManufacturedAt:    utc(in.ManufacturedAt),
		InspectionDate:    utc(in.InspectionDate),
		NextInspectionDue: utc(in.NextInspectionDue),
		Active:            true,
		CustomerID:        in.CustomerID,
	}
	if b.InspectionDate != nil && b.NextInspectionDue == nil {
		due := b.InspectionDate.AddDate(DefaultInspectionIntervalYears, 0, 0)
		b.NextInspectionDue = &due
	}

	if strings.TrimSpace(in.Barcode) != "" {
		code, err := parse.NormalizeBarcode(in.Barcode, in.BarcodeType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		b.Barcode, b.BarcodeType = code.Value, code.Type
	}

	number := ""
	if strings.TrimSpace(in.InternalNumber) != "" {
		number = parse.NormalizeInternalNumber(in.InternalNumber)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if b.CustomerID != nil {
			var count int64
			if err := tx.Model(&model.Customer{}).Where("id = ?", *b.CustomerID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check customer: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("%w: customer %d does not exist", ErrInvalidInput, *b.CustomerID)
			}
		}
		if number != "" {
			if err := ensureUnused(tx, "internal_number", number); err != nil {
				return err
			}
		}
		if b.Barcode != "" {
			if err := ensureUnused(tx, "barcode", b.Barcode); err != nil {
				return err
			}
		}

		b.InternalNumber = number
		if number == "" {
			b.InternalNumber = "pending-" + uuid.NewString()
		}
		if err := tx.Create(&b).Error; err != nil {
			return translate(err, "bottle", 0)
		}
		if number == "" {
			generated, err := nextInternalNumber(tx, b.ID)
			if err != nil {
				return err
			}
			b.InternalNumber = generated
			if err := tx.Model(&b).Update("internal_number", b.InternalNumber).Error; err != nil {
				return translate(err, "bottle", b.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Bottle registered",
		zap.Int64("bottle_id", b.ID),
		zap.String("internal_number", b.InternalNumber),
		zap.String("barcode_type", b.BarcodeType))
	return &b, nil
}

// nextInternalNumber derives a number from the row id, skipping numbers
// that were entered by hand in the same scheme.
func nextInternalNumber(tx *gorm.DB, seq int64) (string, error) {
	for {
		candidate := parse.FormatInternalNumber(seq)
		var count int64
		if err := tx.Model(&model.Bottle{}).Where("internal_number = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check internal number: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		seq++
	}
}

func (s *Service) GetBottle(ctx context.Context, id int64) (*model.Bottle, error) {
	var b model.Bottle
	if err := s.db.WithContext(ctx).Preload("Customer").First(&b, id).Error; err != nil {
		return nil, translate(err, "bottle", id)
	}
	return &b, nil
}

// LookupBottle finds a bottle by scanned barcode, falling back to the
// internal number for hand-typed input.
func (s *Service) LookupBottle(ctx context.Context, code string) (*model.Bottle, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: barcode is required", ErrInvalidInput)
	}

	var rows []model.Bottle
	if normalized, err := parse.NormalizeBarcode(code, ""); err == nil {
		if err := s.bottleQuery(ctx).Where("barcode = ?", normalized.Value).Limit(1).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to look up barcode: %w", err)
		}
	}
	if len(rows) == 0 {
		if err := s.bottleQuery(ctx).Where("internal_number = ?", parse.NormalizeInternalNumber(code)).Limit(1).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to look up internal number: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("bottle with code %q: %w", code, ErrNotFound)
	}
	return &rows[0], nil
}

// bottleQuery starts a new statement per lookup.
func (s *Service) bottleQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Customer")
}

// BottleFilter narrows ListBottles.
type BottleFilter struct {
	Active     *bool
	CustomerID int64
	ListOptions
}

func (s *Service) ListBottles(ctx context.Context, f BottleFilter) ([]model.Bottle, error) {
	q := paged(s.db.WithContext(ctx), f.ListOptions).Order("id")
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(internal_number) LIKE ? OR LOWER(external_number) LIKE ?", pattern, pattern)
	}
	var bottles []model.Bottle
	if err := q.Find(&bottles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bottles: %w", err)
	}
	return bottles, nil
}

// DeactivateBottle retires a bottle. Deactivating twice is not an error.
func (s *Service) DeactivateBottle(ctx context.Context, id int64) (*model.Bottle, error) {
	var b model.Bottle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			return translate(err, "bottle", id)
		}
		if !b.Active {
			return nil
		}
		b.Active = false
		return tx.Model(&b).Update("active", false).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Bottle deactivated", zap.Int64("bottle_id", id))
	return &b, nil
}

// InspectionInput records a completed periodic inspection.
type InspectionInput struct {
	Date time.Time
	// IntervalYears defaults to DefaultInspectionIntervalYears.
	IntervalYears int
	Protocol      string
}

// RecordInspection stores the inspection, computes the next due date and
// re-arms the inspection reminder.
func (s *Service) RecordInspection(ctx context.Context, id int64, in InspectionInput) (*model.Bottle, error) {
	if in.IntervalYears < 0 || in.IntervalYears > 10 {
		return nil, fmt.Errorf("%w: interval must be within 1..10 years", ErrInvalidInput)
	}
	years := in.IntervalYears
	if years == 0 {
		years = DefaultInspectionIntervalYears
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	date = date.UTC()
	due := date.AddDate(years, 0, 0)

	var b model.Bottle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			return translate(err, "bottle", id)
		}
		b.InspectionDate = &date
		b.NextInspectionDue = &due
		b.InspectionProtocol = in.Protocol
		b.InspectionNotified = false
		return tx.Model(&b).Updates(map[string]any{
			"inspection_date":     date,
			"next_inspection_due": due,
			"inspection_protocol": in.Protocol,
			"inspection_notified": false,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Inspection recorded",
		zap.Int64("bottle_id", id),
		zap.Time("inspection_date", date),
		zap.Time("next_inspection_due", due))
	return &b, nil
}

func ensureUnused(tx *gorm.DB, column, value string) error {
	var count int64
	if err := tx.Model(&model.Bottle{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", column, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: bottle with %s %q", ErrDuplicate, column, value)
	}
	return nil
}

func paged(db *gorm.DB, opts ListOptions) *gorm.DB {
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := db.Limit(limit)
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}

func translate(err error, kind string, id int64) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", ErrDuplicate, kind)
	}
	return fmt.Errorf("%s %d: %w", kind, id, err)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Package api exposes the workshop backend over HTTP/JSON for the touch UI.
package api

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks . Workflow,Registry

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wartungsmanager-backend/internal/logging"
	"wartungsmanager-backend/internal/model"
	"wartungsmanager-backend/internal/registry"
	"wartungsmanager-backend/internal/workflow"
)

// Workflow is the bottle workflow as used by the handlers.
type Workflow interface {
	AcceptBottle(ctx context.Context, p workflow.AcceptParams) (*workflow.Entry, error)
	StartFilling(ctx context.Context, entryID int64, operator, gasMixture string) (*workflow.Entry, error)
	CompleteFilling(ctx context.Context, entryID int64, achievedPressure int, fillEnd time.Time) (*workflow.Entry, error)
	CancelEntry(ctx context.Context, entryID int64, reason string) (*workflow.Entry, error)
	StartCompressorSession(ctx context.Context, operator string) (*workflow.Session, error)
	StopCompressorSession(ctx context.Context, reason string) (*workflow.Session, error)
	ResetCompressorSession(ctx context.Context, secret, reason string) (*workflow.ResetResult, error)
	GetEntry(ctx context.Context, entryID int64) (*workflow.Entry, error)
	ListEntries(ctx context.Context, filter workflow.EntryFilter) ([]workflow.Entry, error)
	ActiveSession(ctx context.Context) (*workflow.Session, error)
	ListSessions(ctx context.Context, limit int) ([]workflow.Session, error)
}

// Registry is the customer and bottle registry as used by the handlers.
type Registry interface {
	CreateCustomer(ctx context.Context, in registry.CustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	ListCustomers(ctx context.Context, opts registry.ListOptions) ([]model.Customer, error)
	CreateBottle(ctx context.Context, in registry.BottleInput) (*model.Bottle, error)
	GetBottle(ctx context.Context, id int64) (*model.Bottle, error)
	LookupBottle(ctx context.Context, code string) (*model.Bottle, error)
	ListBottles(ctx context.Context, f registry.BottleFilter) ([]model.Bottle, error)
	DeactivateBottle(ctx context.Context, id int64) (*model.Bottle, error)
	RecordInspection(ctx context.Context, id int64, in registry.InspectionInput) (*model.Bottle, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	workflow Workflow
	registry Registry
	db       *gorm.DB
	webpush  *webpush.Options
	log      *zap.Logger
}

// NewHandler creates a new API handler. db backs the push subscriptions and
// the health check.
func NewHandler(wf Workflow, reg Registry, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		workflow: wf,
		registry: reg,
		db:       db,
		webpush:  webpushOptions,
		log:      logging.Category(logging.NameAPI, "handler"),
	}
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/expiry-tracker/internal/expiry"
	"github.com/zombor/expiry-tracker/internal/scanning"
)

// MaxImages is the largest batch accepted by a single scan
const MaxImages = 3

var (
	// ErrNotFound is returned when a unit, product or settings record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidAlertMonths is returned for an alert window outside 1..12 months
	ErrInvalidAlertMonths = fmt.Errorf("expiration alert months must be between %d and %d", expiry.MinAlertMonths, expiry.MaxAlertMonths)
	// ErrInvalidUnit is returned when a unit or product is missing required fields
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrTooManyImages is returned when a scan carries more than MaxImages images
	ErrTooManyImages = fmt.Errorf("at most %d images per scan", MaxImages)
)

// IDGenerator generates unique IDs for units
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanOutcome is an aggregated scan plus the status of its expiration date
type ScanOutcome struct {
	expiry.Result
	// Status is empty when no expiration date was found
	Status expiry.Status
}

// UnitInput is a unit as confirmed by the operator
type UnitInput struct {
	ProductName    string      `json:"productName"`
	ProductCode    string      `json:"productCode"`
	ExpirationDate expiry.Date `json:"expirationDate"`
}

// Service handles scanning and inventory operations
type Service struct {
	db                 DB
	detector           scanning.Detector
	announcer          Announcer
	idGenerator        IDGenerator
	timeSource         TimeSource
	defaultAlertMonths int
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, detector scanning.Detector, announcer Announcer) *Service {
	return NewServiceWithDeps(db, detector, announcer, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, detector scanning.Detector, announcer Announcer, idGen IDGenerator, timeSrc TimeSource) *Service {
	if announcer == nil {
		announcer = LogAnnouncer{}
	}
	return &Service{
		db:                 db,
		detector:           detector,
		announcer:          announcer,
		idGenerator:        idGen,
		timeSource:         timeSrc,
		defaultAlertMonths: expiry.DefaultAlertMonths,
	}
}

// SetDefaultAlertMonths changes the window used until settings are saved
func (s *Service) SetDefaultAlertMonths(months int) error {
	if !expiry.ValidAlertMonths(months) {
		return ErrInvalidAlertMonths
	}
	s.defaultAlertMonths = months
	return nil
}

// Scan detects text in a batch of 1 to 3 photos of the same package and
// extracts its product code and expiration date
func (s *Service) Scan(ctx context.Context, images []scanning.Image) (*ScanOutcome, error) {
	if len(images) == 0 {
		return nil, expiry.ErrNoImages
	}
	if len(images) > MaxImages {
		return nil, ErrTooManyImages
	}

	blocks := scanning.DetectAll(ctx, s.detector, images)
	result := expiry.Aggregate(blocks)

	for _, b := range result.Blocks {
		slog.Debug("Scanned image",
			"index", b.Index,
			"product_code", b.Extraction.ProductCode,
			"code_kind", b.Extraction.CodeKind,
			"date_text", b.Extraction.DateText,
			"date_kind", b.Extraction.DateKind,
			"error", b.Err,
		)
	}

	outcome := &ScanOutcome{Result: result}
	if !result.ExpirationDate.IsZero() {
		outcome.Status = expiry.Classify(result.ExpirationDate, s.alertMonths(), s.timeSource.Now())
	}

	slog.Info("Scan complete",
		"images", len(images),
		"success", result.Success,
		"product_code", result.ProductCode,
		"expiration_date", result.ExpirationDate,
		"status", outcome.Status,
	)

	return outcome, nil
}

// Settings returns the saved settings or the defaults
func (s *Service) Settings() (*Settings, error) {
	settings, err := s.db.GetSettings()
	if errors.Is(err, ErrNotFound) {
		return &Settings{ExpirationAlertMonths: s.defaultAlertMonths}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings stores a new alert window
func (s *Service) UpdateSettings(alertMonths int) (*Settings, error) {
	if !expiry.ValidAlertMonths(alertMonths) {
		return nil, ErrInvalidAlertMonths
	}

	settings := &Settings{
		ExpirationAlertMonths: alertMonths,
		UpdatedAt:             s.timeSource.Now(),
	}
	if err := s.db.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	return settings, nil
}

// alertMonths falls back to the default when settings can't be read
func (s *Service) alertMonths() int {
	settings, err := s.Settings()
	if err != nil {
		slog.Warn("Failed to read settings, using default alert window", "error", err)
		return s.defaultAlertMonths
	}
	return settings.ExpirationAlertMonths
}

// RecordUnit saves a confirmed unit and announces the running count for its product
func (s *Service) RecordUnit(input UnitInput) (*Unit, error) {
	name := strings.TrimSpace(input.ProductName)
	id := productID(name)
	if id == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidUnit)
	}
	if input.ExpirationDate.IsZero() {
		return nil, fmt.Errorf("%w: expiration date is required", ErrInvalidUnit)
	}

	now := s.timeSource.Now()
	unit := &Unit{
		ID:             s.idGenerator.Generate(),
		ProductName:    name,
		ProductID:      id,
		ProductCode:    strings.TrimSpace(input.ProductCode),
		ExpirationDate: input.ExpirationDate,
		CreatedAt:      now,
	}
	unit.Status = expiry.Classify(unit.ExpirationDate, s.alertMonths(), now)

	if err := s.db.SaveUnit(unit); err != nil {
		return nil, fmt.Errorf("saving unit: %w", err)
	}

	units, err := s.unitsOf(id)
	if err != nil {
		slog.Warn("Failed to count units", "product_id", id, "error", err)
	}
	s.announcer.UnitRecorded(unit, len(units))

	return unit, nil
}

// GetUnit retrieves a unit by ID with its current status
func (s *Service) GetUnit(id string) (*Unit, error) {
	unit, err := s.db.GetUnit(id)
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}
	s.classifyUnits([]*Unit{unit})
	return unit, nil
}

// ListUnits returns units ordered by expiration, optionally only those of one product
func (s *Service) ListUnits(productName string) ([]*Unit, error) {
	var units []*Unit
	var err error
	if strings.TrimSpace(productName) == "" {
		units, err = s.db.ListUnits()
	} else {
		units, err = s.unitsOf(productID(productName))
	}
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}

	s.classifyUnits(units)
	sort.SliceStable(units, func(i, j int) bool {
		if c := units[i].ExpirationDate.Compare(units[j].ExpirationDate); c != 0 {
			return c < 0
		}
		return units[i].CreatedAt.Before(units[j].CreatedAt)
	})
	return units, nil
}

// DeleteUnit removes a unit
func (s *Service) DeleteUnit(id string) error {
	if _, err := s.db.GetUnit(id); err != nil {
		return fmt.Errorf("getting unit for deletion: %w", err)
	}
	if err := s.db.DeleteUnit(id); err != nil {
		return fmt.Errorf("deleting unit from database: %w", err)
	}
	return nil
}

// FinalizeProduct closes a counting session and upserts the product summary
func (s *Service) FinalizeProduct(productName string) (*ProductSummary, error) {
	name := strings.TrimSpace(productName)
	id := productID(name)
	if id == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidUnit)
	}

	units, err := s.unitsOf(id)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no units recorded for %q: %w", name, ErrNotFound)
	}

	now := s.timeSource.Now()
	summary := &ProductSummary{
		ProductID:     id,
		ProductName:   name,
		TotalQuantity: len(units),
		LastUpdated:   now,
	}
	for _, u := range units {
		if summary.EarliestExpiration.IsZero() || u.ExpirationDate.Before(summary.EarliestExpiration) {
			summary.EarliestExpiration = u.ExpirationDate
		}
	}
	summary.Status = expiry.Classify(summary.EarliestExpiration, s.alertMonths(), now)

	if err := s.db.SaveProduct(summary); err != nil {
		return nil, fmt.Errorf("saving product summary: %w", err)
	}

	s.announcer.ProductFinalized(summary)
	return summary, nil
}

// ListProducts returns the product summaries ordered by name
func (s *Service) ListProducts() ([]*ProductSummary, error) {
	products, err := s.db.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	months, today := s.alertMonths(), s.timeSource.Now()
	for _, p := range products {
		p.Status = expiry.Classify(p.EarliestExpiration, months, today)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ProductName < products[j].ProductName
	})
	return products, nil
}

// Dashboard counts units per status
func (s *Service) Dashboard() (*Dashboard, error) {
	units, err := s.db.ListUnits()
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	s.classifyUnits(units)

	dashboard := &Dashboard{Units: len(units)}
	products := make(map[string]struct{})
	for _, u := range units {
		products[u.ProductID] = struct{}{}
		switch u.Status {
		case expiry.StatusValid:
			dashboard.Valid++
		case expiry.StatusExpiringSoon:
			dashboard.ExpiringSoon++
		case expiry.StatusExpired:
			dashboard.Expired++
		}
	}
	dashboard.Products = len(products)
	return dashboard, nil
}

func (s *Service) unitsOf(productID string) ([]*Unit, error) {
	all, err := s.db.ListUnits()
	if err != nil {
		return nil, err
	}
	units := make([]*Unit, 0, len(all))
	for _, u := range all {
		if u.ProductID == productID {
			units = append(units, u)
		}
	}
	return units, nil
}

func (s *Service) classifyUnits(units []*Unit) {
	months, today := s.alertMonths(), s.timeSource.Now()
	for _, u := range units {
		u.Status = expiry.Classify(u.ExpirationDate, months, today)
	}
}

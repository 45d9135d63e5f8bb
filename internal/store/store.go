// Package store persists properties and their financial projections in
// SQLite. A property holds at most one projection, which is always replaced
// whole.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const timeLayout = time.RFC3339Nano

// ErrNotFound is returned when a property or projection does not exist.
var ErrNotFound = errors.New("not found")

// Property is a managed rental property.
type Property struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	City      string          `json:"city"`
	Mode      projection.Mode `json:"mode"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Projection is the stored projection of a property.
type Projection struct {
	PropertyID int64             `json:"propertyId"`
	Mode       projection.Mode   `json:"mode"`
	Input      projection.Input  `json:"input"`
	Output     projection.Output `json:"output"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Summary holds the headline figures of a stored projection at cent
// precision.
type Summary struct {
	PropertyID            int64           `json:"propertyId"`
	Mode                  projection.Mode `json:"mode"`
	PrincipalFinanced     decimal.Decimal `json:"principalFinanced"`
	MonthlyPayment        decimal.Decimal `json:"monthlyPayment"`
	TotalInterest         decimal.Decimal `json:"totalInterest"`
	CashFlowMonthly       decimal.Decimal `json:"cashFlowMonthly"`
	NetNetCashFlowAnnual  decimal.Decimal `json:"netNetCashFlowAnnual"`
	ReturnOnInvestmentPct decimal.Decimal `json:"returnOnInvestmentPercent"`
}

// StoredInput is the input a stored projection was computed from.
type StoredInput struct {
	PropertyID int64
	Input      projection.Input
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at %s: %w", path, err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database ready",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return s, nil
}

func (s *Store) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		s.logger.Debug(fmt.Sprintf("schema at version %d", version),
			zap.String("op", "store.migrate"),
			zap.Bool("dirty", dirty),
		)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProperty inserts a property and returns it with its id set.
func (s *Store) CreateProperty(ctx context.Context, name, city string, mode projection.Mode) (*Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: property name is required", projection.ErrInvalidInput)
	}
	if mode == "" {
		mode = projection.LongTermRental
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", projection.ErrInvalidInput, mode)
	}

	now := s.now().UTC()
	stamp := now.Format(timeLayout)
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (name, city, mode, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, strings.TrimSpace(city), string(mode), stamp, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read property id: %w", err)
	}
	return &Property{ID: id, Name: name, City: strings.TrimSpace(city), Mode: mode, CreatedAt: now, UpdatedAt: now}, nil
}

// GetProperty returns the property with the given id.
func (s *Store) GetProperty(ctx context.Context, id int64) (*Property, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, city, mode, created_at, updated_at FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return p, err
}

// ListProperties returns every property ordered by id.
func (s *Store) ListProperties(ctx context.Context) ([]Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, city, mode, created_at, updated_at FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// SetPropertyMode changes the investment mode of a property.
func (s *Store) SetPropertyMode(ctx context.Context, id int64, mode projection.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", projection.ErrInvalidInput, mode)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE properties SET mode = ?, updated_at = ? WHERE id = ?`,
		string(mode), s.now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update property %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertProjection stores out as the projection of the property, replacing
// any previous one whatever its mode, and switches the property to the
// projection's mode.
func (s *Store) UpsertProjection(ctx context.Context, propertyID int64, in projection.Input, out *projection.Output) error {
	if out == nil {
		return errors.New("refusing to store an empty projection")
	}
	inputJSON, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	stored := out.Clone()
	stored.Schedule = nil
	outputJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := s.now().UTC().Format(timeLayout)
	result, err := tx.ExecContext(ctx,
		`UPDATE properties SET mode = ?, updated_at = ? WHERE id = ?`,
		string(out.Mode), stamp, propertyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property %d: %w", propertyID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("property %d: %w", propertyID, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projections (
			property_id, mode, input_json, output_json,
			principal_financed, monthly_payment, total_interest,
			cash_flow_monthly, net_net_cash_flow_annual, roi_percent, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			mode = excluded.mode,
			input_json = excluded.input_json,
			output_json = excluded.output_json,
			principal_financed = excluded.principal_financed,
			monthly_payment = excluded.monthly_payment,
			total_interest = excluded.total_interest,
			cash_flow_monthly = excluded.cash_flow_monthly,
			net_net_cash_flow_annual = excluded.net_net_cash_flow_annual,
			roi_percent = excluded.roi_percent,
			updated_at = excluded.updated_at`,
		propertyID, string(out.Mode), string(inputJSON), string(outputJSON),
		cents(out.PrincipalFinanced), cents(out.MonthlyPayment), cents(out.TotalInterestOverTerm),
		cents(out.CashFlowMonthly), cents(out.NetNetCashFlowAnnual), cents(out.ReturnOnInvestmentPercent),
		stamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store projection for property %d: %w", propertyID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit projection for property %d: %w", propertyID, err)
	}

	s.logger.Debug(fmt.Sprintf("stored %s projection for property %d", out.Mode, propertyID),
		zap.String("op", "store.UpsertProjection"),
	)
	return nil
}

// GetProjection returns the stored projection of a property.
func (s *Store) GetProjection(ctx context.Context, propertyID int64) (*Projection, error) {
	var (
		p                     Projection
		mode, inJSON, outJSON string
		updated               string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT property_id, mode, input_json, output_json, updated_at FROM projections WHERE property_id = ?`,
		propertyID,
	).Scan(&p.PropertyID, &mode, &inJSON, &outJSON, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("projection for property %d: %w", propertyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projection for property %d: %w", propertyID, err)
	}

	p.Mode = projection.Mode(mode)
	if err := json.Unmarshal([]byte(inJSON), &p.Input); err != nil {
		return nil, fmt.Errorf("failed to decode stored input for property %d: %w", propertyID, err)
	}
	if err := json.Unmarshal([]byte(outJSON), &p.Output); err != nil {
		return nil, fmt.Errorf("failed to decode stored output for property %d: %w", propertyID, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp for property %d: %w", propertyID, err)
	}
	return &p, nil
}

// ListSummaries returns the headline figures of every stored projection.
func (s *Store) ListSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property_id, mode, principal_financed, monthly_payment, total_interest,
			cash_flow_monthly, net_net_cash_flow_annual, roi_percent
		FROM projections ORDER BY property_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projections: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary Summary
			mode    string
			raw     [6]string
		)
		if err := rows.Scan(&summary.PropertyID, &mode, &raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5]); err != nil {
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}
		summary.Mode = projection.Mode(mode)

		targets := []*decimal.Decimal{
			&summary.PrincipalFinanced, &summary.MonthlyPayment, &summary.TotalInterest,
			&summary.CashFlowMonthly, &summary.NetNetCashFlowAnnual, &summary.ReturnOnInvestmentPct,
		}
		for i, target := range targets {
			value, err := decimal.NewFromString(raw[i])
			if err != nil {
				return nil, fmt.Errorf("failed to parse stored amount %q: %w", raw[i], err)
			}
			*target = value
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// ListInputs returns the input of every stored projection.
func (s *Store) ListInputs(ctx context.Context) ([]StoredInput, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT property_id, input_json FROM projections ORDER BY property_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []StoredInput
	for rows.Next() {
		var (
			stored StoredInput
			raw    string
		)
		if err := rows.Scan(&stored.PropertyID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &stored.Input); err != nil {
			return nil, fmt.Errorf("failed to decode stored input for property %d: %w", stored.PropertyID, err)
		}
		inputs = append(inputs, stored)
	}
	return inputs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*Property, error) {
	var (
		p                Property
		mode             string
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.City, &mode, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	p.Mode = projection.Mode(mode)

	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of property %d: %w", p.ID, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of property %d: %w", p.ID, err)
	}
	return &p, nil
}

// cents renders an amount with exactly two decimals.
func cents(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

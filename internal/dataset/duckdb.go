package dataset

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/mbenes/groupfit/pkg/utility/fixed"
)

// CarrierSources names the three flat files merged into carrier
// observations.
type CarrierSources struct {
	TicketsPath        string
	FinancialPath      string
	SustainabilityPath string
}

// Store reads flat CSV inputs through an in-memory DuckDB connection,
// which handles type sniffing and the multi-table join in SQL.
type Store struct {
	dataSourceName string
	db             *sql.DB
	logger         *zap.Logger
}

func NewStore(dataSourceName string, logger *zap.Logger) *Store {
	return &Store{
		dataSourceName: dataSourceName,
		logger:         logger,
	}
}

func (s *Store) Connect() error {
	db, err := sql.Open("duckdb", s.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// LoadCarriers joins the ticket, financial and sustainability tables on
// (carrier, year, quarter) and returns the validated merged rows.
// Invalid rows are logged and skipped; zero rows is ErrNoRows.
func (s *Store) LoadCarriers(ctx context.Context, src CarrierSources) ([]CarrierObservation, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	query := `
		SELECT t.carrier, t.year, t.quarter,
		       t.fare, t.passengers,
		       f.op_revenue,
		       e.fuel_burn, e.co2_tonnes
		FROM read_csv_auto(?) t
		JOIN read_csv_auto(?) f
		  ON t.carrier = f.carrier AND t.year = f.year AND t.quarter = f.quarter
		JOIN read_csv_auto(?) e
		  ON t.carrier = e.carrier AND t.year = e.year AND t.quarter = e.quarter
		ORDER BY t.carrier, t.year, t.quarter`

	rows, err := s.db.QueryContext(ctx, query,
		src.TicketsPath, src.FinancialPath, src.SustainabilityPath)
	if err != nil {
		return nil, fmt.Errorf("error preparing query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var observations []CarrierObservation
	for rows.Next() {
		var (
			obs           CarrierObservation
			fare, revenue sql.NullFloat64
			passengers    sql.NullFloat64
			fuel, co2     sql.NullFloat64
		)
		if err := rows.Scan(&obs.Carrier, &obs.Year, &obs.Quarter,
			&fare, &passengers, &revenue, &fuel, &co2); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if !fare.Valid || !revenue.Valid {
			s.logger.Warn("row missing monetary column, skipped",
				zap.String("carrier", obs.Carrier),
				zap.Int("year", obs.Year),
				zap.Int("quarter", obs.Quarter))
			continue
		}
		obs.Fare = fixed.FromFloat64(fare.Float64)
		obs.Revenue = fixed.FromFloat64(revenue.Float64)
		obs.Passengers = passengers.Float64
		obs.FuelBurn = fuel.Float64
		obs.CO2Tonnes = co2.Float64

		if err := obs.validate(); err != nil {
			s.logger.Warn("invalid row skipped",
				zap.String("carrier", obs.Carrier),
				zap.Int("year", obs.Year),
				zap.Int("quarter", obs.Quarter),
				zap.Error(err))
			continue
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning rows: %w", err)
	}
	if len(observations) == 0 {
		return nil, ErrNoRows
	}
	return observations, nil
}

// LoadSurveillance reads the disease surveillance CSV: one row per
// (category, year) with twelve month count columns.
func (s *Store) LoadSurveillance(ctx context.Context, path string) ([]SurveillanceRow, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	query := `
		SELECT category, year,
		       "Jan", "Feb", "Mar", "Apr", "May", "Jun",
		       "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"
		FROM read_csv_auto(?)
		ORDER BY category, year`

	rows, err := s.db.QueryContext(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("error preparing query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var loaded []SurveillanceRow
	for rows.Next() {
		var (
			row    SurveillanceRow
			months [12]sql.NullFloat64
		)
		dest := make([]any, 0, 14)
		dest = append(dest, &row.Category, &row.Year)
		for i := range months {
			dest = append(dest, &months[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		incomplete := false
		for i, m := range months {
			if !m.Valid {
				incomplete = true
				break
			}
			row.Months[i] = m.Float64
		}
		if incomplete {
			s.logger.Warn("row with missing month counts skipped",
				zap.String("category", row.Category),
				zap.Int("year", row.Year))
			continue
		}
		if err := row.validate(); err != nil {
			s.logger.Warn("invalid row skipped",
				zap.String("category", row.Category),
				zap.Int("year", row.Year),
				zap.Error(err))
			continue
		}
		loaded = append(loaded, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning rows: %w", err)
	}
	if len(loaded) == 0 {
		return nil, ErrNoRows
	}
	return loaded, nil
}

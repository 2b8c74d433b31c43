package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/dto"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/sink"
)

// ErrUnknownLookup is returned for a lookup kind without a backing table.
var ErrUnknownLookup = errors.New("unknown lookup kind")

// DirectoryRepository describes the database destination.
type DirectoryRepository interface {
	resolver.Store
	sink.BusinessWriter
	sink.EventWriter
	ListBusinesses(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error)
	CountByCountry(ctx context.Context, country string) (CountryTotals, error)
}

// CountryTotals is the verification count for one country.
type CountryTotals struct {
	Country    string `json:"country"`
	Businesses int    `json:"businesses"`
	Events     int    `json:"events"`
}

// PGXDirectoryRepository implements DirectoryRepository using pgx.
type PGXDirectoryRepository struct {
	pool pgxPool
	mode sink.Mode
}

// NewPGXDirectoryRepository wires a pgx backed repository.
func NewPGXDirectoryRepository(pool *pgxpool.Pool, mode sink.Mode) *PGXDirectoryRepository {
	return &PGXDirectoryRepository{pool: pool, mode: mode}
}

func (r *PGXDirectoryRepository) Name() string { return "postgres" }

// FindLookup matches by exact name; cities also match their country.
func (r *PGXDirectoryRepository) FindLookup(ctx context.Context, kind entity.LookupKind, name, parentID string) (string, bool, error) {
	table := kind.Table()
	if table == "" {
		return "", false, fmt.Errorf("find %s: %w", kind, ErrUnknownLookup)
	}

	query := fmt.Sprintf(`SELECT id::text FROM %s WHERE name = $1`, table)
	args := []any{name}
	if kind == entity.KindCity && parentID != "" {
		query += ` AND country_id::text = $2`
		args = append(args, parentID)
	}
	query += ` LIMIT 1`

	var id string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query %s by name: %w", table, err)
	}
	return id, true, nil
}

// CreateLookup inserts a lookup row and returns its identifier. Countries are
// created with their name only.
func (r *PGXDirectoryRepository) CreateLookup(ctx context.Context, kind entity.LookupKind, row entity.LookupRow) (string, error) {
	var (
		query string
		args  []any
	)
	switch kind {
	case entity.KindCountry:
		query = `INSERT INTO countries (name) VALUES ($1) RETURNING id::text`
		args = []any{row.Name}
	case entity.KindCity:
		query = `
        INSERT INTO cities (name, slug, description, country_id)
        SELECT $1, $2, $3, co.id FROM countries co WHERE co.id::text = $4
        RETURNING id::text`
		args = []any{row.Name, row.Slug, stringOrNil(&row.Description), row.ParentID}
	case entity.KindCategory, entity.KindEventCategory:
		query = fmt.Sprintf(`INSERT INTO %s (name, slug, description) VALUES ($1, $2, $3) RETURNING id::text`, kind.Table())
		args = []any{row.Name, row.Slug, stringOrNil(&row.Description)}
	default:
		return "", fmt.Errorf("create %s: %w", kind, ErrUnknownLookup)
	}

	var id string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("insert %s %q: parent not found", kind.Table(), row.Name)
		}
		return "", fmt.Errorf("insert %s: %w", kind.Table(), err)
	}
	return id, nil
}

const insertBusinessSQL = `
        INSERT INTO businesses (
            name,
            description,
            address,
            city_id,
            country_id,
            phone,
            email,
            website,
            category_id,
            average_rating,
            is_verified,
            status,
            created_at
        )
        SELECT $1, $2, $3, ci.id, co.id, $6, $7, $8, cat.id, $10, $11, $12, COALESCE($13, NOW())
        FROM cities ci, countries co, categories cat
        WHERE ci.id::text = $4 AND co.id::text = $5 AND cat.id::text = $9
    `

const upsertBusinessClause = `
        ON CONFLICT (name, category_id) DO UPDATE SET
            description = EXCLUDED.description,
            address = EXCLUDED.address,
            city_id = EXCLUDED.city_id,
            country_id = EXCLUDED.country_id,
            phone = EXCLUDED.phone,
            email = EXCLUDED.email,
            website = EXCLUDED.website,
            average_rating = EXCLUDED.average_rating,
            is_verified = EXCLUDED.is_verified,
            status = EXCLUDED.status
        RETURNING xmax = 0`

// WriteBusiness inserts one business row, or upserts it on (name,
// category_id) in upsert mode.
func (r *PGXDirectoryRepository) WriteBusiness(ctx context.Context, row entity.BusinessRow) error {
	args := []any{
		row.Name,
		row.Description,
		row.Address,
		row.CityID,
		row.CountryID,
		stringOrNil(&row.Phone),
		stringOrNil(&row.Email),
		stringOrNil(row.Website),
		row.CategoryID,
		row.AverageRating,
		row.IsVerified,
		row.Status,
		row.CreatedAt,
	}
	if r.mode == sink.ModeUpsert {
		return r.upsert(ctx, "business", row.Name, insertBusinessSQL+upsertBusinessClause, args)
	}
	return r.insert(ctx, "business", row.Name, insertBusinessSQL, args)
}

const insertEventSQL = `
        INSERT INTO events (
            title,
            description,
            start_date,
            end_date,
            venue_name,
            venue_address,
            city_id,
            country_id,
            category,
            organizer_name,
            registration_url,
            event_image_url,
            tags,
            capacity,
            is_public,
            event_status,
            created_at
        )
        SELECT $1, $2, $3, $4, $5, $6, ci.id, co.id, $9, $10, $11, $12, $13, $14, $15, $16, COALESCE($17, NOW())
        FROM cities ci, countries co
        WHERE ci.id::text = $7 AND co.id::text = $8
    `

const upsertEventClause = `
        ON CONFLICT (title, start_date, city_id) DO UPDATE SET
            description = EXCLUDED.description,
            end_date = EXCLUDED.end_date,
            venue_name = EXCLUDED.venue_name,
            venue_address = EXCLUDED.venue_address,
            category = EXCLUDED.category,
            organizer_name = EXCLUDED.organizer_name,
            registration_url = EXCLUDED.registration_url,
            event_image_url = EXCLUDED.event_image_url,
            tags = EXCLUDED.tags,
            capacity = EXCLUDED.capacity
        RETURNING xmax = 0`

// WriteEvent inserts one event row, or upserts it on (title, start_date,
// city_id) in upsert mode.
func (r *PGXDirectoryRepository) WriteEvent(ctx context.Context, row entity.EventRow) error {
	args := []any{
		row.Title,
		row.Description,
		row.StartDate,
		row.EndDate,
		row.VenueName,
		row.VenueAddress,
		row.CityID,
		row.CountryID,
		row.Category,
		row.OrganizerName,
		stringOrNil(row.RegistrationURL),
		stringOrNil(row.EventImageURL),
		stringSliceOrEmpty(row.Tags),
		intOrNil(row.Capacity),
		row.IsPublic,
		row.EventStatus,
		row.CreatedAt,
	}
	if r.mode == sink.ModeUpsert {
		return r.upsert(ctx, "event", row.Title, insertEventSQL+upsertEventClause, args)
	}
	return r.insert(ctx, "event", row.Title, insertEventSQL, args)
}

func (r *PGXDirectoryRepository) insert(ctx context.Context, noun, label, query string, args []any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert %s %q: %w", noun, label, classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("insert %s %q: lookup ids did not resolve", noun, label)
	}
	return nil
}

func (r *PGXDirectoryRepository) upsert(ctx context.Context, noun, label, query string, args []any) error {
	var inserted bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&inserted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("upsert %s %q: lookup ids did not resolve", noun, label)
		}
		return fmt.Errorf("upsert %s %q: %w", noun, label, classify(err))
	}
	log.Debug().Str(noun, label).Bool("inserted", inserted).Msg("upserted row")
	return nil
}

// ListBusinesses returns stored businesses joined with their lookup names,
// best rated first.
func (r *PGXDirectoryRepository) ListBusinesses(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`
        SELECT
            b.id::text,
            b.name,
            cat.name,
            ci.name,
            co.name,
            b.address,
            b.phone,
            b.email,
            b.website,
            b.average_rating,
            b.is_verified,
            b.status,
            b.created_at
        FROM businesses b
        JOIN categories cat ON cat.id = b.category_id
        JOIN cities ci ON ci.id = b.city_id
        JOIN countries co ON co.id = b.country_id
    `)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(b.name ILIKE $%d OR b.address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(cat.name) = LOWER($%d)", idx))
		args = append(args, filter.Category)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(ci.name) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(co.name) = LOWER($%d)", idx))
		args = append(args, filter.Country)
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("b.average_rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY b.average_rating DESC NULLS LAST, b.name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// CountByCountry returns how many businesses and events reference country.
func (r *PGXDirectoryRepository) CountByCountry(ctx context.Context, country string) (CountryTotals, error) {
	totals := CountryTotals{Country: country}
	query := `
        SELECT
            (SELECT COUNT(*) FROM businesses b JOIN countries co ON co.id = b.country_id WHERE co.name = $1),
            (SELECT COUNT(*) FROM events e JOIN countries co ON co.id = e.country_id WHERE co.name = $1)
    `
	if err := r.pool.QueryRow(ctx, query, country).Scan(&totals.Businesses, &totals.Events); err != nil {
		return totals, fmt.Errorf("count rows for %s: %w", country, err)
	}
	return totals, nil
}

func scanListings(rows pgx.Rows) ([]entity.BusinessListing, error) {
	var listings []entity.BusinessListing
	for rows.Next() {
		var (
			b       entity.BusinessListing
			address sql.NullString
			phone   sql.NullString
			email   sql.NullString
			website sql.NullString
			rating  sql.NullFloat64
			status  sql.NullString
		)
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Category,
			&b.City,
			&b.Country,
			&address,
			&phone,
			&email,
			&website,
			&rating,
			&b.IsVerified,
			&status,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		b.Address = nullStringToPtr(address)
		b.Phone = nullStringToPtr(phone)
		b.Email = nullStringToPtr(email)
		b.Website = nullStringToPtr(website)
		if rating.Valid {
			val := rating.Float64
			b.Rating = &val
		}
		b.Status = status.String
		listings = append(listings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate businesses: %w", err)
	}
	return listings, nil
}

// transientCodes are SQLSTATE classes worth retrying: connection failures,
// serialization failures, deadlocks and operator intervention.
var transientCodes = []string{"08", "40001", "40P01", "57P"}

// pgError marks retryable database errors for the pipeline.
type pgError struct {
	err       error
	temporary bool
}

func (e *pgError) Error() string   { return e.err.Error() }
func (e *pgError) Unwrap() error   { return e.err }
func (e *pgError) Temporary() bool { return e.temporary }

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, code := range transientCodes {
			if strings.HasPrefix(pgErr.Code, code) {
				return &pgError{err: err, temporary: true}
			}
		}
		return &pgError{err: err}
	}
	return err
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

func intOrNil(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ DirectoryRepository = (*PGXDirectoryRepository)(nil)

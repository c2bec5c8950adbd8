package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/ihirwe/event-locator/internal/domain"
	_ "github.com/lib/pq"
)

const eventsTable = "events"

var eventColumns = []any{
	"id", "title", "description", "category", "country", "city", "venue",
	"longitude", "latitude", "start_time", "creator_id", "created_at",
	"updated_at", "enhanced_location", "enriched_at",
}

// PostgresStore implements EventStore on PostgreSQL. Proximity queries use
// the cube/earthdistance extensions, backed by a functional GiST index.
type PostgresStore struct {
	db     *sql.DB
	goqu   *goqu.Database
	logger *slog.Logger
}

// NewPostgresStore opens and pings a connection.
func NewPostgresStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{
		db:     db,
		goqu:   goqu.New("postgres", db),
		logger: logger,
	}, nil
}

// EnsureSchema creates the events table and its indexes: the earthdistance
// GiST index serving proximity queries and btree indexes on the city and
// country text fields.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS cube`,
		`CREATE EXTENSION IF NOT EXISTS earthdistance`,
		`CREATE TABLE IF NOT EXISTS events (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			category          TEXT NOT NULL,
			country           TEXT NOT NULL,
			city              TEXT NOT NULL,
			venue             TEXT NOT NULL,
			longitude         DOUBLE PRECISION NOT NULL,
			latitude          DOUBLE PRECISION NOT NULL,
			start_time        TIMESTAMPTZ NOT NULL,
			creator_id        TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL,
			updated_at        TIMESTAMPTZ,
			enhanced_location JSONB,
			enriched_at       TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS events_location_idx ON events USING gist (ll_to_earth(latitude, longitude))`,
		`CREATE INDEX IF NOT EXISTS events_city_idx ON events (city)`,
		`CREATE INDEX IF NOT EXISTS events_country_idx ON events (country)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) InsertOne(ctx context.Context, ev domain.Event) error {
	record := goqu.Record{
		"id":          ev.ID,
		"title":       ev.Title,
		"description": ev.Description,
		"category":    ev.Category,
		"country":     ev.Country,
		"city":        ev.City,
		"venue":       ev.Venue,
		"longitude":   ev.Location.Lon,
		"latitude":    ev.Location.Lat,
		"start_time":  ev.StartTime,
		"creator_id":  ev.CreatorID,
		"created_at":  ev.CreatedAt,
	}

	query, args, err := s.goqu.Insert(eventsTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindMany(ctx context.Context, f Filter, sort Sort) ([]domain.Event, error) {
	ds := s.goqu.From(eventsTable).Prepared(true).Select(eventColumns...)
	if exprs := filterExpressions(f); len(exprs) > 0 {
		ds = ds.Where(exprs...)
	}
	if sort.Field != "" {
		col := goqu.C(sort.Field)
		if sort.Desc {
			ds = ds.Order(col.Desc())
		} else {
			ds = ds.Order(col.Asc())
		}
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.Event, error) {
	query, args, err := s.goqu.From(eventsTable).Prepared(true).
		Select(eventColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return domain.Event{}, fmt.Errorf("build query: %w", err)
	}

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return domain.Event{}, ErrNotFound
	}
	if err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// UpdateOne applies the given fields to a single record in one statement.
func (s *PostgresStore) UpdateOne(ctx context.Context, id string, fields Fields) error {
	record := goqu.Record{}
	for key, value := range fields {
		switch key {
		case "location":
			coord, ok := value.(domain.Coordinate)
			if !ok {
				return fmt.Errorf("update event: location is not a coordinate")
			}
			record["longitude"] = coord.Lon
			record["latitude"] = coord.Lat
		case "enhanced_location":
			raw, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("marshal enhanced location: %w", err)
			}
			// pq would send []byte as bytea, which jsonb rejects.
			record[key] = string(raw)
		default:
			record[key] = value
		}
	}

	query, args, err := s.goqu.Update(eventsTable).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteOne(ctx context.Context, id string) error {
	query, args, err := s.goqu.Delete(eventsTable).Prepared(true).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// filterExpressions translates the query descriptor into goqu expressions,
// combined conjunctively by the caller.
func filterExpressions(f Filter) []goqu.Expression {
	var exprs []goqu.Expression

	if f.CreatorID != "" {
		exprs = append(exprs, goqu.Ex{"creator_id": f.CreatorID})
	}
	if f.Unenriched {
		exprs = append(exprs, goqu.C("enhanced_location").IsNull())
	}
	if f.Text != nil {
		exprs = append(exprs, goqu.C(string(f.Text.Field)).ILike("%"+f.Text.Pattern+"%"))
	}
	if f.Near != nil {
		exprs = append(exprs, goqu.L(
			"earth_distance(ll_to_earth(latitude, longitude), ll_to_earth(?, ?)) <= ?",
			f.Near.Center.Lat, f.Near.Center.Lon, f.Near.MaxMeters,
		))
	}
	if len(f.Categories) > 0 {
		exprs = append(exprs, goqu.C("category").In(f.Categories))
	}

	return exprs
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var (
		ev          domain.Event
		description sql.NullString
		updatedAt   sql.NullTime
		enrichedAt  sql.NullTime
		enhancedRaw []byte
	)

	err := row.Scan(
		&ev.ID, &ev.Title, &description, &ev.Category, &ev.Country, &ev.City,
		&ev.Venue, &ev.Location.Lon, &ev.Location.Lat, &ev.StartTime,
		&ev.CreatorID, &ev.CreatedAt, &updatedAt, &enhancedRaw, &enrichedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Event{}, err
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}

	ev.Description = description.String
	if updatedAt.Valid {
		t := updatedAt.Time
		ev.UpdatedAt = &t
	}
	if enrichedAt.Valid {
		t := enrichedAt.Time
		ev.EnrichedAt = &t
	}
	if len(enhancedRaw) > 0 {
		var loc domain.EnhancedLocation
		if err := json.Unmarshal(enhancedRaw, &loc); err != nil {
			return domain.Event{}, fmt.Errorf("unmarshal enhanced location: %w", err)
		}
		ev.EnhancedLocation = &loc
	}
	return ev, nil
}

var _ EventStore = (*PostgresStore)(nil)

package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/logger"
	"gridwatch/src/models"
)

// dbTimeLayout matches SQLite's CURRENT_TIMESTAMP so stored keys compare as text.
const dbTimeLayout = "2006-01-02 15:04:05"

var readTimeLayouts = []string{
	dbTimeLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339Nano,
}

// dialect isolates the few places where SQLite and PostgreSQL differ.
type dialect struct {
	name       string
	pricesDDL  string
	alertsDDL  string
	positional bool
	encodeTime func(time.Time) any
}

// -----------------------------------------------------------------------------

// sqlStore implements interfaces.IPriceStore over database/sql.
type sqlStore struct {
	Config  *models.MConfig
	DB      *sql.DB
	Logger  *logger.Logger
	dialect dialect
	prices  string
	alerts  string
}

// -----------------------------------------------------------------------------

func (s *sqlStore) bind(query string) string {
	if !s.dialect.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (s *sqlStore) createTables() error {
	if _, err := s.DB.Exec(fmt.Sprintf(s.dialect.pricesDDL, s.prices)); err != nil {
		return helpers.NewDatabaseError("failed to create prices table", err)
	}
	if _, err := s.DB.Exec(fmt.Sprintf(s.dialect.alertsDDL, s.alerts)); err != nil {
		return helpers.NewDatabaseError("failed to create alerts table", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) ready() error {
	if s.DB == nil {
		return helpers.NewDatabaseError(s.dialect.name+" store is not initialized", nil)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) SavePrices(zone models.ZoneCode, points []models.MPricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return 0, helpers.NewDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	// ON CONFLICT DO NOTHING keeps the first stored value and is atomic per row,
	// so overlapping windows written concurrently cannot fail the batch.
	stmt, err := tx.Prepare(s.bind(fmt.Sprintf(`
		INSERT INTO %s (zone, timestamp, price)
		VALUES (?, ?, ?)
		ON CONFLICT (zone, timestamp) DO NOTHING
	`, s.prices)))
	if err != nil {
		return 0, helpers.NewDatabaseError("prepare price insert", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range points {
		res, err := stmt.Exec(string(zone), s.dialect.encodeTime(p.Timestamp), p.Value)
		if err != nil {
			return 0, helpers.NewDatabaseError(fmt.Sprintf("insert price %s@%s", zone, p.Timestamp.UTC().Format(time.RFC3339)), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, helpers.NewDatabaseError("commit prices", err)
	}

	s.Logger.Debug("Saved %d/%d prices for %s (%d duplicates skipped)", inserted, len(points), zone, len(points)-inserted)
	return inserted, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) LogAlert(zone models.ZoneCode, message string, level models.AlertLevel) (models.MAlert, error) {
	if level == "" {
		level = models.AlertWarning
	}
	if !level.Valid() {
		return models.MAlert{}, fmt.Errorf("invalid alert level %q", level)
	}
	if err := s.ready(); err != nil {
		return models.MAlert{}, err
	}

	alert := models.MAlert{Zone: zone, Message: message, Level: level}
	var rawTs any
	err := s.DB.QueryRow(s.bind(fmt.Sprintf(`
		INSERT INTO %s (zone, message, level)
		VALUES (?, ?, ?)
		RETURNING id, timestamp
	`, s.alerts)), string(zone), message, string(level)).Scan(&alert.ID, &rawTs)
	if err != nil {
		return models.MAlert{}, helpers.NewDatabaseError("insert alert", err)
	}

	if alert.Timestamp, err = parseDBTime(rawTs); err != nil {
		return models.MAlert{}, helpers.NewDatabaseError("read alert timestamp", err)
	}

	s.Logger.Info("Alert logged for %s [%s]: %s", zone, level, message)
	return alert, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) GetPrices(zone models.ZoneCode, from, to time.Time) ([]models.MPricePoint, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(s.bind(fmt.Sprintf(`
		SELECT timestamp, price FROM %s
		WHERE zone = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp
	`, s.prices)), string(zone), s.dialect.encodeTime(from), s.dialect.encodeTime(to))
	if err != nil {
		return nil, helpers.NewDatabaseError("query prices", err)
	}
	defer rows.Close()

	var points []models.MPricePoint
	for rows.Next() {
		var rawTs any
		p := models.MPricePoint{Zone: zone}
		if err := rows.Scan(&rawTs, &p.Value); err != nil {
			return nil, helpers.NewDatabaseError("scan price", err)
		}
		if p.Timestamp, err = parseDBTime(rawTs); err != nil {
			return nil, helpers.NewDatabaseError("scan price timestamp", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate prices", err)
	}
	return points, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) CountPrices(zone models.ZoneCode) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	var n int
	err := s.DB.QueryRow(s.bind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE zone = ?`, s.prices)), string(zone)).Scan(&n)
	if err != nil {
		return 0, helpers.NewDatabaseError("count prices", err)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) RecentAlerts(limit int) ([]models.MAlert, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.Query(s.bind(fmt.Sprintf(`
		SELECT id, timestamp, zone, message, level FROM %s
		ORDER BY id DESC
		LIMIT ?
	`, s.alerts)), limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("query alerts", err)
	}
	defer rows.Close()

	var alerts []models.MAlert
	for rows.Next() {
		var a models.MAlert
		var rawTs any
		var zone, level string
		if err := rows.Scan(&a.ID, &rawTs, &zone, &a.Message, &level); err != nil {
			return nil, helpers.NewDatabaseError("scan alert", err)
		}
		if a.Timestamp, err = parseDBTime(rawTs); err != nil {
			return nil, helpers.NewDatabaseError("scan alert timestamp", err)
		}
		a.Zone = models.ZoneCode(zone)
		a.Level = models.AlertLevel(level)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate alerts", err)
	}
	return alerts, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) CleanupOldData() error {
	retentionDays := s.Config.DataSource.DataRetentionDays
	if retentionDays <= 0 {
		return nil
	}
	if err := s.ready(); err != nil {
		return err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res, err := s.DB.Exec(s.bind(fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", s.prices)), s.dialect.encodeTime(cutoff))
	if err != nil {
		return helpers.NewDatabaseError("cleanup prices", err)
	}

	removed, _ := res.RowsAffected()
	s.Logger.Info("Cleanup completed: removed %d prices older than %d days", removed, retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// parseDBTime accepts what the drivers hand back for DATETIME/TIMESTAMP
// columns: time.Time, or text in one of the known layouts.
func parseDBTime(v any) (time.Time, error) {
	var raw string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}

	for _, layout := range readTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

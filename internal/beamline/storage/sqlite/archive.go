package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/banshee-data/xpolbeamline/internal/beamline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/timeutil"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Extension names.
const (
	PrimaryExtName = "PRIMARY"
	EventsExtName  = "EVENTS"
	HotPixExtName  = "HOTPIX"
)

// ErrNoExtension is returned when the requested extension is not stored.
var ErrNoExtension = errors.New("extension not found in archive")

// HDUInfo describes a stored extension.
type HDUInfo struct {
	ExtName   string
	Kind      string
	Rows      int
	CreatedAt int64
}

// Archive is an open run archive.
type Archive struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens or creates the archive at path and brings its schema up to
// date.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	a := &Archive{db: db, clock: timeutil.RealClock{}}
	if err := a.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SchemaVersion returns the applied migration version.
func (a *Archive) SchemaVersion() (uint, error) {
	m, err := a.newMigrate()
	if err != nil {
		return 0, err
	}
	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	return version, err
}

func (a *Archive) migrateUp() error {
	m, err := a.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: closing it closes the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

func (a *Archive) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(a.db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger on the ops stream.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	beamline.Opsf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return beamline.TraceEnabled()
}

// HDUs lists stored extensions in creation order.
func (a *Archive) HDUs() ([]HDUInfo, error) {
	rows, err := a.db.Query(`SELECT extname, kind, n_rows, created_at FROM hdus ORDER BY hdu_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HDUInfo
	for rows.Next() {
		var h HDUInfo
		if err := rows.Scan(&h.ExtName, &h.Kind, &h.Rows, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// replaceHDU deletes any extension named extname and inserts a fresh one
// carrying hdr and history. It returns the new hdu_id.
func (a *Archive) replaceHDU(tx *sql.Tx, extname, kind string, nRows int, hdr *l1frames.Header, history []string) (int64, error) {
	if _, err := tx.Exec(`DELETE FROM hdus WHERE extname = ?`, extname); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`INSERT INTO hdus (extname, kind, n_rows, created_at) VALUES (?, ?, ?, ?)`,
		extname, kind, nRows, a.clock.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if hdr != nil {
		for i, c := range hdr.Cards() {
			vt, v, err := encodeValue(c.Value)
			if err != nil {
				return 0, fmt.Errorf("card %s: %w", c.Key, err)
			}
			if _, err := tx.Exec(`INSERT INTO header_cards (hdu_id, position, key, value_type, value, unit, comment)
				VALUES (?, ?, ?, ?, ?, ?, ?)`, id, i, c.Key, vt, v, c.Unit, c.Comment); err != nil {
				return 0, err
			}
		}
	}
	for i, entry := range history {
		if _, err := tx.Exec(`INSERT INTO history (hdu_id, position, entry) VALUES (?, ?, ?)`, id, i, entry); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// lookupHDU returns the id and row count of extname.
func (a *Archive) lookupHDU(extname, kind string) (id int64, nRows int, err error) {
	var gotKind string
	err = a.db.QueryRow(`SELECT hdu_id, kind, n_rows FROM hdus WHERE extname = ?`, extname).Scan(&id, &gotKind, &nRows)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoExtension, extname)
	}
	if err != nil {
		return 0, 0, err
	}
	if gotKind != kind {
		return 0, 0, fmt.Errorf("extension %s is an %s, want %s", extname, gotKind, kind)
	}
	return id, nRows, nil
}

func (a *Archive) readHeader(id int64) (*l1frames.Header, error) {
	rows, err := a.db.Query(`SELECT key, value_type, value, unit, comment FROM header_cards
		WHERE hdu_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h := l1frames.NewHeader()
	for rows.Next() {
		var c l1frames.Card
		var vt, v string
		if err := rows.Scan(&c.Key, &vt, &v, &c.Unit, &c.Comment); err != nil {
			return nil, err
		}
		if c.Value, err = decodeValue(vt, v); err != nil {
			return nil, fmt.Errorf("card %s: %w", c.Key, err)
		}
		h.SetCard(c)
	}
	return h, rows.Err()
}

func (a *Archive) readHistory(id int64) ([]string, error) {
	rows, err := a.db.Query(`SELECT entry FROM history WHERE hdu_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// withTx runs fn in a transaction, committing on success.
func (a *Archive) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func encodeValue(v interface{}) (valueType, text string, err error) {
	switch x := v.(type) {
	case nil:
		return "null", "", nil
	case int64:
		return "int", strconv.FormatInt(x, 10), nil
	case float64:
		return "float", strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return "string", x, nil
	case bool:
		return "bool", strconv.FormatBool(x), nil
	}
	return "", "", fmt.Errorf("unsupported card value type %T", v)
}

func decodeValue(valueType, text string) (interface{}, error) {
	switch valueType {
	case "null":
		return nil, nil
	case "int":
		return strconv.ParseInt(text, 10, 64)
	case "float":
		return strconv.ParseFloat(text, 64)
	case "string":
		return text, nil
	case "bool":
		return strconv.ParseBool(text)
	}
	return nil, fmt.Errorf("unknown value type %q", valueType)
}

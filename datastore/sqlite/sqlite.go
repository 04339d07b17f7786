package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
	uuid "github.com/satori/go.uuid"

	"github.com/hollis-cloud/pyxis/datastore"
	"github.com/hollis-cloud/pyxis/httpd"
	"github.com/hollis-cloud/pyxis/types"
)

// SQLite is
type SQLite struct {
	db *sqlx.DB
}

// New is
func New(ctx context.Context, dsn string) (datastore.Datastore, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	if err := createTable(db); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// GetMachine is
func (s *SQLite) GetMachine(ctx context.Context, mac types.HardwareAddr) (*httpd.Machine, error) {
	query := `SELECT id, uuid, mac_address, via, first_seen, last_seen FROM machine WHERE mac_address = ?`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	var machine httpd.Machine
	if err := stmt.GetContext(ctx, &machine, mac); err != nil {
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	return &machine, nil
}

// EnsureMachine records the machine on first contact and touches its
// last_seen on every later one. The via of the first contact sticks.
func (s *SQLite) EnsureMachine(ctx context.Context, mac types.HardwareAddr, via string) (*httpd.Machine, error) {
	machine, err := s.GetMachine(ctx, mac)
	if err == nil {
		return s.touchMachine(ctx, machine)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	machine = &httpd.Machine{
		UUID:      uuid.NewV4(),
		MAC:       mac,
		Via:       via,
		FirstSeen: now,
		LastSeen:  now,
	}

	query := `INSERT INTO machine(uuid, mac_address, via, first_seen, last_seen) VALUES(?, ?, ?, ?, ?)`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	ret, err := stmt.ExecContext(ctx, machine.UUID, machine.MAC, machine.Via, machine.FirstSeen, machine.LastSeen)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return s.GetMachine(ctx, mac)
	} else if err != nil {
		return nil, fmt.Errorf("failed to create new machine: %w", err)
	}
	id, err := ret.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	machine.ID = int(id)

	return machine, nil
}

func (s *SQLite) touchMachine(ctx context.Context, machine *httpd.Machine) (*httpd.Machine, error) {
	machine.LastSeen = time.Now().UTC()

	query := `UPDATE machine SET last_seen = ? WHERE id = ?`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	if _, err := stmt.ExecContext(ctx, machine.LastSeen, machine.ID); err != nil {
		return nil, fmt.Errorf("failed to update machine: %w", err)
	}
	return machine, nil
}

// ListMachines is
func (s *SQLite) ListMachines(ctx context.Context) ([]httpd.Machine, error) {
	query := `SELECT id, uuid, mac_address, via, first_seen, last_seen FROM machine ORDER BY id`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	var machines []httpd.Machine
	if err := stmt.SelectContext(ctx, &machines); err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// RecordBootEvent is
func (s *SQLite) RecordBootEvent(ctx context.Context, mac types.HardwareAddr, target, kind string) (*httpd.BootEvent, error) {
	event := httpd.BootEvent{
		MAC:       mac,
		Target:    target,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO boot_event(mac_address, target, kind, created_at) VALUES(?, ?, ?, ?)`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	ret, err := stmt.ExecContext(ctx, event.MAC, event.Target, event.Kind, event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create new boot event: %w", err)
	}
	id, err := ret.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	event.ID = int(id)

	return &event, nil
}

// RecentBootEvents is
func (s *SQLite) RecentBootEvents(ctx context.Context, limit int) ([]httpd.BootEvent, error) {
	query := `SELECT id, mac_address, target, kind, created_at FROM boot_event ORDER BY id DESC LIMIT ?`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	var events []httpd.BootEvent
	if err := stmt.SelectContext(ctx, &events, limit); err != nil {
		return nil, fmt.Errorf("failed to list boot events: %w", err)
	}
	return events, nil
}

// Close closes the database connections.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func createTable(db *sqlx.DB) error {
	for _, table := range tables {
		_, err := db.Exec(table)
		if err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

var _ datastore.Datastore = &SQLite{}

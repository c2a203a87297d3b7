package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	flavorSQLite   = "sqlite3"
	flavorPostgres = "postgres"
)

// Prediction is one stored observation: the model output recorded at predict
// time and, once reported, the ground-truth label.
type Prediction struct {
	ObservationID  int     `json:"observation_id"`
	Proba          float64 `json:"proba"`
	PredictedClass bool    `json:"predicted_class"`
	TrueClass      *bool   `json:"true_class"`
}

// Store holds the predictions table on either a local SQLite file or a
// PostgreSQL server. The backend is chosen once in Open and never
// re-evaluated.
type Store struct {
	conn   *sql.DB
	flavor string
}

// Open selects the backing database: when databaseURL is non-empty it is
// parsed as a PostgreSQL connection URL, otherwise the SQLite file at
// sqlitePath is opened (and created on first use). The predictions table is
// bootstrapped if absent.
func Open(databaseURL, sqlitePath string) (*Store, error) {
	store, err := connect(databaseURL, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := store.createTable(); err != nil {
		store.conn.Close()
		return nil, fmt.Errorf("create predictions table: %w", err)
	}
	return store, nil
}

func connect(databaseURL, sqlitePath string) (*Store, error) {
	if databaseURL != "" {
		dsn, err := PostgresDSN(databaseURL)
		if err != nil {
			return nil, err
		}
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Store{conn: conn, flavor: flavorPostgres}, nil
	}

	conn, err := sql.Open("sqlite3", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{conn: conn, flavor: flavorSQLite}, nil
}

func (s *Store) createTable() error {
	_, err := s.conn.Exec(`
    CREATE TABLE IF NOT EXISTS predictions (
        observation_id INTEGER NOT NULL UNIQUE,
        proba REAL NOT NULL,
        predicted_class BOOLEAN NOT NULL,
        true_class BOOLEAN
    );
    `)
	return err
}

// InsertPrediction writes a new row. A second insert for the same observation
// id violates the uniqueness constraint and returns the driver error as-is.
func (s *Store) InsertPrediction(p Prediction) error {
	_, err := s.conn.Exec(s.rebind(`
        INSERT INTO predictions (observation_id, proba, predicted_class, true_class)
        VALUES (?, ?, ?, ?)`),
		p.ObservationID, p.Proba, p.PredictedClass, p.TrueClass)
	return err
}

// GetPrediction looks up a single row by observation id. Returns
// sql.ErrNoRows when no such row exists.
func (s *Store) GetPrediction(observationID int) (Prediction, error) {
	var p Prediction
	var trueClass sql.NullBool
	err := s.conn.QueryRow(s.rebind(`
        SELECT observation_id, proba, predicted_class, true_class
        FROM predictions
        WHERE observation_id = ?`), observationID).
		Scan(&p.ObservationID, &p.Proba, &p.PredictedClass, &trueClass)
	if err != nil {
		return Prediction{}, err
	}
	if trueClass.Valid {
		v := trueClass.Bool
		p.TrueClass = &v
	}
	return p, nil
}

// SetTrueClass records the ground-truth label for an observation. Returns
// sql.ErrNoRows when no row matched.
func (s *Store) SetTrueClass(observationID int, trueClass bool) error {
	res, err := s.conn.Exec(s.rebind(`
        UPDATE predictions SET true_class = ? WHERE observation_id = ?`),
		trueClass, observationID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPredictions returns every stored row in storage order.
func (s *Store) ListPredictions() ([]Prediction, error) {
	rows, err := s.conn.Query(`
        SELECT observation_id, proba, predicted_class, true_class
        FROM predictions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]Prediction, 0)
	for rows.Next() {
		var p Prediction
		var trueClass sql.NullBool
		if err := rows.Scan(&p.ObservationID, &p.Proba, &p.PredictedClass, &trueClass); err != nil {
			return nil, err
		}
		if trueClass.Valid {
			v := trueClass.Bool
			p.TrueClass = &v
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// rebind rewrites ? placeholders into the $N form lib/pq expects. SQLite
// queries pass through untouched.
func (s *Store) rebind(query string) string {
	if s.flavor != flavorPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

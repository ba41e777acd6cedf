package db

import (
	"database/sql"
	"time"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ErrQueryNotFound is returned when rating a query that was never recorded.
var ErrQueryNotFound = errors.New("query not found")

const schema = `
CREATE TABLE IF NOT EXISTS queries (
    id TEXT PRIMARY KEY,
    message TEXT NOT NULL,
    response TEXT NOT NULL,
    agent_type TEXT NOT NULL,
    language TEXT NOT NULL,
    user_rating TEXT,
    rating_timestamp TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS widget_messages (
    history_key TEXT NOT NULL,
    position INTEGER NOT NULL,
    message_id TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL,
    who TEXT NOT NULL,
    is_error INTEGER NOT NULL DEFAULT 0,
    user_rating TEXT NOT NULL DEFAULT '',
    lang TEXT NOT NULL DEFAULT '',
    agent TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (history_key, position)
);`

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// Ping is used by the health endpoint.
func (db *Database) Ping() error {
	return db.db.Ping()
}

// SaveQuery records an answered chat request and assigns its id.
func (db *Database) SaveQuery(q *models.Query) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	_, err := db.db.Exec(`
        INSERT INTO queries (id, message, response, agent_type, language, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.Message, q.Response, q.Agent, q.Language, q.CreatedAt)
	return err
}

func (db *Database) GetQuery(id string) (*models.Query, error) {
	query := `
        SELECT id, message, response, agent_type, language, COALESCE(user_rating, ''), rating_timestamp, created_at
        FROM queries
        WHERE id = ?`

	var (
		q       models.Query
		rating  string
		ratedAt sql.NullTime
	)
	err := db.db.QueryRow(query, id).Scan(&q.ID, &q.Message, &q.Response, &q.Agent, &q.Language, &rating, &ratedAt, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, err
	}
	q.Rating = models.Rating(rating)
	if ratedAt.Valid {
		t := ratedAt.Time
		q.RatedAt = &t
	}
	return &q, nil
}

// RateQuery stores a like or dislike for a recorded query.
func (db *Database) RateQuery(id string, rating models.Rating, at time.Time) error {
	res, err := db.db.Exec("UPDATE queries SET user_rating = ?, rating_timestamp = ? WHERE id = ?", string(rating), at.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQueryNotFound
	}
	return nil
}

// SaveHistory replaces the widget history stored under key.
func (db *Database) SaveHistory(key string, messages []models.Message) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM widget_messages WHERE history_key = ?", key); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT INTO widget_messages (history_key, position, message_id, text, who, is_error, user_rating, lang, agent)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range messages {
		if m.Typing {
			continue
		}
		if _, err := stmt.Exec(key, i, m.ID, m.Text, string(m.Who), m.Error, string(m.Rating), m.Lang, m.Agent); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadHistory returns the widget history stored under key in insertion order.
func (db *Database) LoadHistory(key string) ([]models.Message, error) {
	rows, err := db.db.Query(`
        SELECT message_id, text, who, is_error, user_rating, lang, agent
        FROM widget_messages
        WHERE history_key = ?
        ORDER BY position ASC`, key)
	if err != nil {
		return []models.Message{}, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			m      models.Message
			who    string
			rating string
		)
		if err := rows.Scan(&m.ID, &m.Text, &who, &m.Error, &rating, &m.Lang, &m.Agent); err != nil {
			return []models.Message{}, err
		}
		m.Who = models.Who(who)
		m.Rating = models.Rating(rating)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Package chatdb reads message history out of a local iMessage chat.db file.
// It is the only component that knows about the Apple schema; everything
// downstream sees plain Message values with resolved speaker names.
package chatdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/henzelabs/chattrivia/internal/identity"
)

// Apple stores message dates as nanoseconds since 2001-01-01 UTC.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// DB is a read-only handle on a chat.db file.
type DB struct {
	db       *sql.DB
	resolver *identity.Resolver
	logger   *slog.Logger
}

// Open opens the chat database at path. The resolver is applied to every
// sender id before messages leave the adapter.
func Open(path string, resolver *identity.Resolver, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open chat db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping chat db: %w", err)
	}
	return &DB{db: db, resolver: resolver, logger: logger}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// QueryOptions narrows a message or reaction query.
type QueryOptions struct {
	Chats []string  // chat_identifier values; empty means all group chats
	Since time.Time // zero means no lower bound
	Limit int       // 0 means the default cap
}

const defaultLimit = 5000

// Messages returns chat messages newest-first, with sender ids resolved to
// display names.
func (d *DB) Messages(ctx context.Context, opts QueryOptions) ([]Message, error) {
	var b strings.Builder
	var args []any

	b.WriteString(`
		SELECT message.date, handle.id, message.text, chat.display_name
		FROM message
		JOIN handle ON message.handle_id = handle.ROWID
		JOIN chat_message_join ON message.ROWID = chat_message_join.message_id
		JOIN chat ON chat_message_join.chat_id = chat.ROWID
		WHERE message.text IS NOT NULL AND message.text != ''`)

	if !opts.Since.IsZero() {
		b.WriteString(" AND message.date > ?")
		args = append(args, appleNanos(opts.Since))
	}
	if len(opts.Chats) > 0 {
		b.WriteString(" AND chat.chat_identifier IN (" + placeholders(len(opts.Chats)) + ")")
		for _, c := range opts.Chats {
			args = append(args, c)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	b.WriteString(" ORDER BY message.date DESC LIMIT ?")
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var (
			rawDate sql.NullInt64
			sender  string
			text    string
			chat    sql.NullString
		)
		if err := rows.Scan(&rawDate, &sender, &text, &chat); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg := Message{
			SpeakerID:    sender,
			SpeakerName:  d.resolver.Resolve(sender),
			Text:         text,
			Conversation: chat.String,
		}
		if rawDate.Valid {
			msg.Timestamp = appleTime(rawDate.Int64)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	d.logger.Info("messages loaded", "count", len(msgs), "chats", len(opts.Chats))
	return msgs, nil
}

// Reactions returns tapback reactions (associated_message_type 2000–2005)
// joined with the text of the message they reacted to.
func (d *DB) Reactions(ctx context.Context, opts QueryOptions) ([]Reaction, error) {
	var b strings.Builder
	var args []any

	b.WriteString(`
		SELECT message.date, handle.id, message.associated_message_emoji,
		       message.associated_message_type, target.text
		FROM message
		JOIN handle ON message.handle_id = handle.ROWID
		LEFT JOIN message AS target ON message.associated_message_guid = target.guid
		WHERE message.associated_message_type BETWEEN 2000 AND 2005`)

	if !opts.Since.IsZero() {
		b.WriteString(" AND message.date > ?")
		args = append(args, appleNanos(opts.Since))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	b.WriteString(" ORDER BY message.date DESC LIMIT ?")
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var reactions []Reaction
	for rows.Next() {
		var (
			rawDate sql.NullInt64
			reactor string
			emoji   sql.NullString
			kind    int
			target  sql.NullString
		)
		if err := rows.Scan(&rawDate, &reactor, &emoji, &kind, &target); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		r := Reaction{
			ReactorID:   reactor,
			ReactorName: d.resolver.Resolve(reactor),
			Emoji:       emoji.String,
			Kind:        kind,
			TargetText:  target.String,
		}
		if rawDate.Valid {
			r.Timestamp = appleTime(rawDate.Int64)
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reactions: %w", err)
	}

	d.logger.Info("reactions loaded", "count", len(reactions))
	return reactions, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appleTime(nanos int64) time.Time {
	return appleEpoch.Add(time.Duration(nanos))
}

func appleNanos(t time.Time) int64 {
	return t.Sub(appleEpoch).Nanoseconds()
}

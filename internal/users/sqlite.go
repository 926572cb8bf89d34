package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at DATETIME NOT NULL
)`

// SQLiteStore はユーザーを SQLite の users テーブルに保存します。
// email の UNIQUE 制約が一意性を保証します。
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore はデータベースを開き、テーブルを作成します。
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// 書き込みは単一コネクションに直列化する
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(createUsersTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password, created_at
		FROM users WHERE email = ?
	`, NormalizeEmail(email)).Scan(&user.ID, &user.Email, &user.Password, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

// FindProfile は password 列を SELECT しません。
func (s *SQLiteStore) FindProfile(ctx context.Context, email string) (*Profile, error) {
	profile := &Profile{}
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, created_at
		FROM users WHERE email = ?
	`, NormalizeEmail(email)).Scan(&profile.ID, &profile.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	profile.CreatedAt = createdAt.UTC()
	return profile, nil
}

// Insert は ON CONFLICT DO NOTHING で挿入し、影響行数 0 なら ErrEmailTaken を返します。
func (s *SQLiteStore) Insert(ctx context.Context, user *User) error {
	if err := prepare(user); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, user.ID, user.Email, user.Password, user.CreatedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEmailTaken
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "solana-token-forge/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the database named in dsn when missing,
// applies the embedded clickhouse scripts and returns a connection to it.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	db, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := createDatabase(ctx, dsn, db); err != nil {
		return nil, err
	}

	list, err := scripts(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, db)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse %s: %w", db, err)
	}
	for _, s := range list {
		stmts, err := splitStatements(s.body)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("parse migration %s: %w", s.name, err)
		}
		// The driver executes one statement per Exec.
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", s.name, err)
			}
		}
	}
	return conn, nil
}

func createDatabase(ctx context.Context, dsn, db string) error {
	admin, err := chstore.NewAdminConn(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+db); err != nil {
		return fmt.Errorf("create database %s: %w", db, err)
	}
	return nil
}

// splitStatements cuts a script at semicolons outside single-quoted strings
// and drops -- comments. An unterminated string is an error.
func splitStatements(script string) ([]string, error) {
	var (
		stmts   []string
		cur     strings.Builder
		quoted  bool
		comment bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case comment:
			if c == '\n' {
				comment = false
				cur.WriteByte(c)
			}
		case quoted:
			cur.WriteByte(c)
			if c == '\'' {
				if i+1 < len(script) && script[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
					continue
				}
				quoted = false
			}
		case c == '\'':
			quoted = true
			cur.WriteByte(c)
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			comment = true
			i++
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated string literal")
	}
	flush()
	return stmts, nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn %q names no database", u.Redacted())
	}
	return db, nil
}

// Command coachreset inspects and wipes persisted coaching conversations.
// By default it deletes every thread for one user; with no user it wipes
// the whole store, and with -list it only prints what is there.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/internup/coachflow/history"
	"github.com/internup/coachflow/store"
	"github.com/internup/coachflow/store/postgres"
	"github.com/internup/coachflow/store/redis"
	"github.com/internup/coachflow/store/sqlite"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	threadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func main() {
	var (
		backend   = flag.String("store", "sqlite", "checkpoint store backend: sqlite, redis or postgres")
		dbPath    = flag.String("db", "coachflow.db", "database file for the sqlite backend")
		redisAddr = flag.String("redis-addr", "localhost:6379", "address for the redis backend")
		redisDB   = flag.Int("redis-db", 0, "database number for the redis backend")
		connStr   = flag.String("dsn", "", "connection string for the postgres backend")
		userID    = flag.String("user", "", "user whose threads to delete; empty wipes every user")
		list      = flag.Bool("list", false, "list users and threads instead of deleting")
		yes       = flag.Bool("yes", false, "skip the confirmation prompt")
	)
	flag.Parse()

	ctx := context.Background()
	st, closeStore, err := openStore(ctx, *backend, *dbPath, *redisAddr, *redisDB, *connStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗"), err)
		os.Exit(1)
	}
	defer closeStore()

	if *list {
		if err := listThreads(ctx, st); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("✗"), err)
			os.Exit(1)
		}
		return
	}

	if err := reset(ctx, st, *userID, *yes); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗"), err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, backend, dbPath, redisAddr string, redisDB int, connStr string) (store.CheckpointStore, func(), error) {
	switch backend {
	case "sqlite":
		st, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: dbPath})
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case "redis":
		st := redis.NewRedisCheckpointStore(redis.RedisOptions{Addr: redisAddr, DB: redisDB})
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		if connStr == "" {
			return nil, nil, fmt.Errorf("postgres backend requires -dsn")
		}
		st, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: connStr})
		if err != nil {
			return nil, nil, err
		}
		if err := st.InitSchema(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func listThreads(ctx context.Context, st store.CheckpointStore) error {
	svc := history.NewService(st)
	users, err := svc.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("no conversations stored")
		return nil
	}

	for _, user := range users {
		fmt.Println(titleStyle.Render(user))
		threads, err := svc.Threads(ctx, user)
		if err != nil {
			return err
		}
		for _, key := range threads {
			tr, err := svc.Transcript(ctx, key)
			if err != nil {
				return err
			}
			fmt.Println(threadStyle.Render(fmt.Sprintf("  %s  %d turns, %d messages", key, tr.Turns, len(tr.Messages))))
		}
	}
	return nil
}

func reset(ctx context.Context, st store.CheckpointStore, userID string, yes bool) error {
	scope := fmt.Sprintf("all threads for user %q", userID)
	if userID == "" {
		scope = "ALL stored conversations"
	}
	if !yes && !confirm(fmt.Sprintf("Delete %s?", scope)) {
		fmt.Println(warnStyle.Render("aborted"))
		return nil
	}

	var checkpoints, writes int64
	var err error
	if userID == "" {
		checkpoints, writes, err = st.DeleteAll(ctx)
	} else {
		checkpoints, writes, err = st.DeleteForUser(ctx, userID)
	}
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✔"),
		fmt.Sprintf("deleted %d checkpoints and %d writes", checkpoints, writes))
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s %s [y/N] ", warnStyle.Render("⚠"), prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// Command dbtool runs maintenance queries against the bot database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	coredatabase "github.com/m3rciful/gamebot/core/database"
)

type toolConfig struct {
	Database coredatabase.Config `yaml:"database"`
}

type command func(ctx context.Context, db *sqlx.DB, out io.Writer) error

var commands = map[string]command{
	"check-structure":    checkStructure,
	"cleanup-duplicates": cleanupDuplicates,
	"stats":              stats,
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: dbtool [-config path] <check-structure|cleanup-duplicates|stats>")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dbtool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", os.Getenv("GAMEBOT_CONFIG"), "config file; empty reads the environment only")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	var cfg toolConfig
	if err := coreconfig.Decode(*path, &cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Database.Normalize(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	db, err := coredatabase.Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer db.Close()

	if err := cmd(ctx, db, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

type column struct {
	Name     string  `db:"column_name"`
	Type     string  `db:"data_type"`
	Nullable string  `db:"is_nullable"`
	Default  *string `db:"column_default"`
}

var checkedTables = []string{
	"users", "groups", "group_members", "sports", "locations",
	"sport_locations", "games", "game_participants", "flow_sessions",
}

func checkStructure(ctx context.Context, db *sqlx.DB, out io.Writer) error {
	for _, table := range checkedTables {
		var exists bool
		if err := db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)`, table); err != nil {
			return fmt.Errorf("check %s: %w", table, err)
		}
		if !exists {
			fmt.Fprintf(out, "❌ %s: missing\n\n", table)
			continue
		}
		var cols []column
		if err := db.SelectContext(ctx, &cols, `
			SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_name = $1
			ORDER BY ordinal_position`, table); err != nil {
			return fmt.Errorf("columns of %s: %w", table, err)
		}
		var rows int
		if err := db.GetContext(ctx, &rows, `SELECT COUNT(*) FROM `+table); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Fprintf(out, "📋 %s (%d rows)\n", table, rows)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range cols {
			def := ""
			if c.Default != nil {
				def = *c.Default
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", c.Name, c.Type, c.Nullable, def)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	var linked, textOnly int
	if err := db.GetContext(ctx, &linked, `SELECT COUNT(*) FROM games WHERE location_id IS NOT NULL`); err != nil {
		return err
	}
	if err := db.GetContext(ctx, &textOnly, `SELECT COUNT(*) FROM games WHERE location_id IS NULL AND location_text <> ''`); err != nil {
		return err
	}
	fmt.Fprintf(out, "📊 games with location_id: %d, with free-text location only: %d\n", linked, textOnly)
	return nil
}

const deleteDuplicateParticipants = `
	DELETE FROM game_participants
	WHERE id NOT IN (
		SELECT MIN(id) FROM game_participants GROUP BY game_id, user_id
	)`

func cleanupDuplicates(ctx context.Context, db *sqlx.DB, out io.Writer) error {
	res, err := db.ExecContext(ctx, deleteDuplicateParticipants)
	if err != nil {
		return fmt.Errorf("cleanup duplicates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Deleted %d duplicate records\n", n)
	return nil
}

type groupStats struct {
	Name      string `db:"name"`
	Members   int    `db:"members"`
	Upcoming  int    `db:"upcoming"`
	Locations int    `db:"locations"`
}

func stats(ctx context.Context, db *sqlx.DB, out io.Writer) error {
	var totals struct {
		Users    int `db:"users"`
		Groups   int `db:"groups"`
		Games    int `db:"games"`
		Planned  int `db:"planned"`
		Sessions int `db:"sessions"`
	}
	err := db.GetContext(ctx, &totals, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM groups) AS groups,
			(SELECT COUNT(*) FROM games) AS games,
			(SELECT COUNT(*) FROM games WHERE status = 'planned' AND game_date > NOW()) AS planned,
			(SELECT COUNT(*) FROM flow_sessions WHERE expires_at > NOW()) AS sessions`)
	if err != nil {
		return fmt.Errorf("totals: %w", err)
	}
	fmt.Fprintf(out, "users: %d\ngroups: %d\ngames: %d (planned ahead: %d)\nactive sessions: %d\n\n",
		totals.Users, totals.Groups, totals.Games, totals.Planned, totals.Sessions)

	var groups []groupStats
	err = db.SelectContext(ctx, &groups, `
		SELECT g.name,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS members,
			(SELECT COUNT(*) FROM games x WHERE x.group_id = g.id AND x.status = 'planned' AND x.game_date > NOW()) AS upcoming,
			(SELECT COUNT(*) FROM locations l WHERE l.group_id = g.id AND l.is_active) AS locations
		FROM groups g
		ORDER BY g.id`)
	if err != nil {
		return fmt.Errorf("group stats: %w", err)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "group\tmembers\tupcoming\tlocations")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", g.Name, g.Members, g.Upcoming, g.Locations)
	}
	return tw.Flush()
}

package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/notes"

	_ "github.com/mattn/go-sqlite3"
)

// seedNotes are synthetic notes in "category<TAB>text" form.
var seedNotes = []string{
	"Physician\tPt seen and examined. Denies chest pain or shortness of breath. Vitals stable overnight.",
	"Physician\tPt is a 67 yo male admitted with CHF exacerbation. Diuresed with IV lasix. Will continue to monitor.",
	"Physician\tDr. Patel consulted for renal function. Creatinine trending down. Continue current plan.",
	"Physician\tPt febrile overnight to 38.9. Blood cultures sent. Started on vancomycin and zosyn.",
	"Physician\tAbdomen soft, non tender. Tolerating diet. Plan to advance as tolerated.",
	"Physician\tPt extubated this morning without complication. Saturating well on 2L nasal cannula.",
	"Physician\tPain well controlled on current regimen. Ambulating with physical therapy.",
	"Physician\tNeuro exam unchanged. Pt alert and oriented. Continue neuro checks q4h.",
	"Physician\tLabs reviewed. Hemoglobin stable. No signs of active bleeding.",
	"Physician\tPt denied pain. 2nd dose of antibiotics given. Will reassess in the morning.",
	"Social Work\tMet with pt and family to discuss discharge planning. Family supportive.",
	"Social Work\tSW met with wife at bedside. Provided emotional support and community resources.",
	"Social Work\tPt lives alone and has limited support. Referral made for home services.",
	"Social Work\tFamily meeting held with medical team. Goals of care discussed.",
	"Social Work\tSW provided information on rehab facilities. Family will tour options this week.",
}

var (
	dbPath       = flag.String("db", "notes.db", "SQLite database to create or extend")
	table        = flag.String("table", notes.DefaultTable, "notes table")
	seedFileName = flag.String("src", "", "file of seed notes, one \"category<TAB>text\" per line")
	repeat       = flag.Int("repeat", 20, "times to insert the seed notes")
)

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings, n times over.
func linesFromSlice(lines []string, n int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for range n {
			for _, line := range lines {
				if !yield(line) {
					return
				}
			}
		}
	}
}

// parseLine splits a "category<TAB>text" line. Literal "\n" sequences in the
// text become line breaks.
func parseLine(line string) (core.Category, string, error) {
	category, text, ok := strings.Cut(line, "\t")
	if !ok {
		return 0, "", fmt.Errorf("missing tab separator: %q", line)
	}
	c, err := core.ParseCategory(category)
	if err != nil {
		return 0, "", err
	}
	return c, strings.ReplaceAll(text, `\n`, "\n"), nil
}

// seed creates the notes table if needed and inserts every line of source
// in one transaction. It returns the number of notes inserted.
func seed(ctx context.Context, db *sql.DB, table string, source iter.Seq[string]) (int, error) {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (ROW_ID INTEGER PRIMARY KEY, CATEGORY TEXT, TEXT TEXT)`, table)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (CATEGORY, TEXT) VALUES (?, ?)`, table))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for line := range source {
		if strings.TrimSpace(line) == "" {
			continue
		}
		category, text, err := parseLine(line)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, category.String(), text); err != nil {
			return 0, err
		}
		count++
	}
	return count, tx.Commit()
}

func main() {
	flag.Parse()
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	// Determine source of seed data
	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(seedNotes, *repeat)
	}

	n, err := seed(context.Background(), db, *table, source)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded notes", "db", *dbPath, "table", *table, "count", n)
}

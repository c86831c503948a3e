package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikitree/internal/database"
	"github.com/nao1215/wikitree/internal/model"
)

// seedHistory stores one crawl of Ada Lovelace and returns the database
// directory and the crawl's ID.
func seedHistory(t *testing.T) (string, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "db")
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	job := model.NewCrawlJob("https://en.wikipedia.org/wiki/Ada_Lovelace", 1)
	report := model.NewCrawlReport(job)
	report.Root = &model.PersonNode{
		URL:       job.RootURL,
		Name:      "Ada Lovelace",
		ImagePath: "images/Ada_Lovelace.png",
		Children: []*model.PersonNode{{
			URL:           "https://en.wikipedia.org/wiki/Charles_Babbage",
			Name:          "Charles Babbage",
			ImagePath:     "images/Charles_Babbage.png",
			IntroSentence: "She worked with Charles Babbage.",
			HasIntro:      true,
		}},
	}
	report.Sequences = model.Serialize(report.Root)
	report.Duration = 1500 * time.Millisecond

	if err := db.SaveCrawlReport(context.Background(), report); err != nil {
		t.Fatal(err)
	}
	return dir, job.ID
}

func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewHistoryCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// TestHistoryCmd tests listing and showing stored crawls.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists stored crawls", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		output, err := runHistory(t, "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Stored crawls (1)", id, "Ada Lovelace"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in output, got: %s", want, output)
			}
		}
	})

	t.Run("filters by root", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		output, err := runHistory(t, "--db-dir", dir, "https://en.wikipedia.org/wiki/Grace_Hopper")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "No stored crawls for https://en.wikipedia.org/wiki/Grace_Hopper") {
			t.Errorf("unexpected output: %s", output)
		}
	})

	t.Run("lists roots", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		output, err := runHistory(t, "--db-dir", dir, "--roots")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "https://en.wikipedia.org/wiki/Ada_Lovelace") {
			t.Errorf("expected root in output, got: %s", output)
		}
	})

	t.Run("shows one crawl", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		output, err := runHistory(t, "--db-dir", dir, "--id", id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Charles Babbage") {
			t.Errorf("expected child in output, got: %s", output)
		}
	})

	t.Run("shows one crawl as JSON", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		output, err := runHistory(t, "--db-dir", dir, "--id", id, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, `"jobId": "`+id+`"`) {
			t.Errorf("expected job ID in JSON, got: %s", output)
		}
	})

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		if _, err := runHistory(t, "--db-dir", dir, "--id", "missing"); !errors.Is(err, ErrCrawlNotFound) {
			t.Errorf("expected ErrCrawlNotFound, got %v", err)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		output, err := runHistory(t, "--db-dir", filepath.Join(t.TempDir(), "empty"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "No stored crawls.") {
			t.Errorf("unexpected output: %s", output)
		}
	})
}

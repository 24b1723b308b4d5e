// Command import loads a directory of markdown files into the post store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/debemdeboas/posts/internal/config"
	"github.com/debemdeboas/posts/internal/db"
	"github.com/debemdeboas/posts/internal/form"
	"github.com/debemdeboas/posts/internal/logger"
	"github.com/debemdeboas/posts/internal/repository"
	"github.com/debemdeboas/posts/internal/util"
)

type result struct {
	File  string
	Title string
	ID    string
	Err   error
}

func main() {
	cmd := &cli.Command{
		Name:  "import",
		Usage: "import a directory of .md files as posts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "directory containing the .md files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database to import into",
				Value: "./posts.db",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse and validate files without saving them",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: runImport,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	log := logger.New(config.LoggingConfig{Level: cmd.String("log-level")})
	db.SetLogger(log)
	repository.SetLogger(log)

	store := db.NewSQLite(cmd.String("db"))
	if err := store.InitDB(); err != nil {
		return fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	defer store.Close()

	results, err := importDir(ctx, repository.NewDBPostRepository(store), cmd.String("path"), cmd.Bool("dry-run"))
	if err != nil {
		return err
	}

	fmt.Println(summary(results, cmd.Bool("dry-run")))

	for _, r := range results {
		if r.Err != nil {
			return errors.New("some files were not imported")
		}
	}
	return nil
}

// importDir imports every .md file directly under dir, in name order. A file
// that fails is recorded in its result and does not stop the others.
func importDir(ctx context.Context, repo repository.PostRepository, dir string, dryRun bool) ([]result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	results := make([]result, 0, len(names))
	for _, name := range names {
		results = append(results, importFile(ctx, repo, filepath.Join(dir, name), dryRun))
	}
	return results, nil
}

func importFile(ctx context.Context, repo repository.PostRepository, path string, dryRun bool) result {
	res := result{File: filepath.Base(path)}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	// Title from front matter if available, otherwise the file name
	title := strings.TrimSuffix(res.File, ".md")
	fm, body := util.SplitFrontMatter(content)
	if fm != nil && fm.Title != "" {
		title = fm.Title
	}
	res.Title = title

	post := repo.NewPost()
	if fm != nil && !fm.Date.IsZero() {
		post.CreatedDate = fm.Date.UTC()
	}

	f := form.NewPostForm(url.Values{
		form.FieldTitle: {title},
		form.FieldBody:  {string(body)},
	}, post)
	if !f.IsValid() {
		res.Err = fmt.Errorf("%w: %v", form.ErrInvalidForm, f.Errors)
		return res
	}

	if dryRun {
		return res
	}

	saved, err := f.Save(ctx, repo)
	if err != nil {
		res.Err = err
		return res
	}
	res.ID = string(saved.ID)
	return res
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func summary(results []result, dryRun bool) string {
	rows := make([][]string, 0, len(results))
	imported := 0
	for _, r := range results {
		status := "imported"
		switch {
		case r.Err != nil:
			status = "failed: " + r.Err.Error()
		case dryRun:
			status = "ok"
		default:
			imported++
		}
		rows = append(rows, []string{r.File, r.Title, status})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("File", "Title", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && results[row].Err != nil:
				return failStyle
			case col == 2:
				return okStyle
			}
			return lipgloss.NewStyle()
		})

	return fmt.Sprintf("%s\n%d of %d files imported", t.Render(), imported, len(results))
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appengine-ltd/clanker-quest/internal/command"
	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/grid"
)

type docFile struct {
	Name    string
	Title   string
	Content string
}

func main() {
	var (
		configPath string
		outDir     string
	)
	flag.StringVar(&configPath, "config", "", "config to document; empty uses the built-in defaults")
	flag.StringVar(&outDir, "out", filepath.Join("docs", "reference"), "output directory")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fatal(err)
	}

	files := []docFile{
		generateCommandsDoc(cfg),
		generateMovementDoc(cfg),
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	index := generateIndex(files)
	indexPath := filepath.Join(outDir, "README.md")
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", indexPath)
}

func generateIndex(files []docFile) string {
	var b strings.Builder
	b.WriteString("# Reference\n\n")
	b.WriteString("Generated from the command catalog using `go run ./cmd/docsgen`.\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- [%s](./%s)\n", f.Title, f.Name))
	}
	return b.String()
}

func generateCommandsDoc(cfg config.Config) docFile {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString(fmt.Sprintf("A line runs the first command whose keyword match reaches **%.0f%%**: the share of that command's keywords found anywhere in the line. Ties go to the command listed first.\n\n", cfg.Threshold))
	b.WriteString(fmt.Sprintf("Total commands: **%d**.\n\n", len(cfg.Commands)))
	b.WriteString("| Order | Name | Handler | Keywords | Single keyword scores |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for i, c := range cfg.Commands {
		b.WriteString("| ")
		b.WriteString(fmt.Sprintf("%d", i+1))
		b.WriteString(" | ")
		b.WriteString(escape(c.Name))
		b.WriteString(" | ")
		b.WriteString(escape(c.Handler))
		b.WriteString(" | ")
		b.WriteString(escape(strings.Join(c.Keywords, ", ")))
		b.WriteString(" | ")
		if len(c.Keywords) > 0 {
			b.WriteString(fmt.Sprintf("%.1f%%", 100/float64(len(c.Keywords))))
		}
		b.WriteString(" |\n")
	}
	return docFile{Name: "commands.md", Title: "Commands", Content: b.String()}
}

func generateMovementDoc(cfg config.Config) docFile {
	vocab := command.MoveVocabulary()
	directions := grid.DirectionWords()

	var b strings.Builder
	b.WriteString("# Movement\n\n")
	b.WriteString("Words handled by the `move` handler. Modifiers apply to every step read after them.\n\n")
	b.WriteString("| Group | Words | Effect |\n")
	b.WriteString("| --- | --- | --- |\n")
	rows := [][3]string{
		{"Directions", strings.Join(directions, ", "), "one step; a following number repeats it (1-999)"},
		{"Faster", strings.Join(vocab.Fast, ", "), fmt.Sprintf("speed x%.2g", cfg.Speeds.Fast)},
		{"Slower", strings.Join(vocab.Slow, ", "), fmt.Sprintf("speed x%.2g", cfg.Speeds.Slow)},
		{"Wobble", strings.Join(vocab.Jitter, ", "), "adds jitter to the path"},
		{"Absolute", strings.Join(vocab.Goto, ", "), "walks to `x y`, `x,y` or `(x, y)` along X then Y"},
		{"Ignored", strings.Join(vocab.Filler, ", "), "filler"},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r[0], escape(r[1]), r[2]))
	}
	b.WriteString(fmt.Sprintf("\nA step at normal speed takes %dms.", cfg.Movement.BaseStepMS))
	if cfg.Movement.BlockOnEmpty {
		b.WriteString(" Steps onto blocked or off-map cells are skipped.")
	}
	b.WriteString("\n")
	return docFile{Name: "movement.md", Title: "Movement", Content: b.String()}
}

func escape(v string) string {
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.TrimSpace(v)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

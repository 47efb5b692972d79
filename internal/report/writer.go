package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mikematt33/sprint-inspect/pkg/models"
)

// Writer persists rendered output under Dir.
type Writer struct {
	Dir     string
	Formats []Format
}

// NewWriter returns a Writer for dir. With no formats it writes JSON and Markdown.
func NewWriter(dir string, formats ...Format) *Writer {
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatMarkdown}
	}
	return &Writer{Dir: dir, Formats: formats}
}

// WriteSummary writes one file per format and returns the paths written.
func (w *Writer) WriteSummary(s *models.Summary) ([]string, error) {
	paths := make([]string, 0, len(w.Formats))
	for _, f := range w.Formats {
		path := filepath.Join(w.Dir, Filename(s.Project.Key, s.Team.Label, f.Ext()))
		err := w.write(path, func(out io.Writer) error {
			return NewRenderer(f).Render(s, out)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCombined writes the combined summary in every format.
func (w *Writer) WriteCombined(c *models.CombinedSummary) ([]string, error) {
	paths := make([]string, 0, len(w.Formats))
	for _, f := range w.Formats {
		path := filepath.Join(w.Dir, CombinedFilename(f.Ext()))
		err := w.write(path, func(out io.Writer) error {
			return NewRenderer(f).RenderCombined(c, out)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteDeck writes the presentation file.
func (w *Writer) WriteDeck(d Deck) (string, error) {
	path := filepath.Join(w.Dir, DeckFilename)
	err := w.write(path, func(out io.Writer) error {
		return (&DeckRenderer{}).Render(d, out)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) write(path string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	buf := bufio.NewWriter(f)
	if err := render(buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charleschow/footy-advisor/internal/telemetry"
)

// Writer persists projections as JSON report artifacts. Writes go
// through a temp file and rename so readers never see a partial report.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores the projection at {home}_{away}_{YYYY-MM-DD}.json inside
// the reports directory.
func (w *Writer) Write(p Projection) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json",
		pathSafe(p.Fixture.HomeTeam),
		pathSafe(p.Fixture.AwayTeam),
		p.GeneratedAt.Format("2006-01-02"),
	)
	dest := filepath.Join(w.dir, name)

	data, err := p.Marshal()
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename report: %w", err)
	}

	telemetry.Metrics.ReportsWritten.Inc()
	telemetry.Debugf("report written: %s", dest)
	return dest, nil
}

func pathSafe(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, string(filepath.Separator), "-")
	return s
}

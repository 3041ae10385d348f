// Package artifacts writes timestamped scan and validation reports to
// disk for offline review.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/application/sim"
)

// Writer drops reports under a base directory. The zero directory
// defaults to artifacts/reports.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = filepath.Join("artifacts", "reports")
	}
	return &Writer{dir: dir}
}

func (w *Writer) ensureDir() error {
	return os.MkdirAll(w.dir, 0755)
}

func (w *Writer) path(name, ext string, now time.Time) string {
	timestamp := now.UTC().Format("20060102-150405")
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.%s", timestamp, name, ext))
}

// WriteJSON writes v indented under a timestamped name and returns the
// path.
func (w *Writer) WriteJSON(name string, v interface{}, now time.Time) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}

	path := w.path(name, "json", now)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	return path, nil
}

// WriteScanCSV writes one row per enriched asset, ranked order
// preserved.
func (w *Writer) WriteScanCSV(name string, assets []pipeline.EnrichedAsset, now time.Time) (string, error) {
	rows := [][]string{
		{"rank", "symbol", "score", "state", "confidence", "price", "liquidity", "volatility", "trigger"},
	}
	for i, a := range assets {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Snapshot.Symbol,
			strconv.Itoa(a.Score),
			string(a.Decision.State),
			string(a.Decision.Confidence),
			strconv.FormatFloat(a.Snapshot.Price, 'f', -1, 64),
			strconv.FormatFloat(a.Snapshot.Liquidity, 'f', 2, 64),
			strconv.FormatFloat(a.Snapshot.VolatilityIndex, 'f', 1, 64),
			a.Decision.Trigger,
		})
	}
	return w.writeCSV(name, rows, now)
}

// WriteValidationCSV writes one row per category metric.
func (w *Writer) WriteValidationCSV(name string, metrics []sim.ValidationMetric, now time.Time) (string, error) {
	rows := [][]string{
		{"category", "signals", "accuracy_pct", "avg_return_pct", "noise_ratio_pct"},
	}
	for _, m := range metrics {
		rows = append(rows, []string{
			m.Category,
			strconv.Itoa(m.TotalSignals),
			strconv.FormatFloat(m.Accuracy, 'f', 1, 64),
			strconv.FormatFloat(m.AvgReturn, 'f', 2, 64),
			strconv.FormatFloat(m.NoiseRatio, 'f', 1, 64),
		})
	}
	return w.writeCSV(name, rows, now)
}

func (w *Writer) writeCSV(name string, rows [][]string, now time.Time) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}

	path := w.path(name, "csv", now)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	return path, nil
}

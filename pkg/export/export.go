package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/carewatch/core/model"
)

// HistorySource exposes the retained points of each metric.
type HistorySource interface {
	History(m model.Metric) []model.Point
}

// Row is one tick of history across every metric.
type Row struct {
	Time   time.Time `json:"time"`
	Oxygen float64   `json:"oxygen"`
	Beds   float64   `json:"beds"`
	Staff  float64   `json:"staff"`
}

// Rows joins the metric histories of src by position, oldest first. Series
// of unequal length are aligned on their most recent points.
func Rows(src HistorySource) []Row {
	oxy := src.History(model.MetricOxygen)
	beds := src.History(model.MetricBeds)
	staff := src.History(model.MetricStaff)
	n := min(len(oxy), len(beds), len(staff))
	oxy, beds, staff = oxy[len(oxy)-n:], beds[len(beds)-n:], staff[len(staff)-n:]
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{Time: oxy[i].Time, Oxygen: oxy[i].Value, Beds: beds[i].Value, Staff: staff[i].Value}
	}
	return rows
}

// WriteJSON writes the history rows to w in JSON format.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the history rows to w in CSV format.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "oxygen", "beds", "staff"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Time.Format(time.RFC3339Nano),
			strconv.FormatFloat(r.Oxygen, 'f', -1, 64),
			strconv.FormatFloat(r.Beds, 'f', -1, 64),
			strconv.FormatFloat(r.Staff, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CheckFormat reports whether Write supports format.
func CheckFormat(format string) error {
	switch format {
	case "csv", "json":
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Write dispatches on format, "csv" or "json".
func Write(w io.Writer, format string, rows []Row) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	if format == "csv" {
		return WriteCSV(w, rows)
	}
	return WriteJSON(w, rows)
}

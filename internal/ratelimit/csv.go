package ratelimit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// ViolationsCSV сериализует записи журнала в CSV для почтового вложения.
// Колонки: Timestamp, Username, IPAddress, Action; одна запись на строку.
func ViolationsCSV(entries []Violation) ([]byte, error) {
	const op = "ratelimit.ViolationsCSV"

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Timestamp", "Username", "IPAddress", "Action"}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, e := range entries {
		record := []string{
			e.Time.Format(time.RFC3339),
			e.Username,
			e.IP,
			string(e.Action),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// AttachmentName возвращает имя файла выгрузки за дату date.
func AttachmentName(date time.Time) string {
	return fmt.Sprintf("rate_limit_violations_%s.csv", date.Format("2006-01-02"))
}

package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

func writeCSV(w io.Writer, lines []string, ts string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Index", "Result", "Timestamp"}); err != nil {
		return err
	}
	for i, line := range lines {
		if err := cw.Write([]string{strconv.Itoa(i + 1), line, ts}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package export

import (
	"encoding/csv"
	"io"

	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/storage"
)

// WriteCSV writes samples in the stored telemetry layout.
func WriteCSV(w io.Writer, samples []scenario.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(storage.Header()); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(storage.Row(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

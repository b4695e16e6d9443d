package aperture

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes the table to w with an id,xcenter,ycenter,aperture_sum
// header.  The aperture_sum_err column appears only when HasErr is set.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	hdr := []string{"id", "xcenter", "ycenter", "aperture_sum"}
	if t.HasErr {
		hdr = append(hdr, "aperture_sum_err")
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for i, row := range t.Rows {
		rec := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(row.X, 'g', -1, 64),
			strconv.FormatFloat(row.Y, 'g', -1, 64),
			strconv.FormatFloat(row.Sum, 'g', -1, 64),
		}
		if t.HasErr {
			rec = append(rec, strconv.FormatFloat(row.Err, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

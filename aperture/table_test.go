package aperture_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/nasa-jpl/apphot/aperture"
)

func TestTableWriteCSV(t *testing.T) {
	tab := aperture.Table{
		Rows: []aperture.Result{
			{X: 1.5, Y: 2, Sum: 10.25, Err: 0.5},
			{X: 3, Y: 4, Sum: -1, Err: 0.25},
		},
		HasErr: true,
	}
	buf := new(bytes.Buffer)
	if err := tab.WriteCSV(buf); err != nil {
		t.Fatalf("WriteCSV: expected nil error, got %v", err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"id,xcenter,ycenter,aperture_sum,aperture_sum_err",
		"1,1.5,2,10.25,0.5",
		"2,3,4,-1,0.25",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v got %v", want, got)
	}
}

func TestTableWriteCSVNoErrColumn(t *testing.T) {
	tab := aperture.Table{Rows: []aperture.Result{{X: 1, Y: 1, Sum: 5}}}
	buf := new(bytes.Buffer)
	if err := tab.WriteCSV(buf); err != nil {
		t.Fatalf("WriteCSV: expected nil error, got %v", err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"id,xcenter,ycenter,aperture_sum",
		"1,1,1,5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v got %v", want, got)
	}
}

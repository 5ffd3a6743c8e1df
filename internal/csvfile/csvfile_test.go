package csvfile

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func drain(t *testing.T, r *Reader) []Record {
	t.Helper()
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		records = append(records, rec)
	}
}

func TestReaderMapsFieldsByHeader(t *testing.T) {
	path := writeFile(t, "Transaction ID,Item,Quantity\nTXN_1,Cake,5\nTXN_2,Tea,1\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if got := len(r.Header()); got != 3 {
		t.Fatalf("Expected 3 header fields, got %d", got)
	}

	records := drain(t, r)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0]["Transaction ID"] != "TXN_1" || records[0]["Item"] != "Cake" {
		t.Errorf("Unexpected first record: %v", records[0])
	}
	if records[1]["Quantity"] != "1" {
		t.Errorf("Unexpected second record: %v", records[1])
	}
}

func TestReaderSkipsLeadingEmptyLines(t *testing.T) {
	path := writeFile(t, "\n\nTransaction ID,Item\nTXN_1,Cake\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if r.Header()[0] != "Transaction ID" {
		t.Errorf("Header not taken from first non-empty line: %v", r.Header())
	}
	if records := drain(t, r); len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestReaderDropsFieldCountMismatches(t *testing.T) {
	path := writeFile(t, "Transaction ID,Item,Quantity\nTXN_1,Cake,5\nTXN_2,Tea\nTXN_3,Juice,2,extra\nTXN_4,Coffee,1\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	records := drain(t, r)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records after dropping mismatches, got %d", len(records))
	}
	if r.Dropped() != 2 {
		t.Errorf("Expected 2 dropped rows, got %d", r.Dropped())
	}
	if records[1]["Transaction ID"] != "TXN_4" {
		t.Errorf("Expected TXN_4 as second surviving record, got %v", records[1])
	}
}

func TestReaderIsRestartable(t *testing.T) {
	path := writeFile(t, "Transaction ID,Item\nTXN_1,Cake\nTXN_2,Tea\n")

	for run := 0; run < 2; run++ {
		r, err := Open(path)
		if err != nil {
			t.Fatalf("Open failed on run %d: %v", run, err)
		}
		records := drain(t, r)
		r.Close()
		if len(records) != 2 {
			t.Fatalf("Run %d: expected 2 records, got %d", run, len(records))
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error opening missing file")
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	header := []string{"Transaction ID", "Item"}

	w, err := Create(path, header)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Write(Record{"Transaction ID": "TXN_1", "Item": "Cake"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	// Missing fields come out empty, in header order.
	if err := w.Write(Record{"Item": "Tea"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, gotHeader, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(gotHeader) != 2 || gotHeader[0] != "Transaction ID" {
		t.Errorf("Unexpected header: %v", gotHeader)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0]["Item"] != "Cake" {
		t.Errorf("Unexpected first record: %v", records[0])
	}
	if records[1]["Transaction ID"] != "" || records[1]["Item"] != "Tea" {
		t.Errorf("Unexpected second record: %v", records[1])
	}
}

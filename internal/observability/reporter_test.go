package observability

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLogReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(log.New(&buf, "", 0))

	before := testutil.ToFloat64(syncErrors.WithLabelValues("bootstrap"))
	r.Report("ana", errors.New("timeout"), "bootstrap")
	after := testutil.ToFloat64(syncErrors.WithLabelValues("bootstrap"))

	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}
	out := buf.String()
	if !strings.Contains(out, "op=bootstrap") || !strings.Contains(out, `"ana"`) || !strings.Contains(out, "timeout") {
		t.Errorf("log output missing expected fields: %s", out)
	}
}

func TestLogReporter_NilError(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(log.New(&buf, "", 0))
	r.Report("ana", nil, "upload")
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got %q", buf.String())
	}
}

func TestRecordAudit(t *testing.T) {
	RecordAudit(map[string]int{"asymmetric_partner": 2})
	if got := testutil.ToFloat64(auditDefects.WithLabelValues("asymmetric_partner")); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
	RecordAudit(nil)
	if got := testutil.CollectAndCount(auditDefects); got != 0 {
		t.Errorf("expected reset gauge, got %d series", got)
	}
}

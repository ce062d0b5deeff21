package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// Report is a single call made to a Recorder.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

// Recorder is an API that keeps every report so tests can assert on them.
// Reports are also forwarded to the test log.
type Recorder struct {
	t       testing.TB
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder(t testing.TB) *Recorder {
	return &Recorder{t: t}
}

func (r *Recorder) record(kind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, Id: id, Params: params})
	if r.t != nil {
		r.t.Helper()
		r.t.Log(kind, id, fmt.Sprint(params...))
	}
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns the reports of the given kind whose id contains `contains`.
func (r *Recorder) Reports(kind, contains string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind && strings.Contains(report.Id, contains) {
			out = append(out, report)
		}
	}
	return out
}

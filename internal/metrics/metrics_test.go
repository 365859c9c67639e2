package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBuild(t *testing.T) {
	successBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("failure"))

	RecordBuild(true, 150*time.Millisecond)
	RecordBuild(false, time.Second)

	assert.InDelta(t, successBefore+1, testutil.ToFloat64(BuildsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, failureBefore+1, testutil.ToFloat64(BuildsTotal.WithLabelValues("failure")), 0)
	assert.Positive(t, testutil.ToFloat64(LastSuccessfulBuild))
}

func TestRecordProviderFailure(t *testing.T) {
	before := testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("jobs", "fetch"))

	RecordProviderFailure("jobs", "fetch")

	assert.InDelta(t, before+1, testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("jobs", "fetch")), 0)
}

func TestRecordSection(t *testing.T) {
	RecordSection("posts", 4)
	assert.InDelta(t, 4, testutil.ToFloat64(SectionItems.WithLabelValues("posts")), 0)

	RecordSection("posts", 0)
	assert.InDelta(t, 0, testutil.ToFloat64(SectionItems.WithLabelValues("posts")), 0)
}

func TestRecordHTTPRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "page", method: "GET", path: "/page.json", status: 200},
		{name: "bad request", method: "GET", path: "/posts", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordHTTPRequest(tt.method, tt.path, tt.status, 10*time.Millisecond)
				RecordProviderCall("feed", 20*time.Millisecond)
			})
		})
	}
}

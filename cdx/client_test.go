package cdx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/ukwa-discovery/title-export/config"
)

const urlQueryResponse = `<?xml version="1.0" encoding="UTF-8"?>
<wayback>
  <request>
    <startdate>19960101000000</startdate>
    <resultstype>resultstypecapture</resultstype>
  </request>
  <results>
    <result>
      <compressedoffset>123</compressedoffset>
      <mimetype>text/html</mimetype>
      <file>archive-0001.warc.gz</file>
      <urlkey>example.co.uk/</urlkey>
      <capturedate>20200101120000</capturedate>
      <url>http://www.example.co.uk/</url>
      <httpresponsecode>200</httpresponsecode>
    </result>
    <result>
      <capturedate>20210506070809</capturedate>
      <url>http://www.example.co.uk/</url>
    </result>
  </results>
</wayback>
`

const emptyQueryResponse = `<?xml version="1.0" encoding="UTF-8"?>
<wayback>
  <results></results>
</wayback>
`

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CdxBaseURL = "http://cdx.test/cdx"
	cfg.Timeout = 5 * time.Second
	cfg.CacheSize = 8

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestFirstCaptureReturnsEarliestDate(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://cdx.test/cdx",
		httpmock.NewStringResponder(http.StatusOK, urlQueryResponse))

	captured, err := client.FirstCapture(context.Background(), "http://www.example.co.uk/")
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if captured != "20200101120000" {
		t.Fatalf("captured = %q, want 20200101120000", captured)
	}
}

func TestFirstCaptureNotFound(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{name: "http 404", responder: httpmock.NewStringResponder(http.StatusNotFound, "not found")},
		{name: "empty result set", responder: httpmock.NewStringResponder(http.StatusOK, emptyQueryResponse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t)
			httpmock.RegisterResponder(http.MethodGet, "http://cdx.test/cdx", tt.responder)

			captured, err := client.FirstCapture(context.Background(), "http://nowhere.test/")
			if err != nil {
				t.Fatalf("first capture: %v", err)
			}
			if captured != "" {
				t.Fatalf("captured = %q, want empty", captured)
			}
		})
	}
}

func TestFirstCaptureTransportError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://cdx.test/cdx",
		httpmock.NewErrorResponder(context.DeadlineExceeded))

	if _, err := client.FirstCapture(context.Background(), "http://www.example.co.uk/"); err == nil {
		t.Fatalf("expected error from transport failure")
	}
}

func TestFirstCaptureMemoizes(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, "http://cdx.test/cdx",
		httpmock.NewStringResponder(http.StatusOK, urlQueryResponse))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.FirstCapture(ctx, "http://www.example.co.uk/"); err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}

	if calls := httpmock.GetTotalCallCount(); calls != 1 {
		t.Fatalf("index queried %d times, want 1", calls)
	}
}

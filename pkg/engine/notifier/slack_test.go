package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/aquagrid/pkg/network"
)

func testAlert() BurstAlert {
	return BurstAlert{
		RunID:    "run-1",
		Segment:  network.Segment{ID: "PIPE-BRANCH-1", Class: network.ClassBranch, Material: "PVC", Diameter: 200, InstalledYear: 2004},
		DryNodes: []string{"DIST-1", "HOUSE-1-0", "HOUSE-1-1", "HOUSE-1-2"},
		Impact:   network.Impact{AffectedNodes: 4, DryDemandNodes: 3, EstimatedPopulation: 135},
		Recommendations: []network.Recommendation{
			{Title: "Isolate Burst", Action: "Close valves at J-1 and DIST-1", Severity: network.SeverityCritical},
		},
		Rules: []string{"large-outage"},
		At:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSendBurstAlert(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewSlackClient(srv.URL, "#ops", time.Second)
	require.NoError(t, client.SendBurstAlert(context.Background(), testAlert()))

	assert.Equal(t, "#ops", got["channel"])
	assert.Equal(t, "Pipe burst on PIPE-BRANCH-1: 4 nodes dry", got["text"])

	raw, err := json.Marshal(got["blocks"])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "Close valves at J-1 and DIST-1"))
	assert.True(t, strings.Contains(string(raw), "large-outage"))
}

func TestSendBurstAlertNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewSlackClient(srv.URL, "", time.Second).SendBurstAlert(context.Background(), testAlert())
	assert.ErrorContains(t, err, "403")
}

func TestSendBurstAlertDisabled(t *testing.T) {
	var client *SlackClient
	assert.False(t, client.Enabled())
	assert.NoError(t, client.SendBurstAlert(context.Background(), testAlert()))
	assert.NoError(t, NewSlackClient("", "", 0).SendBurstAlert(context.Background(), testAlert()))
}

func TestSendBurstAlertHidesWebhook(t *testing.T) {
	client := NewSlackClient("http://127.0.0.1:1/services/T000/B000/secret", "", time.Second)

	err := client.SendBurstAlert(context.Background(), testAlert())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

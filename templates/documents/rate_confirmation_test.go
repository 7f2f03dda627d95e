package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "$950.50", Money(950.5))
	assert.Equal(t, "$2,450.00", Money(2450))
	assert.Equal(t, "$1,234,567.89", Money(1234567.891))
	assert.Equal(t, "-$1,000.00", Money(-1000))
}

func TestRoute(t *testing.T) {
	rc := &RateConfirmation{}
	assert.Empty(t, rc.Route())

	rc.Stops = []RateConfirmationStop{{Address: "Dallas, TX"}}
	assert.Equal(t, "Dallas, TX", rc.Route())

	rc.Stops = append(rc.Stops, RateConfirmationStop{Address: "Tulsa, OK"}, RateConfirmationStop{Address: "Memphis, TN"})
	assert.Equal(t, "Dallas, TX → Memphis, TN", rc.Route())
}

func TestRenderRateConfirmation(t *testing.T) {
	pickup := time.Date(2024, 3, 11, 8, 30, 0, 0, time.UTC)
	rc := &RateConfirmation{
		ReferenceNumber: "LD-9F8E7D",
		IssuedAt:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		BrokerName:      "Dispatch Solutions",
		DispatcherName:  "Sam",
		CarrierName:     "Acme <script>alert(1)</script> Freight",
		CarrierMC:       "MC123456",
		Rate:            3100,
		DistanceMiles:   452,
		Commodity:       "Paper rolls",
		Stops: []RateConfirmationStop{
			{Type: "Pickup", Name: "Mill", Address: "Dallas, TX", Scheduled: &pickup},
			{Type: "Delivery", Address: "Memphis, TN"},
		},
	}

	html, err := RenderRateConfirmation(context.Background(), rc)
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "RATE CONFIRMATION")
	assert.Contains(t, html, "LD-9F8E7D")
	assert.Contains(t, html, "03/10/2024")
	assert.Contains(t, html, "$3,100.00")
	assert.Contains(t, html, "452 mi")
	assert.Contains(t, html, "Mar 11, 2024 8:30 AM")
	assert.Contains(t, html, "PICK")
	assert.Contains(t, html, "DROP")
	assert.Contains(t, html, "TBD")
	assert.Contains(t, html, "Paper rolls")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

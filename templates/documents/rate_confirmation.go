package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// RateConfirmationStop is one pickup or delivery on the confirmation
type RateConfirmationStop struct {
	Type      string // Pickup, Delivery
	Name      string
	Address   string
	Scheduled *time.Time
}

// RateConfirmation is everything printed on a carrier rate confirmation
type RateConfirmation struct {
	ReferenceNumber string
	IssuedAt        time.Time

	BrokerName     string
	DispatcherName string

	CarrierName  string
	CarrierMC    string
	CarrierDOT   string
	CarrierPhone string
	CarrierEmail string

	Rate          float64
	Commodity     string
	WeightLbs     float64
	DistanceMiles float64
	Notes         string

	Stops []RateConfirmationStop
}

// Route summarizes the first and last stop, e.g. "Dallas, TX → Memphis, TN"
func (r *RateConfirmation) Route() string {
	if len(r.Stops) == 0 {
		return ""
	}
	first, last := r.Stops[0].Address, r.Stops[len(r.Stops)-1].Address
	if len(r.Stops) == 1 {
		return first
	}
	return first + " → " + last
}

const rateConfirmationStyles = `
body { font-family: Helvetica, Arial, sans-serif; color: #000; font-size: 11pt; }
.header { display: flex; justify-content: space-between; border-bottom: 2px solid #000; padding-bottom: 16px; margin-bottom: 16px; }
.header h1 { font-size: 20pt; text-transform: uppercase; margin: 0; }
.title { font-size: 14pt; font-weight: bold; text-align: right; }
.grid { display: flex; gap: 24px; margin-bottom: 24px; }
.box { flex: 1; border: 1px solid #ccc; padding: 12px; }
.label { font-size: 8pt; font-weight: bold; text-transform: uppercase; color: #666; margin-bottom: 6px; }
.stop { display: flex; gap: 12px; margin-bottom: 12px; }
.stop-tag { width: 60px; background: #000; color: #fff; text-align: center; font-weight: bold; padding: 4px 0; }
.signatures { display: flex; gap: 48px; margin-top: 48px; border-top: 2px solid #000; padding-top: 32px; }
.signatures div { flex: 1; border-top: 1px solid #000; padding-top: 4px; font-size: 8pt; font-weight: bold; text-transform: uppercase; }
`

// RateConfirmationDocument renders the confirmation as a standalone HTML page ready for printing
func RateConfirmationDocument(rc *RateConfirmation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		esc := templ.EscapeString[string]

		b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Rate Confirmation `)
		b.WriteString(esc(rc.ReferenceNumber))
		b.WriteString(`</title><style>`)
		b.WriteString(rateConfirmationStyles)
		b.WriteString(`</style></head><body>`)

		// Header
		b.WriteString(`<div class="header"><div><h1>`)
		b.WriteString(esc(rc.BrokerName))
		b.WriteString(`</h1></div><div><div class="title">RATE CONFIRMATION</div>`)
		fmt.Fprintf(&b, `<div>Order #: <strong>%s</strong></div>`, esc(rc.ReferenceNumber))
		fmt.Fprintf(&b, `<div>Date: %s</div></div></div>`, rc.IssuedAt.Format("01/02/2006"))

		// Carrier and rate
		b.WriteString(`<div class="grid"><div class="box"><div class="label">Carrier Information</div>`)
		fmt.Fprintf(&b, `<div><strong>%s</strong></div>`, esc(rc.CarrierName))
		fmt.Fprintf(&b, `<div>MC # %s &nbsp; DOT # %s</div>`, esc(orDash(rc.CarrierMC)), esc(orDash(rc.CarrierDOT)))
		fmt.Fprintf(&b, `<div>%s</div>`, esc(orDash(rc.CarrierPhone)))
		b.WriteString(`</div><div class="box"><div class="label">Rate Details</div>`)
		fmt.Fprintf(&b, `<div>Flat Rate: <strong>%s</strong></div>`, esc(Money(rc.Rate)))
		fmt.Fprintf(&b, `<div>Distance: %s &nbsp; Weight: %s</div>`, esc(formatNumber(rc.DistanceMiles, "mi")), esc(formatNumber(rc.WeightLbs, "lbs")))
		b.WriteString(`<div class="label" style="margin-top:12px">* Rate includes all fuel surcharges.</div></div></div>`)

		// Stops
		b.WriteString(`<h3>LOAD DETAILS</h3>`)
		for _, stop := range rc.Stops {
			tag := "STOP"
			switch stop.Type {
			case "Pickup":
				tag = "PICK"
			case "Delivery":
				tag = "DROP"
			}
			fmt.Fprintf(&b, `<div class="stop"><div class="stop-tag">%s</div><div>`, tag)
			fmt.Fprintf(&b, `<div>%s</div>`, esc(formatDateTime(stop.Scheduled)))
			if stop.Name != "" {
				fmt.Fprintf(&b, `<div><strong>%s</strong></div>`, esc(stop.Name))
			}
			fmt.Fprintf(&b, `<div>%s</div></div></div>`, esc(stop.Address))
		}

		// Notes
		b.WriteString(`<div class="box"><div class="label">Dispatch Notes / Commodities</div>`)
		if rc.Commodity != "" {
			fmt.Fprintf(&b, `<div>Commodity: %s</div>`, esc(rc.Commodity))
		}
		if rc.Notes != "" {
			fmt.Fprintf(&b, `<div>%s</div>`, esc(rc.Notes))
		}
		b.WriteString(`</div>`)

		// Signatures
		fmt.Fprintf(&b, `<div class="signatures"><div>Dispatcher Signature (%s)</div><div>Carrier Signature</div></div>`, esc(rc.DispatcherName))
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RenderRateConfirmation renders the document to an HTML string
func RenderRateConfirmation(ctx context.Context, rc *RateConfirmation) (string, error) {
	var sb strings.Builder
	if err := RateConfirmationDocument(rc).Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

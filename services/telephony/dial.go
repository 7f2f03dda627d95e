package telephony

import (
	"fmt"
	"regexp"
)

var nonDigit = regexp.MustCompile(`\D`)

// E164 formats a number for the carrier: +1 for 10-digit NANP numbers, + otherwise
func E164(number string) string {
	digits := nonDigit.ReplaceAllString(number, "")
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		return "+1" + digits
	}
	return "+" + digits
}

// TelURI returns a tel: link for the OS dialer
func TelURI(number string) string {
	e164 := E164(number)
	if e164 == "" {
		return ""
	}
	return "tel:" + e164
}

// DeskPhoneDialURL returns the Yealink action URI that makes a desk phone on
// the LAN dial the number. Empty when no host is configured.
func DeskPhoneDialURL(host, number string) string {
	digits := nonDigit.ReplaceAllString(number, "")
	if host == "" || digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = "1" + digits
	}
	return fmt.Sprintf("http://%s/servlet?key=number=%s&outgoing_uri=", host, digits)
}

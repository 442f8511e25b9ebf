// time.go - Menschlich lesbare Zeitformatierung
// Hauptfunktionen: HumanTime, HumanDuration
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HumanDuration formatiert eine Dauer als groesste sinnvolle Einheit
func HumanDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	switch {
	case seconds < 1:
		return "Less than a second"
	case seconds == 1:
		return "1 second"
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := int(d.Minutes())
	switch {
	case minutes == 1:
		return "About a minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := int(math.Round(d.Hours()))
	switch {
	case hours == 1:
		return "About an hour"
	case hours < 48:
		return fmt.Sprintf("%d hours", hours)
	case hours < 24*7*2:
		return fmt.Sprintf("%d days", hours/24)
	case hours < 24*30*2:
		return fmt.Sprintf("%d weeks", hours/24/7)
	case hours < 24*365*2:
		return fmt.Sprintf("%d months", hours/24/30)
	}

	return fmt.Sprintf("%d years", int(d.Hours())/24/365)
}

// HumanTime formatiert einen Zeitpunkt relativ zu jetzt
func HumanTime(t time.Time, zeroValue string) string {
	return humanTimeWithCase(t, zeroValue, true)
}

// HumanTimeLower wie HumanTime, aber kleingeschrieben
func HumanTimeLower(t time.Time, zeroValue string) string {
	return humanTimeWithCase(t, zeroValue, false)
}

func humanTimeWithCase(t time.Time, zeroValue string, upperCase bool) string {
	if t.IsZero() {
		return zeroValue
	}

	delta := time.Since(t)
	if delta < 0 {
		s := HumanDuration(-delta) + " from now"
		if !upperCase {
			return strings.ToLower(s)
		}
		return s
	}

	s := HumanDuration(delta) + " ago"
	if !upperCase {
		return strings.ToLower(s)
	}
	return s
}

package service

import (
	"strings"
	"time"
)

const birthdateLayout = "2006-01-02"

// ParseBirthdate acepta fechas YYYY-MM-DD.
func ParseBirthdate(s string) (time.Time, error) {
	return time.Parse(birthdateLayout, strings.TrimSpace(s))
}

// AgeAt calcula la edad cumplida en now; resta uno si aún no llegó el cumpleaños.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

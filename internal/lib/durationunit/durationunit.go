// Package durationunit переводит пары «количество + единица измерения»
// в минуты и форматирует оставшееся время подписки в читаемый вид.
//
// Поддерживаются короткие коды и словесные синонимы единиц:
// m/minute(s), h/hour(s), d/day(s), mo/mon/month(s). Месяц считается
// равным 30 дням.
package durationunit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadUnit возвращается для неизвестной единицы измерения.
var ErrBadUnit = errors.New("bad duration unit")

const (
	minutesPerHour  = 60
	minutesPerDay   = 60 * 24
	minutesPerMonth = 60 * 24 * 30
)

// Minutes переводит количество в заданной единице измерения в минуты.
// Единица нечувствительна к регистру.
func Minutes(amount int, unit string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "m", "min", "minute", "minutes":
		return amount, nil
	case "h", "hour", "hours":
		return amount * minutesPerHour, nil
	case "d", "day", "days":
		return amount * minutesPerDay, nil
	case "mo", "mon", "month", "months":
		return amount * minutesPerMonth, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadUnit, unit)
	}
}

// Pretty форматирует количество секунд в краткую читаемую строку,
// например "2 days 5 hours" или "45 minutes".
func Pretty(secs int64) string {
	if secs <= 0 {
		return "0 seconds"
	}
	mins := secs / 60
	hrs := mins / 60
	days := hrs / 24
	switch {
	case days > 0:
		return fmt.Sprintf("%d days %d hours", days, hrs%24)
	case hrs > 0:
		return fmt.Sprintf("%d hours %d minutes", hrs, mins%60)
	case mins > 0:
		return fmt.Sprintf("%d minutes", mins)
	default:
		return fmt.Sprintf("%d seconds", secs)
	}
}

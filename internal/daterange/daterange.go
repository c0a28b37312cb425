// Package daterange кодирует и разбирает человекочитаемые диапазоны дат
// вида "26–28 ноя 2025", "28 ноя – 2 дек 2025", "30 дек 2025 – 2 янв 2026"
// и "10 май 2025".
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kazwonder/tourbooking/internal/domain"
)

// FormatError — строка не соответствует грамматике диапазона. Input хранит
// проблемный фрагмент исходной строки.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date range %q: %s", e.Input, e.Reason)
}

// Codec хранит таблицу сокращений месяцев. Отдельные экземпляры позволяют
// подменять локаль без глобального состояния.
type Codec struct {
	names  [13]string            // номер месяца -> сокращение при форматировании
	months map[string]time.Month // токен при разборе -> номер месяца
}

// New возвращает кодек с русской таблицей месяцев. При разборе дополнительно
// принимаются разговорные формы "мая" и "нояб".
func New() *Codec {
	c := &Codec{
		names: [13]string{
			"", "янв", "фев", "мар", "апр", "май", "июн",
			"июл", "авг", "сен", "окт", "ноя", "дек",
		},
		months: map[string]time.Month{"мая": time.May, "нояб": time.November},
	}
	for m := time.January; m <= time.December; m++ {
		c.months[c.names[m]] = m
	}
	return c
}

var std = New()

// Format — свободная функция поверх кодека по умолчанию.
func Format(start, end domain.Date) string { return std.Format(start, end) }

// Parse — свободная функция поверх кодека по умолчанию.
func Parse(s string) (domain.Date, domain.Date, error) { return std.Parse(s) }

// Format возвращает каноничное отображение диапазона. Разделитель — всегда
// en-dash, не дефис.
func (c *Codec) Format(start, end domain.Date) string {
	switch {
	case start.Equal(end.Time):
		return fmt.Sprintf("%d %s %d", start.Day(), c.names[start.Month()], start.Year())
	case start.Year() == end.Year() && start.Month() == end.Month():
		return fmt.Sprintf("%d–%d %s %d", start.Day(), end.Day(), c.names[start.Month()], start.Year())
	case start.Year() == end.Year():
		return fmt.Sprintf("%d %s – %d %s %d",
			start.Day(), c.names[start.Month()], end.Day(), c.names[end.Month()], start.Year())
	default:
		return fmt.Sprintf("%d %s %d – %d %s %d",
			start.Day(), c.names[start.Month()], start.Year(),
			end.Day(), c.names[end.Month()], end.Year())
	}
}

var dashSplit = regexp.MustCompile(`\s*[–-]\s*`)

// Parse — обратная операция к Format. Правая граница диапазона всегда полная
// ("DD MON YYYY"); левая может опускать месяц и год, тогда они наследуются
// от правой. Регистр месяца не важен.
func (c *Codec) Parse(s string) (domain.Date, domain.Date, error) {
	var zero domain.Date

	str := strings.ToLower(strings.TrimSpace(s))
	parts := dashSplit.Split(str, -1)

	// Один день: "10 май 2025"
	if len(parts) == 1 {
		d, err := c.parseFull(parts[0])
		if err != nil {
			return zero, zero, err
		}
		return d, d, nil
	}

	if len(parts) != 2 {
		return zero, zero, &FormatError{Input: s, Reason: "expected a single dash"}
	}

	end, err := c.parseFull(parts[1])
	if err != nil {
		return zero, zero, err
	}

	start, err := c.parseLeft(parts[0], end)
	if err != nil {
		return zero, zero, err
	}

	if start.After(end.Time) {
		return zero, zero, &FormatError{Input: s, Reason: "start after end"}
	}
	return start, end, nil
}

// parseFull разбирает полную дату "DD MON YYYY".
func (c *Codec) parseFull(part string) (domain.Date, error) {
	var zero domain.Date

	fields := strings.Fields(part)
	if len(fields) != 3 {
		return zero, &FormatError{Input: part, Reason: "expected \"day month year\""}
	}

	day, err := parseDay(fields[0])
	if err != nil {
		return zero, err
	}
	month, ok := c.months[fields[1]]
	if !ok {
		return zero, &FormatError{Input: fields[1], Reason: "unknown month"}
	}
	year, err := parseYear(fields[2])
	if err != nil {
		return zero, err
	}
	return makeDate(year, month, day, part)
}

// parseLeft разбирает левую границу: "DD", "DD MON" или "DD MON YYYY".
// Пропущенные месяц и год берутся из правой границы.
func (c *Codec) parseLeft(part string, end domain.Date) (domain.Date, error) {
	var zero domain.Date

	fields := strings.Fields(part)
	if len(fields) < 1 || len(fields) > 3 {
		return zero, &FormatError{Input: part, Reason: "expected \"day [month [year]]\""}
	}

	day, err := parseDay(fields[0])
	if err != nil {
		return zero, err
	}

	month := end.Month()
	if len(fields) >= 2 {
		m, ok := c.months[fields[1]]
		if !ok {
			return zero, &FormatError{Input: fields[1], Reason: "unknown month"}
		}
		month = m
	}

	year := end.Year()
	if len(fields) == 3 {
		year, err = parseYear(fields[2])
		if err != nil {
			return zero, err
		}
	}
	return makeDate(year, month, day, part)
}

func parseDay(tok string) (int, error) {
	d, err := strconv.Atoi(tok)
	if err != nil || d < 1 {
		return 0, &FormatError{Input: tok, Reason: "invalid day"}
	}
	return d, nil
}

func parseYear(tok string) (int, error) {
	if len(tok) != 4 {
		return 0, &FormatError{Input: tok, Reason: "year must have four digits"}
	}
	y, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &FormatError{Input: tok, Reason: "invalid year"}
	}
	return y, nil
}

// makeDate отсекает несуществующие дни вроде "31 фев": time.Date нормализует
// переполнение, поэтому результат сверяется с исходными компонентами.
func makeDate(year int, month time.Month, day int, part string) (domain.Date, error) {
	d := domain.NewDate(year, month, day)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return domain.Date{}, &FormatError{Input: part, Reason: "no such calendar day"}
	}
	return d, nil
}

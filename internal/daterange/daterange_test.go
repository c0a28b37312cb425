package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		start    domain.Date
		end      domain.Date
		expected string
	}{
		{
			name:     "Single day",
			start:    domain.NewDate(2025, time.May, 10),
			end:      domain.NewDate(2025, time.May, 10),
			expected: "10 май 2025",
		},
		{
			name:     "Same month",
			start:    domain.NewDate(2025, time.November, 26),
			end:      domain.NewDate(2025, time.November, 28),
			expected: "26–28 ноя 2025",
		},
		{
			name:     "Same year, different months",
			start:    domain.NewDate(2025, time.November, 28),
			end:      domain.NewDate(2025, time.December, 2),
			expected: "28 ноя – 2 дек 2025",
		},
		{
			name:     "Different years",
			start:    domain.NewDate(2025, time.December, 30),
			end:      domain.NewDate(2026, time.January, 2),
			expected: "30 дек 2025 – 2 янв 2026",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.start, tc.end))
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedStart domain.Date
		expectedEnd   domain.Date
	}{
		{
			name:          "Single day",
			input:         "10 май 2025",
			expectedStart: domain.NewDate(2025, time.May, 10),
			expectedEnd:   domain.NewDate(2025, time.May, 10),
		},
		{
			name:          "Left side without month and year",
			input:         "26–28 ноя 2025",
			expectedStart: domain.NewDate(2025, time.November, 26),
			expectedEnd:   domain.NewDate(2025, time.November, 28),
		},
		{
			name:          "Left side without year",
			input:         "28 ноя – 2 дек 2025",
			expectedStart: domain.NewDate(2025, time.November, 28),
			expectedEnd:   domain.NewDate(2025, time.December, 2),
		},
		{
			name:          "Fully specified range",
			input:         "30 дек 2025 – 2 янв 2026",
			expectedStart: domain.NewDate(2025, time.December, 30),
			expectedEnd:   domain.NewDate(2026, time.January, 2),
		},
		{
			name:          "Hyphen instead of en-dash",
			input:         "26 - 28 ноя 2025",
			expectedStart: domain.NewDate(2025, time.November, 26),
			expectedEnd:   domain.NewDate(2025, time.November, 28),
		},
		{
			name:          "Long november form",
			input:         "26–28 нояб 2025",
			expectedStart: domain.NewDate(2025, time.November, 26),
			expectedEnd:   domain.NewDate(2025, time.November, 28),
		},
		{
			name:          "Genitive may form",
			input:         "10 мая 2025",
			expectedStart: domain.NewDate(2025, time.May, 10),
			expectedEnd:   domain.NewDate(2025, time.May, 10),
		},
		{
			name:          "Mixed case and padding",
			input:         "  26–28 НОЯ 2025 ",
			expectedStart: domain.NewDate(2025, time.November, 26),
			expectedEnd:   domain.NewDate(2025, time.November, 28),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := Parse(tc.input)

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedStart, start)
			assert.Equal(t, tc.expectedEnd, end)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		fragment string
	}{
		{name: "Unknown month", input: "15 foo 2025", fragment: "foo"},
		{name: "Unknown month in range", input: "15 foo – 18 ноя 2025", fragment: "foo"},
		{name: "Start after end", input: "28–26 ноя 2025", fragment: "28–26 ноя 2025"},
		{name: "Right side incomplete", input: "26 ноя – 28 ноя", fragment: "28 ноя"},
		{name: "Two-digit year", input: "26–28 ноя 25", fragment: "25"},
		{name: "No such calendar day", input: "31 фев 2025", fragment: "31 фев 2025"},
		{name: "Empty string", input: "", fragment: ""},
		{name: "Too many dashes", input: "1 – 2 – 3 янв 2025", fragment: "1 – 2 – 3 янв 2025"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.input)

			var fe *FormatError
			assert.Error(t, err)
			assert.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.fragment, fe.Input)
		})
	}
}

// Parse должен быть точной обратной операцией к Format.
func TestRoundTrip(t *testing.T) {
	ranges := [][2]domain.Date{
		{domain.NewDate(2025, time.May, 10), domain.NewDate(2025, time.May, 10)},
		{domain.NewDate(2025, time.November, 26), domain.NewDate(2025, time.November, 28)},
		{domain.NewDate(2025, time.November, 28), domain.NewDate(2025, time.December, 2)},
		{domain.NewDate(2025, time.December, 30), domain.NewDate(2026, time.January, 2)},
		{domain.NewDate(2025, time.January, 1), domain.NewDate(2025, time.December, 31)},
		{domain.NewDate(2024, time.February, 29), domain.NewDate(2024, time.March, 1)},
	}

	for _, r := range ranges {
		formatted := Format(r[0], r[1])
		start, end, err := Parse(formatted)

		assert.NoError(t, err, formatted)
		assert.Equal(t, r[0], start, formatted)
		assert.Equal(t, r[1], end, formatted)
	}
}

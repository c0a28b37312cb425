package domain

// Tour — описательная карточка тура. Поля-описания для ядра непрозрачны,
// они загружаются из каталога и отдаются наружу как есть.
type Tour struct {
	ID            string
	Title         string
	Description   []string
	Images        []string
	Included      []string
	Excluded      []string
	WhatToBring   []string
	ImportantInfo []ImportantInfoItem
	FAQ           []FAQItem
	Organizer     Organizer
	MapPopup      string
	MapLat        float64
	MapLong       float64
}

type ImportantInfoItem struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Organizer struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Photo  string  `json:"photo"`
}

// Booking — коммерческие условия тура: базовая цена, длительность,
// предоплата за место и вместимость одного заезда.
type Booking struct {
	ID         int64
	TourID     string
	Cost       int64
	Currency   string
	Days       int
	Prepayment int64
	MaxSeats   int
}

// BookingDate — конкретный заезд с собственной ценой и остатком мест.
type BookingDate struct {
	ID        int64
	BookingID int64
	StartDate Date
	Price     int64
	Seats     int
}

// EndDate — последний день заезда при длительности days.
func (d BookingDate) EndDate(days int) Date {
	return DateOf(d.StartDate.AddDate(0, 0, days-1))
}

// Active — заезд доступен для бронирования, пока остались места.
func (d BookingDate) Active() bool {
	return d.Seats > 0
}

type Review struct {
	ID     int64
	TourID string
	Name   string
	Date   Date
	Rating int
	Text   string
}

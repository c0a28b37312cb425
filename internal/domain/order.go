package domain

import (
	"fmt"
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

const (
	minPrimaryAge    = 18
	minAdditionalAge = 4
)

// PrimaryTraveler — основной путешественник, на него оформляется заказ.
type PrimaryTraveler struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DOB       Date   `json:"dob"`
	Gender    Gender `json:"gender"`
}

// AdditionalTraveler — попутчик. Все поля необязательны, но если дата
// рождения указана, она проверяется на минимальный возраст.
type AdditionalTraveler struct {
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	DOB       *Date   `json:"dob,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
}

// FieldViolation — нарушение правила валидации данных путешественника.
type FieldViolation struct {
	Traveler string
	Field    string
	Rule     string
}

func (v *FieldViolation) Error() string {
	return fmt.Sprintf("%s.%s: %s", v.Traveler, v.Field, v.Rule)
}

// ageOn считает полные годы на дату today.
func ageOn(dob Date, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// Validate проверяет обязательные поля и возраст (не моложе 18 лет на
// момент проверки). Возвращает nil либо первое найденное нарушение.
func (t PrimaryTraveler) Validate(today time.Time) *FieldViolation {
	if strings.TrimSpace(t.FirstName) == "" {
		return &FieldViolation{Traveler: "primary", Field: "firstName", Rule: "is required"}
	}
	if strings.TrimSpace(t.LastName) == "" {
		return &FieldViolation{Traveler: "primary", Field: "lastName", Rule: "is required"}
	}
	if !strings.Contains(t.Email, "@") {
		return &FieldViolation{Traveler: "primary", Field: "email", Rule: "must be a valid email address"}
	}
	if strings.TrimSpace(t.Phone) == "" {
		return &FieldViolation{Traveler: "primary", Field: "phone", Rule: "is required"}
	}
	if t.DOB.IsZero() {
		return &FieldViolation{Traveler: "primary", Field: "dob", Rule: "is required"}
	}
	if t.Gender != GenderMale && t.Gender != GenderFemale {
		return &FieldViolation{Traveler: "primary", Field: "gender", Rule: "must be male or female"}
	}
	if ageOn(t.DOB, today) < minPrimaryAge {
		return &FieldViolation{Traveler: "primary", Field: "dob", Rule: "traveler must be at least 18 years old"}
	}
	return nil
}

// Validate проверяет попутчика с индексом idx (для адресации ошибки).
func (t AdditionalTraveler) Validate(idx int, today time.Time) *FieldViolation {
	name := fmt.Sprintf("additional[%d]", idx)
	if t.Gender != nil && *t.Gender != GenderMale && *t.Gender != GenderFemale {
		return &FieldViolation{Traveler: name, Field: "gender", Rule: "must be male or female"}
	}
	if t.DOB != nil && ageOn(*t.DOB, today) < minAdditionalAge {
		return &FieldViolation{Traveler: name, Field: "dob", Rule: "traveler must be at least 4 years old"}
	}
	return nil
}

// Order — подтверждённый заказ тура. После создания не изменяется.
type Order struct {
	ID                  int64
	UserID              int64
	TourID              string
	TourTitle           string
	BookingDateID       int64
	DateRange           string
	ParticipantsCount   int
	TotalAmount         int64
	PrepaymentAmount    int64
	Currency            string
	PrimaryTraveler     PrimaryTraveler
	AdditionalTravelers []AdditionalTraveler
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const OrderStatusConfirmed = "confirmed"

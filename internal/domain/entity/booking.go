package entity

import "time"

const DefaultLanguage = "en"

// Passenger holds contact data for a traveller
type Passenger struct {
	ID                string
	Name              string
	Email             string
	PhoneNumber       string
	PreferredLanguage string
}

// Language returns the preferred language, falling back to DefaultLanguage
func (p Passenger) Language() string {
	if p.PreferredLanguage == "" {
		return DefaultLanguage
	}
	return p.PreferredLanguage
}

// Booking links a passenger to a flight
type Booking struct {
	ID              string
	FlightID        string
	PassengerID     string
	PassengerStatus string
	TicketPrice     float64
	FareClass       string
	SeatNumber      string
	CreatedAt       time.Time
}

// BookingWithPassenger is a booking joined with its passenger
type BookingWithPassenger struct {
	Booking
	Passenger Passenger
}

package models

import "github.com/google/uuid"

// Booking status values. A request starts as pending and is advanced only
// by the booking state machine.
const (
	BookingPending   = "pending"
	BookingSubmitted = "submitted"
	BookingConfirmed = "confirmed"
	BookingFailed    = "failed"
)

// ContactInfo is the requester's contact details for a viewing.
type ContactInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// BookingRequest is one viewing reservation attempt. Status is the only
// field that mutates after creation.
type BookingRequest struct {
	ID           string `json:"id"`
	PropertyID   string `json:"property_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:MM, 24h
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Message      string `json:"message"`
	Status       string `json:"status"`
}

// NewBookingRequest builds a pending request for the given slot.
func NewBookingRequest(propertyID, date, timeValue string, contact ContactInfo) *BookingRequest {
	return &BookingRequest{
		ID:           uuid.NewString(),
		PropertyID:   propertyID,
		Date:         date,
		Time:         timeValue,
		ContactName:  contact.Name,
		ContactEmail: contact.Email,
		ContactPhone: contact.Phone,
		Message:      contact.Message,
		Status:       BookingPending,
	}
}

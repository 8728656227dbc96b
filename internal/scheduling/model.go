package scheduling

import "time"

// Visit types accepted by the scheduler.
const (
	VisitTypeTestDrive = "test_drive"
	VisitTypeVisit     = "visita"
)

// Rejection reasons returned in VisitResult.Reason.
const (
	ReasonMissingContact         = "missing_contact"
	ReasonMissingVehicleInterest = "missing_vehicle_interest"
	ReasonClosedSunday           = "closed_sunday"
	ReasonPastDate               = "past_date"
	ReasonTypeMismatch           = "type_mismatch"
	ReasonPersistenceError       = "persistence_error"
)

// Appointment is a confirmed store visit. ScheduledDate is always a
// canonical YYYY-MM-DD string and never falls on a Sunday.
type Appointment struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customer_name"`
	Phone           string    `json:"phone"`
	ScheduledDate   string    `json:"scheduled_date"`
	ScheduledTime   string    `json:"scheduled_time"`
	VisitType       string    `json:"visit_type"`
	VehicleInterest string    `json:"vehicle_interest"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// VisitRequest is the free-form scheduling request extracted from a
// schedule_visit tool call.
type VisitRequest struct {
	CustomerName    string
	Phone           string
	DateText        string
	TimeText        string
	VisitType       string
	VehicleInterest string
	ConversationID  string
	// ReferenceNow anchors relative date expressions; zero means time.Now
	// in the dealership timezone.
	ReferenceNow time.Time
}

// VisitResult is the single typed outcome of a booking attempt. Success is
// only ever true after the appointment insert is confirmed; every failure
// path flows through the same type with a reason.
type VisitResult struct {
	Success       bool     `json:"success"`
	Reason        string   `json:"reason,omitempty"`
	Message       string   `json:"message"`
	AppointmentID string   `json:"appointment_id,omitempty"`
	LeadID        string   `json:"lead_id,omitempty"`
	ScheduledDate string   `json:"scheduled_date,omitempty"`
	Alternatives  []string `json:"alternatives,omitempty"`
}

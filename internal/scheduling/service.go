package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// pickupWords are the body-style cues that mean the customer wants an
// open-bed truck.
var pickupWords = []string{"picape", "pickup", "pick-up", "caminhonete", "cacamba", "caçamba"}

// Service validates scheduling requests and, only after every check passes,
// persists the lead and the appointment.
type Service struct {
	appointments AppointmentRepository
	leads        leads.Repository
	catalog      *catalog.Service
	location     *time.Location
	logger       *logging.Logger
}

// NewService builds the scheduling validator & writer.
func NewService(appointments AppointmentRepository, leadRepo leads.Repository, catalogSvc *catalog.Service, timezone string, logger *logging.Logger) *Service {
	if appointments == nil {
		panic("scheduling: appointment repository required")
	}
	if leadRepo == nil {
		panic("scheduling: lead repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		appointments: appointments,
		leads:        leadRepo,
		catalog:      catalogSvc,
		location:     loc,
		logger:       logger,
	}
}

// ScheduleVisit runs the booking state machine. The result is rejected or
// accepted; acceptance happens only after the appointment insert succeeds,
// so a store failure can never read as a confirmed booking.
func (s *Service) ScheduleVisit(ctx context.Context, req VisitRequest) VisitResult {
	now := req.ReferenceNow
	if now.IsZero() {
		now = time.Now().In(s.location)
	}

	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return reject(ReasonMissingContact, missingContactMessage(name, phone))
	}

	interest := strings.TrimSpace(req.VehicleInterest)
	if len(interest) < 2 {
		return reject(ReasonMissingVehicleInterest,
			"Qual veículo você gostaria de ver na visita? Me diga o modelo que você tem em mente.")
	}

	dateStr := NormalizeDate(req.DateText, now)
	scheduled, err := time.ParseInLocation(dateLayout, dateStr, s.location)
	if err != nil {
		// NormalizeDate only emits canonical dates; guard anyway.
		scheduled = now
		dateStr = now.Format(dateLayout)
	}

	if scheduled.Weekday() == time.Sunday {
		next := NextBusinessDay(scheduled)
		return reject(ReasonClosedSunday, fmt.Sprintf(
			"Aos domingos a loja não abre. Posso agendar para %s (%s)?",
			next.Format("02/01/2006"), weekdayPT(next.Weekday())))
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	if scheduled.Before(today) {
		next := NextBusinessDay(now)
		return reject(ReasonPastDate, fmt.Sprintf(
			"Essa data já passou. Que tal %s (%s)?",
			next.Format("02/01/2006"), weekdayPT(next.Weekday())))
	}

	if result, mismatch := s.checkBodyStyle(ctx, interest); mismatch {
		return result
	}

	visitType := normalizeVisitType(req.VisitType)
	lead, err := s.leads.UpsertByPhone(ctx, &leads.UpsertLeadRequest{
		Name:               name,
		Phone:              phone,
		VehiclesOfInterest: []string{interest},
		AppointmentSet:     true,
		ConversationID:     req.ConversationID,
	})
	if err != nil {
		s.logger.Error("scheduling: lead upsert failed", "error", err, "phone", phone)
		return reject(ReasonPersistenceError, persistenceErrorMessage)
	}

	appt := &Appointment{
		ID:              uuid.NewString(),
		CustomerName:    name,
		Phone:           phone,
		ScheduledDate:   dateStr,
		ScheduledTime:   strings.TrimSpace(req.TimeText),
		VisitType:       visitType,
		VehicleInterest: interest,
		Status:          "agendado",
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		s.logger.Error("scheduling: appointment insert failed", "error", err, "phone", phone)
		return reject(ReasonPersistenceError, persistenceErrorMessage)
	}

	return VisitResult{
		Success:       true,
		Message:       confirmationMessage(name, scheduled, appt.ScheduledTime, visitType),
		AppointmentID: appt.ID,
		LeadID:        lead.ID,
		ScheduledDate: dateStr,
	}
}

// checkBodyStyle catches the Fiorino collision: customers asking for a
// "caminhonete fiorino" are describing an open-bed truck, but the Fiorino
// in stock is a closed-body furgão.
func (s *Service) checkBodyStyle(ctx context.Context, interest string) (VisitResult, bool) {
	lower := strings.ToLower(interest)
	wantsPickup := false
	for _, word := range pickupWords {
		if strings.Contains(lower, word) {
			wantsPickup = true
			break
		}
	}
	if !wantsPickup {
		return VisitResult{}, false
	}

	isFiorino := strings.Contains(lower, "fiorino")
	if !isFiorino && s.catalog != nil {
		if match, err := s.catalog.FindByName(ctx, stripPickupWords(lower)); err == nil && match != nil {
			isFiorino = strings.Contains(strings.ToLower(match.Name), "fiorino")
		}
	}
	if !isFiorino {
		return VisitResult{}, false
	}

	alternatives := s.pickupAlternatives(ctx)
	result := reject(ReasonTypeMismatch, fmt.Sprintf(
		"A Fiorino é um furgão fechado, não uma picape de caçamba aberta. Temos estas picapes disponíveis: %s. Quer agendar para ver alguma delas?",
		strings.Join(alternatives, ", ")))
	result.Alternatives = alternatives
	return result, true
}

func (s *Service) pickupAlternatives(ctx context.Context) []string {
	if s.catalog != nil {
		result := s.catalog.Recommend(ctx, catalog.RecommendRequest{
			Categories: []string{"picape"},
			MaxResults: 3,
		})
		if len(result.Vehicles) > 0 {
			names := make([]string, 0, len(result.Vehicles))
			for _, v := range result.Vehicles {
				names = append(names, v.Name)
			}
			return names
		}
	}
	return []string{"Fiat Strada Freedom", "Volkswagen Saveiro Robust"}
}

// stripPickupWords drops the body-style cues and filler so only the model
// name is left for the catalog lookup.
func stripPickupWords(interest string) string {
	kept := make([]string, 0, 4)
	for _, word := range strings.Fields(interest) {
		skip := word == "de" || word == "um" || word == "uma"
		for _, pw := range pickupWords {
			if word == pw {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

func reject(reason, message string) VisitResult {
	return VisitResult{Success: false, Reason: reason, Message: message}
}

const persistenceErrorMessage = "Não consegui confirmar o agendamento agora por uma falha no sistema. Pode tentar de novo em alguns minutos?"

func missingContactMessage(name, phone string) string {
	switch {
	case name == "" && phone == "":
		return "Para agendar a visita preciso do seu nome completo e de um telefone de contato."
	case name == "":
		return "Para agendar a visita preciso do seu nome completo. Como você se chama?"
	default:
		return "Para agendar a visita preciso de um telefone de contato. Qual o seu número?"
	}
}

func confirmationMessage(name string, date time.Time, timeText, visitType string) string {
	what := "sua visita"
	if visitType == VisitTypeTestDrive {
		what = "seu test drive"
	}
	msg := fmt.Sprintf("Perfeito, %s! Agendei %s para %s (%s)",
		firstName(name), what, date.Format("02/01/2006"), weekdayPT(date.Weekday()))
	if timeText != "" {
		msg += " às " + timeText
	}
	return msg + ". Até lá!"
}

func normalizeVisitType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == VisitTypeTestDrive || normalized == "testdrive" {
		return VisitTypeTestDrive
	}
	return VisitTypeVisit
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full
	}
	return parts[0]
}

func weekdayPT(wd time.Weekday) string {
	switch wd {
	case time.Sunday:
		return "domingo"
	case time.Monday:
		return "segunda-feira"
	case time.Tuesday:
		return "terça-feira"
	case time.Wednesday:
		return "quarta-feira"
	case time.Thursday:
		return "quinta-feira"
	case time.Friday:
		return "sexta-feira"
	default:
		return "sábado"
	}
}

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ActivityType string

const (
	ActivityFlightBooked      ActivityType = "flight_booked"
	ActivityFlightRescheduled ActivityType = "flight_rescheduled"
	ActivityFlightCanceled    ActivityType = "flight_canceled"
	ActivityPaymentReceived   ActivityType = "payment_received"
	ActivityMarkedFreeService ActivityType = "marked_free_service"
	ActivityNote              ActivityType = "note"
	ActivityOther             ActivityType = "other"
)

var ErrInvalidActivity = errors.New("invalid activity payload")

// ActivityPayload is implemented by every typed activity variant.
type ActivityPayload interface {
	ActivityType() ActivityType
	Validate() error
}

// FlightBooked is recorded when a flight is created for a client
type FlightBooked struct {
	FlightID   string    `json:"flightId"`
	Airline    string    `json:"airline"`
	FlightDate time.Time `json:"flightDate"`
}

func (FlightBooked) ActivityType() ActivityType { return ActivityFlightBooked }

func (p FlightBooked) Validate() error {
	if p.FlightID == "" || p.Airline == "" || p.FlightDate.IsZero() {
		return fmt.Errorf("%w: flight_booked needs flightId, airline and flightDate", ErrInvalidActivity)
	}
	return nil
}

type FlightRescheduled struct {
	FlightID   string       `json:"flightId"`
	Airline    string       `json:"airline"`
	FlightDate time.Time    `json:"flightDate"`
	Status     FlightStatus `json:"status"`
}

func (FlightRescheduled) ActivityType() ActivityType { return ActivityFlightRescheduled }

func (p FlightRescheduled) Validate() error {
	if p.FlightID == "" || p.FlightDate.IsZero() {
		return fmt.Errorf("%w: flight_rescheduled needs flightId and flightDate", ErrInvalidActivity)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: flight_rescheduled has unknown status %q", ErrInvalidActivity, p.Status)
	}
	return nil
}

type FlightCanceled struct {
	FlightID string `json:"flightId"`
	Airline  string `json:"airline"`
}

func (FlightCanceled) ActivityType() ActivityType { return ActivityFlightCanceled }

func (p FlightCanceled) Validate() error {
	if p.FlightID == "" {
		return fmt.Errorf("%w: flight_canceled needs flightId", ErrInvalidActivity)
	}
	return nil
}

type PaymentReceived struct {
	PaymentID string          `json:"paymentId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
}

func (PaymentReceived) ActivityType() ActivityType { return ActivityPaymentReceived }

func (p PaymentReceived) Validate() error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment_received amount must be positive", ErrInvalidActivity)
	}
	if _, err := ParsePaymentMethod(string(p.Method)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidActivity, err)
	}
	return nil
}

type MarkedFreeService struct{}

func (MarkedFreeService) ActivityType() ActivityType { return ActivityMarkedFreeService }
func (MarkedFreeService) Validate() error           { return nil }

type Note struct {
	Text string `json:"text"`
}

func (Note) ActivityType() ActivityType { return ActivityNote }

func (p Note) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("%w: note text is empty", ErrInvalidActivity)
	}
	return nil
}

type Other struct {
	Detail string `json:"detail,omitempty"`
}

func (Other) ActivityType() ActivityType { return ActivityOther }
func (Other) Validate() error           { return nil }

// ActivityLog is one entry of a client's timeline
type ActivityLog struct {
	ID          string
	ClientID    string
	Description string
	Payload     ActivityPayload
	CreatedAt   time.Time
}

// NewActivity builds a timeline entry, rejecting payloads whose shape does not fit their type.
func NewActivity(id, clientID, description string, payload ActivityPayload, at time.Time) (*ActivityLog, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidActivity)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &ActivityLog{
		ID:          id,
		ClientID:    clientID,
		Description: description,
		Payload:     payload,
		CreatedAt:   at,
	}, nil
}

// Type returns the discriminator of the payload
func (a *ActivityLog) Type() ActivityType {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.ActivityType()
}

type activityJSON struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"clientId"`
	Type        ActivityType    `json:"type"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (a ActivityLog) MarshalJSON() ([]byte, error) {
	meta, err := json.Marshal(a.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(activityJSON{
		ID:          a.ID,
		ClientID:    a.ClientID,
		Type:        a.Type(),
		Description: a.Description,
		Metadata:    meta,
		CreatedAt:   a.CreatedAt,
	})
}

func (a *ActivityLog) UnmarshalJSON(data []byte) error {
	var raw activityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := DecodeActivityPayload(raw.Type, raw.Metadata)
	if err != nil {
		return err
	}
	*a = ActivityLog{
		ID:          raw.ID,
		ClientID:    raw.ClientID,
		Description: raw.Description,
		Payload:     payload,
		CreatedAt:   raw.CreatedAt,
	}
	return nil
}

// DecodeActivityPayload decodes metadata into the variant selected by t.
// Unknown fields are rejected.
func DecodeActivityPayload(t ActivityType, metadata []byte) (ActivityPayload, error) {
	var payload ActivityPayload
	switch t {
	case ActivityFlightBooked:
		payload = &FlightBooked{}
	case ActivityFlightRescheduled:
		payload = &FlightRescheduled{}
	case ActivityFlightCanceled:
		payload = &FlightCanceled{}
	case ActivityPaymentReceived:
		payload = &PaymentReceived{}
	case ActivityMarkedFreeService:
		payload = &MarkedFreeService{}
	case ActivityNote:
		payload = &Note{}
	case ActivityOther:
		payload = &Other{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidActivity, t)
	}

	if len(bytes.TrimSpace(metadata)) > 0 && !bytes.Equal(bytes.TrimSpace(metadata), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(metadata))
		dec.DisallowUnknownFields()
		if err := dec.Decode(payload); err != nil {
			return nil, fmt.Errorf("%w: %s metadata: %v", ErrInvalidActivity, t, err)
		}
	}

	// Return the value form so callers can type-switch on the variant structs.
	var value ActivityPayload
	switch p := payload.(type) {
	case *FlightBooked:
		value = *p
	case *FlightRescheduled:
		value = *p
	case *FlightCanceled:
		value = *p
	case *PaymentReceived:
		value = *p
	case *MarkedFreeService:
		value = *p
	case *Note:
		value = *p
	case *Other:
		value = *p
	}
	if err := value.Validate(); err != nil {
		return nil, err
	}
	return value, nil
}

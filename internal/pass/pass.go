// Package pass builds gate-pass credential payloads for approved visit
// applications and renders them as scannable QR codes.
//
// The payload JSON is the contract scanned at the gate: its field names and
// values must stay stable across releases.
package pass

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// CompanyName is the fixed organization label embedded in every issued pass.
const CompanyName = "SAIL - Steel Authority of India Limited"

// PassValidity is how long an issued pass stays valid after approval.
const PassValidity = 24 * time.Hour

// purposeMaxRunes bounds the purpose text in the encoded QR form to keep
// scannable density reasonable.
const purposeMaxRunes = 50

// Payload is the structured data embedded in the issued scannable code,
// proving an approved visit.
type Payload struct {
	Type          string  `json:"type"` // Always "GATE_PASS"
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Department    string  `json:"department"`
	Purpose       string  `json:"purpose"`
	VisitDate     string  `json:"visitDate"`
	VisitTime     string  `json:"visitTime"`
	Duration      string  `json:"duration"`
	ApprovedBy    string  `json:"approvedBy"`
	ApprovedAt    string  `json:"approvedAt"`
	VehicleNumber *string `json:"vehicleNumber"` // null when no vehicle was declared
	CompanyName   string  `json:"companyName"`
	ValidUntil    string  `json:"validUntil"`
}

// BuildPayload assembles the credential payload for an application being
// approved. approvedAt stamps both the approval time and the validity
// deadline (approvedAt + PassValidity).
func BuildPayload(app *models.Application, approvedBy string, approvedAt time.Time) Payload {
	var vehicle *string
	if app.VehicleNumber != "" {
		v := app.VehicleNumber
		vehicle = &v
	}

	return Payload{
		Type:          "GATE_PASS",
		ID:            app.ID,
		Name:          app.UserName,
		Email:         app.UserEmail,
		Phone:         app.UserPhone,
		Department:    app.Department,
		Purpose:       app.Purpose,
		VisitDate:     app.VisitDate,
		VisitTime:     app.VisitTime,
		Duration:      app.Duration,
		ApprovedBy:    approvedBy,
		ApprovedAt:    approvedAt.UTC().Format(time.RFC3339),
		VehicleNumber: vehicle,
		CompanyName:   CompanyName,
		ValidUntil:    approvedAt.Add(PassValidity).UTC().Format(time.RFC3339),
	}
}

// Marshal serializes the payload to its canonical JSON form, the exact
// bytes stored on the application record.
func (p Payload) Marshal() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal pass payload: %w", err)
	}
	return string(data), nil
}

// Simplified returns a copy with the purpose truncated for QR encoding.
// The stored payload keeps the full text; only the scannable form shrinks.
func (p Payload) Simplified() Payload {
	runes := []rune(p.Purpose)
	if len(runes) > purposeMaxRunes {
		p.Purpose = string(runes[:purposeMaxRunes])
	}
	return p
}

// Encoder renders payloads as QR code images.
type Encoder struct {
	size int // Output image edge length in pixels
}

// NewEncoder creates an encoder producing square PNGs of the given pixel size.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = 256
	}
	return &Encoder{size: size}
}

// EncodePNG renders the simplified payload as a PNG QR image.
func (e *Encoder) EncodePNG(p Payload) ([]byte, error) {
	data, err := p.Simplified().Marshal()
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(data, qrcode.Medium, e.size)
	if err != nil {
		return nil, fmt.Errorf("encode QR: %w", err)
	}

	return png, nil
}

// EncodeDataURI renders the simplified payload as a base64 PNG data URI for
// inline display in templates.
func (e *Encoder) EncodeDataURI(p Payload) (string, error) {
	png, err := e.EncodePNG(p)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ParsePayload decodes a stored credential payload. Used when re-rendering
// the QR image for an already approved application.
func ParsePayload(data string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, fmt.Errorf("parse pass payload: %w", err)
	}
	return p, nil
}

// Package pass_test verifies the gate-pass credential payload contract: the
// JSON shape scanned at the gate, the validity window, the null vehicle
// convention and the purpose truncation applied only to the QR form.
package pass_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/pass"
)

func sampleApplication() *models.Application {
	return &models.Application{
		ID:         "a-1",
		UserName:   "Test Visitor",
		UserEmail:  "visitor@example.com",
		UserPhone:  "+91 9876543210",
		Purpose:    "Vendor meeting",
		Department: "IT",
		VisitDate:  "2026-09-01",
		VisitTime:  "10:00",
		Duration:   "2 hours",
	}
}

// TestBuildPayload verifies the payload fields, including the fixed type
// marker and company label and the 24-hour validity window.
func TestBuildPayload(t *testing.T) {
	approvedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	p := pass.BuildPayload(sampleApplication(), "IT Agent", approvedAt)

	assert.Equal(t, "GATE_PASS", p.Type)
	assert.Equal(t, "a-1", p.ID)
	assert.Equal(t, "Test Visitor", p.Name)
	assert.Equal(t, "IT", p.Department)
	assert.Equal(t, "IT Agent", p.ApprovedBy)
	assert.Equal(t, "SAIL - Steel Authority of India Limited", p.CompanyName)
	assert.Equal(t, "2026-08-20T12:00:00Z", p.ApprovedAt)
	assert.Equal(t, "2026-08-21T12:00:00Z", p.ValidUntil, "Validity runs 24 hours from approval")
	assert.Nil(t, p.VehicleNumber, "No declared vehicle serializes as null")
}

// TestBuildPayload_Vehicle verifies the declared-vehicle case.
func TestBuildPayload_Vehicle(t *testing.T) {
	app := sampleApplication()
	app.VehicleNumber = "JH05 AB 1234"

	p := pass.BuildPayload(app, "IT Agent", time.Now())

	require.NotNil(t, p.VehicleNumber)
	assert.Equal(t, "JH05 AB 1234", *p.VehicleNumber)
}

// TestPayload_Marshal verifies the JSON key names, which are the scanning
// contract and must not drift.
func TestPayload_Marshal(t *testing.T) {
	approvedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	data, err := pass.BuildPayload(sampleApplication(), "IT Agent", approvedAt).Marshal()
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &raw))

	for _, key := range []string{
		"type", "id", "name", "email", "phone", "department", "purpose",
		"visitDate", "visitTime", "duration", "approvedBy", "approvedAt",
		"vehicleNumber", "companyName", "validUntil",
	} {
		assert.Contains(t, raw, key, "Scanning contract key must be present")
	}

	assert.Nil(t, raw["vehicleNumber"], "Absent vehicle is an explicit null, not an omitted key")
}

// TestPayload_Simplified verifies that only the QR-encoded form truncates
// the purpose; short purposes pass through unchanged.
func TestPayload_Simplified(t *testing.T) {
	app := sampleApplication()
	app.Purpose = strings.Repeat("x", 80)

	p := pass.BuildPayload(app, "IT Agent", time.Now())

	simplified := p.Simplified()
	assert.Len(t, []rune(simplified.Purpose), 50, "QR form truncates the purpose")
	assert.Len(t, []rune(p.Purpose), 80, "Stored payload keeps the full text")

	short := pass.BuildPayload(sampleApplication(), "IT Agent", time.Now()).Simplified()
	assert.Equal(t, "Vendor meeting", short.Purpose)
}

// TestParsePayload verifies the stored-payload round trip used when
// re-rendering the QR image.
func TestParsePayload(t *testing.T) {
	approvedAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	original := pass.BuildPayload(sampleApplication(), "IT Agent", approvedAt)
	data, err := original.Marshal()
	require.NoError(t, err)

	parsed, err := pass.ParsePayload(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	_, err = pass.ParsePayload("not json")
	assert.Error(t, err)
}

// TestEncoder verifies that both renderings produce usable output: raw PNG
// bytes and the data URI form for inline templates.
func TestEncoder(t *testing.T) {
	p := pass.BuildPayload(sampleApplication(), "IT Agent", time.Now())

	enc := pass.NewEncoder(0) // default size

	png, err := enc.EncodePNG(p)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	uri, err := enc.EncodeDataURI(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

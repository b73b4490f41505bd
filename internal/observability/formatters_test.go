package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/leadgpt/emailgend/internal/db"
	"github.com/leadgpt/emailgend/internal/types"
	"github.com/stretchr/testify/assert"
)

func sampleResult() *types.JobResult {
	emails := []types.Email{
		{EmailNumber: 1, EmailSubject: "Quick question", EmailContent: "a"},
		{EmailNumber: 2, EmailSubject: "Quick question", EmailContent: "b"},
		{EmailNumber: 3, EmailSubject: "Quick question", EmailContent: "c"},
	}
	return &types.JobResult{
		UserID: "u1",
		Model:  "gpt-4o-2024-08-06",
		EmailData: []types.Organization{{
			CompanyID: "o1",
			Name:      "Acme",
			People: []types.Target{
				{ID: "p1", Emails: emails},
				{ID: "p2", Emails: []types.Email{}, Error: "target p2 failed at summarize: boom"},
			},
		}},
	}
}

func TestPrintRecord_Pending(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecord(&db.Record{JobID: "j1", UserID: "u1", CampaignID: "c1", UpdatedAt: time.Now()})
	output := buf.String()

	assert.Contains(t, output, "JOB RECORD")
	assert.Contains(t, output, "j1")
	assert.Contains(t, output, "false")
	assert.NotContains(t, output, "GENERATED EMAILS")
}

func TestPrintRecord_Done(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecord(&db.Record{JobID: "j1", IsDone: true, Emails: sampleResult()})
	output := buf.String()

	assert.Contains(t, output, "GENERATED EMAILS")
	assert.Contains(t, output, "gpt-4o-2024-08-06")
	assert.Contains(t, output, "2 (1 failed)")
	assert.Contains(t, output, "Acme [o1]")
	assert.Contains(t, output, `p1 (3 emails) "Quick question"`)
	assert.Contains(t, output, "⚠ p2")
}

func TestPrintRecord_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecord(nil)

	assert.Contains(t, buf.String(), "NO RECORD FOUND")
}

func TestPrintResult_TruncatesLongLists(t *testing.T) {
	result := &types.JobResult{EmailData: []types.Organization{{CompanyID: "o1", Name: "Acme"}}}
	for i := 0; i < 8; i++ {
		result.EmailData[0].People = append(result.EmailData[0].People, types.Target{ID: "p", Emails: []types.Email{}})
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(result)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(nil)
	assert.Empty(t, buf.String())
}

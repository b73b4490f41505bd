// Package types provides type definitions for the job payloads and results exchanged by the outreach worker.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Envelope is the queue message body: a job identifier plus its payload.
type Envelope struct {
	JobID   string     `json:"jobID" validate:"required"`
	Message JobPayload `json:"message" validate:"-"`
}

// JobPayload is the work description submitted for one job.
type JobPayload struct {
	UserID     string         `json:"userId"`
	CampaignID string         `json:"campaignId"`
	EmailData  []Organization `json:"emailData" validate:"required,dive"`

	Campaign
}

// Campaign holds the sender-side parameters shared by every target of a job.
// The override fields, when set, take precedence over the per-target and
// per-organization values during content generation.
type Campaign struct {
	ProductName          string `json:"ProductName"`
	PainPoints           string `json:"painPoints"`
	ValueProposition     string `json:"valueProposition"`
	CallToAction         string `json:"callToAction"`
	EmailSignature       string `json:"emailSignature"`
	UserSummary          string `json:"userSummary"`
	OrgSummary           string `json:"orgSummary"`
	MotivationOfOutreach string `json:"motivationOfOutreach"`
	EmailTone            string `json:"emailTone"`
	ExtraInformation     string `json:"extraInformation"`
	SuccessStories       string `json:"successStories"`

	PersonName      string `json:"personName,omitempty"`
	UserName        string `json:"userName,omitempty"`
	PersonTitle     string `json:"personTitle,omitempty"`
	UserDescription string `json:"userDescription,omitempty"`
}

// Organization groups targets that share a company identity.
// encoding/json matches keys case-insensitively, so the legacy "company_Id"
// key decodes into CompanyID as well.
type Organization struct {
	CompanyID      string   `json:"company_id"`
	Name           string   `json:"name"`
	CompanyLogoURL string   `json:"company_logo_url"`
	Description    string   `json:"description"`
	People         []Target `json:"people" validate:"required,unique=ID,dive"`
}

// Target is a single recipient.
type Target struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	PhotoURL    string `json:"photo_url,omitempty"`
	WebsiteURL  string `json:"receiverOrgWebsiteURL,omitempty"`
	LinkedInURL string `json:"receiverLinkedInURL,omitempty"`

	WebsiteSummary  string `json:"receiverOrgWebsiteSummary,omitempty"`
	LinkedInSummary string `json:"receiverLinkedInSummary,omitempty"`

	Emails []Email `json:"emails"`

	// Error is set when processing this target failed; Emails is empty then.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the target carries a failure placeholder.
func (t Target) Failed() bool {
	return t.Error != ""
}

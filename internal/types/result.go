package types

// Email numbers within a target's sequence.
const (
	EmailPrimary        = 1
	EmailFirstFollowUp  = 2
	EmailSecondFollowUp = 3
)

// Email is one message of a target's three-step sequence.
type Email struct {
	EmailNumber  int    `json:"emailNumber"`
	EmailContent string `json:"emailContent"`
	EmailSubject string `json:"emailSubject"`
}

// JobResult is the aggregated output of a job, stored under the job identifier.
type JobResult struct {
	UserID     string         `json:"userId"`
	CampaignID string         `json:"campaignId"`
	Model      string         `json:"model"`
	EmailData  []Organization `json:"emailData"`
}

// TargetCount returns the number of targets across all organizations.
func (r JobResult) TargetCount() int {
	n := 0
	for _, org := range r.EmailData {
		n += len(org.People)
	}
	return n
}

// FailedCount returns the number of targets carrying a failure placeholder.
func (r JobResult) FailedCount() int {
	n := 0
	for _, org := range r.EmailData {
		for _, p := range org.People {
			if p.Failed() {
				n++
			}
		}
	}
	return n
}

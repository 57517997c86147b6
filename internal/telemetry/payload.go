package telemetry

import "strings"

// Payload is the wire shape agents post to the ingestion endpoint.
type Payload struct {
	AgentID         string  `json:"agentId"`
	APIType         string  `json:"apiType"`
	ResponseTime    float64 `json:"responseTime"`
	IsError         bool    `json:"isError"`
	ShouldCountAPI  *bool   `json:"shouldCountApi"`
	ShouldCountTask *bool   `json:"shouldCountTask"`
	Model           string  `json:"model"`
	BaseURL         string  `json:"baseUrl"`
	Account         string  `json:"account"`
	APIKey          string  `json:"apiKey"`
	Status          string  `json:"status"`
	LogAction       string  `json:"logAction"`
	LogMessage      string  `json:"logMessage"`
	LogType         string  `json:"logType"`
	UserName        string  `json:"userName"`
	ImageURL        string  `json:"imageUrl"`
}

// normalized is the payload after trimming and field merging, so the
// classifier never re-derives defaults.
type normalized struct {
	agentID   string
	apiType   string
	response  float64
	isError   bool
	countAPI  bool
	countTask bool
	model     string
	baseURL   string
	account   string
	apiKey    string
	status    string
	action    string
	logType   string
	userName  string
	imageURL  string
}

func normalize(p Payload) normalized {
	n := normalized{
		agentID:   strings.TrimSpace(p.AgentID),
		apiType:   strings.TrimSpace(p.APIType),
		response:  p.ResponseTime,
		isError:   p.IsError,
		countAPI:  boolOr(p.ShouldCountAPI, true),
		countTask: boolOr(p.ShouldCountTask, true),
		model:     strings.TrimSpace(p.Model),
		baseURL:   strings.TrimRight(strings.TrimSpace(p.BaseURL), "/"),
		account:   strings.TrimSpace(p.Account),
		apiKey:    strings.TrimSpace(p.APIKey),
		status:    strings.ToLower(strings.TrimSpace(p.Status)),
		action:    NormalizeAction(firstNonEmpty(p.LogAction, p.LogMessage)),
		logType:   strings.TrimSpace(p.LogType),
		userName:  strings.TrimSpace(p.UserName),
		imageURL:  strings.TrimSpace(p.ImageURL),
	}
	if n.response < 0 {
		n.response = 0
	}
	return n
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

const (
	quotePrefix    = "Quote:"
	quoteQualifier = "Calculated "
)

// NormalizeAction qualifies bare price quotations ("Quote: 150000" becomes
// "Calculated Quote: 150000"). Applying it again is a no-op.
func NormalizeAction(action string) string {
	if strings.HasPrefix(action, quotePrefix) {
		return quoteQualifier + action
	}
	return action
}

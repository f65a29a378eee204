package webapi

import "github.com/roboyoz/hotline/internal/interview"

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// TokenResponse carries a browser-client access token.
type TokenResponse struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
}

// InterviewSummary is one row of the interview listing.
type InterviewSummary struct {
	PhoneNumber   string `json:"phoneNumber"`
	CallerName    string `json:"callerName"`
	SelectedTopic string `json:"selectedTopic"`
	Answered      int    `json:"answered"`
	Recordings    int    `json:"recordings"`
	Calls         int    `json:"calls"`
}

func summarize(iv *interview.Interview) InterviewSummary {
	return InterviewSummary{
		PhoneNumber:   iv.PhoneNumber,
		CallerName:    iv.CallerName,
		SelectedTopic: iv.SelectedTopic,
		Answered:      len(iv.AnsweredQuestions),
		Recordings:    len(iv.Recordings),
		Calls:         len(iv.Calls),
	}
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

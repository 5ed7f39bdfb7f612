package models

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Analysis is the feedback document the model is asked to produce.
type Analysis struct {
	Interviewee *IntervieweeFeedback `json:"interviewee"`
	Recruiter   *RecruiterFeedback   `json:"recruiter"`
}

type IntervieweeFeedback struct {
	WhatWentWell     []string `json:"whatWentWell"`
	WhatCouldImprove []string `json:"whatCouldImprove"`
	ActionableTips   []string `json:"actionableTips"`
}

type RecruiterFeedback struct {
	AreasMissed        []string `json:"areasMissed"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// DecodeAnalysis decodes raw JSON into an Analysis and checks that both
// sections and every list are present. Array lengths are not checked.
func DecodeAnalysis(raw []byte) (*Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, errors.Wrap(err, "failed to decode analysis")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Analysis) Validate() error {
	if a.Interviewee == nil {
		return errors.New("missing field: interviewee")
	}
	if a.Recruiter == nil {
		return errors.New("missing field: recruiter")
	}

	lists := []struct {
		name  string
		value []string
	}{
		{"interviewee.whatWentWell", a.Interviewee.WhatWentWell},
		{"interviewee.whatCouldImprove", a.Interviewee.WhatCouldImprove},
		{"interviewee.actionableTips", a.Interviewee.ActionableTips},
		{"recruiter.areasMissed", a.Recruiter.AreasMissed},
		{"recruiter.suggestedQuestions", a.Recruiter.SuggestedQuestions},
	}
	for _, l := range lists {
		if l.value == nil {
			return errors.Errorf("missing field: %s", l.name)
		}
	}

	return nil
}

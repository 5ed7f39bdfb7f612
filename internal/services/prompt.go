package services

// analysisPrompt is sent verbatim after the media parts.
const analysisPrompt = `You are a brutally honest interview coach . Analyze the provided interview media and generate detailed, critical feedback for BOTH the interviewee and the recruiter.
Return strict JSON matching this TypeScript type:
type Analysis = {
  interviewee: {
    whatWentWell: string[];
    whatCouldImprove: string[];
    actionableTips: string[];
  };
  recruiter: {
    areasMissed: string[];
    suggestedQuestions: string[];
  };
};
Rules:
- Respond with JSON ONLY. No prose, no explanations, no code fences.
- Keep the JSON minimal and valid. Do not include trailing commas.
- Populate each array with 7-8 detailed, brutally honest bullet-style strings.
- Be direct and critical. Don't sugarcoat feedback.
- Focus on specific, actionable insights that will genuinely improve performance.
- For interviewee feedback: identify weaknesses, communication issues, and missed opportunities.
- For recruiter feedback: highlight gaps in questioning, missed red flags, and areas that needed deeper exploration.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt returns the coaching instructions.
func (pb *PromptBuilder) BuildAnalysisPrompt() string {
	return analysisPrompt
}

// BuildGenerationRequest puts every file part first, in upload order, and the
// instructions last, all in a single user turn.
func (pb *PromptBuilder) BuildGenerationRequest(files []InlinePart) *GenerationRequest {
	parts := make([]Part, 0, len(files)+1)
	for i := range files {
		parts = append(parts, Part{InlineData: &files[i]})
	}
	parts = append(parts, Part{Text: pb.BuildAnalysisPrompt()})

	return &GenerationRequest{
		Role:             RoleUser,
		Parts:            parts,
		ResponseMIMEType: "application/json",
	}
}

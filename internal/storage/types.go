package storage

// Results is the persisted artifact of one interview session.
type Results struct {
	Domain        string         `json:"domain"`
	HRQuestions   []string       `json:"hr_questions"`
	TechQuestions []string       `json:"tech_questions"`
	HRResults     []AnswerRecord `json:"hr_results"`
	TechResults   []AnswerRecord `json:"tech_results"`
}

// AnswerRecord is one answered question. Evaluation is nil until the
// evaluator returns.
type AnswerRecord struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Evaluation *Evaluation `json:"evaluation"`
}

// Evaluation is the structured judgement of one answer. KnowledgeGaps is
// only populated for technical answers.
type Evaluation struct {
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	ImprovementTips []string `json:"improvement_tips"`
	KnowledgeGaps   []string `json:"knowledge_gaps,omitempty"`
}

// Clone returns a deep copy so callers can persist a snapshot while the
// session keeps mutating.
func (r *Results) Clone() *Results {
	if r == nil {
		return nil
	}
	out := &Results{
		Domain:        r.Domain,
		HRQuestions:   append([]string(nil), r.HRQuestions...),
		TechQuestions: append([]string(nil), r.TechQuestions...),
		HRResults:     cloneRecords(r.HRResults),
		TechResults:   cloneRecords(r.TechResults),
	}
	return out
}

func cloneRecords(in []AnswerRecord) []AnswerRecord {
	if in == nil {
		return nil
	}
	out := make([]AnswerRecord, len(in))
	for i, rec := range in {
		out[i] = AnswerRecord{Question: rec.Question, Answer: rec.Answer}
		if rec.Evaluation != nil {
			ev := *rec.Evaluation
			ev.ImprovementTips = append([]string(nil), rec.Evaluation.ImprovementTips...)
			ev.KnowledgeGaps = append([]string(nil), rec.Evaluation.KnowledgeGaps...)
			out[i].Evaluation = &ev
		}
	}
	return out
}

package interview

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"evalia/internal/api"
	"evalia/internal/chatbot"
	"evalia/internal/notify"
	"evalia/internal/speech"
	"evalia/internal/storage"
)

const validJD = "We are hiring a data scientist to build forecasting models in Python and SQL"

type fakeInterviewer struct {
	mu        sync.Mutex
	domain    string
	hr        []string
	tech      []string
	evaluated []string
}

func (f *fakeInterviewer) PredictDomain(context.Context, string) string { return f.domain }

func (f *fakeInterviewer) GenerateHRQuestions(context.Context, string) []string {
	return append([]string(nil), f.hr...)
}

func (f *fakeInterviewer) GenerateTechQuestions(context.Context, string) []string {
	return append([]string(nil), f.tech...)
}

func (f *fakeInterviewer) EvaluateHR(_ context.Context, q, a string) storage.Evaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluated = append(f.evaluated, "hr:"+q)
	return storage.Evaluation{Score: 7, Feedback: "good", ImprovementTips: []string{"more detail"}}
}

func (f *fakeInterviewer) EvaluateTech(_ context.Context, domain, q, a string) storage.Evaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluated = append(f.evaluated, "tech:"+q)
	return storage.Evaluation{Score: 8, Feedback: "solid", ImprovementTips: []string{}, KnowledgeGaps: []string{}}
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, speech.Audio) (string, error) {
	return s.text, s.err
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, *storage.Results) error { return f.err }

func (f failingStore) Load(context.Context) (*storage.Results, error) { return nil, f.err }

type fixture struct {
	m     *Machine
	iv    *fakeInterviewer
	store *storage.FileStore
	pub   *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	iv := &fakeInterviewer{
		domain: "Data Scientist",
		hr:     []string{"Introduce yourself", "Describe a conflict"},
		tech:   []string{"Explain overfitting"},
	}
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "interview_results.json"))
	pub := &notify.Recorder{}
	m := NewMachine(Deps{
		Interviewer: iv,
		Transcriber: stubTranscriber{text: "my answer"},
		Store:       store,
		Publisher:   pub,
		NewAssistant: func() *chatbot.Conversation {
			return chatbot.New(api.NewMockClient().Default("Network with alumni."))
		},
		Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{m: m, iv: iv, store: store, pub: pub}
}

var audio = speech.Audio{Data: []byte("RIFF....WAVE")}

func (f *fixture) answer(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	if err := f.m.CaptureAudio(ctx, s, audio); err != nil {
		t.Fatalf("CaptureAudio: %v", err)
	}
	if _, err := f.m.SubmitAnswer(ctx, s); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
}

func (f *fixture) toHR(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	s := f.m.NewSession()
	if err := f.m.SubmitJobDescription(ctx, s, validJD); err != nil {
		t.Fatalf("SubmitJobDescription: %v", err)
	}
	if err := f.m.ConfirmDomain(ctx, s); err != nil {
		t.Fatalf("ConfirmDomain: %v", err)
	}
	return s
}

func TestValidateJobDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"blank", "   \n ", MsgEmptyJobDescription},
		{"too few words", "data scientist python", MsgTooFewWords},
		{"no letters", "12345 67890 11111 22222 33333 44444", MsgNoLetters},
		{"too short", "a b c d e f", MsgTooShort},
		{"ok", validJD, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobDescription(tt.in)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Message != tt.want {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSubmitJobDescription(t *testing.T) {
	ctx := context.Background()

	t.Run("validation keeps not_started", func(t *testing.T) {
		f := newFixture(t)
		s := f.m.NewSession()
		err := f.m.SubmitJobDescription(ctx, s, "too short")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		if s.Round != RoundNotStarted || s.Domain != "" {
			t.Errorf("session changed: %s %q", s.Round, s.Domain)
		}
	})

	for _, domain := range []string{"Unknown", "unknown", "  "} {
		t.Run("domain "+domain, func(t *testing.T) {
			f := newFixture(t)
			f.iv.domain = domain
			s := f.m.NewSession()
			err := f.m.SubmitJobDescription(ctx, s, validJD)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Message != MsgDomainNotIdentified {
				t.Fatalf("err = %v, want domain failure", err)
			}
			if s.Round != RoundNotStarted {
				t.Errorf("round = %s", s.Round)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		s := f.m.NewSession()
		if err := f.m.SubmitJobDescription(ctx, s, validJD); err != nil {
			t.Fatal(err)
		}
		if s.Round != RoundDomainConfirmation || s.Domain != "Data Scientist" {
			t.Errorf("got %s %q", s.Round, s.Domain)
		}
	})
}

func TestDomainEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.m.NewSession()
	if err := f.m.SubmitJobDescription(ctx, s, validJD); err != nil {
		t.Fatal(err)
	}
	if err := f.m.RejectDomain(ctx, s); err != nil {
		t.Fatal(err)
	}
	if s.Round != RoundDomainEdit {
		t.Fatalf("round = %s, want domain_edit", s.Round)
	}

	err := f.m.EditDomain(ctx, s, "   ")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != MsgEmptyDomain {
		t.Fatalf("err = %v, want %q", err, MsgEmptyDomain)
	}
	if s.Round != RoundDomainEdit {
		t.Errorf("round = %s after blank edit", s.Round)
	}

	if err := f.m.EditDomain(ctx, s, " ML Engineer "); err != nil {
		t.Fatal(err)
	}
	if s.Round != RoundHR || s.Domain != "ML Engineer" || s.CurrentQuestionIndex != 0 {
		t.Errorf("got %s %q idx=%d", s.Round, s.Domain, s.CurrentQuestionIndex)
	}
	if len(s.HRQuestions) != 2 || len(s.TechQuestions) != 1 {
		t.Errorf("questions = %d/%d", len(s.HRQuestions), len(s.TechQuestions))
	}
}

func TestFullInterview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.toHR(t)

	f.answer(t, s)
	if !s.AwaitingEvaluationDisplay || len(s.HRResults) != 1 || s.HRResults[0].Evaluation == nil {
		t.Fatalf("after first answer: awaiting=%v results=%+v", s.AwaitingEvaluationDisplay, s.HRResults)
	}
	if s.HRResults[0].Answer != "my answer" || s.HRResults[0].Question != "Introduce yourself" {
		t.Errorf("record = %+v", s.HRResults[0])
	}
	out, err := f.m.Advance(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if out.Completed != "" || out.Next != RoundHR || s.CurrentQuestionIndex != 1 {
		t.Errorf("outcome = %+v idx=%d", out, s.CurrentQuestionIndex)
	}

	f.answer(t, s)
	out, err = f.m.Advance(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if out.Completed != RoundHR || out.Next != RoundTech || !out.Persisted {
		t.Fatalf("HR completion outcome = %+v", out)
	}
	if s.Round != RoundTech || s.CurrentQuestionIndex != 0 || s.AwaitingEvaluationDisplay {
		t.Errorf("after HR: %s idx=%d awaiting=%v", s.Round, s.CurrentQuestionIndex, s.AwaitingEvaluationDisplay)
	}

	saved, err := f.store.Load(ctx)
	if err != nil {
		t.Fatalf("load after HR: %v", err)
	}
	if len(saved.HRResults) != 2 || saved.TechResults == nil || len(saved.TechResults) != 0 {
		t.Errorf("persisted after HR = %+v", saved)
	}

	f.answer(t, s)
	out, err = f.m.Advance(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if out.Completed != RoundTech || out.Next != RoundDashboard {
		t.Fatalf("tech completion outcome = %+v", out)
	}

	saved, err = f.store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Domain != "Data Scientist" || len(saved.TechResults) != 1 || saved.TechResults[0].Evaluation.Score != 8 {
		t.Errorf("persisted after tech = %+v", saved)
	}

	events := f.pub.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].RoutingKey != notify.RoutingRoundCompleted || events[0].Event.Round != "hr" ||
		events[0].Event.Answered != 2 || events[0].Event.AverageScore != 7 {
		t.Errorf("HR event = %+v", events[0])
	}
	if events[1].Event.Round != "technical" || events[1].Event.SessionID != s.ID {
		t.Errorf("tech event = %+v", events[1])
	}
	if got := strings.Join(f.iv.evaluated, ","); got != "hr:Introduce yourself,hr:Describe a conflict,tech:Explain overfitting" {
		t.Errorf("evaluated = %s", got)
	}
}

func TestRerecordLeavesProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.toHR(t)

	if err := f.m.CaptureAudio(ctx, s, audio); err != nil {
		t.Fatal(err)
	}
	if err := f.m.Rerecord(ctx, s); err != nil {
		t.Fatal(err)
	}
	if s.PendingAudio != nil || s.CurrentQuestionIndex != 0 || len(s.HRResults) != 0 {
		t.Errorf("rerecord changed progress: audio=%v idx=%d results=%d", s.PendingAudio, s.CurrentQuestionIndex, len(s.HRResults))
	}
	if _, err := f.m.SubmitAnswer(ctx, s); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit without audio: err = %v", err)
	}
}

func TestEmptyTranscriptIsStored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.m.deps.Transcriber = stubTranscriber{err: errors.New("model not loaded")}
	s := f.toHR(t)

	if err := f.m.CaptureAudio(ctx, s, audio); err != nil {
		t.Fatal(err)
	}
	rec, err := f.m.SubmitAnswer(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Answer != "" || rec.Evaluation == nil {
		t.Errorf("record = %+v", rec)
	}
	if _, err := f.m.Advance(ctx, s); err != nil {
		t.Errorf("empty answer blocked progression: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fresh := f.m.NewSession()
	hr := f.toHR(t)
	awaiting := f.toHR(t)
	f.answer(t, awaiting)

	tests := []struct {
		name string
		s    *Session
		fn   func(*Session) error
	}{
		{"confirm before submit", fresh, func(s *Session) error { return f.m.ConfirmDomain(ctx, s) }},
		{"reject before submit", fresh, func(s *Session) error { return f.m.RejectDomain(ctx, s) }},
		{"edit outside domain_edit", fresh, func(s *Session) error { return f.m.EditDomain(ctx, s, "X") }},
		{"capture before interview", fresh, func(s *Session) error { return f.m.CaptureAudio(ctx, s, audio) }},
		{"advance without evaluation", hr, func(s *Session) error { _, err := f.m.Advance(ctx, s); return err }},
		{"resubmit job description", hr, func(s *Session) error { return f.m.SubmitJobDescription(ctx, s, validJD) }},
		{"capture while awaiting", awaiting, func(s *Session) error { return f.m.CaptureAudio(ctx, s, audio) }},
		{"rerecord while awaiting", awaiting, func(s *Session) error { return f.m.Rerecord(ctx, s) }},
		{"submit twice", awaiting, func(s *Session) error { _, err := f.m.SubmitAnswer(ctx, s); return err }},
		{"restart mid interview", hr, func(s *Session) error { return f.m.Restart(ctx, s) }},
		{"assistant from hr", hr, func(s *Session) error { return f.m.OpenAssistant(ctx, s) }},
		{"return without assistant", hr, func(s *Session) error { return f.m.ReturnFromAssistant(ctx, s) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.s.Snapshot()
			err := tt.fn(tt.s)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			after := tt.s.Snapshot()
			if before.Round != after.Round || before.QuestionNumber != after.QuestionNumber ||
				before.HRAnswered != after.HRAnswered || before.AwaitingEvaluationDisplay != after.AwaitingEvaluationDisplay {
				t.Errorf("session changed: %+v -> %+v", before, after)
			}
		})
	}
}

func TestPersistFailureDoesNotUndoTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.m.deps.Store = failingStore{err: errors.New("disk full")}
	f.pub.Fail(errors.New("broker down"))
	f.iv.hr = []string{"Only question"}
	s := f.toHR(t)

	f.answer(t, s)
	out, err := f.m.Advance(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if out.Persisted || out.PersistError != "disk full" || out.PublishError != "broker down" {
		t.Errorf("outcome = %+v", out)
	}
	if s.Round != RoundTech || len(s.HRResults) != 1 {
		t.Errorf("round = %s results = %d", s.Round, len(s.HRResults))
	}
}

func TestDashboardAssistantAndRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.iv.hr = []string{"q1"}
	s := f.toHR(t)
	f.answer(t, s)
	f.m.Advance(ctx, s)
	f.answer(t, s)
	f.m.Advance(ctx, s)
	if s.Round != RoundDashboard {
		t.Fatalf("round = %s, want dashboard", s.Round)
	}

	if err := f.m.OpenAssistant(ctx, s); err != nil {
		t.Fatal(err)
	}
	conv, err := f.m.Assistant(s)
	if err != nil {
		t.Fatal(err)
	}
	if reply, _ := conv.Send(ctx, "How should I network?"); reply != "Network with alumni." {
		t.Errorf("reply = %q", reply)
	}
	if err := f.m.ReturnFromAssistant(ctx, s); err != nil {
		t.Fatal(err)
	}
	if _, err := f.m.Assistant(s); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("assistant outside chatbot: err = %v", err)
	}
	if err := f.m.OpenAssistant(ctx, s); err != nil {
		t.Fatal(err)
	}
	if len(s.Assistant.History()) != 2 {
		t.Errorf("assistant history lost on return: %d", len(s.Assistant.History()))
	}

	id := s.ID
	if err := f.m.Restart(ctx, s); err != nil {
		t.Fatal(err)
	}
	if s.Round != RoundNotStarted || s.Domain != "" || s.HRResults != nil || s.Assistant != nil || s.ID != id {
		t.Errorf("restart left state: %+v", s.Snapshot())
	}
	events := f.pub.Events()
	if last := events[len(events)-1]; last.RoutingKey != notify.RoutingSessionReset || last.Event.Domain != "Data Scientist" {
		t.Errorf("reset event = %+v", last)
	}
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	s := f.toHR(t)

	v := s.Snapshot()
	if v.QuestionNumber != 1 || v.TotalQuestions != 2 || v.CurrentQuestion != "Introduce yourself" || v.LastAnswer != nil {
		t.Errorf("view = %+v", v)
	}
	f.answer(t, s)
	v = s.Snapshot()
	if !v.AwaitingEvaluationDisplay || v.LastAnswer == nil || v.LastAnswer.Evaluation.Score != 7 {
		t.Errorf("view after answer = %+v", v)
	}
}

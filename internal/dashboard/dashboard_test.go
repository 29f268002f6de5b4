package dashboard

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"evalia/internal/api"
	"evalia/internal/storage"
)

func eval(score int) *storage.Evaluation {
	return &storage.Evaluation{Score: score, Feedback: "ok", ImprovementTips: []string{"tip"}}
}

func sampleResults() *storage.Results {
	return &storage.Results{
		Domain:        "Data Scientist",
		HRQuestions:   []string{"h1", "h2"},
		TechQuestions: []string{"t1", "t2", "t3"},
		HRResults: []storage.AnswerRecord{
			{Question: "h1", Answer: "a", Evaluation: eval(7)},
			{Question: "h2", Answer: "b", Evaluation: eval(8)},
		},
		TechResults: []storage.AnswerRecord{
			{Question: "t1", Answer: "c", Evaluation: eval(5)},
			{Question: "t2", Answer: "d"},
		},
	}
}

func TestCalculateScores(t *testing.T) {
	s := CalculateScores(sampleResults())

	if s.HRTotal != 15 || s.TechTotal != 5 {
		t.Errorf("totals = %d/%d, want 15/5", s.HRTotal, s.TechTotal)
	}
	if s.HRMax != 20 || s.TechMax != 20 {
		t.Errorf("max = %d/%d, want 20/20", s.HRMax, s.TechMax)
	}
	if s.HRAvg != 7.5 || s.TechAvg != 5 {
		t.Errorf("avg = %v/%v", s.HRAvg, s.TechAvg)
	}
	if math.Abs(s.OverallAvg-20.0/3) > 1e-9 {
		t.Errorf("overall = %v, want 6.67", s.OverallAvg)
	}
	if FormatAverage(s.OverallAvg) != "6.7" {
		t.Errorf("FormatAverage = %q, want 6.7", FormatAverage(s.OverallAvg))
	}
}

func TestCalculateScores_Empty(t *testing.T) {
	s := CalculateScores(&storage.Results{})
	if s.Domain != "Unknown" {
		t.Errorf("domain = %q, want Unknown", s.Domain)
	}
	if s.HRAvg != 0 || s.TechAvg != 0 || s.OverallAvg != 0 || s.HRMax != 0 {
		t.Errorf("scores = %+v, want zeros", s)
	}
	if FormatAverage(s.OverallAvg) != "0.0" {
		t.Errorf("FormatAverage(0) = %q", FormatAverage(s.OverallAvg))
	}
}

func TestQuestionScoresAndFeedback(t *testing.T) {
	r := sampleResults()
	qs := QuestionScores(r)
	if len(qs) != 3 {
		t.Fatalf("question scores = %d, want 3", len(qs))
	}
	if qs[2].Type != "Technical" || qs[2].Label != "Q1" || qs[2].Score != 5 {
		t.Errorf("qs[2] = %+v", qs[2])
	}
	rows := Feedback(r)
	if len(rows) != 3 || rows[0].Type != "HR" || rows[1].Number != 2 {
		t.Errorf("feedback rows = %+v", rows)
	}
}

func TestParseJobTitles(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"comma list", "Junior Developer, QA Intern, Support Engineer", []string{"Junior Developer", "QA Intern", "Support Engineer"}},
		{"numbered", "1. Junior Developer,\n2. QA Intern,\n3. IT", []string{"Junior Developer", "QA Intern"}},
		{"bullets", "• Data Intern, • BI Trainee", []string{"Data Intern", "BI Trainee"}},
		{"nothing usable", "a, b,  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseJobTitles(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildJobLinks(t *testing.T) {
	links := BuildJobLinks([]string{"Junior Data Analyst", "BI Intern", "Ops Trainee"}, "New York")
	if len(links) != MaxJobs {
		t.Fatalf("links = %d, want %d", len(links), MaxJobs)
	}
	wantPlatforms := []string{"LinkedIn", "Indeed", "Glassdoor", "Naukri", "Monster", "LinkedIn"}
	for i, l := range links {
		if l.Platform != wantPlatforms[i] {
			t.Errorf("links[%d].Platform = %s, want %s", i, l.Platform, wantPlatforms[i])
		}
		if strings.Contains(l.URL, "{") {
			t.Errorf("unfilled template %s", l.URL)
		}
	}
	if links[0].URL != "https://www.linkedin.com/jobs/search/?keywords=Junior+Data+Analyst&location=New+York" {
		t.Errorf("LinkedIn URL = %s", links[0].URL)
	}
	if links[3].URL != "https://www.naukri.com/Junior+Data+Analyst-jobs-in-New+York" {
		t.Errorf("Naukri URL = %s", links[3].URL)
	}
	if links[0].Label != "Junior Data Analyst (LinkedIn)" {
		t.Errorf("label = %s", links[0].Label)
	}
	if links[5].Title != "BI Intern" {
		t.Errorf("sixth link title = %s", links[5].Title)
	}

	noLoc := BuildJobLinks([]string{"Analyst"}, "")
	if noLoc[1].URL != "https://www.indeed.com/jobs?q=Analyst&l=" {
		t.Errorf("Indeed URL without location = %s", noLoc[1].URL)
	}
}

func TestJobLinks(t *testing.T) {
	ctx := context.Background()

	svc := New(api.NewMockClient().Default("Junior Go Developer, Backend Intern, SRE Trainee"), nil, nil)
	links, err := svc.JobLinks(ctx, "Go Developer", "")
	if err != nil {
		t.Fatal(err)
	}
	if links[0].Title != "Junior Go Developer" {
		t.Errorf("first title = %s", links[0].Title)
	}

	if _, err := svc.JobLinks(ctx, "  ", ""); !errors.Is(err, ErrNoDomain) {
		t.Errorf("err = %v, want ErrNoDomain", err)
	}

	failing := New(api.NewMockClient().FailAll(errors.New("down")), nil, nil)
	links, err = failing.JobLinks(ctx, "Go Developer", "")
	if err != nil {
		t.Fatal(err)
	}
	if links[0].Title != FallbackJobTitles[0] || links[5].Title != FallbackJobTitles[1] {
		t.Errorf("fallback titles not used: %+v", links)
	}
}

func TestImprovementSuggestions(t *testing.T) {
	ctx := context.Background()
	mock := api.NewMockClient().Default("```json\n{\"strengths\":[\"Clear\"],\"improvements\":[\"Depth\"],\"action_items\":[\"Practice\"]}\n```")
	svc := New(mock, nil, nil)

	got := svc.ImprovementSuggestions(ctx, sampleResults())
	want := Suggestions{Strengths: []string{"Clear"}, Improvements: []string{"Depth"}, ActionItems: []string{"Practice"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	svc.ImprovementSuggestions(ctx, sampleResults())
	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Errorf("requests = %d, want 1 (second call cached)", len(reqs))
	}
	if !reqs[0].JSON || reqs[0].Temperature != 0.4 {
		t.Errorf("request = %+v", reqs[0])
	}

	empty := svc.ImprovementSuggestions(ctx, &storage.Results{Domain: "X"})
	if !reflect.DeepEqual(empty.Strengths, []string{"No interview data available for analysis"}) {
		t.Errorf("empty = %+v", empty)
	}
}

func TestImprovementSuggestions_Failures(t *testing.T) {
	ctx := context.Background()
	for name, client := range map[string]*api.MockClient{
		"service error": api.NewMockClient().FailAll(errors.New("down")),
		"bad json":      api.NewMockClient().Default("not json"),
	} {
		t.Run(name, func(t *testing.T) {
			got := New(client, nil, nil).ImprovementSuggestions(ctx, sampleResults())
			if !reflect.DeepEqual(got, failedSuggestions()) {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestCourseRecommendations(t *testing.T) {
	ctx := context.Background()
	reply := `{"courses":[
		{"title":"A","platform":"Coursera","description":"d","url":"https://a"},
		{"title":"B","platform":"edX","description":"d","url":"https://b","level":"Beginner"},
		{"title":"C"},{"title":"D"},{"title":"E"},{"title":"F"}]}`
	mock := api.NewMockClient().Default(reply)
	svc := New(mock, nil, nil)

	got := svc.CourseRecommendations(ctx, "Data Scientist")
	if len(got) != 5 {
		t.Fatalf("courses = %d, want 5", len(got))
	}
	if got[1].Level != "Beginner" || got[0].Platform != "Coursera" {
		t.Errorf("courses = %+v", got[:2])
	}
	svc.CourseRecommendations(ctx, "data scientist")
	if n := len(mock.Requests()); n != 1 {
		t.Errorf("requests = %d, want 1 (cached per domain)", n)
	}

	failing := New(api.NewMockClient().FailAll(errors.New("down")), nil, nil)
	if got := failing.CourseRecommendations(ctx, "Data Scientist"); got == nil || len(got) != 0 {
		t.Errorf("failure = %#v, want empty list", got)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache[int](time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Fatalf("Get = %d, %v", v, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "results.json"))
	mock := api.NewMockClient().
		On("online courses", `{"courses":[{"title":"ML","platform":"Coursera","description":"d","url":"https://x"}]}`).
		On("Interview Performance", `{"strengths":["s"],"improvements":["i"],"action_items":["a"]}`)
	svc := New(mock, store, nil)

	if _, err := svc.Current(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, sampleResults()); err != nil {
		t.Fatal(err)
	}
	rep, err := svc.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Averages.Overall != "6.7" || rep.Scores.Domain != "Data Scientist" {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Courses) != 1 || rep.Suggestions.Strengths[0] != "s" {
		t.Errorf("generated sections = %+v / %+v", rep.Courses, rep.Suggestions)
	}
}

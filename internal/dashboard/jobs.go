package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"evalia/internal/api"
	"evalia/internal/prompts"
)

// MaxJobs caps the number of job links returned.
const MaxJobs = 6

// ErrNoDomain is returned when job links are requested without a domain.
var ErrNoDomain = errors.New("dashboard: no domain to search jobs for")

// FallbackJobTitles is used when no titles can be generated.
var FallbackJobTitles = []string{"Junior Data Analyst", "Business Analyst Intern", "Data Reporting Assistant"}

type platform struct {
	name     string
	template string
}

var platforms = []platform{
	{"LinkedIn", "https://www.linkedin.com/jobs/search/?keywords={query}&location={location}"},
	{"Indeed", "https://www.indeed.com/jobs?q={query}&l={location}"},
	{"Glassdoor", "https://www.glassdoor.com/Job/jobs.htm?sc.keyword={query}"},
	{"Naukri", "https://www.naukri.com/{query}-jobs-in-{location}"},
	{"Monster", "https://www.monster.com/jobs/search/?q={query}&where={location}"},
}

// JobLink is a prefilled search on one job portal.
type JobLink struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

var titleNoise = strings.NewReplacer("\n", "", "•", "", "1.", "", "2.", "", "3.", "")

// ParseJobTitles cleans a comma-separated title list. Titles of two
// characters or fewer are dropped.
func ParseJobTitles(raw string) []string {
	clean := titleNoise.Replace(strings.TrimSpace(raw))
	var titles []string
	for _, t := range strings.Split(clean, ",") {
		if t = strings.TrimSpace(t); len(t) > 2 {
			titles = append(titles, t)
		}
	}
	return titles
}

// JobTitles asks for three entry-level titles in domain.
func (s *Service) JobTitles(ctx context.Context, domain string) []string {
	reply, err := s.client.Complete(ctx, api.Request{
		User:        prompts.EntryLevelTitles(domain),
		Temperature: 0.3,
	})
	if err != nil {
		s.fallback(ctx, "job_titles", err)
		return append([]string(nil), FallbackJobTitles...)
	}
	titles := ParseJobTitles(reply)
	if len(titles) == 0 {
		s.fallback(ctx, "job_titles", fmt.Errorf("no valid titles in %q", reply))
		return append([]string(nil), FallbackJobTitles...)
	}
	return titles
}

// JobLinks crosses the suggested titles with every portal, in portal order,
// and stops at MaxJobs.
func (s *Service) JobLinks(ctx context.Context, domain, location string) ([]JobLink, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrNoDomain
	}
	return BuildJobLinks(s.JobTitles(ctx, domain), location), nil
}

// BuildJobLinks fills every portal template for each title.
func BuildJobLinks(titles []string, location string) []JobLink {
	loc := ""
	if location = strings.TrimSpace(location); location != "" {
		loc = url.QueryEscape(location)
	}

	links := make([]JobLink, 0, MaxJobs)
	for _, title := range titles {
		r := strings.NewReplacer("{query}", url.QueryEscape(title), "{location}", loc)
		for _, p := range platforms {
			links = append(links, JobLink{
				Title:    title,
				Platform: p.name,
				Label:    fmt.Sprintf("%s (%s)", title, p.name),
				URL:      r.Replace(p.template),
			})
			if len(links) >= MaxJobs {
				return links
			}
		}
	}
	return links
}

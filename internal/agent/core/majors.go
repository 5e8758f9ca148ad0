package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
)

// MajorResearchAgent recommends university majors for a user's interests
// and fills in program details for each one.
type MajorResearchAgent struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

// NewMajorResearchAgent creates a new major research agent
func NewMajorResearchAgent(cfg *config.Config, llmProvider LLMProvider, telemetry *telemetry.Telemetry) *MajorResearchAgent {
	return &MajorResearchAgent{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   telemetry,
		logger:      log.New(log.Writer(), "[MAJOR-AGENT] ", log.LstdFlags),
	}
}

var defaultMajors = []string{"Computer Science", "Business Administration", "Psychology", "Mechanical Engineering"}

// AnalyzeInterests asks the model for 3-5 majors matching the user query.
// Falls back to a default set when the model is unavailable or returns
// something unparseable.
func (a *MajorResearchAgent) AnalyzeInterests(ctx context.Context, userQuery string) []string {
	prompt := fmt.Sprintf(`Based on this user query, recommend 3-5 relevant university majors.

User Query: %q

Recommend majors that align with their interests. Return ONLY a JSON array of major names, like:
["Computer Science", "Business Administration", "Psychology"]`, userQuery)

	raw, err := generate(ctx, a.llmProvider, a.telemetry, a.config.LLM.Routing, "major_research", a.config.LLM.Routing.Majors, prompt)
	if err != nil {
		a.logger.Printf("interest analysis failed, using defaults: %v", err)
		return defaultMajors
	}

	var names []string
	if err := json.Unmarshal([]byte(extractJSON(raw)), &names); err != nil || len(names) == 0 {
		a.logger.Printf("could not parse major list, using defaults")
		return defaultMajors
	}
	if len(names) > 5 {
		names = names[:5]
	}
	return names
}

type majorDetails struct {
	Description  string           `json:"description"`
	Requirements []string         `json:"requirements"`
	Duration     string           `json:"duration"`
	Universities []UniversityLink `json:"universities"`
	VideoURL     string           `json:"video_url"`
}

// ResearchMajors fills in details for each major name.
func (a *MajorResearchAgent) ResearchMajors(ctx context.Context, names []string) []Major {
	majors := make([]Major, 0, len(names))
	for _, name := range names {
		details := a.researchOne(ctx, name)
		majors = append(majors, Major{
			ID:           slug(name),
			Name:         name,
			Description:  details.Description,
			Requirements: details.Requirements,
			Duration:     details.Duration,
			Universities: details.Universities,
			VideoURL:     details.VideoURL,
		})
	}
	return majors
}

func (a *MajorResearchAgent) researchOne(ctx context.Context, name string) majorDetails {
	prompt := fmt.Sprintf(`Provide details for the university major %q as a JSON object with keys:
  "description": one-paragraph overview of the major,
  "requirements": array of 3-5 typical admission or study requirements,
  "duration": typical program length (e.g. "4 years"),
  "universities": array of objects {"name": ..., "url": ...} with up to 3 well-known programs,
  "video_url": a YouTube link introducing the major (or empty string).
Return ONLY the JSON object.`, name)

	raw, err := generate(ctx, a.llmProvider, a.telemetry, a.config.LLM.Routing, "major_research", a.config.LLM.Routing.Majors, prompt)
	if err == nil {
		var details majorDetails
		if jsonErr := json.Unmarshal([]byte(extractJSON(raw)), &details); jsonErr == nil && details.Description != "" {
			return details
		}
		a.logger.Printf("could not parse details for %s, using fallback", name)
	} else {
		a.logger.Printf("detail research failed for %s: %v", name, err)
	}
	return fallbackMajorDetails(name)
}

func fallbackMajorDetails(name string) majorDetails {
	if d, ok := majorDatabase[name]; ok {
		return d
	}
	return majorDetails{
		Description:  fmt.Sprintf("%s is a university program covering the core theory and practice of the field.", name),
		Requirements: []string{"High school diploma", "Strong academic record"},
		Duration:     "4 years",
	}
}

// majorDatabase covers the most commonly recommended majors so the system
// stays useful without a working LLM provider.
var majorDatabase = map[string]majorDetails{
	"Computer Science": {
		Description:  "Study of computers and computational systems, covering algorithms, software design, and systems.",
		Requirements: []string{"Strong math background", "Logical thinking", "Programming fundamentals"},
		Duration:     "4 years",
		Universities: []UniversityLink{
			{Name: "MIT", URL: "https://www.eecs.mit.edu"},
			{Name: "Stanford University", URL: "https://cs.stanford.edu"},
		},
	},
	"Business Administration": {
		Description:  "Covers management, finance, marketing, and operations across organizations of all sizes.",
		Requirements: []string{"Communication skills", "Quantitative reasoning", "Leadership interest"},
		Duration:     "4 years",
		Universities: []UniversityLink{
			{Name: "Wharton School", URL: "https://www.wharton.upenn.edu"},
		},
	},
	"Psychology": {
		Description:  "Scientific study of mind and behavior, from cognition and development to clinical practice.",
		Requirements: []string{"Research methods", "Statistics", "Writing skills"},
		Duration:     "4 years",
		Universities: []UniversityLink{
			{Name: "Harvard University", URL: "https://psychology.fas.harvard.edu"},
		},
	},
	"Mechanical Engineering": {
		Description:  "Design and analysis of mechanical systems, from thermodynamics to robotics and manufacturing.",
		Requirements: []string{"Physics", "Calculus", "CAD fundamentals"},
		Duration:     "4 years",
		Universities: []UniversityLink{
			{Name: "Georgia Tech", URL: "https://www.me.gatech.edu"},
		},
	},
}

// ProcessQuery is the agent's main entry point: analyze the query and
// research each recommended major.
func (a *MajorResearchAgent) ProcessQuery(ctx context.Context, userQuery string) []Major {
	names := a.AnalyzeInterests(ctx, userQuery)
	a.logger.Printf("Found %d majors", len(names))
	return a.ResearchMajors(ctx, names)
}

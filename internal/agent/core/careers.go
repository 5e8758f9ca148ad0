package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/match"
)

// CareerAnalysisAgent identifies career paths for a major and enriches each
// with salary expectations, job market data, and professional resources.
type CareerAnalysisAgent struct {
	config      *config.Config
	llmProvider LLMProvider
	telemetry   *telemetry.Telemetry
	matcher     *match.Aggregator
	resources   *ResourceFinder
	logger      *log.Logger
}

// NewCareerAnalysisAgent creates a new career analysis agent
func NewCareerAnalysisAgent(cfg *config.Config, llmProvider LLMProvider, tel *telemetry.Telemetry, matcher *match.Aggregator, resources *ResourceFinder) *CareerAnalysisAgent {
	return &CareerAnalysisAgent{
		config:      cfg,
		llmProvider: llmProvider,
		telemetry:   tel,
		matcher:     matcher,
		resources:   resources,
		logger:      log.New(log.Writer(), "[CAREER-AGENT] ", log.LstdFlags),
	}
}

// careerMappings lists the common career paths per major, used when the
// model cannot be reached.
var careerMappings = map[string][]string{
	"Computer Science":        {"Software Engineer", "Data Scientist", "DevOps Engineer", "Product Manager"},
	"Business Administration": {"Marketing Manager", "Financial Analyst", "Management Consultant", "Operations Manager"},
	"Psychology":              {"Clinical Psychologist", "HR Manager", "UX Researcher", "Counselor"},
	"Mechanical Engineering":  {"Mechanical Engineer", "Robotics Engineer", "Manufacturing Engineer", "Project Manager"},
}

// IdentifyCareers returns 3-4 career titles for a major.
func (a *CareerAnalysisAgent) IdentifyCareers(ctx context.Context, majorName string) []string {
	prompt := fmt.Sprintf(`Identify 3-4 distinct career paths that graduates of the university major %q commonly pursue.
Consider corporate roles, startups, research, and consulting.
Return ONLY a JSON array of career titles.`, majorName)

	raw, err := generate(ctx, a.llmProvider, a.telemetry, a.config.LLM.Routing, "career_analysis", a.config.LLM.Routing.Careers, prompt)
	if err == nil {
		var titles []string
		if jsonErr := json.Unmarshal([]byte(extractJSON(raw)), &titles); jsonErr == nil && len(titles) > 0 {
			if len(titles) > 4 {
				titles = titles[:4]
			}
			return titles
		}
	} else {
		a.logger.Printf("career identification failed for %s: %v", majorName, err)
	}

	if titles, ok := careerMappings[majorName]; ok {
		return titles
	}
	return []string{
		fmt.Sprintf("%s Specialist", majorName),
		fmt.Sprintf("Senior %s Professional", majorName),
		fmt.Sprintf("%s Manager", majorName),
	}
}

type careerDetails struct {
	SalaryRange     string   `json:"salary_range"`
	AverageSalary   string   `json:"average_salary"`
	Benefits        []string `json:"benefits"`
	WorkIntensity   string   `json:"work_intensity"`
	WorkLifeBalance string   `json:"work_life_balance"`
	GrowthPotential string   `json:"growth_potential"`
	JobOutlook      string   `json:"job_outlook"`
}

// careerDatabase holds baseline expectations for well-known careers.
var careerDatabase = map[string]careerDetails{
	"Software Engineer": {
		SalaryRange:     "$80,000 - $180,000",
		AverageSalary:   "$120,000",
		Benefits:        []string{"Health insurance", "401(k) matching", "Stock options", "Remote work options"},
		WorkIntensity:   "Medium to High",
		WorkLifeBalance: "Good (flexible hours, remote options)",
		GrowthPotential: "Excellent",
		JobOutlook:      "Growing rapidly (+22% by 2030)",
	},
	"Marketing Manager": {
		SalaryRange:     "$60,000 - $140,000",
		AverageSalary:   "$95,000",
		Benefits:        []string{"Health insurance", "Performance bonuses", "Professional development", "Flexible schedule"},
		WorkIntensity:   "Medium",
		WorkLifeBalance: "Good",
		GrowthPotential: "Very Good",
		JobOutlook:      "Growing (+10% by 2030)",
	},
	"Data Scientist": {
		SalaryRange:     "$90,000 - $200,000",
		AverageSalary:   "$130,000",
		Benefits:        []string{"Comprehensive health", "Stock options", "Learning budget", "Remote work"},
		WorkIntensity:   "Medium to High",
		WorkLifeBalance: "Good",
		GrowthPotential: "Excellent",
		JobOutlook:      "Very Strong (+36% by 2030)",
	},
	"Financial Analyst": {
		SalaryRange:     "$55,000 - $120,000",
		AverageSalary:   "$85,000",
		Benefits:        []string{"Health insurance", "Bonuses", "Retirement plans", "CFA sponsorship"},
		WorkIntensity:   "High",
		WorkLifeBalance: "Moderate (long hours during quarter-end)",
		GrowthPotential: "Good",
		JobOutlook:      "Stable (+5% by 2030)",
	},
}

var genericCareerDetails = careerDetails{
	SalaryRange:     "$50,000 - $100,000",
	AverageSalary:   "$75,000",
	Benefits:        []string{"Health insurance", "Paid time off", "Professional development"},
	WorkIntensity:   "Medium",
	WorkLifeBalance: "Good",
	GrowthPotential: "Good",
	JobOutlook:      "Stable",
}

// AnalyzeCareer builds the full career record for one title.
func (a *CareerAnalysisAgent) AnalyzeCareer(ctx context.Context, title string) Career {
	details := a.careerDetails(ctx, title)

	career := Career{
		ID:              slug(title),
		Title:           title,
		SalaryRange:     details.SalaryRange,
		AverageSalary:   details.AverageSalary,
		Benefits:        details.Benefits,
		WorkIntensity:   details.WorkIntensity,
		WorkLifeBalance: details.WorkLifeBalance,
		GrowthPotential: details.GrowthPotential,
		JobOutlook:      details.JobOutlook,
	}

	// Real posting data from the job catalogue. Aggregate never fails; it
	// returns the zero result when the store is unreachable.
	if a.matcher != nil {
		start := time.Now()
		career.JobMarket = a.matcher.Aggregate(ctx, title)
		if a.telemetry != nil {
			a.telemetry.RecordCatalogueEvent(ctx, telemetry.CatalogueEvent{
				Query:          title,
				Duration:       time.Since(start),
				MatchCount:     career.JobMarket.MatchCount,
				StoreAvailable: career.JobMarket.StoreAvailable,
			})
		}
	} else {
		career.JobMarket = match.ZeroResult()
	}

	if a.resources != nil {
		career.Resources = a.resources.FindForCareer(ctx, title)
	}

	return career
}

func (a *CareerAnalysisAgent) careerDetails(ctx context.Context, title string) careerDetails {
	prompt := fmt.Sprintf(`Describe the career %q as a JSON object with keys:
  "salary_range": e.g. "$80,000 - $180,000",
  "average_salary": e.g. "$120,000",
  "benefits": array of typical benefits,
  "work_intensity": "Low", "Medium", or "High" (ranges allowed),
  "work_life_balance": short assessment,
  "growth_potential": short assessment,
  "job_outlook": growth estimate with timeframe.
Be realistic and honest. Return ONLY the JSON object.`, title)

	raw, err := generate(ctx, a.llmProvider, a.telemetry, a.config.LLM.Routing, "career_analysis", a.config.LLM.Routing.Careers, prompt)
	if err == nil {
		var details careerDetails
		if jsonErr := json.Unmarshal([]byte(extractJSON(raw)), &details); jsonErr == nil && details.SalaryRange != "" {
			return details
		}
		a.logger.Printf("could not parse career details for %s, using fallback", title)
	} else {
		a.logger.Printf("career detail lookup failed for %s: %v", title, err)
	}

	if details, ok := careerDatabase[title]; ok {
		return details
	}
	return genericCareerDetails
}

// ProcessMajor analyzes all careers for one major.
func (a *CareerAnalysisAgent) ProcessMajor(ctx context.Context, majorName string) []Career {
	titles := a.IdentifyCareers(ctx, majorName)

	careers := make([]Career, 0, len(titles))
	for _, title := range titles {
		careers = append(careers, a.AnalyzeCareer(ctx, title))
	}
	return careers
}

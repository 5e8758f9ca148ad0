// Package qa validates compiled career plans before they are shipped to a
// frontend or archived, catching incomplete analysis output early.
package qa

import (
	"encoding/json"
	"fmt"
	"os"

	core "github.com/pathfinder-app/pathfinder/internal/agent/core"
)

// ValidatePlanFile loads a career plan JSON file and validates core constraints.
func ValidatePlanFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var plan core.CareerPlan
	if err := json.Unmarshal(b, &plan); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return ValidatePlan(plan)
}

// ValidatePlan checks that an analysis produced a complete plan: at least
// one major, every major carries careers, and every career carries a
// five-year projection.
func ValidatePlan(plan core.CareerPlan) error {
	if plan.UserQuery == "" {
		return fmt.Errorf("plan has no user query")
	}
	if len(plan.Majors) == 0 {
		return fmt.Errorf("plan has no majors")
	}
	for _, major := range plan.Majors {
		if major.ID == "" || major.Name == "" {
			return fmt.Errorf("major %q missing id or name", major.Name)
		}
		if len(major.Careers) == 0 {
			return fmt.Errorf("major %q has no careers", major.Name)
		}
		for _, career := range major.Careers {
			if career.Title == "" {
				return fmt.Errorf("major %q has a career without a title", major.Name)
			}
			if career.SalaryRange == "" {
				return fmt.Errorf("career %q has no salary range", career.Title)
			}
			if len(career.FuturePaths) == 0 {
				return fmt.Errorf("career %q has no future paths", career.Title)
			}
			for _, fp := range career.FuturePaths {
				if len(fp.Statistics) == 0 {
					return fmt.Errorf("future path %q has no progression statistics", fp.ID)
				}
			}
		}
	}
	return nil
}

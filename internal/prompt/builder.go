// Package prompt assembles the evaluation prompt for one applicant profile.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"applicant-pipeline/internal/models"
)

// Build renders a profile into the prompt text sent to the LLM. Deterministic
// for identical inputs; empty sections are omitted rather than rendered blank.
// The requested answer format is the labeled layout the response parser
// understands.
func Build(profile models.Profile) string {
	var parts []string

	parts = append(parts, "You are a recruiting analyst. Review the applicant profile below and do four things:")
	parts = append(parts, "1) Write a summary of at most 75 words.")
	parts = append(parts, "2) Score the applicant 1-10.")
	parts = append(parts, "3) List issues or gaps in the profile.")
	parts = append(parts, "4) Propose up to three follow-up questions.")

	if !profile.Personal.IsEmpty() {
		parts = append(parts, "\nPersonal:")
		if profile.Personal.Name != "" {
			parts = append(parts, fmt.Sprintf("- Name: %s", profile.Personal.Name))
		}
		if profile.Personal.Location != "" {
			parts = append(parts, fmt.Sprintf("- Location: %s", profile.Personal.Location))
		}
	}

	if len(profile.Experience) > 0 {
		parts = append(parts, "\nWork Experience:")
		for _, exp := range profile.Experience {
			switch {
			case exp.Company != "" && exp.Title != "":
				parts = append(parts, fmt.Sprintf("- %s at %s", exp.Title, exp.Company))
			case exp.Title != "":
				parts = append(parts, fmt.Sprintf("- %s", exp.Title))
			case exp.Company != "":
				parts = append(parts, fmt.Sprintf("- %s", exp.Company))
			}
		}
	}

	if !profile.Salary.IsEmpty() {
		parts = append(parts, "\nSalary Expectations:")
		if profile.Salary.Rate != nil {
			rate := formatNumber(*profile.Salary.Rate)
			if profile.Salary.Currency != "" {
				parts = append(parts, fmt.Sprintf("- Preferred rate: %s %s", rate, profile.Salary.Currency))
			} else {
				parts = append(parts, fmt.Sprintf("- Preferred rate: %s", rate))
			}
		}
		if profile.Salary.Availability != nil {
			parts = append(parts, fmt.Sprintf("- Availability: %s hrs/wk", formatNumber(*profile.Salary.Availability)))
		}
	}

	parts = append(parts, "\nReturn exactly:")
	parts = append(parts, "Summary: <text>")
	parts = append(parts, "Score: <integer>")
	parts = append(parts, "Issues: <text or 'None'>")
	parts = append(parts, "Follow-Ups:")
	parts = append(parts, "- <question 1>")
	parts = append(parts, "- <question 2>")
	parts = append(parts, "- <question 3>")

	return strings.Join(parts, "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package calc holds the static calculation-formula catalog: which form
// inputs each engagement's payout formula needs, and which inputs block the
// calculation until the caller supplies them. Read-only after process start.
package calc

import "strings"

// FormField is one numeric input the partner fills in before a payout can be
// computed.
type FormField struct {
	FieldName string  `json:"field_name"`
	About     string  `json:"about"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
}

// Calculation describes one engagement's payout formula.
type Calculation struct {
	Name       string        `json:"name"`
	Formula    string        `json:"formula"`
	Blockers   []string      `json:"blocker,omitempty"` // inputs that must be asked for, e.g. "country"
	FormFields []FormField   `json:"form_fields,omitempty"`
	SubModules []Calculation `json:"sub_module,omitempty"`
}

// Catalog groups calculations by incentive category.
type Catalog map[string][]Calculation

const (
	CategoryWorkshop              = "workshop"
	CategoryCSPTransaction        = "csp_transaction"
	CategorySPDEligibilitySMB     = "spd_eligibility_smb"
	CategorySPDEligibilityEnt     = "spd_eligibility_enterprise"
	marketRateField               = "market_rate"
	marketRateLabel               = "Hourly market rate"
	marketRateAbout               = "Hourly rate derived from the customer's market tier"
	workshopEnvisioningFormula    = "min((7.5% of ACV), no_of_hour * market_rate, 6000)"
	spdPerformanceFormula         = "min((current_year_workloads - last_year_workloads ) * 3 , 15)"
	spdCustomerSuccessFormula     = "usage_metric  + deployment_metric"
	spdUsageMetricFormula         = "usage_metric = min((current_year_usage - last_year_usage)/(last_year_usage*100),30)"
	spdDeploymentMetricFormula    = "deployment_metric = min((current_year_workload - last_year_workload)*4,20)"
	spdSkillingFormulaSMB         = "min(no_of_intermediate_certifications,20)) + (min((no_of_advanced_certifications *7.5),15)"
	spdSkillingFormulaEnterprise  = "min(no_of_intermediate_certifications,20)) + (min((no_of_advanced_certifications *2.4),15)"
)

func workshopFields() []FormField {
	return []FormField{
		{FieldName: "acv", About: "The estimated value of annual billed revenue from the customer", Label: "Annual Contract Value"},
		{FieldName: "no_of_hour", About: "Estimated number of hours you will need to complete this workshop", Label: "Approx number of hours"},
	}
}

func spdPerformanceFields() []FormField {
	return []FormField{
		{FieldName: "current_year_workloads", About: "The total number of eligible workloads in last month of current year", Label: "Current Year Eligible Workloads"},
		{FieldName: "last_year_workloads", About: "The total number of eligible workloads in same month last year", Label: "Last Year Eligible Workloads"},
	}
}

func spdSkillingFields() []FormField {
	return []FormField{
		{FieldName: "no_of_intermediate_certifications", About: "Number of individuals who have completed intermediate certifications", Label: "Number of intermediate certifications completed"},
		{FieldName: "no_of_advanced_certifications", About: "Number of individuals who have completed advanced certifications", Label: "Number of advanced certifications completed"},
	}
}

func spdCustomerSuccessSubModules() []Calculation {
	return []Calculation{
		{
			Name:    "Usage Metric Score",
			Formula: spdUsageMetricFormula,
			FormFields: []FormField{
				{FieldName: "current_year_usage", About: "Eligible usage in last month of current year", Label: "Current Year Usage"},
				{FieldName: "last_year_usage", About: "Eligible usage in same month last year", Label: "Last Year Usage"},
			},
		},
		{
			Name:    "Deployment Metric Score",
			Formula: spdDeploymentMetricFormula,
			FormFields: []FormField{
				{FieldName: "current_year_workload", About: "Number of eligible deployments made in last month of current year", Label: "Current Year Deployments"},
				{FieldName: "last_year_workload", About: "Number of eligible deployments made in same month last year", Label: "Last Year Deployments"},
			},
		},
	}
}

// Load returns the full catalog. The content mirrors the published incentive
// guide tables and is versioned with the binary.
func Load() Catalog {
	return Catalog{
		CategoryWorkshop: {
			{Name: "ERP Envisioning Workshop", Formula: workshopEnvisioningFormula, Blockers: []string{"country"}, FormFields: workshopFields()},
			{Name: "CRM Envisioning Workshop", Formula: workshopEnvisioningFormula, Blockers: []string{"country"}, FormFields: workshopFields()},
		},
		CategoryCSPTransaction: {
			{
				Name:    "D365 CSP Core",
				Formula: "core_billed_revenue * 0.04",
				FormFields: []FormField{
					{FieldName: "core_billed_revenue", About: "The estimated annual revenue billed from the customer", Label: "Annual billed revenue from customer"},
				},
			},
			{
				Name:    "D365 CSP Global Strategic Product Accelerator – Tier 1 (Finance & Supply Chain)",
				Formula: "tier_1_billed_revenue * 0.07",
				FormFields: []FormField{
					{FieldName: "tier_1_billed_revenue", About: "Billed revenue that can be attributed to strategic products (Finance & Supply Chain)", Label: "Annual billed revenue from Global Strategic Product Accelerator Tier 1"},
				},
			},
			{
				Name:    "D365 CSP Global Strategic Product Accelerator – Tier 2 (Business Central)",
				Formula: "tier_2_billed_revenue * 0.08",
				FormFields: []FormField{
					{FieldName: "tier_2_billed_revenue", About: "Billed revenue that can be attributed to strategic products (Business Central)", Label: "Annual billed revenue from Global Strategic Product Accelerator Tier 2"},
				},
			},
			{
				Name:    "D365 CSP Growth Accelerator",
				Formula: "(current_year_billed_revenue - last_year_billed_revenue) * 0.08",
				FormFields: []FormField{
					{FieldName: "current_year_billed_revenue", About: "Revenue billed from the customer in the current year", Label: "Billed revenue from customer in current year"},
					{FieldName: "last_year_billed_revenue", About: "Revenue billed from the customer same month last year", Label: "Billed revenue from customer in previous year"},
				},
			},
		},
		CategorySPDEligibilitySMB: {
			{Name: "Performance Category", Formula: spdPerformanceFormula, FormFields: spdPerformanceFields()},
			{Name: "Skilling Category", Formula: spdSkillingFormulaSMB, FormFields: spdSkillingFields()},
			{Name: "Customer Success Category", Formula: spdCustomerSuccessFormula, SubModules: spdCustomerSuccessSubModules()},
		},
		CategorySPDEligibilityEnt: {
			{Name: "Performance Category", Formula: spdPerformanceFormula, FormFields: spdPerformanceFields()},
			{Name: "Skilling Category", Formula: spdSkillingFormulaEnterprise, FormFields: spdSkillingFields()},
			{Name: "Customer Success Category", Formula: spdCustomerSuccessFormula, SubModules: spdCustomerSuccessSubModules()},
		},
	}
}

// FindByName locates a calculation by engagement name, case-insensitive
// substring in either direction (catalog names are long; user text rarely
// carries the full official name). Returns the category it was found in.
func (c Catalog) FindByName(name string) (Calculation, string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Calculation{}, "", false
	}
	for _, category := range []string{CategoryWorkshop, CategoryCSPTransaction, CategorySPDEligibilitySMB, CategorySPDEligibilityEnt} {
		for _, calcDef := range c[category] {
			haystack := strings.ToLower(calcDef.Name)
			if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
				return calcDef, category, true
			}
		}
	}
	return Calculation{}, "", false
}

// ApplyMarketRate returns a copy of the calculation with the market_rate form
// field set to the resolved hourly rate, unblocking a country-gated formula.
func ApplyMarketRate(calcDef Calculation, rate int) Calculation {
	patched := calcDef
	patched.FormFields = make([]FormField, len(calcDef.FormFields))
	copy(patched.FormFields, calcDef.FormFields)

	for i := range patched.FormFields {
		if patched.FormFields[i].FieldName == marketRateField {
			patched.FormFields[i].Value = float64(rate)
			patched.Blockers = removeBlocker(patched.Blockers, "country")
			return patched
		}
	}
	patched.FormFields = append(patched.FormFields, FormField{
		FieldName: marketRateField,
		About:     marketRateAbout,
		Label:     marketRateLabel,
		Value:     float64(rate),
	})
	patched.Blockers = removeBlocker(patched.Blockers, "country")
	return patched
}

func removeBlocker(blockers []string, name string) []string {
	out := make([]string, 0, len(blockers))
	for _, b := range blockers {
		if !strings.EqualFold(b, name) {
			out = append(out, b)
		}
	}
	return out
}

package crawl

// Job is one scraped listing. Every field is best-effort text pulled off
// the card: the page decides what is present, so absent pieces stay empty
// and records carry no identity beyond their position in the scan.
type Job struct {
	Title          string `json:"title"`
	Company        string `json:"company"`
	Industry       string `json:"industry,omitempty"`
	FinancingStage string `json:"financing_stage,omitempty"`
	CompanySize    string `json:"company_size,omitempty"`
	Location       string `json:"location,omitempty"`
	Salary         string `json:"salary,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Degree         string `json:"degree,omitempty"`
	Contact        string `json:"contact,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Key identifies a job for dedup purposes within and across runs.
func (j Job) Key() string {
	if j.URL != "" {
		return j.URL
	}
	return j.Title + "|" + j.Company
}

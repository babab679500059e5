package types

// LinkedInProfile is the structured form of a LinkedIn PDF export.
// It is produced once per verification run and not modified afterwards.
type LinkedInProfile struct {
	FirstName       string               `json:"firstName"`
	LastName        string               `json:"lastName"`
	Headline        string               `json:"headline"`
	About           string               `json:"about"`
	Location        string               `json:"location"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone"`
	Websites        []string             `json:"websites"`
	Experiences     []LinkedInExperience `json:"experiences"`
	Educations      []Education          `json:"educations"`
	Certifications  []Certification      `json:"certifications"`
	Skills          []string             `json:"skills"`
	Languages       []string             `json:"languages"`
	Accomplishments []string             `json:"accomplishments"`
}

// LinkedInExperience is a position as listed on LinkedIn
type LinkedInExperience struct {
	Title        string   `json:"title"`
	CompanyName  string   `json:"companyName"`
	Location     string   `json:"location"`
	StartedAt    *string  `json:"startedAt"`
	EndedAt      *string  `json:"endedAt"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
	Skills       []string `json:"skills"`
}

// FullName joins first and last name
func (p *LinkedInProfile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

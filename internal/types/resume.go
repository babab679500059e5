package types

// NormalizedResume is the canonical résumé shape consumed by both verification pipelines.
// Dates are ISO YYYY-MM-DD strings or nil.
type NormalizedResume struct {
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	Name            string           `json:"name"`
	TargetTitle     string           `json:"targetTitle"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	Location        string           `json:"location"`
	Summary         string           `json:"summary"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Educations      []Education      `json:"educations"`
	Certifications  []Certification  `json:"certifications"`
	Skills          []string         `json:"skills"`
	Projects        []Project        `json:"projects"`
	Profiles        Profiles         `json:"profiles"`
	Links           []string         `json:"links"`
}

// WorkExperience is a single résumé position
type WorkExperience struct {
	EmployerName      string   `json:"employerName"`
	JobTitle          string   `json:"jobTitle"`
	Location          string   `json:"location"`
	StartedAt         *string  `json:"startedAt"`
	EndedAt           *string  `json:"endedAt"`
	IsCurrentPosition bool     `json:"isCurrentPosition"`
	Role              string   `json:"role"`
	Achievements      []string `json:"achievements"`
	Skills            []string `json:"skills"`
}

// Education is shared between résumés and LinkedIn profiles
type Education struct {
	InstitutionName  string  `json:"institutionName"`
	DegreeTypeName   string  `json:"degreeTypeName"`
	FieldOfStudyName string  `json:"fieldOfStudyName"`
	GraduationAt     *string `json:"graduationAt"`
	Description      string  `json:"description"`
}

// Certification is shared between résumés and LinkedIn profiles
type Certification struct {
	Title         string  `json:"title"`
	Issuer        string  `json:"issuer"`
	StartDate     *string `json:"startDate"`
	ExpiryDate    *string `json:"expiryDate"`
	CredentialURL string  `json:"credentialUrl"`
}

// Project is a résumé project claimed by the candidate
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
	Skills       []string `json:"skills"`
}

// Profiles holds external profile links declared on the résumé
type Profiles struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// FullName returns the best available display name
func (r *NormalizedResume) FullName() string {
	if r.Name != "" {
		return r.Name
	}
	switch {
	case r.FirstName != "" && r.LastName != "":
		return r.FirstName + " " + r.LastName
	case r.FirstName != "":
		return r.FirstName
	default:
		return r.LastName
	}
}

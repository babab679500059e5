package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Golang to Go", "Golang", "Go"},
		{"GOLANG to Go", "GOLANG", "Go"},
		{"go lang to Go", "go  lang", "Go"},
		{"JS to JavaScript uppercase", "JS", "JavaScript"},
		{"K8s to Kubernetes", "k8s", "Kubernetes"},
		{"reactjs to React", "reactjs", "React"},
		{"nodejs to Node.js", "nodejs", "Node.js"},
		{"postgres to PostgreSQL", "Postgres", "PostgreSQL"},
		{"python to Python", "python", "Python"},
		{"PYTHON to Python", "PYTHON", "Python"},
		{"acronym kept", "SQL", "SQL"},
		{"aws canonical", "aws", "AWS"},
		{"unicode first letter", "élixir", "Élixir"},
		{"Empty string", "", ""},
		{"Whitespace only", "   ", ""},
		{"Multi-word stays as-is", "Distributed Systems", "Distributed Systems"},
		{"Mixed case single word", "FastAPI", "FastAPI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkillName(tt.input))
		})
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{"golang", "Go", " ", "k8s", "Kubernetes", "Docker", "docker"})
	assert.Equal(t, []string{"Go", "Kubernetes", "Docker"}, got)
	assert.NotNil(t, NormalizeSkills(nil))
}

func TestSkillSet(t *testing.T) {
	set := SkillSet([]string{"Golang", "React.js", ""})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "go")
	assert.Contains(t, set, "react")
}

package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCanonicalDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Jan-01-2020", true},
		{"Present", true},
		{"", true},
		{"present", false},
		{"2020-01-01", false},
		{"JAN-01-2020", false},
		{"Jan-1-2020", false},
		{"January-01-2020", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCanonicalDate(tt.input))
		})
	}
}

func TestIsCanonicalDegree(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"B.S.", true},
		{"M.A.", true},
		{"M.B.A.", true},
		{"Ph.D.", true},
		{"D.Phil.", true},
		{"J.D.", true},
		{"MBA", true},
		{"MBBS", true},
		{"bs", false},
		{"Bachelor of Science", false},
		{"PhD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCanonicalDegree(tt.input))
		})
	}
}

func TestNormalizeDegree(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"bs", "B.S."},
		{"B.S", "B.S."},
		{"b.a.", "B.A."},
		{"PhD", "Ph.D."},
		{"phd", "Ph.D."},
		{"mba", "MBA"},
		{"M.B.A.", "M.B.A."},
		{" msc ", "M.S."},
		{"Bachelor of Arts", "Bachelor of Arts"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeDegree(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Jane Doe", true},
		{"Jane Q. Doe", true},
		{"Mary-Jane O'Neil", true},
		{"JANE DOE", false},
		{"jane doe", false},
		{"Jane doe", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTitleCase(tt.input))
		})
	}
}

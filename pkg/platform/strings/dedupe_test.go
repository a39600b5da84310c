package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims and dedupes", input: []string{"  foo ", "bar", "foo", "", "  "}, expected: []string{"foo", "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList("kafka-1:9092, kafka-2:9092,,kafka-1:9092"))
}

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"pan.pdf":                 "pan.pdf",
		"../../my pan card.PDF":   "my_pan_card.PDF",
		`C:\Users\me\aadhaar.png`: "aadhaar.png",
		".env":                    "env",
		"":                        "upload",
		"पासपोर्ट.jpg":            "________.jpg",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeFilename(in), "input %q", in)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension("scan.PDF"))
	assert.Equal(t, "jpeg", Extension("photo.final.jpeg"))
	assert.Equal(t, "", Extension("noext"))
	assert.Equal(t, "", Extension("trailing."))
}

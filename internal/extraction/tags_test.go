package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagger_Infer(t *testing.T) {
	tagger := NewTagger(nil)

	tests := []struct {
		name    string
		content string
		files   []string
		want    []string
	}{
		{"content keywords", "Run go test with -race to catch the data race", nil, []string{"golang", "testing"}},
		{"file extension", "Wrap the handler", []string{"infra/main.tf"}, []string{"terraform"}},
		{"case insensitive", "KUBECTL rollout restart needs the namespace", nil, []string{"kubernetes"}},
		{"nothing matches", "Hello there", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tagger.Infer(tt.content, tt.files))
		})
	}
}

func TestTagger_CustomRules(t *testing.T) {
	tagger := NewTagger(map[string][]string{"queue": {"kafka"}})
	assert.Equal(t, []string{"queue"}, tagger.Infer("kafka consumer lag", nil))
	assert.Equal(t, []string{}, tagger.Infer("go test", nil))
}

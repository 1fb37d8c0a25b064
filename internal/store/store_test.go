package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/demo-app", "repo_acme_demo_app"},
		{"https://github.com/acme/demo-app.git", "repo_acme_demo_app"},
		{"git@github.com:acme/Demo.App", "repo_acme_demo_app"},
		{"https://github.com/Acme/Sample", "repo_acme_sample"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := CollectionID(tt.url)
			assert.Equal(t, tt.want, got)
			assert.True(t, validCollection.MatchString(got))
		})
	}
}

func TestCollectionIDNonGitHub(t *testing.T) {
	a := CollectionID("https://gitlab.com/acme/demo")
	b := CollectionID("https://gitlab.com/acme/demo")
	c := CollectionID("https://gitlab.com/acme/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("repo_")+12)
	assert.True(t, validCollection.MatchString(a))
}

func TestCollectionIDLocalPath(t *testing.T) {
	got := CollectionID("/tmp/checkout/myrepo")
	assert.True(t, validCollection.MatchString(got))
}

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestPointIDShapeAndDeterminism(t *testing.T) {
	a := pointID("file-abc123def456")
	b := pointID("file-abc123def456")
	c := pointID("file-abc123def457")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, uuidRe, a)
}

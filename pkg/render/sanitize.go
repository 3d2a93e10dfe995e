package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// ContentPolicy returns a shared policy suited to front-end rendering of
// author content: user-generated-content rules plus the class and style
// attributes that bound markup commonly carries.
func ContentPolicy() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowStyling()
		policy.AllowElements("figure", "figcaption", "section", "article", "header", "footer")
		policy.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		contentPolicy = policy
	})
	return contentPolicy
}

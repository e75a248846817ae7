package templates

import (
	"strconv"
	"strings"
)

// Common fields every template can use.
type Brand struct {
	CompanyName string
	AppName     string
}

// WelcomeData builds the Data map for a welcome email job.
func WelcomeData(b Brand, name, email string) map[string]any {
	return map[string]any{
		"CompanyName": b.CompanyName,
		"AppName":     b.AppName,
		"Name":        name,
		"Email":       email,
	}
}

// PostPublishedData builds the Data map for a post-published email job.
func PostPublishedData(b Brand, name, title, postURLBase string, postID int64) map[string]any {
	return map[string]any{
		"CompanyName": b.CompanyName,
		"AppName":     b.AppName,
		"Name":        name,
		"Title":       title,
		"PostURL":     strings.TrimRight(postURLBase, "/") + "/" + strconv.FormatInt(postID, 10),
	}
}

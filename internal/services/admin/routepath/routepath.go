// Package routepath builds console and gateway URLs.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root = "/"
)

const (
	StaticPrefix = "/static/"
	Healthz      = "/healthz"
	Metrics      = "/metrics"
)

const (
	// App is the console application segment after the locale.
	App = "yard-management-system"
	// MasterSegment groups master-data pages.
	MasterSegment = "master"
)

// Gateway JSON routes.
const (
	API       = "/" + App + "/api"
	APIPrefix = API + "/"
)

// Form and list actions below a master page.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionField  = "field"
	ActionDelete = "delete"
)

// Category dialog segments below the activity page.
const (
	CategoriesSegment = "categories"
	CategoryOptions   = "options"
)

const idParam = "id"

// Home is the console landing route for a locale.
func Home(locale string) string {
	return "/" + escapeSegment(locale) + "/" + App
}

// Master is the list route of a master page.
func Master(locale string, key string) string {
	return Home(locale) + "/" + MasterSegment + "/" + escapeSegment(key)
}

// MasterCreate is the create-form route.
func MasterCreate(locale string, key string) string {
	return Master(locale, key) + "/" + ActionCreate
}

// MasterUpdate is the update-form route for an encoded id.
func MasterUpdate(locale string, key string, encodedID string) string {
	return withID(Master(locale, key)+"/"+ActionUpdate, encodedID)
}

// MasterField is the per-field revalidation route.
func MasterField(locale string, key string) string {
	return Master(locale, key) + "/" + ActionField
}

// MasterDelete is the delete-confirmation route; encodedID may be empty for
// the confirm POST target.
func MasterDelete(locale string, key string, encodedID string) string {
	return withID(Master(locale, key)+"/"+ActionDelete, encodedID)
}

// Categories is the nested category dialog root below a master page.
func Categories(locale string, key string) string {
	return Master(locale, key) + "/" + CategoriesSegment
}

// CategoryCreate is the add-category dialog route.
func CategoryCreate(locale string, key string) string {
	return Categories(locale, key) + "/" + ActionCreate
}

// CategoryDelete is the delete-category dialog route.
func CategoryDelete(locale string, key string) string {
	return Categories(locale, key) + "/" + ActionDelete
}

// CategoryOptionsPath is the category select refresh route.
func CategoryOptionsPath(locale string, key string) string {
	return Categories(locale, key) + "/" + CategoryOptions
}

// LocalizedAPIPrefix is the gateway prefix below a locale segment, kept for
// callers that build API URLs relative to a console page.
func LocalizedAPIPrefix(locale string) string {
	return "/" + escapeSegment(locale) + APIPrefix
}

// APICollection is the gateway create route of an upstream resource.
func APICollection(resource string) string {
	return API + "/" + escapeSegment(resource)
}

// APIItem is the gateway update/delete route for an encoded id.
func APIItem(resource string, encodedID string) string {
	return APICollection(resource) + "/" + escapeSegment(encodedID)
}

func withID(path string, encodedID string) string {
	encodedID = strings.TrimSpace(encodedID)
	if encodedID == "" {
		return path
	}
	return path + "?" + url.Values{idParam: {encodedID}}.Encode()
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}

package domain

import (
	"time"
)

// AppMetafieldNamespace is the reserved namespace for metafields owned by this app.
// Metafields outside of it are never read or mutated.
const AppMetafieldNamespace = "custom-fields-shop"

// MaxProductMetafields is the page size used when reading product metafields.
// Reaching it is reported as an error since the rest would be invisible.
const MaxProductMetafields = 250

// Shop represents a store that installed the app
type Shop struct {
	ID         string
	ShopDomain string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Field is a shop-defined attribute whose values are stored as product metafields
type Field struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        FieldType `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Session holds the OAuth credentials for a shop.
// Offline sessions are keyed "offline_<shop>".
type Session struct {
	ID          string
	Shop        string
	State       string
	Scope       string
	AccessToken string
	IsOnline    bool
	Expires     *time.Time
	UpdatedAt   time.Time
}

// OfflineSessionID returns the session id used for a shop's offline token
func OfflineSessionID(shop string) string {
	return "offline_" + shop
}

// IsActive reports whether the session can be used to call the Admin API
func (s *Session) IsActive(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return s.Expires == nil || s.Expires.After(now)
}

// RemoteMetafield is a metafield record as returned by the Admin API
type RemoteMetafield struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	ValueType string `json:"valueType"`
	Namespace string `json:"namespace"`
}

// FormValues maps a field name to the value edited by the merchant.
// The empty string means "no value".
type FormValues map[string]string

// MetafieldCreate is a metafield input for a key that has no remote record yet
type MetafieldCreate struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ValueType string `json:"valueType"`
	Namespace string `json:"namespace"`
}

// MetafieldUpdate changes the value of an existing remote record
type MetafieldUpdate struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// MetafieldDelete removes an existing remote record
type MetafieldDelete struct {
	ID string `json:"id"`
}

// Product is the slice of product data the field editor needs
type Product struct {
	ID         string                     `json:"id"`
	Title      string                     `json:"title"`
	ImageURL   string                     `json:"imageUrl,omitempty"`
	ImageAlt   string                     `json:"imageAlt,omitempty"`
	Cursor     string                     `json:"cursor,omitempty"`
	Metafields map[string]RemoteMetafield `json:"-"`
}

// ProductPage is one page of the product listing
type ProductPage struct {
	Products    []Product `json:"products"`
	HasNextPage bool      `json:"hasNextPage"`
	EndCursor   string    `json:"endCursor,omitempty"`
}

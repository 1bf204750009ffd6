package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
	"github.com/FilipposDe/shopify-fields-app/pkg/errors"
)

// shopDocument embeds the shop's fields, so a field write is a single document save
type shopDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain string             `bson:"shopDomain"`
	IsActive   bool               `bson:"isActive"`
	Fields     []fieldDocument    `bson:"fields"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type fieldDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Type        string             `bson:"type"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type sessionDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SessionID   string             `bson:"sessionId"`
	SessionData sessionData        `bson:"sessionData"`
	Shop        primitive.ObjectID `bson:"shop"`
}

type sessionData struct {
	Shop        string     `bson:"shop"`
	State       string     `bson:"state"`
	Scope       string     `bson:"scope"`
	AccessToken string     `bson:"accessToken"`
	IsOnline    bool       `bson:"isOnline"`
	Expires     *time.Time `bson:"expires,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func (d *shopDocument) toDomain() *domain.Shop {
	return &domain.Shop{
		ID:         d.ID.Hex(),
		ShopDomain: d.ShopDomain,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d *fieldDocument) toDomain() *domain.Field {
	return &domain.Field{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Type:        domain.FieldType(d.Type),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d *sessionDocument) toDomain() *domain.Session {
	return &domain.Session{
		ID:          d.SessionID,
		Shop:        d.SessionData.Shop,
		State:       d.SessionData.State,
		Scope:       d.SessionData.Scope,
		AccessToken: d.SessionData.AccessToken,
		IsOnline:    d.SessionData.IsOnline,
		Expires:     d.SessionData.Expires,
		UpdatedAt:   d.SessionData.UpdatedAt,
	}
}

func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &errors.ErrNotFound{Resource: "shop", ID: id}
	}
	return oid, nil
}

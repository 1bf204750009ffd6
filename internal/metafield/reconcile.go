// Package metafield computes the operations that converge a product's remote
// metafields with the values edited in the field form.
package metafield

import (
	"sort"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
)

// Plan is the result of Reconcile. Batches are ordered by key.
type Plan struct {
	ToCreate []domain.MetafieldCreate `json:"toCreate"`
	ToUpdate []domain.MetafieldUpdate `json:"toUpdate"`
	ToDelete []domain.MetafieldDelete `json:"toDelete"`
}

// IsEmpty reports whether the plan has no operations
func (p Plan) IsEmpty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Reconcile diffs values against remote records keyed by metafield key.
// An empty value means "no value": it deletes an existing record and never
// creates one. defs supply the value type of new records; remote must only
// hold records in the app namespace.
func Reconcile(defs []*domain.Field, remote map[string]domain.RemoteMetafield, values domain.FormValues) Plan {
	types := make(map[string]domain.FieldType, len(defs))
	for _, def := range defs {
		types[def.Name] = def.Type
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	plan := Plan{
		ToCreate: []domain.MetafieldCreate{},
		ToUpdate: []domain.MetafieldUpdate{},
		ToDelete: []domain.MetafieldDelete{},
	}
	for _, key := range keys {
		value := values[key]

		if record, ok := remote[key]; ok {
			switch {
			case value == record.Value:
			case value == "":
				plan.ToDelete = append(plan.ToDelete, domain.MetafieldDelete{ID: record.ID})
			default:
				plan.ToUpdate = append(plan.ToUpdate, domain.MetafieldUpdate{ID: record.ID, Value: value})
			}
			continue
		}

		if value == "" {
			continue
		}
		fieldType, ok := types[key]
		if !ok {
			// nothing to infer a value type from
			continue
		}
		plan.ToCreate = append(plan.ToCreate, domain.MetafieldCreate{
			Key:       key,
			Value:     value,
			ValueType: fieldType.MetafieldValueType(),
			Namespace: domain.AppMetafieldNamespace,
		})
	}
	return plan
}

// Apply returns the remote state expected after plan succeeds against remote.
// The store assigns ids to created records; Apply leaves them empty.
func Apply(remote map[string]domain.RemoteMetafield, plan Plan) map[string]domain.RemoteMetafield {
	byID := make(map[string]string, len(remote))
	out := make(map[string]domain.RemoteMetafield, len(remote)+len(plan.ToCreate))
	for key, record := range remote {
		out[key] = record
		byID[record.ID] = key
	}
	for _, u := range plan.ToUpdate {
		if key, ok := byID[u.ID]; ok {
			record := out[key]
			record.Value = u.Value
			out[key] = record
		}
	}
	for _, d := range plan.ToDelete {
		if key, ok := byID[d.ID]; ok {
			delete(out, key)
		}
	}
	for _, c := range plan.ToCreate {
		out[c.Key] = domain.RemoteMetafield{
			Key:       c.Key,
			Value:     c.Value,
			ValueType: c.ValueType,
			Namespace: c.Namespace,
		}
	}
	return out
}

// InitialValues returns the form values for defs: the remote value of each
// field, or "" when it has none
func InitialValues(defs []*domain.Field, remote map[string]domain.RemoteMetafield) domain.FormValues {
	values := make(domain.FormValues, len(defs))
	for _, def := range defs {
		values[def.Name] = remote[def.Name].Value
	}
	return values
}

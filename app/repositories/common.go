package repositories

import (
	"encoding/json"
	"fmt"

	"postboard/app/models"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "post:"
	UserKeyPrefix = "user:"
)

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

func userKey(id models.Identity) []byte {
	return []byte(UserKeyPrefix + id.String())
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// UniqueIdentities drops zero and repeated ids, keeping first-seen order.
func UniqueIdentities(ids []models.Identity) []models.Identity {
	seen := make(map[models.Identity]struct{}, len(ids))
	out := make([]models.Identity, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// storable returns a copy of post without request-scoped fields.
func storable(post *models.Post) *models.Post {
	cp := *post
	cp.AuthorSummary = nil
	return &cp
}
